// Package logging provides structured JSON logging for hwsearch.
// By default logs go to stderr only; with --log-file set, they are also
// written to a size-rotated file under ~/.hwsearch/logs/ for troubleshooting
// long build and serve runs.
package logging
