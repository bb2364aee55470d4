// hwsearch builds, optimizes, and queries the static search index for
// a hardware product catalog.
package main

import (
	"os"

	"github.com/hwcatalog/hwsearch/cmd/hwsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
