package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hwcatalog/hwsearch/internal/catalog"
	"github.com/hwcatalog/hwsearch/internal/config"
	"github.com/hwcatalog/hwsearch/internal/index"
	"github.com/hwcatalog/hwsearch/internal/output"
	"github.com/hwcatalog/hwsearch/internal/watcher"
)

type buildOptions struct {
	catalogPath string
	outputPath  string
	watch       bool
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the raw search index from a catalog",
		Long: `Read the product catalog and write the raw inverted index with all
match kinds (exact, prefix, tokens, category, size, ngrams, variants).

With --watch the command stays running and rebuilds the index whenever
the catalog file changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.catalogPath, "catalog", "c", "", "Catalog JSON file (default from config)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Raw index output file (default from config)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Rebuild whenever the catalog file changes")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *buildOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.catalogPath == "" {
		opts.catalogPath = cfg.Build.CatalogPath
	}
	if opts.outputPath == "" {
		opts.outputPath = cfg.Build.OutputPath
	}

	out := output.New(cmd.OutOrStdout())

	if err := buildOnce(cfg, opts, out); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	return watchAndRebuild(cmd.Context(), cfg, opts, out)
}

func buildOnce(cfg *config.Config, opts *buildOptions, out *output.Writer) error {
	store, err := catalog.OpenJSON(opts.catalogPath)
	if err != nil {
		return err
	}
	defer store.Close()

	idx := index.NewBuilder(cfg).Build(store)
	if err := index.Save(idx, opts.outputPath); err != nil {
		return err
	}

	out.Successf("indexed %d products into %s", idx.Metadata.TotalProducts, opts.outputPath)
	return nil
}

// watchAndRebuild blocks until interrupted, rebuilding on catalog writes.
func watchAndRebuild(parent context.Context, cfg *config.Config, opts *buildOptions, out *output.Writer) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(opts.catalogPath)
	if err != nil {
		return err
	}
	defer w.Close()

	go func() {
		if err := w.Start(ctx); err != nil && ctx.Err() == nil {
			slog.Error("catalog watch stopped", slog.String("error", err.Error()))
		}
	}()

	out.Statusf("👀", "watching %s for changes", opts.catalogPath)
	for {
		select {
		case <-ctx.Done():
			out.Status("", "watch stopped")
			return nil
		case <-w.Events():
			if err := buildOnce(cfg, opts, out); err != nil {
				out.Errorf("rebuild failed: %v", err)
				slog.Error("catalog rebuild failed", slog.String("error", err.Error()))
			}
		}
	}
}
