package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hwcatalog/hwsearch/internal/fragment"
	"github.com/hwcatalog/hwsearch/internal/index"
	"github.com/hwcatalog/hwsearch/internal/optimize"
	"github.com/hwcatalog/hwsearch/internal/output"
)

type optimizeOptions struct {
	indexPath string
	outputDir string
}

func newOptimizeCmd() *cobra.Command {
	opts := &optimizeOptions{}

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Compress and fragment a raw index",
		Long: `Prune low-value tokens from a raw index, split it into alphabetic
fragments by product code, compress every fragment with array-mapping
tables, and write the shard files plus master_index.json manifest.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOptimize(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.indexPath, "index", "i", "", "Raw index file (default from config)")
	cmd.Flags().StringVarP(&opts.outputDir, "out", "o", "", "Output directory for shards and manifest (default from config)")

	return cmd
}

func runOptimize(cmd *cobra.Command, opts *optimizeOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.indexPath == "" {
		opts.indexPath = cfg.Build.OutputPath
	}
	if opts.outputDir == "" {
		opts.outputDir = cfg.Optimize.OutputDir
	}

	idx, err := index.Load(opts.indexPath)
	if err != nil {
		return err
	}

	optimize.NewPruner(cfg.Optimize, slog.Default()).Prune(idx)

	out := fragment.NewFragmenter(cfg.Optimize.Fragments, slog.Default()).Fragment(idx)
	if err := fragment.Save(out, opts.outputDir); err != nil {
		return err
	}

	w := output.New(cmd.OutOrStdout())
	w.Successf("wrote %d fragments and %s to %s",
		len(out.Shards), fragment.MasterFileName, opts.outputDir)
	for _, s := range out.Shards {
		w.Status("", filepath.Join(opts.outputDir, s.FileName))
	}
	return nil
}
