package cmd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/hwcatalog/hwsearch/internal/catalog"
	"github.com/hwcatalog/hwsearch/internal/output"
	"github.com/hwcatalog/hwsearch/internal/search"
	"github.com/hwcatalog/hwsearch/internal/telemetry"
)

type searchOptions struct {
	indexDir    string
	catalogPath string
	limit       int
	threshold   float64
	noFuzzy     bool
	analyze     bool
	jsonOutput  bool
	telemetryDB string
}

func newSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the optimized index",
		Long: `Run one query against a fragmented index directory. Only the
fragments the query needs are loaded. With --catalog the results are
expanded into full product records.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.indexDir, "index-dir", "", "Directory with master_index.json and shards (default from config)")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "Catalog JSON file for result expansion (default from config)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum results (default from config)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Relevance cutoff relative to the top score (negative disables)")
	cmd.Flags().BoolVar(&opts.noFuzzy, "no-fuzzy", false, "Disable the n-gram fuzzy pass")
	cmd.Flags().BoolVar(&opts.analyze, "analyze", false, "Include query analysis and per-match detail")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the response as JSON")
	cmd.Flags().StringVar(&opts.telemetryDB, "telemetry-db", "", "Record query telemetry to this database")

	return cmd
}

func runSearch(cmd *cobra.Command, queryText string, opts *searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.indexDir == "" {
		opts.indexDir = cfg.Optimize.OutputDir
	}
	if opts.catalogPath == "" {
		opts.catalogPath = cfg.Build.CatalogPath
	}

	var store catalog.Store = emptyStore{}
	if opts.catalogPath != "" {
		js, err := catalog.OpenJSON(opts.catalogPath)
		if err == nil {
			store = js
		} else {
			output.New(cmd.ErrOrStderr()).Warningf("catalog unavailable, results will not be expanded: %v", err)
		}
	}
	defer store.Close()

	engineOpts := []search.Option{}
	if opts.telemetryDB != "" {
		collector := telemetry.NewCollector()
		tdb, err := telemetry.OpenStore(opts.telemetryDB)
		if err != nil {
			return err
		}
		defer func() {
			if err := collector.Flush(tdb, time.Now().Format("2006-01-02")); err != nil {
				output.New(cmd.ErrOrStderr()).Warningf("telemetry flush failed: %v", err)
			}
			tdb.Close()
		}()
		engineOpts = append(engineOpts, search.WithEventSink(collector))
	}

	engine, err := search.NewEngine(cfg.Search, &search.FSSource{Dir: opts.indexDir}, store, engineOpts...)
	if err != nil {
		return err
	}

	resp, err := engine.Search(cmd.Context(), queryText, search.Options{
		Limit:           opts.limit,
		Threshold:       opts.threshold,
		DisableFuzzy:    opts.noFuzzy,
		IncludeAnalysis: opts.analyze || opts.jsonOutput,
	})
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	w := output.New(cmd.OutOrStdout())
	w.Results(resp)
	if opts.analyze && resp.Analysis != nil {
		w.Newline()
		w.KeyValue("query type", resp.Analysis.Type)
		w.KeyValue("tokens", resp.Analysis.Tokens)
		w.KeyValue("possible codes", resp.Analysis.PossibleCodes)
		w.KeyValue("measurements", resp.Analysis.Measurements)
	}
	return nil
}

// emptyStore stands in when no catalog is available; every result gets
// the placeholder product name.
type emptyStore struct{}

func (emptyStore) GetProduct(context.Context, string) (*catalog.Product, error) { return nil, nil }
func (emptyStore) Count(context.Context) (int, error)                           { return 0, nil }
func (emptyStore) Close() error                                                 { return nil }
