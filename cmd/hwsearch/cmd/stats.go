package cmd

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hwcatalog/hwsearch/internal/fragment"
	"github.com/hwcatalog/hwsearch/internal/output"
	"github.com/hwcatalog/hwsearch/internal/telemetry"
)

func newStatsCmd() *cobra.Command {
	var indexDir string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index and query statistics",
		Long: `Without a subcommand, summarize the optimized index: per-fragment
product counts and per-kind key and value table sizes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if indexDir == "" {
				indexDir = cfg.Optimize.OutputDir
			}
			return runStatsIndex(cmd, indexDir, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&indexDir, "index-dir", "", "Directory with master_index.json and shards (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newStatsQueriesCmd())
	return cmd
}

// FragmentStats summarizes one shard for the stats output.
type FragmentStats struct {
	Name     string         `json:"name"`
	File     string         `json:"file"`
	Products int            `json:"products"`
	Keys     map[string]int `json:"keys"`
	Values   map[string]int `json:"values"`
}

// IndexStats is the JSON output of 'stats index'.
type IndexStats struct {
	Version       string          `json:"version"`
	TotalProducts int             `json:"total_products"`
	LastUpdated   string          `json:"last_updated"`
	Fragments     []FragmentStats `json:"fragments"`
}

func runStatsIndex(cmd *cobra.Command, dir string, jsonOutput bool) error {
	manifest, err := fragment.LoadManifest(filepath.Join(dir, fragment.MasterFileName))
	if err != nil {
		return err
	}

	stats := IndexStats{
		Version:       manifest.Version,
		TotalProducts: manifest.Metadata.TotalProducts,
		LastUpdated:   manifest.Metadata.LastUpdated,
	}
	for _, info := range manifest.Fragments {
		shard, err := fragment.LoadShard(filepath.Join(dir, info.File))
		if err != nil {
			return err
		}
		fs := FragmentStats{
			Name:     info.Name,
			File:     info.File,
			Products: len(shard.CodeMap),
			Keys:     make(map[string]int, len(shard.Maps)),
			Values:   make(map[string]int, len(shard.Maps)),
		}
		for kind, table := range shard.Maps {
			fs.Keys[kind] = len(table.Keys)
			fs.Values[kind] = len(table.Values)
		}
		stats.Fragments = append(stats.Fragments, fs)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	w := output.New(cmd.OutOrStdout())
	w.Statusf("📊", "index %s, %d products, updated %s",
		stats.Version, stats.TotalProducts, stats.LastUpdated)
	for _, fs := range stats.Fragments {
		w.Newline()
		w.Statusf("", "%s (%s): %d products", fs.Name, fs.File, fs.Products)
		for kind, keys := range fs.Keys {
			w.KeyValue(kind, keys)
		}
	}
	return nil
}

// QueryStats is the JSON output of 'stats queries'.
type QueryStats struct {
	QueryTypeCounts     map[string]int64 `json:"query_type_counts"`
	LatencyDistribution map[string]int64 `json:"latency_distribution"`
	ZeroResultQueries   []string         `json:"zero_result_queries"`
}

func newStatsQueriesCmd() *cobra.Command {
	var dbPath string
	var days int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Show query telemetry",
		Long: `Display aggregated query telemetry from the local telemetry
database: query type distribution, latency buckets, and recent queries
that returned no results.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatsQueries(cmd, dbPath, days, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "telemetry.db", "Telemetry database file")
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to include")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStatsQueries(cmd *cobra.Command, dbPath string, days int, jsonOutput bool) error {
	store, err := telemetry.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	to := time.Now().Format("2006-01-02")
	from := time.Now().AddDate(0, 0, -days).Format("2006-01-02")

	types, err := store.GetQueryTypeCounts(from, to)
	if err != nil {
		return err
	}
	latency, err := store.GetLatencyCounts(from, to)
	if err != nil {
		return err
	}
	zero, err := store.GetZeroResultQueries(20)
	if err != nil {
		return err
	}

	stats := QueryStats{
		QueryTypeCounts:     types,
		LatencyDistribution: make(map[string]int64, len(latency)),
		ZeroResultQueries:   zero,
	}
	for bucket, count := range latency {
		stats.LatencyDistribution[string(bucket)] = count
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	w := output.New(cmd.OutOrStdout())
	w.Statusf("📊", "query telemetry, last %d day(s)", days)
	w.Newline()
	w.Status("", "by query type:")
	for qt, count := range stats.QueryTypeCounts {
		w.KeyValue(qt, count)
	}
	w.Newline()
	w.Status("", "latency distribution:")
	for bucket, count := range stats.LatencyDistribution {
		w.KeyValue(bucket, count)
	}
	if len(stats.ZeroResultQueries) > 0 {
		w.Newline()
		w.Status("", "zero-result queries:")
		for _, q := range stats.ZeroResultQueries {
			w.Status("", "  "+q)
		}
	}
	return nil
}
