// Copyright Ansvar Systems AB, 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/convert"
	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/fetch"
	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/ingest"
	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the full pipeline: discover, fetch, parse, emit records",
	Long: `Ingest runs the complete pipeline: it discovers the catalog, fetches
each law's source document through the paced resilient fetcher, segments
the text into provisions, extracts defined terms, and writes one JSON
record per law under the output directory, plus manifest.json and
skipped.json.

Laws whose sources all fail still produce a metadata-only record with the
failure trail recorded; only a run that produces no records at all fails.`,
	RunE: runIngest,
}

func init() {
	addFetchFlags(ingestCmd)
	addDiscoveryFlags(ingestCmd)
	ingestCmd.Flags().String("out-dir", defaultOutDir, "output directory for records and reports")
	ingestCmd.Flags().String("targets", "", "curated per-law overrides YAML file")
	ingestCmd.Flags().Int("workers", 0, "document processing pool size (default 2)")
	ingestCmd.Flags().Int("limit", 0, "cap catalog entries processed per subcorpus (0 = no cap)")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out-dir")
	targetsFile, _ := cmd.Flags().GetString("targets")
	workers, _ := cmd.Flags().GetInt("workers")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := types.PipelineConfig{
		Fetch:     fetchConfigFromFlags(cmd),
		Discovery: discoveryConfigFromFlags(cmd),
		Ingest: types.IngestConfig{
			OutDir:      outDir,
			TargetsFile: targetsFile,
			Workers:     workers,
			Limit:       limit,
		},
	}

	client, err := fetch.NewClient(cfg.Fetch, os.Stderr)
	if err != nil {
		return err
	}

	// Legacy DOC sources are skipped when no converter tool is installed.
	converter, err := convert.DetectConverter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; legacy DOC sources will be skipped\n", err)
		converter = nil
	} else {
		fmt.Fprintf(os.Stderr, "using %s for legacy DOC conversion\n", converter.Name())
	}

	pipeline := ingest.NewPipeline(client, converter, cfg, os.Stdout)
	manifest, err := pipeline.Run(context.Background())
	if err != nil {
		return err
	}

	for name, stats := range manifest.Subcorpora {
		fmt.Fprintf(os.Stdout, "%s: %d discovered, %d written, %d skipped, %d fallback\n",
			name, stats.Discovered, stats.Written, stats.Skipped, stats.FallbackUsed)
	}
	return nil
}
