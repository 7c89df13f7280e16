// Copyright Ansvar Systems AB, 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/store"
	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load emitted records into the sqlite search database",
	Long: `Load reads the record JSON files produced by ingest and builds the
sqlite database the search service reads: one row per law, provisions in
a full-text index, and a build timestamp for freshness checks. Reloading
replaces each law's rows, so the command is safe to rerun.`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().String("out-dir", defaultOutDir, "ingest output directory containing laws/")
	loadCmd.Flags().String("db", "", "sqlite database path (default <out-dir>/laws.db)")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out-dir")
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = filepath.Join(outDir, "laws.db")
	}

	s, err := store.Open(types.StoreConfig{DBPath: dbPath})
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Load(context.Background(), filepath.Join(outDir, "laws"), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed loading", summary.Failed)
	}
	return nil
}
