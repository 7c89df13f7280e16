// Copyright Ansvar Systems AB, 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/discover"
	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/fetch"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Crawl the portal catalog and print discovered laws",
	Long: `Discover walks the portal's year-partitioned browse index (and the
single-index listing when configured), deduplicates entries found across
listing pages, and prints the catalog as JSON. Use it to inspect what a
full ingest run would process.`,
	RunE: runDiscover,
}

func init() {
	addFetchFlags(discoverCmd)
	addDiscoveryFlags(discoverCmd)

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	discoveryCfg := discoveryConfigFromFlags(cmd)
	if discoveryCfg.BrowseURL == "" {
		return fmt.Errorf("discover requires a browse endpoint; set --browse-url")
	}

	client, err := fetch.NewClient(fetchConfigFromFlags(cmd), os.Stderr)
	if err != nil {
		return err
	}

	crawler := discover.NewCrawler(client, discoveryCfg, os.Stderr)
	result, err := crawler.Crawl(context.Background())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Entries); err != nil {
		return err
	}

	if result.PagesFailed > 0 {
		return fmt.Errorf("%d listing page(s) failed during the crawl", result.PagesFailed)
	}
	return nil
}
