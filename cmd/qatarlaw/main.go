// Copyright Ansvar Systems AB, 2026. All rights reserved.

// Package main is the entry point for the qatarlaw CLI, the ingestion
// pipeline for the Al-Meezan legal portal: catalog discovery, document
// fetching and parsing, record emission, and the sqlite load consumed by
// the downstream search service.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultBaseURL   = "https://www.almeezan.qa"
	defaultBrowseURL = "https://www.almeezan.qa/LawsByYear.aspx?language=ar"
	defaultIndexURL  = "https://www.almeezan.qa/AgreementsIndex.aspx?language=en"

	defaultTimeout     = 60 * time.Second
	defaultMinInterval = 1 * time.Second
	defaultUserAgent   = "qatarlaw/0.1"
	defaultCacheDir    = "cache"
	defaultOutDir      = "out"
)

// rootCmd is the base command for the qatarlaw CLI.
var rootCmd = &cobra.Command{
	Use:   "qatarlaw",
	Short: "Ingest the Qatari legislative corpus into article-level records",
	Long: `qatarlaw crawls the Al-Meezan legal portal, fetches each law's source
document (DOCX, legacy DOC, or the portal page itself), segments the text
into article-level provisions, and emits one JSON record per law plus a
run manifest.

Each pipeline stage is a subcommand: discover lists the catalog, ingest
runs the full pipeline, and load builds the sqlite database the search
service reads.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./qatarlaw.yaml or ~/.config/qatarlaw/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("qatarlaw")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "qatarlaw"))
		}
	}

	viper.SetEnvPrefix("QATARLAW")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// fetchConfigFromFlags assembles the fetcher configuration shared by the
// discover and ingest commands.
func fetchConfigFromFlags(cmd *cobra.Command) types.FetchConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	interval, _ := cmd.Flags().GetDuration("min-interval")
	if interval == 0 {
		interval = defaultMinInterval
	}
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	forceRefresh, _ := cmd.Flags().GetBool("force-refresh")
	respectRobots, _ := cmd.Flags().GetBool("respect-robots")

	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		MinInterval:   interval,
		CacheDir:      cacheDir,
		ForceRefresh:  forceRefresh,
		RespectRobots: respectRobots,
	}
}

func discoveryConfigFromFlags(cmd *cobra.Command) types.DiscoveryConfig {
	baseURL, _ := cmd.Flags().GetString("base-url")
	browseURL, _ := cmd.Flags().GetString("browse-url")
	indexURL, _ := cmd.Flags().GetString("index-url")
	workers, _ := cmd.Flags().GetInt("crawl-workers")

	return types.DiscoveryConfig{
		BaseURL:   baseURL,
		BrowseURL: browseURL,
		IndexURL:  indexURL,
		Workers:   workers,
	}
}

// addFetchFlags registers the fetcher flags on commands that hit the network.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	cmd.Flags().Duration("min-interval", 0, "minimum spacing between outbound requests (default 1s)")
	cmd.Flags().String("cache-dir", defaultCacheDir, "read-through byte cache directory (empty disables caching)")
	cmd.Flags().Bool("force-refresh", false, "bypass cache reads and fetch live")
	cmd.Flags().Bool("respect-robots", true, "honor the portal's robots.txt")
}

func addDiscoveryFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", defaultBaseURL, "portal base URL")
	cmd.Flags().String("browse-url", defaultBrowseURL, "paginated year-partitioned browse endpoint (empty disables)")
	cmd.Flags().String("index-url", defaultIndexURL, "single-index listing endpoint (empty disables)")
	cmd.Flags().Int("crawl-workers", 4, "catalog crawl worker pool size")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
