// Copyright Ansvar Systems AB, 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "qatarlaw/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the resilient fetcher.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MinInterval is the minimum spacing between the start of successive
	// outbound requests, enforced process-wide (default 1s).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`

	// MaxRetries is the retry budget for transient failures (default 4).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// CacheDir is the read-through byte cache directory. Empty disables caching.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// ForceRefresh bypasses cache reads (writes still happen), forcing
	// live fetches on a rerun.
	ForceRefresh bool `json:"force_refresh" yaml:"force_refresh"`

	// RespectRobots enables robots.txt checks before each fetch.
	RespectRobots bool `json:"respect_robots" yaml:"respect_robots"`
}

// DiscoveryConfig holds settings for catalog discovery.
type DiscoveryConfig struct {
	// BaseURL is the portal root, e.g. "https://www.almeezan.qa".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// IndexURL is the single-index listing page, when that mode is used.
	IndexURL string `json:"index_url,omitempty" yaml:"index_url,omitempty"`

	// BrowseURL is the paginated year-partitioned browse endpoint.
	BrowseURL string `json:"browse_url,omitempty" yaml:"browse_url,omitempty"`

	// ProbeYears are candidate years tried in order when discovering the
	// year partition set from the browse sidebar.
	ProbeYears []int `json:"probe_years,omitempty" yaml:"probe_years,omitempty"`

	// Workers is the crawl pool size (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// IngestConfig holds settings for the orchestrator.
type IngestConfig struct {
	// OutDir is the base output directory (contains laws/, manifest.json,
	// skipped.json).
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// TargetsFile is an optional YAML file of curated per-law overrides.
	TargetsFile string `json:"targets_file,omitempty" yaml:"targets_file,omitempty"`

	// Workers is the document processing pool size. Use a small pool for
	// live fetches, a larger one when replaying a warm cache (default 2).
	Workers int `json:"workers" yaml:"workers"`

	// Limit caps the number of catalog entries processed per subcorpus.
	// Zero means no cap.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// StoreConfig holds settings for the downstream sqlite load.
type StoreConfig struct {
	// DBPath is the sqlite database file (default "out/laws.db").
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxResults is the default query result cap (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch     FetchConfig     `json:"fetch" yaml:"fetch"`
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Store     StoreConfig     `json:"store" yaml:"store"`
}
