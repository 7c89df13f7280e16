// Copyright Ansvar Systems AB, 2026. All rights reserved.

package types

import "time"

// SubcorpusStats holds per-subcorpus counts for one ingestion run.
type SubcorpusStats struct {
	// Discovered is the number of catalog entries found.
	Discovered int `json:"discovered"`

	// Written is the number of records persisted, including metadata-only.
	Written int `json:"written"`

	// Skipped is the number of entries that produced no record.
	Skipped int `json:"skipped"`

	// FallbackUsed counts records whose content came from a non-primary source.
	FallbackUsed int `json:"fallback_used"`

	TotalProvisions  int `json:"total_provisions"`
	TotalDefinitions int `json:"total_definitions"`
}

// RunManifest aggregates statistics for one orchestrator run. Written once,
// at the end of the run.
type RunManifest struct {
	// GeneratedAt is the UTC completion timestamp.
	GeneratedAt time.Time `json:"generated_at"`

	// Endpoints lists the source endpoints the run crawled.
	Endpoints []string `json:"endpoints"`

	// Options records the run options for reproducibility.
	Options RunOptions `json:"options"`

	// Subcorpora maps subcorpus name to its counts.
	Subcorpora map[string]SubcorpusStats `json:"subcorpora"`
}

// RunOptions are the knobs that shaped a run, echoed into the manifest.
type RunOptions struct {
	WorkerCount  int  `json:"workers"`
	ForceRefresh bool `json:"force_refresh"`
	Limit        int  `json:"limit,omitempty"`
}

// SkipReport lists per-item failure reasons for one run, formatted as
// "itemId: reason" strings.
type SkipReport struct {
	Skipped []string `json:"skipped"`
}
