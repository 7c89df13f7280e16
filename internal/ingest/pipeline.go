// Copyright Ansvar Systems AB, 2026. All rights reserved.

// Package ingest orchestrates the ingestion run: it discovers the law
// catalog per subcorpus, processes entries on a bounded worker pool, and
// persists one JSON record per law plus a run manifest and a skip report.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/convert"
	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/discover"
	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/pool"
	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

// ErrZeroOutput reports that a whole run produced no records. Per-item
// failures degrade to skips or metadata-only records; a zero-record run
// indicates systemic failure and aborts.
var ErrZeroOutput = errors.New("run produced no records")

const defaultIngestWorkers = 2

// Pipeline sequences subcorpus ingestion end to end.
type Pipeline struct {
	fetcher   Fetcher
	converter convert.Converter
	cfg       types.PipelineConfig
	out       io.Writer
}

// NewPipeline assembles a pipeline. converter may be nil when no legacy
// DOC conversion tool is installed; DOC sources are then skipped in the
// fallback chain.
func NewPipeline(fetcher Fetcher, converter convert.Converter, cfg types.PipelineConfig, out io.Writer) *Pipeline {
	if cfg.Ingest.Workers <= 0 {
		cfg.Ingest.Workers = defaultIngestWorkers
	}
	return &Pipeline{fetcher: fetcher, converter: converter, cfg: cfg, out: out}
}

// subcorpus is one discoverable slice of the corpus.
type subcorpus struct {
	name     string
	endpoint string
	discover func(ctx context.Context) ([]types.CatalogEntry, int, error)
}

func (p *Pipeline) subcorpora() []subcorpus {
	var subs []subcorpus

	if p.cfg.Discovery.BrowseURL != "" {
		subs = append(subs, subcorpus{
			name:     "legislations",
			endpoint: p.cfg.Discovery.BrowseURL,
			discover: func(ctx context.Context) ([]types.CatalogEntry, int, error) {
				crawler := discover.NewCrawler(p.fetcher, p.cfg.Discovery, p.out)
				result, err := crawler.Crawl(ctx)
				return result.Entries, result.PagesFailed, err
			},
		})
	}

	if p.cfg.Discovery.IndexURL != "" {
		subs = append(subs, subcorpus{
			name:     "agreements",
			endpoint: p.cfg.Discovery.IndexURL,
			discover: func(ctx context.Context) ([]types.CatalogEntry, int, error) {
				markup, err := p.fetcher.FetchText(ctx, p.cfg.Discovery.IndexURL)
				if err != nil {
					return nil, 0, err
				}
				entries, err := discover.ParseIndex(markup, p.cfg.Discovery.BaseURL)
				return entries, 0, err
			},
		})
	}

	return subs
}

// Run executes the full pipeline and writes records, manifest.json, and
// skipped.json under the configured output directory.
func (p *Pipeline) Run(ctx context.Context) (types.RunManifest, error) {
	lawsDir := filepath.Join(p.cfg.Ingest.OutDir, "laws")
	if err := os.MkdirAll(lawsDir, 0o755); err != nil {
		return types.RunManifest{}, fmt.Errorf("creating output directory: %w", err)
	}

	overrides, err := LoadTargets(p.cfg.Ingest.TargetsFile)
	if err != nil {
		return types.RunManifest{}, err
	}

	manifest := types.RunManifest{
		Options: types.RunOptions{
			WorkerCount:  p.cfg.Ingest.Workers,
			ForceRefresh: p.cfg.Fetch.ForceRefresh,
			Limit:        p.cfg.Ingest.Limit,
		},
		Subcorpora: make(map[string]types.SubcorpusStats),
	}

	var skipped []string
	totalWritten := 0

	for _, sub := range p.subcorpora() {
		manifest.Endpoints = append(manifest.Endpoints, sub.endpoint)

		stats, subSkipped, err := p.runSubcorpus(ctx, sub, overrides, lawsDir)
		if err != nil {
			return manifest, fmt.Errorf("subcorpus %s: %w", sub.name, err)
		}

		manifest.Subcorpora[sub.name] = stats
		skipped = append(skipped, subSkipped...)
		totalWritten += stats.Written
	}

	if totalWritten == 0 {
		return manifest, ErrZeroOutput
	}

	manifest.GeneratedAt = time.Now().UTC()
	if err := writeJSON(filepath.Join(p.cfg.Ingest.OutDir, "manifest.json"), manifest); err != nil {
		return manifest, err
	}
	report := types.SkipReport{Skipped: skipped}
	if report.Skipped == nil {
		report.Skipped = []string{}
	}
	if err := writeJSON(filepath.Join(p.cfg.Ingest.OutDir, "skipped.json"), report); err != nil {
		return manifest, err
	}

	fmt.Fprintf(p.out, "\nwritten: %d, skipped: %d\n", totalWritten, len(skipped))
	return manifest, nil
}

func (p *Pipeline) runSubcorpus(ctx context.Context, sub subcorpus, overrides map[string]types.TargetConfig, lawsDir string) (types.SubcorpusStats, []string, error) {
	fmt.Fprintf(p.out, "discovering %s from %s\n", sub.name, sub.endpoint)

	entries, pagesFailed, err := sub.discover(ctx)
	if err != nil {
		return types.SubcorpusStats{}, nil, fmt.Errorf("discovery failed: %w", err)
	}
	if pagesFailed > 0 {
		fmt.Fprintf(p.out, "warning: %d listing pages failed during %s discovery\n", pagesFailed, sub.name)
	}

	if limit := p.cfg.Ingest.Limit; limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	stats := types.SubcorpusStats{Discovered: len(entries)}
	targets := SynthesizeTargets(entries, overrides)
	b := &builder{fetcher: p.fetcher, converter: p.converter}

	// Outcomes are indexed by catalog position so the write order below
	// is deterministic regardless of worker completion order.
	outcomes := make([]*buildOutcome, len(entries))
	pool.Run(p.cfg.Ingest.Workers, len(entries), func(i int) {
		entry := entries[i]
		outcome := b.build(ctx, entry, targets[entry.LawID])
		outcomes[i] = &outcome
	})

	var skipped []string
	for i, outcome := range outcomes {
		entry := entries[i]
		record := outcome.record

		if err := writeJSON(filepath.Join(lawsDir, record.ID+".json"), record); err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", entry.LawID, err))
			stats.Skipped++
			fmt.Fprintf(p.out, "skipped %s: %v\n", entry.LawID, err)
			continue
		}

		stats.Written++
		stats.TotalProvisions += len(record.Provisions)
		stats.TotalDefinitions += len(record.Definitions)
		if outcome.fallback {
			stats.FallbackUsed++
		}

		if record.IsMetadataOnly() {
			fmt.Fprintf(p.out, "wrote   %s (metadata only)\n", record.ID)
		} else {
			fmt.Fprintf(p.out, "wrote   %s (%d provisions, %d definitions)\n",
				record.ID, len(record.Provisions), len(record.Definitions))
		}
	}

	return stats, skipped, nil
}

// writeJSON marshals v with stable indentation and writes it atomically
// via a temp file and rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
