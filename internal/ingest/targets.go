// Copyright Ansvar Systems AB, 2026. All rights reserved.

package ingest

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/parse"
	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

// LoadTargets reads curated per-law overrides from a YAML file keyed by
// portal law id. A missing file is not an error; synthesis covers all
// entries without an override.
func LoadTargets(path string) (map[string]types.TargetConfig, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading targets file: %w", err)
	}

	targets := make(map[string]types.TargetConfig)
	if err := yaml.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("parsing targets file %s: %w", path, err)
	}
	return targets, nil
}

// SynthesizeTargets produces one TargetConfig per catalog entry: the
// curated override when present, otherwise a slug of the source file stem
// or title. Collisions get a numeric suffix so stable ids stay unique.
// Entries are processed in catalog order, so reruns over the same catalog
// assign identical ids.
func SynthesizeTargets(entries []types.CatalogEntry, overrides map[string]types.TargetConfig) map[string]types.TargetConfig {
	targets := make(map[string]types.TargetConfig, len(entries))
	taken := make(map[string]bool, len(entries))

	for _, entry := range entries {
		if override, ok := overrides[entry.LawID]; ok {
			targets[entry.LawID] = override
			taken[override.StableID] = true
			continue
		}

		slug := parse.Slugify(sourceStem(entry))
		if slug == "" {
			slug = parse.Slugify(entry.Title)
		}
		if slug == "" {
			slug = "law-" + entry.LawID
		}

		stableID := slug
		for suffix := 2; taken[stableID]; suffix++ {
			stableID = fmt.Sprintf("%s-%d", slug, suffix)
		}
		taken[stableID] = true

		targets[entry.LawID] = types.TargetConfig{
			StableID:    stableID,
			DisplayName: displayName(entry),
		}
	}
	return targets
}

// sourceStem returns the file stem of the entry's preferred document
// locator, or empty when the entry has no document locator.
func sourceStem(entry types.CatalogEntry) string {
	locator := entry.DocxURL
	if locator == "" {
		locator = entry.DocURL
	}
	if locator == "" {
		return ""
	}

	u, err := url.Parse(locator)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

func displayName(entry types.CatalogEntry) string {
	if entry.TitleEnglish != "" {
		return entry.TitleEnglish
	}
	return entry.Title
}
