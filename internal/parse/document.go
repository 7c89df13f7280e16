// Copyright Ansvar Systems AB, 2026. All rights reserved.

// Package parse converts fetched document bytes (DOCX office XML, legacy
// DOC conversions, or raw portal markup) into a normalized line sequence
// and segments it into article-level provisions with a heading-detection
// state machine. A secondary pass extracts defined terms.
package parse

import (
	"errors"
	"strings"

	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

// ErrEmptyExtraction reports that no provisions could be recovered after
// all fallback passes. Callers downgrade the document to a metadata-only
// record; the error is never fatal to a run.
var ErrEmptyExtraction = errors.New("no provisions extracted")

// Result is the parse outcome for one document.
type Result struct {
	Provisions  []types.Provision
	Definitions []types.Definition

	// Synthetic marks content recovered as a single unsegmented provision
	// because heading detection found no article boundaries.
	Synthetic bool
}

// minSyntheticLen is the least combined content length for which an
// unsegmented document is worth keeping as a synthetic provision.
const minSyntheticLen = 200

// boilerplate markers identify portal chrome lines excluded from the
// synthetic whole-document provision. Matching is case-insensitive
// substring on the trimmed line.
var boilerplate = []string{
	"al-meezan",
	"الميزان",
	"qatar legal portal",
	"البوابة القانونية القطرية",
	"rights reserved",
	"جميع الحقوق محفوظة",
	"add to favorites",
	"أضف إلى المفضلة",
	"طباعة",
	"print this",
	"skip to content",
}

// Document segments lines into provisions, retrying on the wider
// extraction when the narrow one yields nothing, and falling back to a
// single synthetic provision when heading detection fails on both. A nil
// wider slice means no second extraction is available for this source.
func Document(lines, wider []string) Result {
	provisions := ExtractProvisions(lines)
	if len(provisions) == 0 && wider != nil {
		provisions = ExtractProvisions(wider)
		lines = wider
	}

	if len(provisions) == 0 {
		if p, ok := syntheticProvision(lines); ok {
			return Result{
				Provisions:  []types.Provision{p},
				Definitions: ExtractDefinitions([]types.Provision{p}),
				Synthetic:   true,
			}
		}
		return Result{}
	}

	return Result{
		Provisions:  provisions,
		Definitions: ExtractDefinitions(provisions),
	}
}

// syntheticProvision assembles all non-boilerplate lines into one
// provision, provided the combined content clears the minimum length.
func syntheticProvision(lines []string) (types.Provision, bool) {
	var kept []string
	for _, line := range lines {
		if !isBoilerplate(line) {
			kept = append(kept, line)
		}
	}

	content := strings.TrimSpace(strings.Join(kept, "\n"))
	if len(content) < minSyntheticLen {
		return types.Provision{}, false
	}

	return types.Provision{
		Ref:          "full-text",
		SectionLabel: "",
		Title:        "Full text (unsegmented)",
		Content:      content,
	}, true
}

func isBoilerplate(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	if lower == "" {
		return true
	}
	for _, marker := range boilerplate {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
