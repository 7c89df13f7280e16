// Copyright Ansvar Systems AB, 2026. All rights reserved.

package parse

import (
	"regexp"
	"strings"

	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

// maxDefinitionsPerDocument caps the extraction pass; interpretation
// sections in this corpus rarely define more than a few dozen terms, and
// anything past the cap is noise from a misidentified section.
const maxDefinitionsPerDocument = 50

// definitionMarkers flag a provision as a plausible interpretation
// section when found in its title or content (lowercased).
var definitionMarkers = []string{
	"definition",
	"interpretation",
	"تعريف",
	"تعاريف",
	"تعريفات",
}

// definitionPattern matches `"term" means explanation`: a quoted term of
// 2-80 characters, a definitional verb (English or Arabic), and an
// explanation bounded at sentence punctuation. The terminating period
// stays part of the explanation.
var definitionPattern = regexp.MustCompile(
	`["'“”«]([^"'“”»\n]{2,80})["'“”»]\s*[:：]?\s*` +
		`(?:means|shall mean|يقصد بها|يقصد به|تعني|يعني)\s*[:：]?\s*` +
		`([^.;؛\n]{10,}[.;؛]?)`,
)

// ExtractDefinitions scans plausible interpretation provisions for defined
// terms. Terms are deduplicated case-insensitively; the first occurrence
// wins. The result is capped at maxDefinitionsPerDocument.
func ExtractDefinitions(provisions []types.Provision) []types.Definition {
	var defs []types.Definition
	seen := make(map[string]bool)

	for _, p := range provisions {
		if !isDefinitionSection(p) {
			continue
		}

		for _, m := range definitionPattern.FindAllStringSubmatch(p.Content, -1) {
			term := strings.TrimSpace(m[1])
			explanation := strings.TrimSpace(m[2])
			if term == "" || len(explanation) < 10 {
				continue
			}

			key := strings.ToLower(term)
			if seen[key] {
				continue
			}
			seen[key] = true

			defs = append(defs, types.Definition{
				Term:               term,
				Definition:         explanation,
				SourceProvisionRef: p.Ref,
			})
			if len(defs) >= maxDefinitionsPerDocument {
				return defs
			}
		}
	}

	return defs
}

// isDefinitionSection reports whether a provision plausibly holds defined
// terms: section "1" by legislative convention, or an explicit marker word.
func isDefinitionSection(p types.Provision) bool {
	if p.SectionLabel == "1" {
		return true
	}
	title := strings.ToLower(p.Title)
	content := strings.ToLower(p.Content)
	for _, marker := range definitionMarkers {
		if strings.Contains(title, marker) || strings.Contains(content, marker) {
			return true
		}
	}
	return false
}
