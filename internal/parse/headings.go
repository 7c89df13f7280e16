// Copyright Ansvar Systems AB, 2026. All rights reserved.

package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

// articlePattern matches an explicit single-line heading after digit and
// punctuation normalization: a label keyword, a number, an optional repeat
// marker, and optional trailing inline text.
var articlePattern = regexp.MustCompile(
	`(?i)^(?:article|المادة|مادة)\s+(\d+)(?:\s+(bis|مكرر))?\s*(.*)$`,
)

// numberOnlyPattern matches the second line of a two-line heading.
var numberOnlyPattern = regexp.MustCompile(`^(\d+)(?:\s+(bis|مكرر))?$`)

// maxOrdinalLineLen bounds a bare ordinal heading line. Longer lines are
// prose that happens to open with an ordinal word.
const maxOrdinalLineLen = 90

// ordinalSeparators may follow a bare ordinal word before inline text.
// The ASCII hyphen is deliberately absent: it is part of hyphenated
// English ordinals ("Twenty-first").
const ordinalSeparators = ":：–—."

// heading is the result of matching one or two lines against the matchers.
type heading struct {
	label  string // normalized section label, e.g. "5" or "5-bis"
	inline string // trailing inline text on the heading line
	skip   int    // extra lines consumed (1 for two-line headings)
}

// matchHeading tries the matchers in priority order (explicit single-line,
// two-line, bare ordinal) against line, and next for the two-line form.
// A bare numbered list item can still slip through as an article heading in
// documents with non-standard structure; the line-shape guards are the only
// defense, so segmentation stays best-effort there.
func matchHeading(line, next string) (heading, bool) {
	norm := normalizePunct(normalizeDigits(strings.TrimSpace(line)))
	if norm == "" {
		return heading{}, false
	}

	if m := articlePattern.FindStringSubmatch(norm); m != nil {
		label := m[1]
		if m[2] != "" {
			label += "-" + strings.ToLower(m[2])
		}
		return heading{label: label, inline: strings.TrimSpace(m[3])}, true
	}

	if isLabelKeyword(norm) {
		nextNorm := normalizePunct(normalizeDigits(strings.TrimSpace(next)))
		if m := numberOnlyPattern.FindStringSubmatch(nextNorm); m != nil {
			label := m[1]
			if m[2] != "" {
				label += "-" + strings.ToLower(m[2])
			}
			return heading{label: label, skip: 1}, true
		}
	}

	if h, ok := matchOrdinalLine(strings.TrimSpace(line)); ok {
		return h, true
	}

	return heading{}, false
}

// matchOrdinalLine accepts only the full bare-ordinal line shape: an
// ordinal word (one or two words, for Arabic teens like "الحادي عشر")
// that is either the whole line or followed by a separator and short
// inline text. Prose that merely opens with an ordinal ("First, the
// committee shall...") has no separator boundary and is rejected.
func matchOrdinalLine(line string) (heading, bool) {
	if line == "" || len(line) > maxOrdinalLineLen {
		return heading{}, false
	}

	// Whole-line ordinal first, so hyphenated English ordinals are not
	// split at their own hyphen.
	if whole := strings.Join(strings.Fields(line), " "); strings.Count(whole, " ") <= 1 {
		if n := ordinalValue(whole); n > 0 {
			return heading{label: strconv.Itoa(n)}, true
		}
	}

	word := line
	inline := ""
	if idx := strings.IndexAny(line, ordinalSeparators); idx >= 0 {
		word = strings.TrimSpace(line[:idx])
		inline = strings.TrimSpace(strings.TrimLeft(line[idx:], ordinalSeparators+" "))
	}

	word = strings.Join(strings.Fields(word), " ")
	if word == "" || strings.Count(word, " ") > 1 {
		return heading{}, false
	}

	if n := ordinalValue(word); n > 0 {
		return heading{label: strconv.Itoa(n), inline: inline}, true
	}
	return heading{}, false
}

// isLabelKeyword reports whether a normalized line is the article keyword
// alone, the first half of a two-line heading.
func isLabelKeyword(norm string) bool {
	switch strings.ToLower(norm) {
	case "article", "المادة", "مادة":
		return true
	}
	return false
}

// ExtractProvisions runs the heading-detection state machine over a
// normalized line sequence. Lines before the first heading are front matter
// and are discarded; everything between two headings becomes the earlier
// provision's content; end of input flushes the open provision. Provisions
// are deduplicated by ref, keeping the longer content on collision.
func ExtractProvisions(lines []string) []types.Provision {
	var (
		provisions []types.Provision
		current    *types.Provision
		buffer     []string
	)

	flush := func() {
		if current == nil {
			return
		}
		content := strings.TrimSpace(strings.Join(buffer, "\n"))
		if content != "" {
			current.Content = content
			provisions = append(provisions, *current)
		}
		current = nil
		buffer = nil
	}

	for i := 0; i < len(lines); i++ {
		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}

		if h, ok := matchHeading(lines[i], next); ok {
			flush()
			p := types.Provision{
				Ref:          Slugify(h.label),
				SectionLabel: h.label,
			}
			if h.inline != "" {
				buffer = append(buffer, h.inline)
				if len(h.inline) <= 100 {
					p.Title = h.inline
				}
			}
			current = &p
			i += h.skip
			continue
		}

		if current != nil {
			if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
				buffer = append(buffer, trimmed)
			}
		}
	}
	flush()

	return dedupeByRef(provisions)
}

// dedupeByRef keeps provisions unique by ref in first-seen order; on
// collision the provision with the longer content wins.
func dedupeByRef(provisions []types.Provision) []types.Provision {
	byRef := make(map[string]int, len(provisions))
	var ordered []types.Provision
	for _, p := range provisions {
		if idx, seen := byRef[p.Ref]; seen {
			if len(p.Content) > len(ordered[idx].Content) {
				ordered[idx] = p
			}
			continue
		}
		byRef[p.Ref] = len(ordered)
		ordered = append(ordered, p)
	}
	return ordered
}
