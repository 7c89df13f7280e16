// Copyright Ansvar Systems AB, 2026. All rights reserved.

package parse

import "strings"

// normalizeDigits maps Arabic-Indic (U+0660-0669) and Extended Arabic-Indic
// (U+06F0-06F9) digits to their ASCII equivalents, leaving everything else
// untouched.
func normalizeDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0x0660 && r <= 0x0669:
			b.WriteRune('0' + (r - 0x0660))
		case r >= 0x06F0 && r <= 0x06F9:
			b.WriteRune('0' + (r - 0x06F0))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizePunct strips the punctuation that decorates heading lines:
// parentheses, colons, dashes, and the Arabic comma and semicolon. The
// result keeps single spaces between tokens.
func normalizePunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '(', ')', '（', '）', ':', '：', '،', '؛', '-', '–', '—', '.':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// normalizeArabic folds hamza-carrying alef forms to bare alef and drops
// diacritics (tanween, shadda, sukun), so that "أولاً" and "اولا" compare
// equal when matching ordinal keywords.
func normalizeArabic(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == 'أ' || r == 'إ' || r == 'آ' || r == 'ٱ':
			b.WriteRune('ا')
		case r == 'ة':
			b.WriteRune('ه')
		case r == 'ى':
			b.WriteRune('ي')
		case r >= 0x064B && r <= 0x065F: // harakat and tanween
		case r == 0x0670: // superscript alef
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hasArabic reports whether s contains any character from the Arabic
// script blocks (base block plus presentation forms).
func hasArabic(s string) bool {
	for _, r := range s {
		if isArabicRune(r) {
			return true
		}
	}
	return false
}

func isArabicRune(r rune) bool {
	return (r >= 0x0600 && r <= 0x06FF) ||
		(r >= 0x0750 && r <= 0x077F) ||
		(r >= 0xFB50 && r <= 0xFDFF) ||
		(r >= 0xFE70 && r <= 0xFEFF)
}

// Slugify reduces a section label or file stem to a lowercase hyphenated
// slug: runs of non-alphanumeric characters become single hyphens. Arabic
// letters are preserved, so Arabic labels remain usable as refs.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(normalizeDigits(s)))
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true
	for _, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || isArabicRune(r)
		if alnum {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
