// Copyright Ansvar Systems AB, 2026. All rights reserved.

// Package discover builds the deduplicated catalog of laws to ingest,
// either from a single tabular index page or by crawling the portal's
// paginated, year-partitioned browse listing.
package discover

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

// Fetcher is the slice of the fetch client discovery needs.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// lawIDPattern extracts the numeric law identifier from an entry link.
var lawIDPattern = regexp.MustCompile(`LawPage\.aspx\?(?:.*&)?id=(\d+)`)

// ParseIndex parses a single listing page's table into catalog entries.
// Each row links the law page and, in subsequent cells, its document
// formats; bilingual titles are split by script detection and relative
// locators resolved against baseURL.
func ParseIndex(markup, baseURL string) ([]types.CatalogEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing index page: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %s: %w", baseURL, err)
	}

	byID := make(map[string]types.CatalogEntry)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find(`a[href*="LawPage.aspx"]`).First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		m := lawIDPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}

		entry := types.CatalogEntry{
			LawID:   m[1],
			Title:   strings.TrimSpace(link.Text()),
			HTMLURL: resolveURL(base, href),
		}
		entry.TitleEnglish, entry.TitleArabic = SplitBilingualTitle(entry.Title)

		row.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			h, _ := a.Attr("href")
			switch {
			case strings.HasSuffix(strings.ToLower(h), ".docx"):
				entry.DocxURL = resolveURL(base, h)
			case strings.HasSuffix(strings.ToLower(h), ".doc"):
				entry.DocURL = resolveURL(base, h)
			}
		})

		mergeInto(byID, entry)
	})

	return sortedEntries(byID), nil
}

// SplitBilingualTitle divides a mixed-script listing title at the first
// Arabic rune. Either half may be empty for single-language titles.
func SplitBilingualTitle(title string) (english, arabic string) {
	for i, r := range title {
		if isArabicRune(r) {
			return strings.TrimSpace(strings.Trim(title[:i], " -|/")), strings.TrimSpace(title[i:])
		}
	}
	return strings.TrimSpace(title), ""
}

func isArabicRune(r rune) bool {
	return (r >= 0x0600 && r <= 0x06FF) ||
		(r >= 0x0750 && r <= 0x077F) ||
		(r >= 0xFB50 && r <= 0xFDFF) ||
		(r >= 0xFE70 && r <= 0xFEFF)
}

// mergeInto applies the catalog dedup rule: same LawID entries merge,
// keeping the longer title and the earliest discovered year.
func mergeInto(byID map[string]types.CatalogEntry, entry types.CatalogEntry) {
	if existing, ok := byID[entry.LawID]; ok {
		byID[entry.LawID] = existing.Merge(entry)
		return
	}
	byID[entry.LawID] = entry
}

// sortedEntries flattens the dedup map sorted by ascending numeric LawID,
// keeping downstream ordering deterministic regardless of arrival order.
func sortedEntries(byID map[string]types.CatalogEntry) []types.CatalogEntry {
	entries := make([]types.CatalogEntry, 0, len(byID))
	for _, e := range byID {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, aErr := strconv.Atoi(entries[i].LawID)
		b, bErr := strconv.Atoi(entries[j].LawID)
		if aErr == nil && bErr == nil {
			return a < b
		}
		if (aErr == nil) != (bErr == nil) {
			return aErr == nil
		}
		return entries[i].LawID < entries[j].LawID
	})
	return entries
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
