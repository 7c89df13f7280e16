// Copyright Ansvar Systems AB, 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/pool"
	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

const defaultCrawlWorkers = 4

// defaultProbeYears are tried in order when discovering the year partition
// set; recent years almost always carry a populated sidebar.
var defaultProbeYears = []int{2024, 2020, 2015, 2010}

// Crawler walks the paginated, year-partitioned browse listing.
type Crawler struct {
	fetcher Fetcher
	cfg     types.DiscoveryConfig
	out     io.Writer
}

// NewCrawler builds a crawler over the given fetcher, writing progress to out.
func NewCrawler(f Fetcher, cfg types.DiscoveryConfig, out io.Writer) *Crawler {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultCrawlWorkers
	}
	if len(cfg.ProbeYears) == 0 {
		cfg.ProbeYears = defaultProbeYears
	}
	return &Crawler{fetcher: f, cfg: cfg, out: out}
}

// CrawlResult is the outcome of one catalog crawl.
type CrawlResult struct {
	Entries []types.CatalogEntry

	// PagesFailed counts listing pages that could not be fetched or
	// parsed. Failures are logged and skipped; they never abort the crawl.
	PagesFailed int
}

// Crawl discovers the year partitions, walks every page of every year on a
// bounded worker pool, and returns deduplicated entries sorted by ascending
// numeric law id.
func (c *Crawler) Crawl(ctx context.Context) (CrawlResult, error) {
	years, err := c.discoverYears(ctx)
	if err != nil {
		return CrawlResult{}, err
	}
	fmt.Fprintf(c.out, "discovered %d year partitions\n", len(years))

	var result CrawlResult
	var mu sync.Mutex
	byID := make(map[string]types.CatalogEntry)

	// First pass: page 1 of each year, which also reveals the page count.
	type yearProbe struct {
		entries []types.CatalogEntry
		maxPage int
		failed  bool
	}
	probes := make([]yearProbe, len(years))
	pool.Run(c.cfg.Workers, len(years), func(i int) {
		year := years[i]
		markup, err := c.fetcher.FetchText(ctx, c.pageURL(year, 1))
		if err != nil {
			fmt.Fprintf(c.out, "warning: year %d page 1 failed: %v\n", year, err)
			probes[i].failed = true
			return
		}
		probes[i].entries, probes[i].maxPage = c.parseBrowsePage(markup, year)
	})

	type pageJob struct{ year, page int }
	var jobs []pageJob
	for i, p := range probes {
		if p.failed {
			result.PagesFailed++
			continue
		}
		for _, e := range p.entries {
			mergeInto(byID, e)
		}
		for page := 2; page <= p.maxPage; page++ {
			jobs = append(jobs, pageJob{year: years[i], page: page})
		}
	}

	// Second pass: all remaining pages across all years.
	pool.Run(c.cfg.Workers, len(jobs), func(i int) {
		job := jobs[i]
		markup, err := c.fetcher.FetchText(ctx, c.pageURL(job.year, job.page))
		if err != nil {
			fmt.Fprintf(c.out, "warning: year %d page %d failed: %v\n", job.year, job.page, err)
			mu.Lock()
			result.PagesFailed++
			mu.Unlock()
			return
		}
		entries, _ := c.parseBrowsePage(markup, job.year)
		mu.Lock()
		for _, e := range entries {
			mergeInto(byID, e)
		}
		mu.Unlock()
	})

	result.Entries = sortedEntries(byID)
	fmt.Fprintf(c.out, "catalog: %d laws across %d years (%d pages failed)\n",
		len(result.Entries), len(years), result.PagesFailed)
	return result, nil
}

// discoverYears probes candidate years until one serves a non-empty year
// sidebar, then returns the full partition set in ascending order.
func (c *Crawler) discoverYears(ctx context.Context) ([]int, error) {
	for _, probe := range c.cfg.ProbeYears {
		markup, err := c.fetcher.FetchText(ctx, c.pageURL(probe, 1))
		if err != nil {
			fmt.Fprintf(c.out, "warning: probe year %d failed: %v\n", probe, err)
			continue
		}
		if years := parseYearSidebar(markup); len(years) > 0 {
			return years, nil
		}
	}
	return nil, fmt.Errorf("no year partitions found after probing %v", c.cfg.ProbeYears)
}

// pageURL renders the browse endpoint for a year partition and page number.
func (c *Crawler) pageURL(year, page int) string {
	u, err := url.Parse(c.cfg.BrowseURL)
	if err != nil {
		return c.cfg.BrowseURL
	}
	q := u.Query()
	q.Set("year", strconv.Itoa(year))
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// parseBrowsePage extracts this page's law entries and the maximum page
// number visible in the pagination links. Entry anchors follow the portal's
// anchor-id convention (id containing "lnkLaw"); anything else is chrome.
func (c *Crawler) parseBrowsePage(markup string, year int) ([]types.CatalogEntry, int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, 0
	}

	base, _ := url.Parse(c.cfg.BaseURL)

	var entries []types.CatalogEntry
	doc.Find(`a[id*="lnkLaw"]`).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		m := lawIDPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		entry := types.CatalogEntry{
			LawID: m[1],
			Title: strings.TrimSpace(a.Text()),
			Year:  year,
		}
		if base != nil {
			entry.HTMLURL = resolveURL(base, href)
		} else {
			entry.HTMLURL = href
		}
		entry.TitleEnglish, entry.TitleArabic = SplitBilingualTitle(entry.Title)
		entries = append(entries, entry)
	})

	return entries, maxPageNumber(doc)
}

// maxPageNumber scans pagination links for the largest page parameter.
func maxPageNumber(doc *goquery.Document) int {
	maxPage := 1
	doc.Find(`a[href*="page="]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if n, err := strconv.Atoi(u.Query().Get("page")); err == nil && n > maxPage {
			maxPage = n
		}
	})
	return maxPage
}

// parseYearSidebar collects the year partition set from navigation links.
func parseYearSidebar(markup string) []int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	seen := make(map[int]bool)
	doc.Find(`a[href*="year="]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if y, err := strconv.Atoi(u.Query().Get("year")); err == nil && y > 1900 && y < 2200 {
			seen[y] = true
		}
	})

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
