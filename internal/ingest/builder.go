// Copyright Ansvar Systems AB, 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/convert"
	"github.com/Ansvar-Systems/Qatari-law-mcp/internal/parse"
	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

// Fetcher retrieves document bytes for a locator.
type Fetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
	FetchBinary(ctx context.Context, rawURL string) ([]byte, error)
}

// sourceStep is one strategy in the content fallback chain. Steps are
// evaluated in order until one yields provisions; every attempt's outcome
// feeds the record's provenance description.
type sourceStep struct {
	name string
	url  string
	run  func(ctx context.Context) (parse.Result, error)
}

// builder assembles records from catalog entries.
type builder struct {
	fetcher   Fetcher
	converter convert.Converter
}

// buildOutcome is the result of processing one catalog entry.
type buildOutcome struct {
	record   types.Record
	fallback bool
}

// build runs the source fallback chain for one entry and always returns a
// record; when every source fails the record is metadata-only with the
// failure trail in SourceDescription.
func (b *builder) build(ctx context.Context, entry types.CatalogEntry, target types.TargetConfig) buildOutcome {
	steps := b.sourceSteps(entry)

	record := types.Record{
		ID:           target.StableID,
		Title:        primaryTitle(entry),
		TitleEnglish: entry.TitleEnglish,
		ShortName:    target.DisplayName,
		Status:       "in_force",
		SourceURL:    entry.HTMLURL,
	}

	var failures []string
	for i, step := range steps {
		result, err := step.run(ctx)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", step.name, err))
			continue
		}
		if len(result.Provisions) == 0 {
			failures = append(failures, fmt.Sprintf("%s: %v", step.name, parse.ErrEmptyExtraction))
			continue
		}

		record.Provisions = result.Provisions
		record.Definitions = result.Definitions
		record.SourceURL = step.url
		record.SourceDescription = provenance(step.name, result.Synthetic, failures)
		return buildOutcome{record: record, fallback: i > 0}
	}

	record.Provisions = []types.Provision{}
	record.Definitions = []types.Definition{}
	if len(failures) == 0 {
		record.SourceDescription = "Metadata only: no source document available for this entry."
	} else {
		record.SourceDescription = "Metadata only: all sources failed (" + strings.Join(failures, "; ") + ")."
	}
	return buildOutcome{record: record}
}

// sourceSteps builds the ordered chain for an entry: primary document
// format first (DOCX, then legacy DOC, then the portal HTML page), then
// the alternate-language rendering of the HTML page.
func (b *builder) sourceSteps(entry types.CatalogEntry) []sourceStep {
	var steps []sourceStep

	if entry.DocxURL != "" {
		steps = append(steps, sourceStep{
			name: "docx",
			url:  entry.DocxURL,
			run: func(ctx context.Context) (parse.Result, error) {
				data, err := b.fetcher.FetchBinary(ctx, entry.DocxURL)
				if err != nil {
					return parse.Result{}, err
				}
				lines, err := parse.DocxLines(data)
				if err != nil {
					return parse.Result{}, err
				}
				return parse.Document(lines, nil), nil
			},
		})
	}

	if entry.DocURL != "" && b.converter != nil {
		steps = append(steps, sourceStep{
			name: "doc",
			url:  entry.DocURL,
			run: func(ctx context.Context) (parse.Result, error) {
				data, err := b.fetcher.FetchBinary(ctx, entry.DocURL)
				if err != nil {
					return parse.Result{}, err
				}
				text, err := b.converter.Convert(data)
				if err != nil {
					return parse.Result{}, fmt.Errorf("%w: %v", parse.ErrUnreadableSource, err)
				}
				return parse.Document(parse.TextLines(text), nil), nil
			},
		})
	}

	if entry.HTMLURL != "" {
		steps = append(steps, sourceStep{
			name: "html",
			url:  entry.HTMLURL,
			run:  b.htmlStep(entry.HTMLURL),
		})

		if alt := alternateLanguageURL(entry.HTMLURL); alt != "" {
			steps = append(steps, sourceStep{
				name: "html (alternate language)",
				url:  alt,
				run:  b.htmlStep(alt),
			})
		}
	}

	return steps
}

func (b *builder) htmlStep(pageURL string) func(ctx context.Context) (parse.Result, error) {
	return func(ctx context.Context) (parse.Result, error) {
		markup, err := b.fetcher.FetchText(ctx, pageURL)
		if err != nil {
			return parse.Result{}, err
		}
		narrow := parse.HTMLLines(markup, true)
		wider := parse.HTMLLines(markup, false)
		return parse.Document(narrow, wider), nil
	}
}

// alternateLanguageURL flips the portal's language query parameter,
// yielding the other-language rendering of the same page. Empty when the
// URL carries no language parameter.
func alternateLanguageURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	switch q.Get("language") {
	case "en":
		q.Set("language", "ar")
	case "ar":
		q.Set("language", "en")
	default:
		return ""
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func provenance(source string, synthetic bool, failures []string) string {
	desc := "Extracted from " + source + " source."
	if synthetic {
		desc = "Extracted from " + source + " source as a single unsegmented provision."
	}
	if len(failures) > 0 {
		desc += " Earlier sources failed (" + strings.Join(failures, "; ") + ")."
	}
	return desc
}

func primaryTitle(entry types.CatalogEntry) string {
	if entry.TitleArabic != "" {
		return entry.TitleArabic
	}
	return entry.Title
}
