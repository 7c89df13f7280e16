// Copyright Ansvar Systems AB, 2026. All rights reserved.

// Package types defines the shared data model for the Qatari legislation
// ingestion pipeline: catalog entries discovered on the Al-Meezan portal,
// article-level provisions recovered by the parser, and the canonical
// Record persisted for the downstream search service.
package types

// Provision is one article-level unit of a law's text, keyed by its
// section label ("1", "5 bis", ...).
type Provision struct {
	// Ref is a normalized slug of SectionLabel, unique within a document.
	Ref string `json:"provision_ref" yaml:"provision_ref"`

	// SectionLabel is the section number as matched in the source text,
	// digit-normalized to ASCII.
	SectionLabel string `json:"section" yaml:"section"`

	// Title is the optional inline heading text following the section number.
	Title string `json:"title" yaml:"title"`

	// Content is the article body text.
	Content string `json:"content" yaml:"content"`
}

// Definition is a defined term extracted from an interpretation section.
type Definition struct {
	// Term is the defined expression as quoted in the source.
	Term string `json:"term" yaml:"term"`

	// Definition is the explanation following the definition verb.
	Definition string `json:"definition" yaml:"definition"`

	// SourceProvisionRef names the provision the definition was found in.
	SourceProvisionRef string `json:"source_provision" yaml:"source_provision"`
}

// Record is the canonical output of the pipeline: one law, with whatever
// article text could be recovered. A Record is written exactly once per
// catalog entry that was not hard-skipped, including metadata-only outcomes.
type Record struct {
	// ID is the stable identifier used as the output file stem.
	ID string `json:"id" yaml:"id"`

	// Title is the law's primary (Arabic) title.
	Title string `json:"title" yaml:"title"`

	// TitleEnglish is the English half of a bilingual title, when present.
	TitleEnglish string `json:"titleEnglish" yaml:"titleEnglish"`

	// ShortName is the curated or synthesized display name.
	ShortName string `json:"shortName" yaml:"shortName"`

	// Status is the law's currency status ("in_force" unless known otherwise).
	Status string `json:"status" yaml:"status"`

	// SourceURL is the portal page or document the content came from.
	SourceURL string `json:"sourceUrl" yaml:"sourceUrl"`

	// SourceDescription records which source in the fallback chain actually
	// supplied the content, or why none did.
	SourceDescription string `json:"sourceDescription" yaml:"sourceDescription"`

	Provisions  []Provision  `json:"provisions" yaml:"provisions"`
	Definitions []Definition `json:"definitions" yaml:"definitions"`
}

// IsMetadataOnly reports whether the record carries no article text.
func (r Record) IsMetadataOnly() bool {
	return len(r.Provisions) == 0
}

// CatalogEntry is a document descriptor discovered on a listing page,
// prior to content fetching. Entries are unique by LawID; duplicates
// observed across listing pages merge via Merge.
type CatalogEntry struct {
	// LawID is the portal's stable numeric identifier for the law.
	LawID string `json:"law_id" yaml:"law_id"`

	// Title is the raw listing title, possibly bilingual.
	Title string `json:"title" yaml:"title"`

	// TitleEnglish and TitleArabic are the script-split halves of Title.
	TitleEnglish string `json:"title_english,omitempty" yaml:"title_english,omitempty"`
	TitleArabic  string `json:"title_arabic,omitempty" yaml:"title_arabic,omitempty"`

	// DocxURL, DocURL, and HTMLURL locate the law's source formats.
	// Any of them may be empty.
	DocxURL string `json:"docx_url,omitempty" yaml:"docx_url,omitempty"`
	DocURL  string `json:"doc_url,omitempty" yaml:"doc_url,omitempty"`
	HTMLURL string `json:"html_url,omitempty" yaml:"html_url,omitempty"`

	// Year is the listing year partition the entry was discovered in.
	// Zero when the listing carries no year.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`
}

// Merge combines two catalog entries for the same LawID: the longer title
// wins, the earliest non-zero year wins, and missing locators are filled
// from the other entry.
func (e CatalogEntry) Merge(other CatalogEntry) CatalogEntry {
	merged := e
	if len(other.Title) > len(merged.Title) {
		merged.Title = other.Title
		merged.TitleEnglish = other.TitleEnglish
		merged.TitleArabic = other.TitleArabic
	}
	if merged.Year == 0 || (other.Year != 0 && other.Year < merged.Year) {
		merged.Year = other.Year
	}
	if merged.DocxURL == "" {
		merged.DocxURL = other.DocxURL
	}
	if merged.DocURL == "" {
		merged.DocURL = other.DocURL
	}
	if merged.HTMLURL == "" {
		merged.HTMLURL = other.HTMLURL
	}
	return merged
}

// TargetConfig is the per-law output configuration: a curated override for
// well-known laws, otherwise synthesized from the catalog entry.
type TargetConfig struct {
	// StableID is the output identifier and file stem.
	StableID string `json:"stable_id" yaml:"stable_id"`

	// DisplayName is the human-readable short name.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// SourceFileName is the preferred source document file name, when curated.
	SourceFileName string `json:"source_file_name,omitempty" yaml:"source_file_name,omitempty"`
}
