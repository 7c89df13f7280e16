// Copyright Ansvar Systems AB, 2026. All rights reserved.

package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// contentSelectors narrow an Al-Meezan law page to its article body,
// tried in order. When none matches, HTMLLines falls back to the body.
var contentSelectors = []string{
	"#divArticles",
	".law-articles",
	"#content",
	"article",
}

// blockTags are the elements whose boundaries become line breaks when
// flattening markup to text.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"td": true, "th": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "section": true,
	"blockquote": true, "ul": true, "ol": true, "table": true,
}

// HTMLLines flattens markup into a normalized line sequence. With narrow
// set, it restricts extraction to the first matching content region; with
// narrow unset it takes the whole document, which is the wider fallback
// extraction for pages with unexpected structure.
func HTMLLines(markup string, narrow bool) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	doc.Find("script, style, noscript").Remove()

	root := doc.Selection
	if narrow {
		for _, sel := range contentSelectors {
			if s := doc.Find(sel); s.Length() > 0 {
				root = s.First()
				break
			}
		}
	}

	var b strings.Builder
	for _, node := range root.Nodes {
		flattenNode(node, &b)
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// flattenNode walks the node tree writing text content, inserting line
// breaks at block-level boundaries and dropping any remaining tags.
func flattenNode(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flattenNode(c, b)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		b.WriteByte('\n')
	}
}

// TextLines splits converted plain text into trimmed non-empty lines, the
// common representation shared with the DOCX and HTML paths.
func TextLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
