// Copyright Ansvar Systems AB, 2026. All rights reserved.

package parse

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

// buildDocx assembles a minimal DOCX archive whose document.xml contains
// the given paragraphs.
func buildDocx(t *testing.T, paragraphs []string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>`)
		if err := xmlEscape(&body, p); err != nil {
			t.Fatal(err)
		}
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(body.String())); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func xmlEscape(b *strings.Builder, s string) error {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	_, err := r.WriteString(b, s)
	return err
}

func TestDocxLines(t *testing.T) {
	data := buildDocx(t, []string{
		"Law No. 13 of 2016",
		"Article (1)",
		"Personal data protection applies.",
	})

	lines, err := DocxLines(data)
	if err != nil {
		t.Fatalf("DocxLines: %v", err)
	}
	want := []string{
		"Law No. 13 of 2016",
		"Article (1)",
		"Personal data protection applies.",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestDocxLines_ControlCodes(t *testing.T) {
	const doc = `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Article</w:t><w:tab/><w:t>5</w:t><w:br/><w:t>Second line</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte(doc))
	zw.Close()

	lines, err := DocxLines(buf.Bytes())
	if err != nil {
		t.Fatalf("DocxLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0] != "Article\t5" {
		t.Errorf("line 0 = %q, want tab-joined heading", lines[0])
	}
	if lines[1] != "Second line" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestDocxLines_NotAZip(t *testing.T) {
	_, err := DocxLines([]byte("this is not a zip archive"))
	if !errors.Is(err, ErrUnreadableSource) {
		t.Fatalf("err = %v, want ErrUnreadableSource", err)
	}
}

func TestHTMLLines_NarrowAndWide(t *testing.T) {
	const markup = `<html><head><script>var x=1;</script><style>.a{}</style></head>
<body>
<div id="nav">Home | Print</div>
<div id="divArticles">
  <p>Article (1)</p>
  <p>The provisions apply to everyone.</p>
</div>
<div id="footer">All rights reserved</div>
</body></html>`

	narrow := HTMLLines(markup, true)
	if len(narrow) != 2 {
		t.Fatalf("narrow: got %d lines, want 2: %v", len(narrow), narrow)
	}
	if narrow[0] != "Article (1)" {
		t.Errorf("narrow line 0 = %q", narrow[0])
	}

	wide := HTMLLines(markup, false)
	joined := strings.Join(wide, "\n")
	if !strings.Contains(joined, "Home | Print") {
		t.Error("wide extraction should keep chrome lines")
	}
	if strings.Contains(joined, "var x=1") {
		t.Error("script content must be stripped")
	}
}

func TestDocument_FallsBackToWiderExtraction(t *testing.T) {
	narrow := []string{"nothing that looks like an article"}
	wider := []string{
		"Article 1",
		"Provisions recovered from the full page markup.",
	}
	res := Document(narrow, wider)
	if len(res.Provisions) != 1 {
		t.Fatalf("got %d provisions, want 1", len(res.Provisions))
	}
	if res.Synthetic {
		t.Error("wider extraction succeeded, result must not be synthetic")
	}
}

func TestDocument_SyntheticProvision(t *testing.T) {
	lines := []string{
		"Al-Meezan",
		"This decree approves the attached convention between the two states",
		"concerning mutual legal assistance in criminal matters, signed in Doha,",
		"and mandates all competent authorities, each within its jurisdiction,",
		"to execute its provisions from the date of publication.",
		"جميع الحقوق محفوظة",
	}
	res := Document(lines, nil)
	if len(res.Provisions) != 1 {
		t.Fatalf("got %d provisions, want 1", len(res.Provisions))
	}
	if !res.Synthetic {
		t.Error("result should be marked synthetic")
	}
	p := res.Provisions[0]
	if p.Ref != "full-text" {
		t.Errorf("ref = %q, want %q", p.Ref, "full-text")
	}
	if strings.Contains(p.Content, "Al-Meezan") || strings.Contains(p.Content, "جميع الحقوق") {
		t.Errorf("boilerplate leaked into synthetic provision: %q", p.Content)
	}
}

func TestDocument_TextlessWhenTooShort(t *testing.T) {
	res := Document([]string{"Print", "tiny"}, nil)
	if len(res.Provisions) != 0 {
		t.Fatalf("got %d provisions, want 0", len(res.Provisions))
	}
}

func TestExtractDefinitions(t *testing.T) {
	provisions := []types.Provision{
		{
			Ref:          "1",
			SectionLabel: "1",
			Content: `In the application of this law: "Personal Data" means any information relating to an identified individual. ` +
				`"Controller" means the person who determines processing purposes; "controller" means duplicate entry.`,
		},
		{
			Ref:          "2",
			SectionLabel: "2",
			Content:      `"Ignored" means this text sits outside the terms section entirely.`,
		},
	}

	defs := ExtractDefinitions(provisions)
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2: %+v", len(defs), defs)
	}

	if defs[0].Term != "Personal Data" {
		t.Errorf("term = %q, want %q", defs[0].Term, "Personal Data")
	}
	if defs[0].Definition != "any information relating to an identified individual." {
		t.Errorf("definition = %q", defs[0].Definition)
	}
	if defs[0].SourceProvisionRef != "1" {
		t.Errorf("source = %q, want %q", defs[0].SourceProvisionRef, "1")
	}
	if defs[1].Term != "Controller" {
		t.Errorf("term = %q, want %q (case-insensitive dedup should keep the first)", defs[1].Term, "Controller")
	}
}

func TestExtractDefinitions_Arabic(t *testing.T) {
	provisions := []types.Provision{
		{
			Ref:          "1",
			SectionLabel: "1",
			Content:      `في تطبيق أحكام هذا القانون: «البيانات الشخصية» يقصد بها أي معلومات تتعلق بشخص طبيعي معرف الهوية؛`,
		},
	}
	defs := ExtractDefinitions(provisions)
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1: %+v", len(defs), defs)
	}
	if defs[0].Term != "البيانات الشخصية" {
		t.Errorf("term = %q", defs[0].Term)
	}
}

func TestExtractDefinitions_Cap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString(`"Term`)
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString(`" means definition number with sufficient length here. `)
	}
	provisions := []types.Provision{{Ref: "1", SectionLabel: "1", Content: b.String()}}

	defs := ExtractDefinitions(provisions)
	if len(defs) != maxDefinitionsPerDocument {
		t.Fatalf("got %d definitions, want cap %d", len(defs), maxDefinitionsPerDocument)
	}
}

func TestNormalizeDigits(t *testing.T) {
	tests := []struct{ in, want string }{
		{"المادة ٣", "المادة 3"},
		{"۱۲۳", "123"},
		{"Article 5", "Article 5"},
		{"٠٩", "09"},
	}
	for _, tt := range tests {
		if got := normalizeDigits(tt.in); got != tt.want {
			t.Errorf("normalizeDigits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"5", "5"},
		{"5 bis", "5-bis"},
		{"Law No. (13) of 2016", "law-no-13-of-2016"},
		{"  trailing  ", "trailing"},
		{"٥", "5"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
