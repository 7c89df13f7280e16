// Copyright Ansvar Systems AB, 2026. All rights reserved.

package parse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnreadableSource reports that a source document could not be decoded
// in any supported format.
var ErrUnreadableSource = errors.New("unreadable source document")

// DocxLines unpacks a DOCX archive and extracts paragraph-level text from
// word/document.xml. Tab and line-break control elements become literal
// whitespace; each paragraph becomes one line.
func DocxLines(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", ErrUnreadableSource, err)
	}

	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: opening document.xml: %v", ErrUnreadableSource, err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("%w: archive has no word/document.xml", ErrUnreadableSource)
	}
	defer docXML.Close()

	lines, err := wordLines(docXML)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding document.xml: %v", ErrUnreadableSource, err)
	}
	return lines, nil
}

// wordLines streams WordprocessingML, emitting one line per paragraph.
// Only the text-bearing elements matter: w:t carries runs, w:tab and
// w:br/w:cr are whitespace, w:p closes a paragraph.
func wordLines(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		lines  []string
		para   strings.Builder
		inText bool
	)

	endParagraph := func() {
		for _, line := range strings.Split(para.String(), "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
		para.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				endParagraph()
			}
		}
	}
	endParagraph()

	return lines, nil
}
