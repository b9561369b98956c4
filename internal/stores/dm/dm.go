// Package dm extracts purchases from the dm-drogerie markt till receipt,
// a PDF whose page text is line oriented: a header line, one line per item,
// then a totals section.
//
// No OCR happens here; the PDF already carries its text.
package dm

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/receipt"
)

// itemLine captures an optional "Nx unit-price" prefix, the item name, the
// line total, and the trailing line-type digit.
var itemLine = regexp.MustCompile(`^(?:(\d+)x ([0-9][0-9.,]*) )?(.*?)\s+(-?[0-9][0-9.,]*)\s+(\d)$`)

// Extractor reads the till-receipt page text.
type Extractor struct {
	// totalMarker ends the item section; the first line starting with it
	// stops extraction permanently.
	totalMarker string
}

// New creates a dm till-receipt extractor.
func New(totalMarker string) *Extractor {
	return &Extractor{totalMarker: totalMarker}
}

// Extract parses the page text. The source format is assumed fixed: any
// non-blank line before the total marker that does not match the item
// pattern is a fatal parse failure, not a row to skip.
func (e *Extractor) Extract(doc io.Reader) ([]receipt.CellGroup, error) {
	var groups []receipt.CellGroup

	scanner := bufio.NewScanner(doc)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			// Header line.
			continue
		}
		if strings.HasPrefix(line, e.totalMarker) {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		m := itemLine.FindStringSubmatch(line)
		if m == nil {
			return nil, &errors.ParseError{
				Format:  "pdf-text",
				Source:  "dm",
				Line:    lineNo,
				Message: "line does not match item pattern: " + line,
			}
		}
		quantity, name, total := m[1], strings.TrimSpace(m[3]), m[4]
		if quantity == "" {
			groups = append(groups, receipt.CellGroup{name, total})
		} else {
			groups = append(groups, receipt.CellGroup{quantity, name, total})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse("pdf-text", "dm", err)
	}

	return groups, nil
}

// ExtractPDF extracts the text of all pages from the PDF receipt at path
// and parses it.
func (e *Extractor) ExtractPDF(path string) ([]receipt.CellGroup, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, errors.NewParseError("pdf", path, "cannot open PDF", err)
	}
	defer func() { _ = f.Close() }()

	text, err := r.GetPlainText()
	if err != nil {
		return nil, errors.NewParseError("pdf", path, "cannot extract page text", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(text); err != nil {
		return nil, errors.NewParseError("pdf", path, "cannot read page text", err)
	}

	return e.Extract(&buf)
}
