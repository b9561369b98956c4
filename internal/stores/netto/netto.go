// Package netto extracts purchases from the "digitaler Kassenbon" e-mail
// receipt of the Netto Marken-Discount supermarket chain.
//
// The receipt is a MIME message whose first text/html part carries the till
// data in a deeply nested table. Purchase rows live at a fixed tbody
// nesting depth; whitespace-only cells separate one purchase-line candidate
// from the next.
package netto

import (
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/receipt"
)

// rowSelector matches purchase rows at the receipt's fixed table depth.
var rowSelector = strings.Repeat("tbody ", 7) + "tr"

// Extractor reads the e-mail receipt format.
type Extractor struct {
	// blacklist marks rows that are no purchases: branch name, discounts,
	// loyalty card, point-redemption lines. Matched as substrings anywhere
	// in the row text. Varies per receipt-format version.
	blacklist []string
}

// New creates a Netto e-mail extractor with the given row blacklist.
func New(blacklist []string) *Extractor {
	return &Extractor{blacklist: blacklist}
}

// Extract parses the MIME message and returns the purchase cell groups.
func (e *Extractor) Extract(doc io.Reader) ([]receipt.CellGroup, error) {
	msg, err := mail.ReadMessage(doc)
	if err != nil {
		return nil, errors.NewParseError("mime", "netto", "not a MIME message", err)
	}

	html, err := firstHTMLPart(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, err
	}
	if html == nil {
		return nil, errors.NewParseError("mime", "netto", "no text/html part found", nil)
	}

	root, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return nil, errors.NewParseError("html", "netto", "invalid HTML part", err)
	}

	return e.groups(root), nil
}

// groups walks the purchase rows and splits their cells into groups at
// whitespace-only cells. Groups with at most one cell are headers or noise
// and are discarded.
func (e *Extractor) groups(root *goquery.Document) []receipt.CellGroup {
	var all []receipt.CellGroup
	var current receipt.CellGroup

	flush := func() {
		if len(current) > 1 {
			all = append(all, current)
		}
		current = nil
	}

	root.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		// Rows whose first cell ends in a colon are subtotal/label rows.
		if strings.HasSuffix(strings.TrimSpace(cells.First().Text()), ":") {
			return
		}
		text := row.Text()
		for _, keyword := range e.blacklist {
			if strings.Contains(text, keyword) {
				return
			}
		}
		cells.Each(func(_ int, cell *goquery.Selection) {
			switch t := cell.Text(); {
			case t == "":
			case strings.TrimSpace(t) == "":
				flush()
			default:
				current = append(current, strings.TrimSpace(t))
			}
		})
	})
	flush()

	return all
}

// firstHTMLPart walks the MIME structure and returns a decoded reader for
// the first text/html part, or nil when the message has none.
func firstHTMLPart(contentType, transferEncoding string, body io.Reader) (io.Reader, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, errors.NewParseError("mime", "netto", "bad Content-Type: "+contentType, err)
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil, nil
			}
			if err != nil {
				return nil, errors.NewParseError("mime", "netto", "broken multipart body", err)
			}
			html, err := firstHTMLPart(part.Header.Get("Content-Type"),
				part.Header.Get("Content-Transfer-Encoding"), part)
			if err != nil || html != nil {
				return html, err
			}
		}
	}

	if mediaType != "text/html" {
		return nil, nil
	}

	return decodePart(body, transferEncoding, params["charset"])
}

// decodePart undoes the transfer encoding and converts the part's charset
// to UTF-8.
func decodePart(r io.Reader, transferEncoding, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}

	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" || charset == "utf-8" || charset == "us-ascii" {
		return r, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errors.NewParseError("mime", "netto", "unsupported charset "+charset, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
