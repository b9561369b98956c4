// Package stores provides the receipt extractors, one per supported store
// format, behind a single Source capability. Each extractor is stateless
// over its input document and turns it into ordered cell groups for the
// line parser.
package stores

import (
	"fmt"
	"io"

	"github.com/tillsync/tillsync/internal/stores/dm"
	"github.com/tillsync/tillsync/internal/stores/netto"
	"github.com/tillsync/tillsync/internal/stores/rewe"
	"github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/receipt"
)

// Source extracts purchase row candidates from a raw receipt document.
type Source interface {
	// Extract returns the ordered cell groups of the document. Structural
	// violations of the source format yield a ParseError.
	Extract(doc io.Reader) ([]receipt.CellGroup, error)
}

// ID identifies a supported store.
type ID string

// Supported stores.
const (
	NettoID ID = "netto"
	ReweID  ID = "rewe"
	DMID    ID = "dm"
)

// IDs returns all supported store ids.
func IDs() []ID {
	return []ID{NettoID, ReweID, DMID}
}

// Options carry per-run extractor settings.
type Options struct {
	// Order selects which order of a multi-purchase export to use,
	// 1-based, newest first. Zero means the newest.
	Order int
}

// New creates the extractor for the given store.
func New(id ID, profiles *Profiles, opts Options) (Source, error) {
	switch id {
	case NettoID:
		return netto.New(profiles.Netto.RowBlacklist), nil
	case ReweID:
		return rewe.New(profiles.Rewe.LineItemDenylist, opts.Order), nil
	case DMID:
		return dm.New(profiles.DM.TotalMarker), nil
	}
	return nil, errors.NewConfigError("store", fmt.Sprintf("unsupported store %q", id), nil)
}
