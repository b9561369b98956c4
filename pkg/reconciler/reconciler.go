// Package reconciler implements the human-in-the-loop cycle that blocks a
// purchase import until every purchase name is known to the catalog.
//
// The loop deliberately has no iteration bound and no timeout: a handful of
// unmapped products should hold the import for a human catalog edit, not
// fail it.
package reconciler

import (
	"context"
	"strings"

	"github.com/tillsync/tillsync/pkg/grocy"
	"github.com/tillsync/tillsync/pkg/logging"
	"github.com/tillsync/tillsync/pkg/receipt"
)

// Prompter presents a message to the human operator and blocks until the
// operator acknowledges that the catalog has been updated out-of-band.
type Prompter interface {
	NotifyAndWait(message string) error
}

// FetchAliases re-fetches the catalog's alias table.
type FetchAliases func(ctx context.Context) (map[string]grocy.Barcode, error)

// Resolve blocks until every purchase name is present in the alias table.
//
// Unresolved purchases are shown to the operator; after acknowledgment the
// alias table is re-fetched and checked again. With a complete table the
// function returns on the first check without prompting. The returned table
// is the one that finally resolved all names.
func Resolve(ctx context.Context, purchases []receipt.Purchase, aliases map[string]grocy.Barcode,
	prompter Prompter, refetch FetchAliases) (map[string]grocy.Barcode, error) {
	for {
		unknown := unresolved(purchases, aliases)
		if len(unknown) == 0 {
			return aliases, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logging.Debug().Int("count", len(unknown)).Msg("Purchases not resolvable in catalog")
		message := "Unknown products. Please add to the catalog:\n" + strings.Join(unknown, "\n")
		if err := prompter.NotifyAndWait(message); err != nil {
			return nil, err
		}

		fresh, err := refetch(ctx)
		if err != nil {
			return nil, err
		}
		aliases = fresh
	}
}

// unresolved lists the purchases whose names are missing from the alias
// table, in purchase order.
func unresolved(purchases []receipt.Purchase, aliases map[string]grocy.Barcode) []string {
	var unknown []string
	for _, p := range purchases {
		if _, ok := aliases[p.Name]; !ok {
			unknown = append(unknown, p.String())
		}
	}
	return unknown
}
