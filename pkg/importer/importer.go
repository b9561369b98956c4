// Package importer orchestrates a purchase import run end to end: catalog
// fetches, human reconciliation of unknown products, unit resolution, and
// the sequential purchase submission.
package importer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/grocy"
	"github.com/tillsync/tillsync/pkg/logging"
	"github.com/tillsync/tillsync/pkg/receipt"
	"github.com/tillsync/tillsync/pkg/reconciler"
	"github.com/tillsync/tillsync/pkg/units"
)

// Catalog is the subset of the catalog API an import run needs.
type Catalog interface {
	Barcodes(ctx context.Context) (map[string]grocy.Barcode, error)
	ProductsByID(ctx context.Context) (map[int]grocy.Product, error)
	UnitConversions(ctx context.Context) ([]units.Conversion, error)
	ShoppingLocations(ctx context.Context) ([]grocy.ShoppingLocation, error)
	AddPurchase(ctx context.Context, productID int, amount float64, unitPrice decimal.Decimal, shoppingLocationID int) error
}

// Options select the store context of an import run.
type Options struct {
	// StoreName is matched against catalog shopping location names when no
	// explicit id is configured.
	StoreName string

	// ShoppingLocationID skips shopping location lookup when non-zero.
	ShoppingLocationID int
}

// Importer drives import runs against one catalog.
type Importer struct {
	catalog  Catalog
	prompter reconciler.Prompter
	out      io.Writer
}

// New creates an Importer. Progress lines for the operator go to out.
func New(catalog Catalog, prompter reconciler.Prompter, out io.Writer) *Importer {
	return &Importer{catalog: catalog, prompter: prompter, out: out}
}

// preparedItem is one purchase fully resolved against the catalog, ready to
// submit.
type preparedItem struct {
	purchase           receipt.Purchase
	productID          int
	stockAmount        float64
	unitPrice          decimal.Decimal
	shoppingLocationID int
}

// Run imports the purchases into the catalog.
//
// Unknown purchase names suspend the run in the reconciliation loop until
// the operator has extended the catalog. Every purchase is resolved to a
// product, a stock-unit amount, and a unit price before the first write, so
// a resolution failure aborts the batch with nothing recorded. Submission
// itself is sequential without rollback; a rejected write reports how many
// earlier items were already committed.
func (i *Importer) Run(ctx context.Context, purchases []receipt.Purchase, opts Options) error {
	if len(purchases) == 0 {
		logging.Info().Msg("No purchases to import")
		return nil
	}

	aliases, err := i.catalog.Barcodes(ctx)
	if err != nil {
		return err
	}

	shoppingLocationID := opts.ShoppingLocationID
	if shoppingLocationID == 0 {
		shoppingLocationID, err = i.shoppingLocationID(ctx, opts.StoreName)
		if err != nil {
			return err
		}
	}

	conversions, err := i.catalog.UnitConversions(ctx)
	if err != nil {
		return err
	}

	aliases, err = reconciler.Resolve(ctx, purchases, aliases, i.prompter, i.catalog.Barcodes)
	if err != nil {
		return err
	}

	products, err := i.catalog.ProductsByID(ctx)
	if err != nil {
		return err
	}

	items := make([]preparedItem, 0, len(purchases))
	for _, p := range purchases {
		item, err := prepare(p, aliases, products, conversions, shoppingLocationID)
		if err != nil {
			return err
		}
		items = append(items, *item)
	}

	for k, item := range items {
		if err := i.catalog.AddPurchase(ctx, item.productID, item.stockAmount, item.unitPrice, item.shoppingLocationID); err != nil {
			return submissionFailure(item.purchase, k, err)
		}
		fmt.Fprintf(i.out, "Added %s\n", item.purchase)
	}

	logging.Info().Int("count", len(items)).Msg("Import complete")
	return nil
}

// prepare resolves one purchase against the catalog: alias to product,
// purchase unit to the product's stock unit, line total to unit price.
func prepare(p receipt.Purchase, aliases map[string]grocy.Barcode, products map[int]grocy.Product,
	conversions []units.Conversion, shoppingLocationID int) (*preparedItem, error) {
	alias := aliases[p.Name]
	product, ok := products[alias.ProductID]
	if !ok {
		// The alias points at a product the active-product listing does not
		// contain, e.g. one deactivated since the alias was created.
		return nil, &errors.UnresolvedProductError{Names: []string{p.Name}}
	}

	factor, err := units.Factor(conversions, alias.PurchaseUnitID, product.StockUnitID, alias.ProductID)
	if err != nil {
		return nil, err
	}

	multiplier := alias.AmountMultiplier
	if multiplier == 0 {
		// The catalog stores an unset per-alias amount as null.
		multiplier = 1
	}

	return &preparedItem{
		purchase:           p,
		productID:          product.ID,
		stockAmount:        p.Amount * multiplier * factor,
		unitPrice:          p.UnitPrice(),
		shoppingLocationID: shoppingLocationID,
	}, nil
}

// shoppingLocationID finds the catalog shopping location whose name starts
// with the store name, case-insensitively. With several candidates the one
// sorting first by lowercased name wins.
func (i *Importer) shoppingLocationID(ctx context.Context, storeName string) (int, error) {
	locations, err := i.catalog.ShoppingLocations(ctx)
	if err != nil {
		return 0, err
	}

	prefix := strings.ToLower(storeName)
	var matches []grocy.ShoppingLocation
	for _, l := range locations {
		if strings.HasPrefix(strings.ToLower(l.Name), prefix) {
			matches = append(matches, l)
		}
	}
	if len(matches) == 0 {
		return 0, errors.NewConfigError("shopping_location_id",
			fmt.Sprintf("no shopping location matching %q in the catalog", storeName), nil)
	}
	sort.Slice(matches, func(a, b int) bool {
		return strings.ToLower(matches[a].Name) < strings.ToLower(matches[b].Name)
	})
	return matches[0].ID, nil
}

// submissionFailure annotates a rejected write with the batch position so
// the operator knows how many earlier purchases are already recorded.
func submissionFailure(p receipt.Purchase, submitted int, err error) error {
	var subErr *errors.SubmissionError
	if errors.As(err, &subErr) {
		subErr.Item = p.String()
		subErr.Submitted = submitted
		return subErr
	}
	return &errors.SubmissionError{Item: p.String(), Submitted: submitted, Err: err}
}
