// Package units resolves the multiplicative factor between quantity units.
// Conversions come from the catalog; a conversion bound to a concrete
// product overrides a generic one for the same unit pair.
package units

import "github.com/tillsync/tillsync/pkg/errors"

// Conversion is one unit conversion as held by the catalog. A nil ProductID
// marks a generic conversion that applies to any product.
type Conversion struct {
	ID         int     `json:"id"`
	FromUnitID int     `json:"from_qu_id"`
	ToUnitID   int     `json:"to_qu_id"`
	ProductID  *int    `json:"product_id"`
	Factor     float64 `json:"factor"`
}

// Factor returns the factor converting fromUnitID into toUnitID for the
// given product.
//
// Equal units always convert with factor 1, without consulting the
// conversion set. Otherwise the conversions matching the unit pair and
// either the product or no product are considered, product-specific entries
// winning over generic ones. When nothing matches, a UnitConversionError is
// returned; a differing unit pair never silently defaults to 1.
func Factor(conversions []Conversion, fromUnitID, toUnitID, productID int) (float64, error) {
	if fromUnitID == toUnitID {
		return 1, nil
	}

	var generic *Conversion
	for i := range conversions {
		c := conversions[i]
		if c.FromUnitID != fromUnitID || c.ToUnitID != toUnitID {
			continue
		}
		switch {
		case c.ProductID == nil:
			if generic == nil {
				generic = &conversions[i]
			}
		case *c.ProductID == productID:
			// Product-specific match wins immediately.
			return c.Factor, nil
		}
	}
	if generic != nil {
		return generic.Factor, nil
	}

	return 0, &errors.UnitConversionError{
		FromUnitID: fromUnitID,
		ToUnitID:   toUnitID,
		ProductID:  productID,
	}
}
