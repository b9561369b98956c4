// Package recipe checks a web recipe's ingredient list against the catalog
// before an import: which ingredients, units, and unit conversions the
// catalog is still missing.
package recipe

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/grocy"
	"github.com/tillsync/tillsync/pkg/receipt"
	"github.com/tillsync/tillsync/pkg/units"
)

// Ingredient is one parsed recipe list entry. Amount stays textual: recipe
// sites print ranges ("50 - 70") and unicode fractions ("3 ½") that have no
// single numeric value.
type Ingredient struct {
	Amount string
	Unit   string
	Name   string
	Full   string
}

// Unparseable marks a list entry the ingredient pattern does not cover.
type Unparseable struct {
	Full string
}

// Entries match "amount [unit] name[, preparation notes]". The name stops at
// the first comma or parenthesis; everything after is preparation detail.
var ingredientPattern = regexp.MustCompile(
	`^\s*(¼|½|¾|\d+(?:\s+(?:-\s+\d+|½))?)(?:\s+(\S*[^\s,]))?(?:\s+([^,(]*[^,(\s]).*)$`)

// Parse splits a whitespace-normalized list entry into amount, unit, and
// name. A unit is optional ("6 Knoblauchzehen"); an entry without a leading
// amount comes back as *Unparseable.
func Parse(text string) (*Ingredient, *Unparseable) {
	m := ingredientPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, &Unparseable{Full: text}
	}
	return &Ingredient{Amount: m[1], Unit: m[2], Name: m[3], Full: text}, nil
}

// ParseDocument extracts and parses the ingredient list of a recipe page.
func ParseDocument(r io.Reader) ([]Ingredient, []Unparseable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, errors.WrapParse("html", "recipe", err)
	}

	var (
		ingredients []Ingredient
		unparseable []Unparseable
	)
	doc.Find("core-list-section ul li").Each(func(_ int, s *goquery.Selection) {
		ing, raw := Parse(receipt.NormalizeWhitespace(s.Text()))
		if raw != nil {
			unparseable = append(unparseable, *raw)
			return
		}
		ingredients = append(ingredients, *ing)
	})
	return ingredients, unparseable, nil
}

// Report lists what the catalog is missing for a recipe, one original list
// entry per line.
type Report struct {
	UnknownProducts    []string
	UnknownUnits       []string
	UnknownConversions []string
}

// Write renders the report for the operator.
func (r Report) Write(w io.Writer) {
	fmt.Fprintln(w, "Unknown ingredients:")
	fmt.Fprintln(w, strings.Join(r.UnknownProducts, "\n"))
	fmt.Fprintln(w, "\nUnknown units:")
	fmt.Fprintln(w, strings.Join(r.UnknownUnits, "\n"))
	fmt.Fprintln(w, "\nUnknown unit conversions:")
	fmt.Fprintln(w, strings.Join(r.UnknownConversions, "\n"))
}

// Check compares a recipe's ingredients against the catalog.
//
// Unparseable entries and ingredients whose name is not a product count as
// unknown products. For the rest, the textual unit must match a quantity
// unit's singular or plural name, and that unit must either be the product's
// stock unit or convert into it via a generic or product-specific
// conversion.
func Check(ingredients []Ingredient, unparseable []Unparseable,
	products map[string]grocy.Product, quantityUnits []grocy.QuantityUnit,
	conversions []units.Conversion) Report {

	var report Report
	for _, raw := range unparseable {
		report.UnknownProducts = append(report.UnknownProducts, raw.Full)
	}

	var known []Ingredient
	for _, ing := range ingredients {
		if _, ok := products[ing.Name]; !ok {
			report.UnknownProducts = append(report.UnknownProducts, ing.Full)
			continue
		}
		known = append(known, ing)
	}

	for _, ing := range known {
		matched := matchingUnits(ing.Unit, quantityUnits)
		if len(matched) == 0 {
			report.UnknownUnits = append(report.UnknownUnits, ing.Full)
			continue
		}
		if !convertible(matched, products[ing.Name], conversions) {
			report.UnknownConversions = append(report.UnknownConversions, ing.Full)
		}
	}
	return report
}

// matchingUnits returns the quantity units whose singular or plural name
// equals the ingredient's unit text.
func matchingUnits(name string, quantityUnits []grocy.QuantityUnit) []grocy.QuantityUnit {
	var matched []grocy.QuantityUnit
	for _, u := range quantityUnits {
		if name == u.Name || name == u.NamePlural {
			matched = append(matched, u)
		}
	}
	return matched
}

// convertible reports whether any matched unit is the product's stock unit
// or converts into it.
func convertible(matched []grocy.QuantityUnit, product grocy.Product, conversions []units.Conversion) bool {
	for _, u := range matched {
		if u.ID == product.StockUnitID {
			return true
		}
		for _, c := range conversions {
			if c.FromUnitID == u.ID && c.ToUnitID == product.StockUnitID &&
				(c.ProductID == nil || *c.ProductID == product.ID) {
				return true
			}
		}
	}
	return false
}
