// Package receipt defines the purchase model shared by all receipt sources
// and the parsing and aggregation rules that turn raw receipt rows into
// importable purchases.
package receipt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillsync/tillsync/pkg/errors"
)

// CellGroup is an ordered group of trimmed text cells belonging to one
// receipt row candidate. Two cells mean name+price, three mean
// quantity+name+price. Fewer than two cells is not a purchasable row.
type CellGroup []string

// Line is one parsed receipt row. Price is the printed line total, not a
// per-unit price.
type Line struct {
	Amount float64
	Price  decimal.Decimal
	Name   string
}

// Purchase is an aggregated line: at most one Purchase survives per distinct
// (name, line price) pair. Like Line, Price is the total rather than per
// unit.
type Purchase struct {
	Amount float64
	Price  decimal.Decimal
	Name   string
}

// String renders a purchase the way it is shown to the operator in prompts.
func (p Purchase) String() string {
	return strconv.FormatFloat(p.Amount, 'f', -1, 64) + "x " + p.Name + " (" + p.Price.StringFixed(2) + ")"
}

// UnitPrice is the per-unit price of the purchase.
func (p Purchase) UnitPrice() decimal.Decimal {
	return p.Price.Div(decimal.NewFromFloat(p.Amount))
}

// Unparseable marks a cell group that is not a purchasable row (headers,
// separators, noise). It is a routine filter outcome, not an error.
type Unparseable struct {
	Cells CellGroup
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses internal runs of whitespace to single spaces
// and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ParsePrice converts a locale-formatted price cell to a decimal amount.
// Only the leading numeric token counts; trailing currency or unit
// annotations ("1,99 EUR") are ignored. The comma is the decimal separator.
func ParsePrice(cell string) (decimal.Decimal, error) {
	fields := strings.Fields(cell)
	if len(fields) == 0 {
		return decimal.Zero, errors.NewParseError("price", "", "empty price cell", nil)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(fields[0], ",", "."))
	if err != nil {
		return decimal.Zero, errors.NewParseError("price", "", "not a price: "+cell, err)
	}
	return d, nil
}

// parseAmount reads the leading numeric token of a quantity cell,
// e.g. "2 Stk" yields 2.
func parseAmount(cell string) (float64, error) {
	fields := strings.Fields(cell)
	if len(fields) == 0 {
		return 0, errors.NewParseError("amount", "", "empty amount cell", nil)
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil {
		return 0, errors.NewParseError("amount", "", "not an amount: "+cell, err)
	}
	return amount, nil
}

// ParseCells converts a cell group into a Line.
//
// Two cells are name+price with an implied amount of 1; three cells are
// quantity+name+price. Groups with fewer cells come back as *Unparseable —
// they are headers or noise, not purchases. A group with the right shape
// whose quantity or price does not parse is a structural failure and
// returns a ParseError.
func ParseCells(cells CellGroup) (*Line, *Unparseable, error) {
	switch {
	case len(cells) < 2:
		return nil, &Unparseable{Cells: cells}, nil
	case len(cells) == 2:
		price, err := ParsePrice(cells[1])
		if err != nil {
			return nil, nil, err
		}
		return &Line{Amount: 1, Price: price, Name: NormalizeWhitespace(cells[0])}, nil, nil
	default:
		amount, err := parseAmount(cells[0])
		if err != nil {
			return nil, nil, err
		}
		price, err := ParsePrice(cells[2])
		if err != nil {
			return nil, nil, err
		}
		return &Line{Amount: amount, Price: price, Name: NormalizeWhitespace(cells[1])}, nil, nil
	}
}

// Purchases parses a document's cell groups and aggregates the resulting
// lines. Unparseable groups are dropped silently; a structurally broken
// group aborts with its ParseError.
func Purchases(groups []CellGroup) ([]Purchase, error) {
	var lines []Line
	for _, g := range groups {
		line, unparseable, err := ParseCells(g)
		if err != nil {
			return nil, err
		}
		if unparseable != nil {
			continue
		}
		lines = append(lines, *line)
	}
	return Simplify(lines), nil
}
