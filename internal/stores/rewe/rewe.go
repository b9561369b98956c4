// Package rewe extracts purchases from the REWE shop data export, the
// "Meine REWE-Shop-Daten.json" file a customer can request under GDPR.
//
// The export holds the full order history; one order is selected per run,
// newest first.
package rewe

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/receipt"
)

// export mirrors the parts of the JSON document we read. Prices are in
// minor currency units (cents).
type export struct {
	Orders ordersList `json:"orders"`
}

type ordersList struct {
	Orders []order `json:"orders"`
}

type order struct {
	OrderValue   int        `json:"orderValue"`
	CreationDate string     `json:"creationDate"`
	SubOrders    []subOrder `json:"subOrders"`
}

type subOrder struct {
	Merchant  string     `json:"merchant"`
	LineItems []lineItem `json:"lineItems"`
}

type lineItem struct {
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	TotalPrice int    `json:"totalPrice"`
}

// Extractor reads the order export.
type Extractor struct {
	// denylist holds line-item titles that are not products: the time-slot
	// placeholder, deposit lines, bulky-goods surcharges.
	denylist []string
	// orderIndex selects which order to extract, 1-based, newest first.
	// Zero selects the newest.
	orderIndex int
}

// New creates a REWE export extractor.
func New(denylist []string, orderIndex int) *Extractor {
	if orderIndex < 1 {
		orderIndex = 1
	}
	return &Extractor{denylist: denylist, orderIndex: orderIndex}
}

// Extract returns the cell groups of the selected order's first sub-order.
func (e *Extractor) Extract(doc io.Reader) ([]receipt.CellGroup, error) {
	data, err := decode(doc)
	if err != nil {
		return nil, err
	}

	orders := sortedOrders(data)
	if len(orders) == 0 {
		return nil, errors.NewParseError("json", "rewe", "export contains no orders", nil)
	}
	if e.orderIndex > len(orders) {
		return nil, errors.NewParseError("json", "rewe",
			fmt.Sprintf("order %d requested but export has only %d", e.orderIndex, len(orders)), nil)
	}

	selected := orders[e.orderIndex-1]
	if len(selected.SubOrders) == 0 {
		return nil, errors.NewParseError("json", "rewe", "order has no sub-orders", nil)
	}

	var groups []receipt.CellGroup
	for _, item := range selected.SubOrders[0].LineItems {
		if e.denied(item.Title) {
			continue
		}
		groups = append(groups, receipt.CellGroup{
			strconv.Itoa(item.Quantity),
			item.Title,
			cents(item.TotalPrice),
		})
	}
	return groups, nil
}

// ListOrders formats the orders of the export for display, newest first,
// numbered the way the --order selector expects them.
func ListOrders(doc io.Reader) ([]string, error) {
	data, err := decode(doc)
	if err != nil {
		return nil, err
	}

	orders := sortedOrders(data)
	lines := make([]string, 0, len(orders))
	for i, o := range orders {
		merchant := ""
		if len(o.SubOrders) > 0 {
			merchant = o.SubOrders[0].Merchant
		}
		date := o.CreationDate
		if len(date) >= 8 {
			date = date[:4] + "-" + date[4:6] + "-" + date[6:8]
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s %s €",
			i+1, date, merchant, decimal.New(int64(o.OrderValue), -2)))
	}
	return lines, nil
}

func decode(doc io.Reader) (*export, error) {
	var data export
	if err := json.NewDecoder(doc).Decode(&data); err != nil {
		return nil, errors.WrapParse("json", "rewe", err)
	}
	return &data, nil
}

// sortedOrders returns the orders newest first. The creation date is an
// opaque sortable string in the export.
func sortedOrders(data *export) []order {
	orders := make([]order, len(data.Orders.Orders))
	copy(orders, data.Orders.Orders)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreationDate > orders[j].CreationDate
	})
	return orders
}

func (e *Extractor) denied(title string) bool {
	for _, t := range e.denylist {
		if title == t {
			return true
		}
	}
	return false
}

// cents renders a minor-unit price the way the line parser expects prices,
// with a comma decimal separator.
func cents(n int) string {
	return strings.ReplaceAll(decimal.New(int64(n), -2).StringFixed(2), ".", ",")
}
