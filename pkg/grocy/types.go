// Package grocy provides a client for the grocy REST API, the external
// catalog holding authoritative product, unit, and stock-location data.
// All data is read-only to this tool except the stock purchase endpoint.
package grocy

// Product is a product as returned from the catalog.
type Product struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	StockUnitID    int    `json:"qu_id_stock"`
	ProductGroupID int    `json:"product_group_id"`
	LocationID     int    `json:"location_id"`
}

// Barcode maps a receipt-side name or barcode to a catalog product, the
// purchase-side quantity unit, and a per-alias amount multiplier
// (e.g. "case of 6").
type Barcode struct {
	ID                 int     `json:"id"`
	ProductID          int     `json:"product_id"`
	Barcode            string  `json:"barcode"`
	PurchaseUnitID     int     `json:"qu_id"`
	AmountMultiplier   float64 `json:"amount"`
	ShoppingLocationID int     `json:"shopping_location_id"`
	Note               string  `json:"note"`
}

// QuantityUnit is a quantity unit as returned from the catalog.
type QuantityUnit struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	NamePlural string `json:"name_plural"`
}

// ShoppingLocation is a store the purchases were made at.
type ShoppingLocation struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Location is a storage location within the household.
type Location struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
