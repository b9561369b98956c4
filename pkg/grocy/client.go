package grocy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillsync/tillsync/internal/transport"
	"github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/logging"
	"github.com/tillsync/tillsync/pkg/units"
)

// APIKeyHeader is the header the catalog expects its API key in.
const APIKeyHeader = "GROCY-API-KEY"

// Client talks to the catalog REST API. In dry-run mode all writes are
// no-ops that still report success.
type Client struct {
	baseURL   string
	transport *transport.Client
	dryRun    bool
}

// New creates a catalog client for the given base URL and API key.
func New(baseURL, apiKey string, dryRun bool) *Client {
	return &Client{
		baseURL:   baseURL,
		transport: transport.New(&transport.HeaderAuth{Header: APIKeyHeader}, apiKey),
		dryRun:    dryRun,
	}
}

// WithTimeout returns the client with a different per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.transport.WithTimeout(timeout)
	return c
}

// get fetches an endpoint and decodes the JSON response into target.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, target any) error {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	resp, err := c.transport.Get(ctx, u)
	if err != nil {
		return errors.WrapAPI(endpoint, 0, err)
	}
	return transport.DecodeResponse(resp, target)
}

// onlyActive filters object listings to active records.
func onlyActive() url.Values {
	return url.Values{"query[]": []string{"active=1"}}
}

// Barcodes returns all product barcodes keyed by barcode value. Receipt-side
// product names are stored as barcodes, so this is the alias table for the
// catalog matcher.
func (c *Client) Barcodes(ctx context.Context) (map[string]Barcode, error) {
	var list []Barcode
	if err := c.get(ctx, "/objects/product_barcodes", nil, &list); err != nil {
		return nil, err
	}
	byBarcode := make(map[string]Barcode, len(list))
	for _, b := range list {
		byBarcode[b.Barcode] = b
	}
	return byBarcode, nil
}

// ProductsByName returns all active products keyed by name.
func (c *Client) ProductsByName(ctx context.Context) (map[string]Product, error) {
	var list []Product
	if err := c.get(ctx, "/objects/products", onlyActive(), &list); err != nil {
		return nil, err
	}
	byName := make(map[string]Product, len(list))
	for _, p := range list {
		byName[p.Name] = p
	}
	return byName, nil
}

// ProductsByID returns all active products keyed by id.
func (c *Client) ProductsByID(ctx context.Context) (map[int]Product, error) {
	var list []Product
	if err := c.get(ctx, "/objects/products", onlyActive(), &list); err != nil {
		return nil, err
	}
	byID := make(map[int]Product, len(list))
	for _, p := range list {
		byID[p.ID] = p
	}
	return byID, nil
}

// UnitConversions returns all quantity unit conversions.
func (c *Client) UnitConversions(ctx context.Context) ([]units.Conversion, error) {
	var list []units.Conversion
	if err := c.get(ctx, "/objects/quantity_unit_conversions", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// QuantityUnits returns all quantity units.
func (c *Client) QuantityUnits(ctx context.Context) ([]QuantityUnit, error) {
	var list []QuantityUnit
	if err := c.get(ctx, "/objects/quantity_units", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ShoppingLocations returns all shopping locations.
func (c *Client) ShoppingLocations(ctx context.Context) ([]ShoppingLocation, error) {
	var list []ShoppingLocation
	if err := c.get(ctx, "/objects/shopping_locations", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// LocationNames returns all storage location names keyed by id.
func (c *Client) LocationNames(ctx context.Context) (map[int]string, error) {
	var list []Location
	if err := c.get(ctx, "/objects/locations", nil, &list); err != nil {
		return nil, err
	}
	names := make(map[int]string, len(list))
	for _, l := range list {
		names[l.ID] = l.Name
	}
	return names, nil
}

// purchaseRequest is the body for the stock add endpoint.
type purchaseRequest struct {
	Amount             float64 `json:"amount"`
	Price              float64 `json:"price"`
	TransactionType    string  `json:"transaction_type"`
	ShoppingLocationID int     `json:"shopping_location_id"`
}

// AddPurchase records a purchase of the given product. Amount is in the
// product's stock unit, price per purchased unit. In dry-run mode nothing is
// sent and success is reported.
func (c *Client) AddPurchase(ctx context.Context, productID int, amount float64, unitPrice decimal.Decimal, shoppingLocationID int) error {
	endpoint := fmt.Sprintf("/stock/products/%d/add", productID)
	if c.dryRun {
		logging.Info().
			Int("product_id", productID).
			Float64("amount", amount).
			Str("price", unitPrice.StringFixed(2)).
			Msg("Dry run, purchase not recorded")
		return nil
	}

	body, err := json.Marshal(purchaseRequest{
		Amount:             amount,
		Price:              unitPrice.InexactFloat64(),
		TransactionType:    "purchase",
		ShoppingLocationID: shoppingLocationID,
	})
	if err != nil {
		return errors.WrapAPI(endpoint, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WrapAPI(endpoint, 0, err)
	}
	resp, err := c.transport.Do(req)
	if err != nil {
		return errors.WrapAPI(endpoint, 0, err)
	}
	var out any
	if err := transport.DecodeResponse(resp, &out); err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) {
			return &errors.SubmissionError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return &errors.SubmissionError{Err: err}
	}
	return nil
}
