package grocy_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/grocy"
)

// fakeCatalog serves the object listings the client fetches.
func fakeCatalog(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/objects/product_barcodes", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("GROCY-API-KEY"))
		_, _ = w.Write([]byte(`[
			{"id":1,"product_id":121,"barcode":"Milch 1,5%","qu_id":7,"amount":1,"shopping_location_id":2,"note":""},
			{"id":2,"product_id":122,"barcode":"Mehl 405","qu_id":7,"amount":6,"shopping_location_id":2,"note":"case"}
		]`))
	})
	mux.HandleFunc("/objects/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "active=1", r.URL.Query().Get("query[]"))
		_, _ = w.Write([]byte(`[
			{"id":121,"name":"Milch","qu_id_stock":42,"product_group_id":1,"location_id":3},
			{"id":122,"name":"Mehl","qu_id_stock":7,"product_group_id":1,"location_id":4}
		]`))
	})
	mux.HandleFunc("/objects/quantity_unit_conversions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"from_qu_id":7,"to_qu_id":42,"product_id":121,"factor":3.5},
			{"id":2,"from_qu_id":7,"to_qu_id":42,"product_id":null,"factor":1.5}
		]`))
	})
	mux.HandleFunc("/objects/shopping_locations", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":2,"name":"Netto Stadtmitte"},{"id":5,"name":"REWE Nord"}]`))
	})
	mux.HandleFunc("/objects/locations", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":3,"name":"Kühlschrank"},{"id":4,"name":"Vorratsschrank"}]`))
	})
	return httptest.NewServer(mux)
}

func TestFetches(t *testing.T) {
	srv := fakeCatalog(t)
	defer srv.Close()
	client := grocy.New(srv.URL, "secret", false)
	ctx := context.Background()

	t.Run("barcodes keyed by barcode", func(t *testing.T) {
		barcodes, err := client.Barcodes(ctx)
		require.NoError(t, err)
		require.Len(t, barcodes, 2)
		assert.Equal(t, 121, barcodes["Milch 1,5%"].ProductID)
		assert.Equal(t, 6.0, barcodes["Mehl 405"].AmountMultiplier)
	})

	t.Run("products by name and id", func(t *testing.T) {
		byName, err := client.ProductsByName(ctx)
		require.NoError(t, err)
		assert.Equal(t, 42, byName["Milch"].StockUnitID)

		byID, err := client.ProductsByID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Mehl", byID[122].Name)
	})

	t.Run("unit conversions keep optional product id", func(t *testing.T) {
		conversions, err := client.UnitConversions(ctx)
		require.NoError(t, err)
		require.Len(t, conversions, 2)
		require.NotNil(t, conversions[0].ProductID)
		assert.Equal(t, 121, *conversions[0].ProductID)
		assert.Nil(t, conversions[1].ProductID)
	})

	t.Run("shopping and storage locations", func(t *testing.T) {
		locations, err := client.ShoppingLocations(ctx)
		require.NoError(t, err)
		assert.Len(t, locations, 2)

		names, err := client.LocationNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Kühlschrank", names[3])
	})
}

func TestAddPurchase(t *testing.T) {
	t.Run("posts stock add", func(t *testing.T) {
		var body map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/stock/products/121/add", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`[{"id":1}]`))
		}))
		defer srv.Close()

		client := grocy.New(srv.URL, "secret", false)
		err := client.AddPurchase(context.Background(), 121, 3.5, decimal.RequireFromString("1.09"), 2)
		require.NoError(t, err)
		assert.Equal(t, 3.5, body["amount"])
		assert.Equal(t, 1.09, body["price"])
		assert.Equal(t, "purchase", body["transaction_type"])
		assert.Equal(t, 2.0, body["shopping_location_id"])
	})

	t.Run("non-2xx becomes submission error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad amount", http.StatusBadRequest)
		}))
		defer srv.Close()

		client := grocy.New(srv.URL, "secret", false)
		err := client.AddPurchase(context.Background(), 121, 1, decimal.RequireFromString("1.00"), 2)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsSubmission(err))

		var subErr *pkgerrors.SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, http.StatusBadRequest, subErr.StatusCode)
	})

	t.Run("dry run sends nothing", func(t *testing.T) {
		hit := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hit = true
		}))
		defer srv.Close()

		client := grocy.New(srv.URL, "secret", true)
		err := client.AddPurchase(context.Background(), 121, 1, decimal.RequireFromString("1.00"), 2)
		assert.NoError(t, err)
		assert.False(t, hit, "dry run must not hit the catalog")
	})
}
