package receipt_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/receipt"
)

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "dmBio Milch 1,5%", receipt.NormalizeWhitespace("  dmBio   Milch\t1,5%\n"))
	assert.Equal(t, "", receipt.NormalizeWhitespace("   "))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
	}{
		{"plain", "1,00", "1"},
		{"with currency", "2,49 EUR", "2.49"},
		{"negative", "-1,05", "-1.05"},
		{"dot separator", "3.50", "3.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := receipt.ParsePrice(tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	t.Run("garbage", func(t *testing.T) {
		_, err := receipt.ParsePrice("Zwischensumme")
		assert.True(t, pkgerrors.IsParse(err))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := receipt.ParsePrice("  ")
		assert.True(t, pkgerrors.IsParse(err))
	})
}

func TestParseCells(t *testing.T) {
	t.Run("two cells defaults amount to one", func(t *testing.T) {
		line, unparseable, err := receipt.ParseCells(receipt.CellGroup{"Milch  1,5%", "1,09"})
		require.NoError(t, err)
		require.Nil(t, unparseable)
		assert.Equal(t, "Milch 1,5%", line.Name)
		assert.Equal(t, 1.0, line.Amount)
		assert.True(t, line.Price.Equal(decimal.RequireFromString("1.09")))
	})

	t.Run("three cells take leading quantity token", func(t *testing.T) {
		line, unparseable, err := receipt.ParseCells(receipt.CellGroup{"2 Stk", "Brötchen", "0,78"})
		require.NoError(t, err)
		require.Nil(t, unparseable)
		assert.Equal(t, 2.0, line.Amount)
		assert.Equal(t, "Brötchen", line.Name)
		assert.True(t, line.Price.Equal(decimal.RequireFromString("0.78")))
	})

	t.Run("single cell is unparseable, not an error", func(t *testing.T) {
		line, unparseable, err := receipt.ParseCells(receipt.CellGroup{"Kassenbon"})
		require.NoError(t, err)
		assert.Nil(t, line)
		require.NotNil(t, unparseable)
		assert.Equal(t, receipt.CellGroup{"Kassenbon"}, unparseable.Cells)
	})

	t.Run("bad price is a parse error", func(t *testing.T) {
		_, _, err := receipt.ParseCells(receipt.CellGroup{"Milch", "k.A."})
		assert.True(t, pkgerrors.IsParse(err))
	})

	t.Run("bad quantity is a parse error", func(t *testing.T) {
		_, _, err := receipt.ParseCells(receipt.CellGroup{"zwei", "Milch", "1,09"})
		assert.True(t, pkgerrors.IsParse(err))
	})
}

func line(t *testing.T, name string, amount float64, price string) receipt.Line {
	t.Helper()
	return receipt.Line{Amount: amount, Price: decimal.RequireFromString(price), Name: name}
}

func TestSimplify(t *testing.T) {
	t.Run("sorts by name", func(t *testing.T) {
		got := receipt.Simplify([]receipt.Line{
			line(t, "Milch", 1, "1.00"),
			line(t, "Mehl", 1, "2.00"),
		})
		require.Len(t, got, 2)
		assert.Equal(t, "Mehl", got[0].Name)
		assert.Equal(t, "Milch", got[1].Name)
	})

	t.Run("merges exact duplicates", func(t *testing.T) {
		got := receipt.Simplify([]receipt.Line{
			line(t, "Milch", 1, "1.00"),
			line(t, "Milch", 1, "1.00"),
		})
		require.Len(t, got, 1)
		assert.Equal(t, 2.0, got[0].Amount)
		assert.True(t, got[0].Price.Equal(decimal.RequireFromString("1.00")))
	})

	t.Run("same name different price stays separate", func(t *testing.T) {
		got := receipt.Simplify([]receipt.Line{
			line(t, "Milch", 1, "1.00"),
			line(t, "Milch", 1, "0.89"),
		})
		assert.Len(t, got, 2)
	})

	t.Run("drops negative-price groups entirely", func(t *testing.T) {
		got := receipt.Simplify([]receipt.Line{
			line(t, "Punkte-Gutschein", 1, "-1.05"),
		})
		assert.Empty(t, got)
	})

	t.Run("negative group is not netted against a positive one", func(t *testing.T) {
		got := receipt.Simplify([]receipt.Line{
			line(t, "Milch", 1, "1.05"),
			line(t, "Punkte-Gutschein", 1, "-1.05"),
		})
		require.Len(t, got, 1)
		assert.Equal(t, "Milch", got[0].Name)
	})

	t.Run("amount is preserved per group", func(t *testing.T) {
		got := receipt.Simplify([]receipt.Line{
			line(t, "Milch", 2, "2.00"),
			line(t, "Milch", 3, "2.00"),
			line(t, "Mehl", 1, "2.00"),
		})
		require.Len(t, got, 2)
		assert.Equal(t, 1.0, got[0].Amount) // Mehl
		assert.Equal(t, 5.0, got[1].Amount) // Milch
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, receipt.Simplify(nil))
	})
}

func TestPurchaseUnitPrice(t *testing.T) {
	p := receipt.Purchase{Amount: 4, Price: decimal.RequireFromString("5.00"), Name: "dmBio Milch"}
	assert.True(t, p.UnitPrice().Equal(decimal.RequireFromString("1.25")))
}
