package dm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillsync/tillsync/internal/stores/dm"
	pkgerrors "github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/receipt"
)

func TestExtract(t *testing.T) {
	e := dm.New("SUMME")

	t.Run("stops at the total marker", func(t *testing.T) {
		text := strings.Join([]string{
			"dm-drogerie markt Kassenbon",
			"Mundspülung  4,95  2",
			"4x 1,25 dmBio Milch 1,5% 1L  5,00  2",
			"SUMME  9,95",
			"Bar  10,00",
		}, "\n")

		groups, err := e.Extract(strings.NewReader(text))
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, receipt.CellGroup{"Mundspülung", "4,95"}, groups[0])
		assert.Equal(t, receipt.CellGroup{"4", "dmBio Milch 1,5% 1L", "5,00"}, groups[1])
	})

	t.Run("multiplier prefix expands to quantity cell", func(t *testing.T) {
		text := "Bon\n4x 1,25 dmBio Milch 1,5% 1L  5,00  2\nSUMME  5,00\n"
		groups, err := e.Extract(strings.NewReader(text))
		require.NoError(t, err)
		require.Len(t, groups, 1)

		line, unparseable, err := receipt.ParseCells(groups[0])
		require.NoError(t, err)
		require.Nil(t, unparseable)
		assert.Equal(t, 4.0, line.Amount)
		assert.Equal(t, "dmBio Milch 1,5% 1L", line.Name)
		assert.Equal(t, "5", line.Price.String())
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		text := "Bon\n\nMundspülung  4,95  2\n\nSUMME  4,95\n"
		groups, err := e.Extract(strings.NewReader(text))
		require.NoError(t, err)
		assert.Len(t, groups, 1)
	})

	t.Run("negative totals are kept for the aggregator", func(t *testing.T) {
		text := "Bon\nGutschein  -1,05  2\nSUMME  0,00\n"
		groups, err := e.Extract(strings.NewReader(text))
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, receipt.CellGroup{"Gutschein", "-1,05"}, groups[0])
	})

	t.Run("first line is never an item", func(t *testing.T) {
		// The header would not match the item pattern; it must be skipped,
		// not reported.
		text := "dm Kassenbon 01.02.2023\nMundspülung  4,95  2\nSUMME  4,95\n"
		_, err := e.Extract(strings.NewReader(text))
		assert.NoError(t, err)
	})

	t.Run("unmatched line is fatal", func(t *testing.T) {
		text := "Bon\nMundspülung  4,95  2\nkein Artikel\nSUMME  4,95\n"
		_, err := e.Extract(strings.NewReader(text))
		require.Error(t, err)
		assert.True(t, pkgerrors.IsParse(err))

		var parseErr *pkgerrors.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 3, parseErr.Line)
	})

	t.Run("document without items", func(t *testing.T) {
		groups, err := e.Extract(strings.NewReader("Bon\nSUMME  0,00\n"))
		require.NoError(t, err)
		assert.Empty(t, groups)
	})
}
