package recipe_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillsync/tillsync/pkg/grocy"
	"github.com/tillsync/tillsync/pkg/recipe"
	"github.com/tillsync/tillsync/pkg/units"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text   string
		amount string
		unit   string
		name   string
	}{
		{"6 Knoblauchzehen", "6", "", "Knoblauchzehen"},
		{"750 g Wasser", "750", "g", "Wasser"},
		{"140 g Urdbohnen, getrocknet (Linsenbohnen)", "140", "g", "Urdbohnen"},
		{"20 g Ingwer, geschält, in Scheiben (2 mm)", "20", "g", "Ingwer"},
		{"50 - 70 g Crème double (ca. 48 % Fett) und mehr zum Servieren", "50 - 70", "g", "Crème double"},
		{"1 Zwiebel, halbiert", "1", "", "Zwiebel"},
		{"½ TL Muskat", "½", "TL", "Muskat"},
		{"¼ TL Cayenne-Pfeffer, gemahlen", "¼", "TL", "Cayenne-Pfeffer"},
		{"¾ TL Thymian, getrocknet (optional)", "¾", "TL", "Thymian"},
		{"3 ½ TL Salz", "3 ½", "TL", "Salz"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ing, raw := recipe.Parse(tt.text)
			require.Nil(t, raw)
			require.NotNil(t, ing)
			assert.Equal(t, tt.amount, ing.Amount)
			assert.Equal(t, tt.unit, ing.Unit)
			assert.Equal(t, tt.name, ing.Name)
			assert.Equal(t, tt.text, ing.Full)
		})
	}

	t.Run("entry without a leading amount", func(t *testing.T) {
		ing, raw := recipe.Parse("asdfag")
		assert.Nil(t, ing)
		require.NotNil(t, raw)
		assert.Equal(t, "asdfag", raw.Full)
	})
}

func TestParseDocument(t *testing.T) {
	html := `<html><body>
		<core-list-section><ul>
			<li>750   g
				Wasser</li>
			<li>½ TL Muskat</li>
			<li>nach Belieben</li>
		</ul></core-list-section>
		<ul><li>not an ingredient</li></ul>
	</body></html>`

	ingredients, unparseable, err := recipe.ParseDocument(strings.NewReader(html))
	require.NoError(t, err)
	require.Len(t, ingredients, 2)
	assert.Equal(t, "Wasser", ingredients[0].Name)
	assert.Equal(t, "750 g Wasser", ingredients[0].Full)
	assert.Equal(t, "Muskat", ingredients[1].Name)
	require.Len(t, unparseable, 1)
	assert.Equal(t, "nach Belieben", unparseable[0].Full)
}

func TestCheck(t *testing.T) {
	products := map[string]grocy.Product{
		"Wasser": {ID: 1, Name: "Wasser", StockUnitID: 10},
		"Salz":   {ID: 2, Name: "Salz", StockUnitID: 11},
		"Mehl":   {ID: 3, Name: "Mehl", StockUnitID: 10},
	}
	quantityUnits := []grocy.QuantityUnit{
		{ID: 10, Name: "g", NamePlural: "g"},
		{ID: 11, Name: "TL", NamePlural: "TL"},
		{ID: 12, Name: "kg", NamePlural: "kg"},
	}
	conversions := []units.Conversion{
		{ID: 1, FromUnitID: 12, ToUnitID: 10, ProductID: nil, Factor: 1000},
	}

	ingredients := []recipe.Ingredient{
		{Amount: "750", Unit: "g", Name: "Wasser", Full: "750 g Wasser"},
		{Amount: "1", Unit: "kg", Name: "Mehl", Full: "1 kg Mehl"},
		{Amount: "½", Unit: "TL", Name: "Muskat", Full: "½ TL Muskat"},
		{Amount: "1", Unit: "Prise", Name: "Salz", Full: "1 Prise Salz"},
		{Amount: "1", Unit: "kg", Name: "Salz", Full: "1 kg Salz"},
	}
	unparseable := []recipe.Unparseable{{Full: "nach Belieben"}}

	report := recipe.Check(ingredients, unparseable, products, quantityUnits, conversions)

	// Unparseable entry and the product the catalog does not know.
	assert.Equal(t, []string{"nach Belieben", "½ TL Muskat"}, report.UnknownProducts)

	// "Prise" matches no quantity unit.
	assert.Equal(t, []string{"1 Prise Salz"}, report.UnknownUnits)

	// kg converts to g generically, so Mehl is fine; kg into Salz's stock
	// unit TL has no conversion.
	assert.Equal(t, []string{"1 kg Salz"}, report.UnknownConversions)

	var out strings.Builder
	report.Write(&out)
	assert.Contains(t, out.String(), "Unknown ingredients:\nnach Belieben")
	assert.Contains(t, out.String(), "Unknown units:\n1 Prise Salz")
	assert.Contains(t, out.String(), "Unknown unit conversions:\n1 kg Salz")
}
