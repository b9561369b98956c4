package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tillsync/tillsync/pkg/errors"
	"github.com/tillsync/tillsync/pkg/logging"
	"github.com/tillsync/tillsync/pkg/recipe"
)

// recipeCmd checks a web recipe against the catalog before it is imported
// there by hand.
var recipeCmd = &cobra.Command{
	Use:   "recipe <url>",
	Short: "Check a web recipe's ingredients against the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		catalog, err := newCatalog()
		if err != nil {
			return err
		}
		ctx := c.Context()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, args[0], nil)
		if err != nil {
			return errors.NewConfigError("url", "invalid recipe URL", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		ingredients, unparseable, err := recipe.ParseDocument(resp.Body)
		if err != nil {
			return err
		}
		logging.Info().Int("count", len(ingredients)+len(unparseable)).Msg("Found ingredients")

		products, err := catalog.ProductsByName(ctx)
		if err != nil {
			return err
		}
		quantityUnits, err := catalog.QuantityUnits(ctx)
		if err != nil {
			return err
		}
		conversions, err := catalog.UnitConversions(ctx)
		if err != nil {
			return err
		}

		report := recipe.Check(ingredients, unparseable, products, quantityUnits, conversions)
		report.Write(c.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recipeCmd)
}
