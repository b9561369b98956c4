package cmd

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tillsync/tillsync/pkg/errors"
)

// whereisCmd looks up where matching products are stored by default.
var whereisCmd = &cobra.Command{
	Use:   "whereis <regex>",
	Short: "Show the default storage location of matching products",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		pattern, err := regexp.Compile("(?i)" + args[0])
		if err != nil {
			return errors.NewConfigError("regex", "invalid product pattern", err)
		}

		catalog, err := newCatalog()
		if err != nil {
			return err
		}

		ctx := c.Context()
		products, err := catalog.ProductsByName(ctx)
		if err != nil {
			return err
		}
		locations, err := catalog.LocationNames(ctx)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(products))
		for name := range products {
			if pattern.MatchString(name) {
				names = append(names, name)
			}
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Fprintf(c.OutOrStdout(), "%s: %s\n", name, locations[products[name].LocationID])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whereisCmd)
}
