package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tillsync/tillsync/internal/config"
	"github.com/tillsync/tillsync/internal/stores"
	"github.com/tillsync/tillsync/internal/stores/dm"
	"github.com/tillsync/tillsync/internal/stores/rewe"
	"github.com/tillsync/tillsync/pkg/importer"
	"github.com/tillsync/tillsync/pkg/receipt"
	"github.com/tillsync/tillsync/pkg/reconciler"
)

var reweOrder int

// purchaseCmd groups the per-store import commands.
var purchaseCmd = &cobra.Command{
	Use:   "purchase",
	Short: "Import purchases from store receipts",
}

var nettoCmd = &cobra.Command{
	Use:   "netto",
	Short: "Netto HTML e-mail receipts",
}

var nettoImportCmd = &cobra.Command{
	Use:   "import <receipt.eml>",
	Short: "Import purchases from a Netto e-mail receipt",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return importReceipt(c.Context(), stores.NettoID, args[0], stores.Options{})
	},
}

var reweCmd = &cobra.Command{
	Use:   "rewe",
	Short: "REWE JSON order exports",
}

var reweImportCmd = &cobra.Command{
	Use:   "import <orders.json>",
	Short: "Import purchases from an order of a REWE export",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return importReceipt(c.Context(), stores.ReweID, args[0], stores.Options{Order: reweOrder})
	},
}

var reweListCmd = &cobra.Command{
	Use:   "list <orders.json>",
	Short: "List the orders contained in a REWE export",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		lines, err := rewe.ListOrders(f)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(c.OutOrStdout(), line)
		}
		return nil
	},
}

var dmCmd = &cobra.Command{
	Use:   "dm",
	Short: "dm till receipts",
}

var dmImportCmd = &cobra.Command{
	Use:   "import <receipt.pdf>",
	Short: "Import purchases from a dm till receipt (PDF or extracted text)",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return importReceipt(c.Context(), stores.DMID, args[0], stores.Options{})
	},
}

func init() {
	reweImportCmd.Flags().IntVar(&reweOrder, "order", 1, "which order to import, 1 = newest")

	nettoCmd.AddCommand(nettoImportCmd)
	reweCmd.AddCommand(reweImportCmd, reweListCmd)
	dmCmd.AddCommand(dmImportCmd)
	purchaseCmd.AddCommand(nettoCmd, reweCmd, dmCmd)
	rootCmd.AddCommand(purchaseCmd)
}

// importReceipt runs the full pipeline for one receipt document: extract,
// parse, aggregate, reconcile, submit.
func importReceipt(ctx context.Context, storeID stores.ID, path string, opts stores.Options) error {
	profiles, err := stores.LoadProfiles()
	if err != nil {
		return err
	}
	src, err := stores.New(storeID, profiles, opts)
	if err != nil {
		return err
	}

	groups, err := extractGroups(src, path)
	if err != nil {
		return err
	}
	purchases, err := receipt.Purchases(groups)
	if err != nil {
		return err
	}

	catalog, err := newCatalog()
	if err != nil {
		return err
	}

	imp := importer.New(catalog,
		&reconciler.TerminalPrompter{In: os.Stdin, Out: os.Stdout}, os.Stdout)
	return imp.Run(ctx, purchases, importer.Options{
		StoreName:          string(storeID),
		ShoppingLocationID: config.ShoppingLocationID(string(storeID)),
	})
}

// extractGroups reads the document from disk. PDF receipts go through text
// extraction first; everything else is fed to the extractor as-is.
func extractGroups(src stores.Source, path string) ([]receipt.CellGroup, error) {
	if pdfSrc, ok := src.(*dm.Extractor); ok && strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdfSrc.ExtractPDF(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return src.Extract(f)
}
