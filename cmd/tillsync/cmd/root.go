// Package cmd implements the tillsync command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tillsync/tillsync/internal/config"
	"github.com/tillsync/tillsync/pkg/grocy"
)

var (
	configFile string
	dryRun     bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
	// BuiltBy is the build system identifier.
	BuiltBy = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tillsync",
	Short: "Import store receipts into a grocy household catalog",
	Long: `Tillsync extracts purchases from store receipts - Netto e-mail
receipts, REWE order exports, and dm till receipts - and records them
as stock purchases in a grocy household catalog.

Receipt-side product names are matched against the catalog's barcode
table; unknown names suspend the import until the catalog has been
extended.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date, builtBy string) {
	// Set version information
	Version = version
	Commit = commit
	Date = date
	BuiltBy = builtBy

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.tillsync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "perform a trial run with no changes made")

	if err := viper.BindPFlag("dry-run", rootCmd.PersistentFlags().Lookup("dry-run")); err != nil {
		panic(fmt.Sprintf("Failed to bind dry-run flag: %v", err))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.Init(configFile)
}

// newCatalog builds the catalog client from the loaded configuration.
func newCatalog() (*grocy.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return grocy.New(cfg.Grocy.BaseURL, cfg.Grocy.APIKey, dryRun).
		WithTimeout(cfg.HTTP.Timeout), nil
}
