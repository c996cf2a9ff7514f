package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/smelens-cli/internal/config"
)

var (
	// Global flags
	cfgFile     string
	mappingFile string

	// Loaded configuration
	cfg *cfgpkg.Pipeline
)

var rootCmd = &cobra.Command{
	Use:   "smelens",
	Short: "SMELens CLI: clean and screen SME loan portfolio spreadsheets",
	Long: `SMELens ingests heterogeneous SME portfolio spreadsheets, maps their columns
onto a canonical schema, cleans and types the data, and screens companies
against fixed red-flag rules.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.smelens/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&mappingFile, "mapping", "", "field mapping file (default is ~/.smelens/mapping.json)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to stock settings.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		d := cfgpkg.Default()
		cfg = &d
		return
	}
	cfg = c
	if mappingFile != "" {
		cfg.MappingPath = mappingFile
	}
}
