package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/smelens-cli/internal/schema"
)

var mappingSave bool

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect and manage the saved field mapping",
}

var mappingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved field mapping",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := schema.Store{Path: cfg.MappingPath}
		m, ok := store.Load()
		if !ok {
			fmt.Println("No saved mapping at", cfg.MappingPath)
			return nil
		}
		fmt.Println("Saved mapping:", cfg.MappingPath)
		printMapping(m)
		return nil
	},
}

var mappingAutoCmd = &cobra.Command{
	Use:   "auto <file>",
	Short: "Auto-detect a field mapping from a spreadsheet's columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := loadRaw(args[0])
		if err != nil {
			return err
		}
		m := schema.AutoDetect(raw.Names(), *cfg)
		fmt.Println("Auto-detected mapping:")
		printMapping(m)
		if missing := m.MissingRequired(); len(missing) > 0 {
			fmt.Printf("⚠ Missing required fields: %v\n", missing)
		}
		if mappingSave {
			store := schema.Store{Path: cfg.MappingPath}
			if err := store.Save(m); err != nil {
				return fmt.Errorf("failed to save mapping: %w", err)
			}
			fmt.Println("✓ Saved mapping to", cfg.MappingPath)
		}
		return nil
	},
}

var mappingClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the saved mapping to all-unset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := schema.Store{Path: cfg.MappingPath}
		empty := make(schema.Mapping, len(schema.Fields()))
		for _, f := range schema.Fields() {
			empty[f] = ""
		}
		if err := store.Save(empty); err != nil {
			return fmt.Errorf("failed to clear mapping: %w", err)
		}
		fmt.Println("✓ Cleared mapping at", cfg.MappingPath)
		return nil
	},
}

func printMapping(m schema.Mapping) {
	for _, f := range schema.Fields() {
		v := m[f]
		if v == "" {
			v = "(unset)"
		}
		fmt.Printf("  %-24s %s\n", f, v)
	}
}

func init() {
	rootCmd.AddCommand(mappingCmd)
	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingAutoCmd)
	mappingCmd.AddCommand(mappingClearCmd)
	mappingAutoCmd.Flags().BoolVar(&mappingSave, "save", false, "persist the detected mapping")
}
