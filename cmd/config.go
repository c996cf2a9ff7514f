package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/smelens-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set SMELens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("sheet_preview_rows: %d\n", cfg.SheetPreviewRows)
		fmt.Printf("sheet_min_rows: %d\n", cfg.SheetMinRows)
		fmt.Printf("sheet_min_cols: %d\n", cfg.SheetMinCols)
		fmt.Printf("header_search_window: %d\n", cfg.HeaderSearchWindow)
		fmt.Printf("fuzzy_threshold_default: %.3f\n", cfg.FuzzyThresholdDefault)
		fmt.Printf("fuzzy_threshold_id: %.3f\n", cfg.FuzzyThresholdID)
		fmt.Printf("coercion_warn_ratio: %.3f\n", cfg.CoercionWarnRatio)
		fmt.Printf("unknown_warn_ratio: %.3f\n", cfg.UnknownWarnRatio)
		fmt.Printf("low_fill_warn_ratio: %.3f\n", cfg.LowFillWarnRatio)
		fmt.Printf("mapping_path: %s\n", cfg.MappingPath)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "sheet_preview_rows":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.SheetPreviewRows = i
		case "sheet_min_rows":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.SheetMinRows = i
		case "sheet_min_cols":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.SheetMinCols = i
		case "header_search_window":
			i, err := parsePositiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.HeaderSearchWindow = i
		case "fuzzy_threshold_default":
			f, err := parseRatio(key, val)
			if err != nil {
				return err
			}
			cfg.FuzzyThresholdDefault = f
		case "fuzzy_threshold_id":
			f, err := parseRatio(key, val)
			if err != nil {
				return err
			}
			cfg.FuzzyThresholdID = f
		case "coercion_warn_ratio":
			f, err := parseRatio(key, val)
			if err != nil {
				return err
			}
			cfg.CoercionWarnRatio = f
		case "unknown_warn_ratio":
			f, err := parseRatio(key, val)
			if err != nil {
				return err
			}
			cfg.UnknownWarnRatio = f
		case "low_fill_warn_ratio":
			f, err := parseRatio(key, val)
			if err != nil {
				return err
			}
			cfg.LowFillWarnRatio = f
		case "mapping_path":
			cfg.MappingPath = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func parsePositiveInt(key, val string) (int, error) {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
	}
	return i, nil
}

func parseRatio(key, val string) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, fmt.Errorf("invalid ratio for %s (expected 0-1): %v", key, val)
	}
	return f, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
