package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/smelens-cli/internal/clean"
	"github.com/KaramelBytes/smelens-cli/internal/utils"
)

var (
	cleanOutput  string
	cleanFilters []string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Clean a spreadsheet and export the canonical table as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cleaned, rep, _, err := runPipeline(args[0])
		if err != nil {
			return err
		}
		keep, err := parseFilters(cleanFilters)
		if err != nil {
			return err
		}
		out := cleaned
		if keep != nil {
			out = clean.Filter(cleaned, keep)
		}

		fmt.Printf("✓ Cleaned %s: %d rows (run %s)\n", args[0], cleaned.Len(), rep.RunID)
		if keep != nil {
			fmt.Printf("✓ Filter kept %d of %d rows\n", out.Len(), cleaned.Len())
		}
		printWarnings(rep.Warnings)

		if cleanOutput != "" {
			b, err := out.CSVBytes()
			if err != nil {
				return fmt.Errorf("failed to encode CSV: %w", err)
			}
			if err := utils.SafeWriteFile(cleanOutput, b); err != nil {
				return fmt.Errorf("failed to write %s: %w", cleanOutput, err)
			}
			fmt.Println("✓ Wrote", cleanOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "write the cleaned table to a CSV file")
	cleanCmd.Flags().StringArrayVar(&cleanFilters, "filter", nil, "keep only rows matching col=v1,v2 (repeatable)")
}
