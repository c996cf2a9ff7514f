package cmd

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/smelens-cli/internal/redflags"
)

var flagsOnly bool

var flagsCmd = &cobra.Command{
	Use:   "flags <file>",
	Short: "Screen companies against the fixed red-flag rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cleaned, rep, _, err := runPipeline(args[0])
		if err != nil {
			return err
		}
		printWarnings(rep.Warnings)

		results := redflags.Compute(cleaned)
		if results == nil {
			fmt.Println("⚠ No company identifier or ratio columns found; nothing to screen")
			return nil
		}

		flagged := 0
		for _, r := range results {
			if r.RedFlagCount > 0 {
				flagged++
			}
		}
		fmt.Printf("✓ Screened %d companies: %d with red flags\n", len(results), flagged)

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COMPANY\tNET MARGIN\tCURRENT\tGEARING\tINT COVER\tFLAGS\tRULES")
		for _, r := range results {
			if flagsOnly && r.RedFlagCount == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				r.FinancingID,
				ratioCell(r.NetMargin), ratioCell(r.CurrentRatio),
				ratioCell(r.GearingRatio), ratioCell(r.InterestCoverage),
				r.RedFlagCount, r.RedFlagList)
		}
		return w.Flush()
	},
}

func ratioCell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func init() {
	rootCmd.AddCommand(flagsCmd)
	flagsCmd.Flags().BoolVar(&flagsOnly, "flagged-only", false, "show only companies with at least one red flag")
}
