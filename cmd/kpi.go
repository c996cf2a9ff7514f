package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/smelens-cli/internal/clean"
	"github.com/KaramelBytes/smelens-cli/internal/metrics"
)

var (
	kpiFilters []string
	kpiBy      string
)

var kpiCmd = &cobra.Command{
	Use:   "kpi <file>",
	Short: "Compute portfolio KPIs over the cleaned table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cleaned, rep, _, err := runPipeline(args[0])
		if err != nil {
			return err
		}
		printWarnings(rep.Warnings)

		keep, err := parseFilters(kpiFilters)
		if err != nil {
			return err
		}
		if keep != nil {
			cleaned = clean.Filter(cleaned, keep)
		}

		k := metrics.ComputeKPIs(cleaned)
		fmt.Printf("Companies:                %d\n", k.Count)
		fmt.Printf("Total loan amount:        %s\n", metrics.FormatCurrency(k.TotalLoanAmount))
		fmt.Printf("Median loan amount:       %s\n", metrics.FormatCurrency(k.MedianLoanAmount))
		fmt.Printf("Avg default probability:  %s\n", metrics.FormatPercent(k.AvgProbabilityOfDefault))
		fmt.Printf("Weak repayment rate:      %s\n", metrics.FormatPercent(k.WeakRepaymentRate))
		fmt.Printf("Litigation rate:          %s\n", metrics.FormatPercent(k.LitigationRate))

		if kpiBy != "" {
			groups := metrics.WeakRateBy(cleaned, kpiBy)
			if groups == nil {
				fmt.Printf("⚠ Cannot group by %q: column missing or repayment flag absent\n", kpiBy)
				return nil
			}
			fmt.Printf("\nWeak repayment rate by %s:\n", kpiBy)
			for _, g := range groups {
				fmt.Printf("  %-24s %5.1f%%  (%d of %d)\n", g.Key, g.WeakRatePct, g.WeakCount, g.Count)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kpiCmd)
	kpiCmd.Flags().StringArrayVar(&kpiFilters, "filter", nil, "keep only rows matching col=v1,v2 (repeatable)")
	kpiCmd.Flags().StringVar(&kpiBy, "by", "", "also report weak-repayment rate grouped by this column")
}
