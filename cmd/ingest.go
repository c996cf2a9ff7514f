package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/smelens-cli/internal/clean"
	"github.com/KaramelBytes/smelens-cli/internal/schema"
	"github.com/KaramelBytes/smelens-cli/internal/utils"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Inspect a spreadsheet: detected columns, field mapping, data quality",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := loadRaw(args[0])
		if err != nil {
			return err
		}
		m, source := resolveMapping(raw)
		_, rep := clean.Clean(raw, m, *cfg)

		if ingestJSON {
			out := struct {
				Columns []string             `json:"columns"`
				Mapping map[string]string    `json:"mapping"`
				Quality *clean.QualityReport `json:"quality"`
			}{Columns: raw.Names(), Mapping: mappingForOutput(m), Quality: rep}
			b, err := utils.PrettyJSON(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(b))
			return nil
		}

		fmt.Printf("✓ Ingested %s: %d rows, %d columns\n", args[0], raw.Len(), len(raw.Names()))
		fmt.Printf("\nField mapping (%s):\n", source)
		printMapping(m)
		if rep.MappingIncomplete {
			fmt.Printf("\n⚠ Mapping incomplete; missing required fields: %v\n", rep.MissingRequiredFields)
		}
		if len(rep.Warnings) > 0 {
			fmt.Println()
			printWarnings(rep.Warnings)
		}
		return nil
	},
}

func mappingForOutput(m schema.Mapping) map[string]string {
	out := make(map[string]string, len(m))
	for f, v := range m {
		out[string(f)] = v
	}
	return out
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "emit machine-readable JSON")
}
