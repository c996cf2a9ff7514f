package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/smelens-cli/internal/clean"
	"github.com/KaramelBytes/smelens-cli/internal/ingest"
	"github.com/KaramelBytes/smelens-cli/internal/schema"
	"github.com/KaramelBytes/smelens-cli/internal/table"
)

// loadRaw ingests a spreadsheet from disk with the active configuration.
func loadRaw(path string) (*table.Table, error) {
	return ingest.Ingest(ingest.FromPath(path), *cfg)
}

// resolveMapping returns the mapping to clean with: the saved mapping
// validated against the table's columns when one exists, otherwise a fresh
// auto-detection. The second return names which it was.
func resolveMapping(t *table.Table) (schema.Mapping, string) {
	store := schema.Store{Path: cfg.MappingPath}
	if saved, ok := store.Load(); ok {
		return schema.Validate(saved, t.Names()), "saved"
	}
	return schema.AutoDetect(t.Names(), *cfg), "auto-detected"
}

// runPipeline ingests, resolves the mapping, and cleans in one step.
func runPipeline(path string) (*table.Table, *clean.QualityReport, schema.Mapping, error) {
	raw, err := loadRaw(path)
	if err != nil {
		return nil, nil, nil, err
	}
	m, _ := resolveMapping(raw)
	cleaned, rep := clean.Clean(raw, m, *cfg)
	return cleaned, rep, m, nil
}

// parseFilters parses repeated --filter col=v1,v2 values.
func parseFilters(specs []string) (map[string][]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(specs))
	for _, s := range specs {
		col, vals, ok := strings.Cut(s, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --filter %q (expected col=v1,v2)", s)
		}
		out[col] = append(out[col], strings.Split(vals, ",")...)
	}
	return out, nil
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Println("⚠", w)
	}
}
