package schema

import (
	"github.com/xrash/smetrics"

	"github.com/KaramelBytes/smelens-cli/internal/config"
)

// Mapping assigns each canonical field a raw column name. An empty value
// means the field is unset. A column never serves two fields.
type Mapping map[Field]string

// MissingRequired lists the required canonical fields the mapping leaves
// unset, in declared order.
func (m Mapping) MissingRequired() []Field {
	var out []Field
	for _, f := range RequiredFields() {
		if m[f] == "" {
			out = append(out, f)
		}
	}
	return out
}

// Complete reports whether every required canonical field is mapped.
func (m Mapping) Complete() bool {
	return len(m.MissingRequired()) == 0
}

// AutoDetect maps raw column names to canonical fields in two passes: exact
// synonym matches first, then fuzzy similarity against each field's synonym
// tokens. Columns are claimed as they are assigned, so no column is ever
// mapped twice. Fields are processed in declared order in both passes.
func AutoDetect(columns []string, cfg config.Pipeline) Mapping {
	tokens := make(map[string]string, len(columns))
	for _, c := range columns {
		tokens[c] = NormalizeToken(c)
	}
	claimed := make(map[string]bool, len(columns))

	mapping := make(Mapping, len(fields))
	for _, f := range fields {
		mapping[f] = ""
	}

	// Pass 1: exact synonym membership, first column in original order wins.
	for _, f := range fields {
		syns := Synonyms(f)
		for _, col := range columns {
			if claimed[col] {
				continue
			}
			tok := tokens[col]
			for _, s := range syns {
				if tok == s {
					mapping[f] = col
					claimed[col] = true
					break
				}
			}
			if mapping[f] != "" {
				break
			}
		}
	}

	// Pass 2: fuzzy similarity over the remaining columns.
	for _, f := range fields {
		if mapping[f] != "" {
			continue
		}
		threshold := cfg.FuzzyThresholdDefault
		if f == FieldSMEID {
			threshold = cfg.FuzzyThresholdID
		}
		bestCol := ""
		bestScore := 0.0
		for _, col := range columns {
			if claimed[col] {
				continue
			}
			s := 0.0
			for _, target := range Synonyms(f) {
				if v := Similarity(tokens[col], target); v > s {
					s = v
				}
			}
			if s > bestScore {
				bestScore = s
				bestCol = col
			}
		}
		if bestCol != "" && bestScore >= threshold {
			mapping[f] = bestCol
			claimed[bestCol] = true
		}
	}

	return mapping
}

// Similarity scores two tokens in [0,1] using Jaro-Winkler with standard
// parameters. Identical tokens score 1; empty tokens score 0 against
// anything non-identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, 0.7, 4)
}

// Validate drops mapping entries whose column no longer exists in the given
// column set. sme_id may remain unset; every other surviving entry points at
// a real column.
func Validate(m Mapping, columns []string) Mapping {
	cols := make(map[string]bool, len(columns))
	for _, c := range columns {
		cols[c] = true
	}
	out := make(Mapping, len(fields))
	for _, f := range fields {
		v := m[f]
		if v != "" && cols[v] {
			out[f] = v
			continue
		}
		out[f] = ""
	}
	return out
}
