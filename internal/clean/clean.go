package clean

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/KaramelBytes/smelens-cli/internal/config"
	"github.com/KaramelBytes/smelens-cli/internal/schema"
	"github.com/KaramelBytes/smelens-cli/internal/table"
)

// CoercionStats records how many originally non-empty values a numeric field
// lost to coercion, and that count as a ratio of all rows.
type CoercionStats struct {
	IntroducedMissing int     `json:"introduced_missing"`
	IntroducedRatio   float64 `json:"introduced_ratio"`
}

// QualityReport describes the data-quality outcome of one cleaning run. It is
// produced fresh on every run and never mutated afterwards.
type QualityReport struct {
	RunID                 string                         `json:"run_id"`
	MappingIncomplete     bool                           `json:"mapping_incomplete"`
	MissingRequiredFields []schema.Field                 `json:"missing_required_fields,omitempty"`
	MissingnessPct        map[schema.Field]float64       `json:"missingness_pct"`
	Coercions             map[schema.Field]CoercionStats `json:"coercions"`
	LitigationMapped      bool                           `json:"litigation_mapped"`
	Warnings              []string                       `json:"warnings,omitempty"`
}

// Clean applies the mapping to the raw table and returns the enriched table
// plus a quality report. The output always has exactly as many rows as the
// input: data problems degrade to warnings and missing values, never errors.
func Clean(raw *table.Table, m schema.Mapping, cfg config.Pipeline) (*table.Table, *QualityReport) {
	out := raw.Clone()
	rep := &QualityReport{
		RunID:          uuid.NewString(),
		MissingnessPct: make(map[schema.Field]float64),
		Coercions:      make(map[schema.Field]CoercionStats),
	}

	rep.MissingRequiredFields = m.MissingRequired()
	rep.MappingIncomplete = len(rep.MissingRequiredFields) > 0
	rep.LitigationMapped = m[schema.FieldLitigationStatus] != ""

	for _, f := range schema.Fields() {
		applyFieldSource(out, f, m[f])
	}

	for _, f := range schema.CategoricalFields() {
		out.SetStrings(string(f), normalizeCategory(columnStrings(out, string(f))))
	}

	for _, f := range schema.NumericFields() {
		vals, stats := coerceColumn(out.Column(string(f)))
		out.SetFloats(string(f), vals)
		rep.Coercions[f] = stats
		if stats.IntroducedRatio > cfg.CoercionWarnRatio {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf(
				"Numeric conversion introduced >%.0f%% missing values for `%s` (%.0f%% of rows).",
				cfg.CoercionWarnRatio*100, f, stats.IntroducedRatio*100))
		}
	}

	if rescaleProbability(out) {
		rep.Warnings = append(rep.Warnings,
			"Detected probability_of_default values in 0-100 range; converted to 0-1 probability scale.")
	}

	emp, _ := out.Floats(string(schema.FieldEmployeeCount))
	out.SetStrings("size_bucket", sizeBuckets(emp))

	margin, _ := out.Floats(string(schema.FieldNetMargin))
	out.SetStrings("margin_bucket", marginBuckets(margin))

	repay, _ := out.Strings(string(schema.FieldRepaymentStatus))
	out.SetBools("is_weak_repayment", weakRepayment(repay))

	litigation := make([]bool, out.Len())
	if rep.LitigationMapped {
		status, _ := out.Strings(string(schema.FieldLitigationStatus))
		litigation = litigationFlags(status)
	}
	out.SetBools("is_litigation", litigation)

	addQualityWarnings(out, rep, cfg)

	for _, f := range schema.RequiredFields() {
		rep.MissingnessPct[f] = missingPct(out.Column(string(f)))
	}

	return out, rep
}

// applyFieldSource decides which column feeds a canonical field: a mapped
// source column wins, an existing column named like the canonical field is
// kept untouched, and otherwise the field starts entirely empty.
func applyFieldSource(t *table.Table, f schema.Field, src string) {
	name := string(f)
	if src != "" && t.Has(src) {
		t.SetColumn(name, t.Column(src))
		return
	}
	if t.Has(name) {
		return
	}
	t.SetStrings(name, make([]string, t.Len()))
}

// columnStrings renders any column as text values, regardless of kind.
func columnStrings(t *table.Table, name string) []string {
	out := make([]string, t.Len())
	for i := range out {
		out[i] = t.CellString(name, i)
	}
	return out
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeCategory trims, collapses inner whitespace, title-cases, and turns
// empty values into the literal category Unknown.
func normalizeCategory(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			out[i] = "Unknown"
			continue
		}
		v = whitespaceRe.ReplaceAllString(v, " ")
		out[i] = titleCase(strings.ToLower(v))
	}
	return out
}

// titleCase uppercases the first letter of every word, where a word starts
// after any non-letter. Input is expected lowercased.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if isLetter && !prevLetter {
			b.WriteRune(r - 'a' + 'A')
		} else {
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}

var numericStripRe = regexp.MustCompile(`[^0-9.\-+eE]+`)

// coerceColumn turns a column into floats. Already-numeric columns pass
// through untouched. Text values are stripped of thousands separators, the RM
// currency marker, percent signs, and any other non-numeric characters before
// parsing; non-empty values that still fail to parse become missing and are
// counted.
func coerceColumn(c *table.Column) ([]float64, CoercionStats) {
	var stats CoercionStats
	if c == nil {
		return nil, stats
	}
	if c.Kind == table.Float {
		out := append([]float64(nil), c.Floats...)
		return out, stats
	}

	var src []string
	switch c.Kind {
	case table.Bool:
		src = make([]string, len(c.Bools))
		for i, v := range c.Bools {
			src[i] = strconv.FormatBool(v)
		}
	default:
		src = c.Strings
	}

	out := make([]float64, len(src))
	for i, v := range src {
		trimmed := strings.TrimSpace(v)
		nonEmpty := trimmed != ""
		cleaned := strings.ReplaceAll(trimmed, ",", "")
		cleaned = strings.ReplaceAll(cleaned, "RM", "")
		cleaned = strings.ReplaceAll(cleaned, "%", "")
		cleaned = numericStripRe.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSpace(cleaned)

		f, err := strconv.ParseFloat(cleaned, 64)
		if cleaned == "" || err != nil || math.IsInf(f, 0) {
			out[i] = math.NaN()
			if nonEmpty {
				stats.IntroducedMissing++
			}
			continue
		}
		out[i] = f
	}
	if len(src) > 0 {
		stats.IntroducedRatio = float64(stats.IntroducedMissing) / float64(len(src))
	}
	return out, stats
}

// rescaleProbability divides probability_of_default by 100 when the column
// looks like percentages: at least 5 known values with a median in (1, 100].
// Reports whether the conversion happened.
func rescaleProbability(t *table.Table) bool {
	vals, ok := t.Floats(string(schema.FieldProbabilityOfDefault))
	if !ok {
		return false
	}
	known := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			known = append(known, v)
		}
	}
	if len(known) < 5 {
		return false
	}
	med := median(known)
	if !(med > 1 && med <= 100) {
		return false
	}
	scaled := make([]float64, len(vals))
	for i, v := range vals {
		scaled[i] = v / 100
	}
	t.SetFloats(string(schema.FieldProbabilityOfDefault), scaled)
	return true
}

func sizeBuckets(emp []float64) []string {
	out := make([]string, len(emp))
	for i, v := range emp {
		switch {
		case math.IsNaN(v):
			out[i] = "Unknown"
		case v < 50:
			out[i] = "<50"
		case v <= 149:
			out[i] = "50-149"
		default:
			out[i] = "150+"
		}
	}
	return out
}

var quartileLabels = [4]string{"Q1 (Low)", "Q2", "Q3", "Q4 (High)"}

// marginBuckets labels net margin values by quartile when the data supports
// it. Two independent conditions force the fixed-edge fallback: fewer than 20
// known values, or quartile cut points that fail to produce 4 distinct bins.
func marginBuckets(margin []float64) []string {
	known := make([]float64, 0, len(margin))
	for _, v := range margin {
		if !math.IsNaN(v) {
			known = append(known, v)
		}
	}
	if len(known) < 20 {
		return fixedMarginBuckets(margin)
	}

	sort.Float64s(known)
	edges := []float64{
		known[0],
		quantile(known, 0.25),
		quantile(known, 0.50),
		quantile(known, 0.75),
		known[len(known)-1],
	}
	distinct := edges[:1]
	for _, e := range edges[1:] {
		if e != distinct[len(distinct)-1] {
			distinct = append(distinct, e)
		}
	}
	if len(distinct)-1 < 4 {
		return fixedMarginBuckets(margin)
	}

	out := make([]string, len(margin))
	for i, v := range margin {
		if math.IsNaN(v) {
			out[i] = "Unknown"
			continue
		}
		// Right-closed bins; the lowest bin also includes its left edge.
		label := quartileLabels[3]
		for q := 0; q < 4; q++ {
			if v <= edges[q+1] {
				label = quartileLabels[q]
				break
			}
		}
		out[i] = label
	}
	return out
}

func fixedMarginBuckets(margin []float64) []string {
	out := make([]string, len(margin))
	for i, v := range margin {
		switch {
		case math.IsNaN(v):
			out[i] = "Unknown"
		case v <= 0:
			out[i] = "<=0"
		case v <= 5:
			out[i] = "0-5"
		case v <= 10:
			out[i] = "5-10"
		default:
			out[i] = "10+"
		}
	}
	return out
}

var weakTerms = []string{"weak", "poor", "delinquent", "late", "default"}

func weakRepayment(status []string) []bool {
	out := make([]bool, len(status))
	for i, s := range status {
		l := strings.ToLower(s)
		for _, term := range weakTerms {
			if strings.Contains(l, term) {
				out[i] = true
				break
			}
		}
	}
	return out
}

var (
	truthyTokens = map[string]bool{"yes": true, "y": true, "true": true, "1": true}
	falsyTokens  = map[string]bool{"no": true, "n": true, "false": true, "0": true}
	negationRe   = regexp.MustCompile(`\b(?:no|not)\b`)
)

// litigationFlags derives the litigation boolean from status text. Truthy
// tokens and the litig substring set the flag; exact falsy tokens and
// standalone no/not words suppress it. Negation wins ties, so "No Litigation"
// is false.
func litigationFlags(status []string) []bool {
	out := make([]bool, len(status))
	for i, s := range status {
		l := strings.ToLower(strings.TrimSpace(s))
		v := truthyTokens[l]
		if falsyTokens[l] {
			v = false
		}
		if strings.Contains(l, "litig") {
			v = true
		}
		if negationRe.MatchString(l) {
			v = false
		}
		out[i] = v
	}
	return out
}

// addQualityWarnings surfaces likely wrong mappings: categorical fields that
// cleaned to nearly all Unknown, and numeric fields that are nearly all
// missing. Only emitted when the mapping is otherwise complete, since an
// incomplete mapping already explains the gaps.
func addQualityWarnings(t *table.Table, rep *QualityReport, cfg config.Pipeline) {
	if rep.MappingIncomplete {
		return
	}
	for _, f := range []schema.Field{schema.FieldIndustry, schema.FieldRegion, schema.FieldLoanPurpose, schema.FieldRepaymentStatus} {
		vals, ok := t.Strings(string(f))
		if !ok {
			continue
		}
		unknownRate := 1.0
		if len(vals) > 0 {
			n := 0
			for _, v := range vals {
				if v == "Unknown" {
					n++
				}
			}
			unknownRate = float64(n) / float64(len(vals))
		}
		if unknownRate >= cfg.UnknownWarnRatio {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf(
				"`%s` is %.0f%% 'Unknown' after cleaning. Mapping may be incorrect.", f, unknownRate*100))
		}
	}
	for _, f := range schema.NumericFields() {
		vals, ok := t.Floats(string(f))
		if !ok {
			continue
		}
		fillRate := 0.0
		if len(vals) > 0 {
			n := 0
			for _, v := range vals {
				if !math.IsNaN(v) {
					n++
				}
			}
			fillRate = float64(n) / float64(len(vals))
		}
		if fillRate <= cfg.LowFillWarnRatio {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf(
				"`%s` is mostly missing after numeric conversion (%.0f%% missing). Mapping may be incorrect.",
				f, (1-fillRate)*100))
		}
	}
}

func missingPct(c *table.Column) float64 {
	if c == nil || c.Kind != table.Float || len(c.Floats) == 0 {
		return 0
	}
	n := 0
	for _, v := range c.Floats {
		if math.IsNaN(v) {
			n++
		}
	}
	return float64(n) * 100 / float64(len(c.Floats))
}

// median returns the middle value of an unsorted, NaN-free sample.
func median(vals []float64) float64 {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	return quantile(cp, 0.5)
}

// quantile interpolates linearly over a sorted, NaN-free sample.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
