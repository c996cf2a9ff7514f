package redflags

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/smelens-cli/internal/table"
)

// Fixed rule thresholds. A ratio below its threshold trips the flag; a
// missing ratio never does.
const (
	netMarginThreshold        = 8.0
	currentRatioThreshold     = 1.8
	gearingRatioThreshold     = 0.85
	interestCoverageThreshold = 15.0
)

// ruleOrder fixes the order rule names appear in RedFlagList.
var ruleOrder = [4]string{"net_margin", "current_ratio", "gearing_ratio", "interest_coverage"}

// CompanyFlags is the per-company outcome of the four threshold rules. Ratio
// values are the worst (minimum) observed across the company's rows and stay
// NaN when never observed.
type CompanyFlags struct {
	FinancingID string
	Industry    string
	Region      string

	NetMargin        float64
	CurrentRatio     float64
	GearingRatio     float64
	InterestCoverage float64

	FlagNetMargin        bool
	FlagCurrentRatio     bool
	FlagGearingRatio     bool
	FlagInterestCoverage bool

	RedFlagCount int
	RedFlagList  string
}

// Compute aggregates the cleaned table per company and applies the four
// rules. It returns nil when no usable company identifier column exists or no
// ratio column is present at all. Results are sorted by flag count descending,
// then company identifier ascending.
func Compute(cleaned *table.Table) []CompanyFlags {
	companyCol := ""
	for _, c := range []string{"financing_id", "sme_id"} {
		if cleaned.Has(c) {
			companyCol = c
			break
		}
	}
	if companyCol == "" || cleaned.Len() == 0 {
		return nil
	}

	// net_margin falls back to net_ratio; the other ratios are used as-is.
	ratioCols := map[string]string{}
	if cleaned.Has("net_margin") {
		ratioCols["net_margin"] = "net_margin"
	} else if cleaned.Has("net_ratio") {
		ratioCols["net_margin"] = "net_ratio"
	}
	for _, c := range []string{"current_ratio", "gearing_ratio", "interest_coverage"} {
		if cleaned.Has(c) {
			ratioCols[c] = c
		}
	}
	if len(ratioCols) == 0 {
		return nil
	}

	type acc struct {
		ratios   map[string]float64
		industry string
		region   string
	}
	groups := make(map[string]*acc)
	var order []string

	hasIndustry := cleaned.Has("industry")
	hasRegion := cleaned.Has("region")

	for i := 0; i < cleaned.Len(); i++ {
		id := strings.TrimSpace(cleaned.CellString(companyCol, i))
		if id == "" {
			id = "Unknown"
		}
		g := groups[id]
		if g == nil {
			g = &acc{ratios: map[string]float64{
				"net_margin":        math.NaN(),
				"current_ratio":     math.NaN(),
				"gearing_ratio":     math.NaN(),
				"interest_coverage": math.NaN(),
			}}
			if hasIndustry {
				g.industry = cleaned.CellString("industry", i)
			}
			if hasRegion {
				g.region = cleaned.CellString("region", i)
			}
			groups[id] = g
			order = append(order, id)
		}
		for canonical, src := range ratioCols {
			v := coerceCell(cleaned, src, i)
			if math.IsNaN(v) {
				continue
			}
			if cur := g.ratios[canonical]; math.IsNaN(cur) || v < cur {
				g.ratios[canonical] = v
			}
		}
	}

	out := make([]CompanyFlags, 0, len(groups))
	for _, id := range order {
		g := groups[id]
		cf := CompanyFlags{
			FinancingID:      id,
			Industry:         g.industry,
			Region:           g.region,
			NetMargin:        g.ratios["net_margin"],
			CurrentRatio:     g.ratios["current_ratio"],
			GearingRatio:     g.ratios["gearing_ratio"],
			InterestCoverage: g.ratios["interest_coverage"],
		}
		cf.FlagNetMargin = below(cf.NetMargin, netMarginThreshold)
		cf.FlagCurrentRatio = below(cf.CurrentRatio, currentRatioThreshold)
		cf.FlagGearingRatio = below(cf.GearingRatio, gearingRatioThreshold)
		cf.FlagInterestCoverage = below(cf.InterestCoverage, interestCoverageThreshold)

		flags := [4]bool{cf.FlagNetMargin, cf.FlagCurrentRatio, cf.FlagGearingRatio, cf.FlagInterestCoverage}
		var triggered []string
		for i, on := range flags {
			if on {
				cf.RedFlagCount++
				triggered = append(triggered, ruleOrder[i])
			}
		}
		cf.RedFlagList = strings.Join(triggered, ",")
		out = append(out, cf)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RedFlagCount != out[j].RedFlagCount {
			return out[i].RedFlagCount > out[j].RedFlagCount
		}
		return out[i].FinancingID < out[j].FinancingID
	})
	return out
}

func below(v, threshold float64) bool {
	return !math.IsNaN(v) && v < threshold
}

var numericStripRe = regexp.MustCompile(`[^0-9.\-+eE]+`)

// coerceCell re-applies defensive numeric coercion: red-flag input may be a
// cleaned float column or an untouched text column.
func coerceCell(t *table.Table, col string, i int) float64 {
	if vals, ok := t.Floats(col); ok {
		return vals[i]
	}
	s := strings.TrimSpace(numericStripRe.ReplaceAllString(t.CellString(col, i), ""))
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}
