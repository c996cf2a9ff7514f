package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/smelens-cli/internal/table"
)

// KPIs summarizes a cleaned (and possibly filtered) portfolio table. Aggregates
// over all-missing fields are NaN, not zero; only TotalLoanAmount treats
// missing as 0.
type KPIs struct {
	Count                   int
	TotalLoanAmount         float64
	MedianLoanAmount        float64
	AvgProbabilityOfDefault float64
	WeakRepaymentRate       float64
	LitigationRate          float64
}

// ComputeKPIs computes portfolio-level summary statistics. Missing values are
// ignored by every aggregate.
func ComputeKPIs(t *table.Table) KPIs {
	k := KPIs{
		Count:                   t.Len(),
		MedianLoanAmount:        math.NaN(),
		AvgProbabilityOfDefault: math.NaN(),
		WeakRepaymentRate:       math.NaN(),
		LitigationRate:          math.NaN(),
	}
	if k.Count == 0 {
		return k
	}

	if loan, ok := t.Floats("loan_amount"); ok {
		known := knownValues(loan)
		for _, v := range known {
			k.TotalLoanAmount += v
		}
		if len(known) > 0 {
			k.MedianLoanAmount = median(known)
		}
	}
	if pd, ok := t.Floats("probability_of_default"); ok {
		if known := knownValues(pd); len(known) > 0 {
			sum := 0.0
			for _, v := range known {
				sum += v
			}
			k.AvgProbabilityOfDefault = sum / float64(len(known))
		}
	}
	if weak, ok := t.Bools("is_weak_repayment"); ok {
		k.WeakRepaymentRate = boolRate(weak)
	}
	if litig, ok := t.Bools("is_litigation"); ok {
		k.LitigationRate = boolRate(litig)
	}
	return k
}

// GroupWeakRate is the weak-repayment rate within one categorical group,
// shaped for the presentation layer's bar charts.
type GroupWeakRate struct {
	Key         string
	Count       int
	WeakCount   int
	WeakRatePct float64
}

// WeakRateBy groups the table by a categorical column and computes the
// weak-repayment rate per group, sorted by rate descending then group size
// descending. Returns nil when the grouping or flag column is absent.
func WeakRateBy(t *table.Table, col string) []GroupWeakRate {
	keys, ok := t.Strings(col)
	if !ok {
		return nil
	}
	weak, ok := t.Bools("is_weak_repayment")
	if !ok {
		return nil
	}

	counts := make(map[string]*GroupWeakRate)
	var order []string
	for i, key := range keys {
		g := counts[key]
		if g == nil {
			g = &GroupWeakRate{Key: key}
			counts[key] = g
			order = append(order, key)
		}
		g.Count++
		if weak[i] {
			g.WeakCount++
		}
	}

	out := make([]GroupWeakRate, 0, len(order))
	for _, key := range order {
		g := counts[key]
		g.WeakRatePct = float64(g.WeakCount) * 100 / float64(g.Count)
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WeakRatePct != out[j].WeakRatePct {
			return out[i].WeakRatePct > out[j].WeakRatePct
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// FormatCurrency renders a Malaysian Ringgit amount with thousands separators
// and no decimals, or "-" when the value is undefined.
func FormatCurrency(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(math.Round(v)), 'f', 0, 64)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := "RM " + strings.Join(parts, ",")
	if neg {
		out = "RM -" + strings.Join(parts, ",")
	}
	return out
}

// FormatPercent renders a 0-1 rate as a percentage with one decimal, or "-"
// when the value is undefined.
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

func knownValues(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func boolRate(vals []bool) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	n := 0
	for _, v := range vals {
		if v {
			n++
		}
	}
	return float64(n) / float64(len(vals))
}

func median(vals []float64) float64 {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	n := len(cp)
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}
