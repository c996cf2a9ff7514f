package redflags

import (
	"math"
	"testing"

	"github.com/KaramelBytes/smelens-cli/internal/table"
)

func TestComputeNaNSafety(t *testing.T) {
	tb := table.New(1)
	tb.SetStrings("financing_id", []string{"F001"})
	tb.SetFloats("net_margin", []float64{math.NaN()})
	tb.SetFloats("current_ratio", []float64{1.2})

	out := Compute(tb)
	if len(out) != 1 {
		t.Fatalf("got %d companies, want 1", len(out))
	}
	f := out[0]
	if f.FlagNetMargin {
		t.Fatalf("missing net_margin must not trip the flag")
	}
	if !f.FlagCurrentRatio {
		t.Fatalf("current_ratio 1.2 below 1.8 must trip the flag")
	}
	if f.RedFlagCount != 1 {
		t.Fatalf("RedFlagCount = %d, want 1", f.RedFlagCount)
	}
	if f.RedFlagList != "current_ratio" {
		t.Fatalf("RedFlagList = %q, want current_ratio", f.RedFlagList)
	}
}

func TestComputeWorstCaseAggregation(t *testing.T) {
	tb := table.New(3)
	tb.SetStrings("financing_id", []string{"F001", "F001", "F001"})
	tb.SetFloats("net_margin", []float64{12, math.NaN(), 5})
	tb.SetFloats("current_ratio", []float64{2.5, 2.0, math.NaN()})

	out := Compute(tb)
	if len(out) != 1 {
		t.Fatalf("got %d companies, want 1", len(out))
	}
	f := out[0]
	if f.NetMargin != 5 {
		t.Fatalf("NetMargin = %v, want worst observed 5", f.NetMargin)
	}
	if f.CurrentRatio != 2.0 {
		t.Fatalf("CurrentRatio = %v, want worst observed 2.0", f.CurrentRatio)
	}
	if !f.FlagNetMargin || f.FlagCurrentRatio {
		t.Fatalf("flags = %v/%v, want net_margin only", f.FlagNetMargin, f.FlagCurrentRatio)
	}
}

func TestComputeRuleListOrderIsFixed(t *testing.T) {
	tb := table.New(1)
	tb.SetStrings("financing_id", []string{"F001"})
	tb.SetFloats("net_margin", []float64{1})
	tb.SetFloats("current_ratio", []float64{1})
	tb.SetFloats("gearing_ratio", []float64{0.5})
	tb.SetFloats("interest_coverage", []float64{2})

	out := Compute(tb)
	if out[0].RedFlagCount != 4 {
		t.Fatalf("RedFlagCount = %d, want 4", out[0].RedFlagCount)
	}
	if out[0].RedFlagList != "net_margin,current_ratio,gearing_ratio,interest_coverage" {
		t.Fatalf("RedFlagList = %q, want fixed rule order", out[0].RedFlagList)
	}
}

func TestComputeSorting(t *testing.T) {
	tb := table.New(3)
	tb.SetStrings("financing_id", []string{"F003", "F001", "F002"})
	tb.SetFloats("net_margin", []float64{20, 5, 5})
	tb.SetFloats("current_ratio", []float64{3, 1, 3})

	out := Compute(tb)
	if len(out) != 3 {
		t.Fatalf("got %d companies, want 3", len(out))
	}
	// F001 has 2 flags, F002 has 1, F003 none; ties would break by ID.
	if out[0].FinancingID != "F001" || out[1].FinancingID != "F002" || out[2].FinancingID != "F003" {
		t.Fatalf("order = %s,%s,%s, want F001,F002,F003",
			out[0].FinancingID, out[1].FinancingID, out[2].FinancingID)
	}
	if out[0].RedFlagCount != 2 || out[1].RedFlagCount != 1 || out[2].RedFlagCount != 0 {
		t.Fatalf("counts = %d,%d,%d, want 2,1,0",
			out[0].RedFlagCount, out[1].RedFlagCount, out[2].RedFlagCount)
	}
}

func TestComputeThresholdIsStrict(t *testing.T) {
	tb := table.New(1)
	tb.SetStrings("financing_id", []string{"F001"})
	tb.SetFloats("net_margin", []float64{8.0})
	tb.SetFloats("current_ratio", []float64{1.8})

	out := Compute(tb)
	if out[0].RedFlagCount != 0 {
		t.Fatalf("values exactly at the threshold must not trip flags, got list %q", out[0].RedFlagList)
	}
}

func TestComputeFallbacks(t *testing.T) {
	// sme_id stands in for a missing financing_id, net_ratio for net_margin,
	// and text ratio cells are coerced.
	tb := table.New(2)
	tb.SetStrings("sme_id", []string{" A001 ", ""})
	tb.SetStrings("net_ratio", []string{"5.5", "x"})
	tb.SetStrings("industry", []string{"Retail", "Services"})
	tb.SetStrings("region", []string{"Johor", "Penang"})

	out := Compute(tb)
	if len(out) != 2 {
		t.Fatalf("got %d companies, want 2", len(out))
	}
	if out[0].FinancingID != "A001" {
		t.Fatalf("FinancingID = %q, want trimmed A001", out[0].FinancingID)
	}
	if out[0].NetMargin != 5.5 || !out[0].FlagNetMargin {
		t.Fatalf("net_ratio fallback: margin=%v flag=%v", out[0].NetMargin, out[0].FlagNetMargin)
	}
	if out[0].Industry != "Retail" || out[0].Region != "Johor" {
		t.Fatalf("context = %q/%q, want Retail/Johor", out[0].Industry, out[0].Region)
	}
	if out[1].FinancingID != "Unknown" {
		t.Fatalf("blank id = %q, want Unknown", out[1].FinancingID)
	}
	if !math.IsNaN(out[1].NetMargin) || out[1].RedFlagCount != 0 {
		t.Fatalf("unparseable ratio must stay missing: %v flags=%d", out[1].NetMargin, out[1].RedFlagCount)
	}
}

func TestComputeNoUsableColumns(t *testing.T) {
	noID := table.New(1)
	noID.SetFloats("net_margin", []float64{1})
	if got := Compute(noID); got != nil {
		t.Fatalf("expected nil without a company column, got %v", got)
	}

	noRatios := table.New(1)
	noRatios.SetStrings("financing_id", []string{"F001"})
	if got := Compute(noRatios); got != nil {
		t.Fatalf("expected nil without ratio columns, got %v", got)
	}

	empty := table.New(0)
	empty.SetStrings("financing_id", nil)
	empty.SetFloats("net_margin", nil)
	if got := Compute(empty); got != nil {
		t.Fatalf("expected nil for empty table, got %v", got)
	}
}
