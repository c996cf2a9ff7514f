package metrics

import (
	"math"
	"testing"

	"github.com/KaramelBytes/smelens-cli/internal/table"
)

func TestComputeKPIs(t *testing.T) {
	tb := table.New(4)
	tb.SetFloats("loan_amount", []float64{100000, 200000, math.NaN(), 300000})
	tb.SetFloats("probability_of_default", []float64{0.10, 0.20, math.NaN(), math.NaN()})
	tb.SetBools("is_weak_repayment", []bool{true, false, false, true})
	tb.SetBools("is_litigation", []bool{false, false, false, true})

	k := ComputeKPIs(tb)
	if k.Count != 4 {
		t.Fatalf("Count = %d, want 4", k.Count)
	}
	if k.TotalLoanAmount != 600000 {
		t.Fatalf("TotalLoanAmount = %v, want 600000 (missing treated as 0)", k.TotalLoanAmount)
	}
	if k.MedianLoanAmount != 200000 {
		t.Fatalf("MedianLoanAmount = %v, want 200000 (missing excluded)", k.MedianLoanAmount)
	}
	if math.Abs(k.AvgProbabilityOfDefault-0.15) > 1e-9 {
		t.Fatalf("AvgProbabilityOfDefault = %v, want 0.15", k.AvgProbabilityOfDefault)
	}
	if k.WeakRepaymentRate != 0.5 {
		t.Fatalf("WeakRepaymentRate = %v, want 0.5", k.WeakRepaymentRate)
	}
	if k.LitigationRate != 0.25 {
		t.Fatalf("LitigationRate = %v, want 0.25", k.LitigationRate)
	}
}

func TestComputeKPIsEmptyTable(t *testing.T) {
	k := ComputeKPIs(table.New(0))
	if k.Count != 0 {
		t.Fatalf("Count = %d, want 0", k.Count)
	}
	if k.TotalLoanAmount != 0 {
		t.Fatalf("TotalLoanAmount = %v, want 0", k.TotalLoanAmount)
	}
	for name, v := range map[string]float64{
		"MedianLoanAmount":        k.MedianLoanAmount,
		"AvgProbabilityOfDefault": k.AvgProbabilityOfDefault,
		"WeakRepaymentRate":       k.WeakRepaymentRate,
		"LitigationRate":          k.LitigationRate,
	} {
		if !math.IsNaN(v) {
			t.Fatalf("%s = %v, want NaN for empty table", name, v)
		}
	}
}

func TestComputeKPIsAllMissing(t *testing.T) {
	tb := table.New(2)
	tb.SetFloats("loan_amount", []float64{math.NaN(), math.NaN()})
	tb.SetFloats("probability_of_default", []float64{math.NaN(), math.NaN()})

	k := ComputeKPIs(tb)
	if k.TotalLoanAmount != 0 {
		t.Fatalf("TotalLoanAmount = %v, want 0", k.TotalLoanAmount)
	}
	if !math.IsNaN(k.MedianLoanAmount) || !math.IsNaN(k.AvgProbabilityOfDefault) {
		t.Fatalf("all-missing aggregates must stay NaN: median=%v avg=%v",
			k.MedianLoanAmount, k.AvgProbabilityOfDefault)
	}
	if !math.IsNaN(k.WeakRepaymentRate) {
		t.Fatalf("WeakRepaymentRate = %v, want NaN without flag column", k.WeakRepaymentRate)
	}
}

func TestWeakRateBy(t *testing.T) {
	tb := table.New(5)
	tb.SetStrings("industry", []string{"Retail", "Retail", "Services", "Services", "Services"})
	tb.SetBools("is_weak_repayment", []bool{true, true, true, false, false})

	got := WeakRateBy(tb, "industry")
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if got[0].Key != "Retail" || got[0].WeakRatePct != 100 || got[0].Count != 2 {
		t.Fatalf("group 0 = %+v, want Retail 100%% of 2", got[0])
	}
	if got[1].Key != "Services" || math.Abs(got[1].WeakRatePct-100.0/3) > 1e-9 {
		t.Fatalf("group 1 = %+v, want Services 33.3%% of 3", got[1])
	}
}

func TestWeakRateByTieBreaks(t *testing.T) {
	tb := table.New(4)
	tb.SetStrings("region", []string{"Johor", "Johor", "Johor", "Kedah"})
	tb.SetBools("is_weak_repayment", []bool{false, false, false, false})

	got := WeakRateBy(tb, "region")
	// Equal rates: larger group first.
	if got[0].Key != "Johor" || got[1].Key != "Kedah" {
		t.Fatalf("order = %s,%s, want Johor,Kedah", got[0].Key, got[1].Key)
	}
}

func TestWeakRateByMissingColumns(t *testing.T) {
	tb := table.New(1)
	tb.SetStrings("industry", []string{"Retail"})
	if got := WeakRateBy(tb, "industry"); got != nil {
		t.Fatalf("expected nil without flag column, got %v", got)
	}
	if got := WeakRateBy(tb, "absent"); got != nil {
		t.Fatalf("expected nil for absent grouping column, got %v", got)
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1234, "RM 1,234"},
		{1234567.6, "RM 1,234,568"},
		{950, "RM 950"},
		{0, "RM 0"},
		{-45000, "RM -45,000"},
		{math.NaN(), "-"},
	}
	for _, c := range cases {
		if got := FormatCurrency(c.in); got != c.want {
			t.Fatalf("FormatCurrency(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0.123, "12.3%"},
		{0, "0.0%"},
		{1, "100.0%"},
		{math.NaN(), "-"},
	}
	for _, c := range cases {
		if got := FormatPercent(c.in); got != c.want {
			t.Fatalf("FormatPercent(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
