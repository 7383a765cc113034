package analysis

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool { return math.Abs(a-b) <= 1e-12*math.Max(1, math.Abs(b)) }

func TestSpeedup_RatioToFirst(t *testing.T) {
	times := []float64{100, 52, 27.5, 14.2}
	got := Speedup(times)
	if len(got) != len(times) {
		t.Fatalf("len=%d want %d", len(got), len(times))
	}
	if got[0] != 1.0 {
		t.Fatalf("speedup[0]=%v want 1", got[0])
	}
	for i := range times {
		if want := times[0] / times[i]; !approxEqual(got[i], want) {
			t.Fatalf("speedup[%d]=%v want %v", i, got[i], want)
		}
	}
	// input untouched
	if times[1] != 52 {
		t.Fatalf("input mutated: %v", times)
	}
}

func TestSpeedup_EdgeCases(t *testing.T) {
	if got := Speedup(nil); len(got) != 0 {
		t.Fatalf("empty input should give empty output, got %v", got)
	}
	got := Speedup([]float64{100, 0})
	if !math.IsInf(got[1], 1) {
		t.Fatalf("zero time should yield +Inf, got %v", got[1])
	}
	got = Speedup([]float64{0, 0})
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Fatalf("zero baseline over zero should yield NaN, got %v", got)
	}
}

func TestIdeal(t *testing.T) {
	cores := []int{1, 2, 4, 8}
	strong := Strong.Ideal(cores)
	weak := Weak.Ideal(cores)
	if len(strong) != 4 || len(weak) != 4 {
		t.Fatalf("ideal lengths strong=%d weak=%d", len(strong), len(weak))
	}
	for i, c := range cores {
		if strong[i] != float64(c) {
			t.Fatalf("strong ideal[%d]=%v want %d", i, strong[i], c)
		}
		if weak[i] != 1 {
			t.Fatalf("weak ideal[%d]=%v want 1", i, weak[i])
		}
	}
}

func TestEfficiency(t *testing.T) {
	sp := []float64{1, 1.8, 3.2}
	cores := []int{1, 2, 4}
	eff := Efficiency(Strong, sp, cores)
	want := []float64{1, 0.9, 0.8}
	for i := range want {
		if !approxEqual(eff[i], want[i]) {
			t.Fatalf("strong eff[%d]=%v want %v", i, eff[i], want[i])
		}
	}
	weak := Efficiency(Weak, []float64{1, 0.95}, []int{1, 2})
	if weak[1] != 0.95 {
		t.Fatalf("weak efficiency should equal speedup, got %v", weak)
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"strong", Strong, true},
		{"Forte", Strong, true},
		{" weak ", Weak, true},
		{"faible", Weak, true},
		{"linear", Strong, false},
	}
	for _, c := range cases {
		got, err := ParseMode(c.in)
		if (err == nil) != c.ok {
			t.Fatalf("ParseMode(%q) err=%v want ok=%v", c.in, err, c.ok)
		}
		if c.ok && got != c.want {
			t.Fatalf("ParseMode(%q)=%v want %v", c.in, got, c.want)
		}
	}
	if Strong.FileLabel() != "forte" || Weak.FileLabel() != "faible" {
		t.Fatalf("unexpected file labels %q %q", Strong.FileLabel(), Weak.FileLabel())
	}
}
