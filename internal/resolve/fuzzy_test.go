package resolve

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRatio(t *testing.T) {
	t.Parallel()
	cases := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"ab", "", 0},
		{"kitten", "sitting", 1 - 5.0/13.0},
		{"blue", "blur", 1 - 2.0/8.0},
	}
	for _, tc := range cases {
		if got := Ratio(tc.a, tc.b); !approx(got, tc.want) {
			t.Fatalf("Ratio(%q, %q): expected %.4f, got %.4f", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestTokenSetRatio(t *testing.T) {
	t.Parallel()
	if got := TokenSetRatio("Sky  BLUE", "blue sky"); got != 1 {
		t.Fatalf("expected order/case-insensitive match of 1, got %.4f", got)
	}
	if got := TokenSetRatio("Blue", "The sky is blue."); got != 1 {
		t.Fatalf("expected subset match of 1, got %.4f", got)
	}
	if got := TokenSetRatio("", "blue"); got != 0 {
		t.Fatalf("expected 0 for empty side, got %.4f", got)
	}
	if got := TokenSetRatio("Rayleigh scattering", "Green"); got >= AcceptThreshold {
		t.Fatalf("expected unrelated texts below threshold, got %.4f", got)
	}
	a := TokenSetRatio("interest rate swap", "interest rate future")
	b := TokenSetRatio("interest rate future", "interest rate swap")
	if !approx(a, b) {
		t.Fatalf("expected symmetric score, got %.4f and %.4f", a, b)
	}
	if a <= 0 || a >= 1 {
		t.Fatalf("expected partial overlap strictly between 0 and 1, got %.4f", a)
	}
}
