package ocr

import "testing"

func TestNormalizeCleansOCRNoise(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"crlf and spaces", "7.  What   color\r\nA)\tGreen  \r\n", "7. What color\nA) Green"},
		{"bullets and checks", "► A) Green\n✔ CORRECT ANSWER: B", "A) Green\nCORRECT ANSWER: B"},
		{"yen marker noise", "¥ CORRECT ANSWER: B", "CORRECT ANSWER: B"},
		{"curly quotes", "“Blue” isn’t it", `"Blue" isn't it`},
		{"fullwidth folds", "Ｑ７． Ｗｈａｔ", "Q7. What"},
		{"blank runs collapse", "a\n\n\n\n\nb", "a\n\nb"},
		{"nbsp", "A) Green", "A) Green"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"7. What color is the sky?\nA) Green\nB) Blue\nC) Red\nD) Yellow\nCORRECT ANSWER: B\nExplanation: Rayleigh scattering.",
		"  ► Q 12 :  Ｆｕｔｕｒｅｓ\r\n\r\n\r\n\r\n(a) hedge  ",
		"é combining ✓́ after glyph",
		"\t\v\f mixed space　runs\n\n\n",
		"““nested”” ‘quotes’ ″seconds″",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeLine(t *testing.T) {
	t.Parallel()
	if got := NormalizeLine("  Rayleigh\n\nscattering.  "); got != "Rayleigh scattering." {
		t.Fatalf("expected %q, got %q", "Rayleigh scattering.", got)
	}
}
