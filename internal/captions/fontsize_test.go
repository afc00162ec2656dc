package captions

import "testing"

func TestAdjustFontSize(t *testing.T) {
	cases := []struct {
		name     string
		chars    int
		duration float64
		base     int
		want     int
	}{
		{"dense shrinks", 100, 5, 28, 24},
		{"dense floors at minimum", 100, 5, 18, 16},
		{"sparse grows", 10, 5, 28, 30},
		{"sparse ceilings at maximum", 10, 5, 47, 48},
		{"normal unchanged", 50, 5, 28, 28},
		{"zero duration unchanged", 100, 0, 28, 28},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AdjustFontSize(tc.chars, tc.duration, tc.base); got != tc.want {
				t.Fatalf("AdjustFontSize(%d, %g, %d) = %d, want %d", tc.chars, tc.duration, tc.base, got, tc.want)
			}
		})
	}
}
