package tuning

import (
	"math"
	"testing"
)

func TestBaseDegreeIsExact(t *testing.T) {
	for _, steps := range []int{12, 19, 24, 31} {
		l := Layout{BaseFrequency: 220.0, BaseDegree: 0, StepsPerOctave: steps}
		if got := l.Frequency(0); got != 220.0 {
			t.Errorf("steps=%d: Frequency(0) = %g, want exactly 220", steps, got)
		}
	}
}

func TestOctaveDoubling(t *testing.T) {
	l := DefaultLayout()
	for _, d := range []int{-38, -19, -7, 0, 3, 19, 40} {
		lo := l.Frequency(d)
		hi := l.Frequency(d + l.StepsPerOctave)
		if ratio := hi / lo; math.Abs(ratio-2.0) > 1e-9 {
			t.Errorf("degree %d: octave ratio = %.12f, want 2", d, ratio)
		}
	}
}

func TestKnownFrequencies(t *testing.T) {
	l := DefaultLayout()
	cases := []struct {
		degree int
		want   float64
	}{
		{0, 220.0},
		{19, 440.0},
		{-19, 110.0},
		{38, 880.0},
	}
	for _, tc := range cases {
		got := l.Frequency(tc.degree)
		if math.Abs(got-tc.want) > 1e-6 {
			t.Errorf("Frequency(%d) = %f, want %f", tc.degree, got, tc.want)
		}
	}
}

func TestCentsPerStep(t *testing.T) {
	l := DefaultLayout()
	if got := l.CentsPerStep(); math.Abs(got-63.157894736842) > 1e-9 {
		t.Errorf("CentsPerStep() = %f, want ~63.158", got)
	}
}

func TestFrequencyAlwaysPositive(t *testing.T) {
	l := DefaultLayout()
	for _, d := range []int{-200, -50, 0, 50, 200} {
		if f := l.Frequency(d); f <= 0 {
			t.Errorf("Frequency(%d) = %g, want > 0", d, f)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		layout  Layout
		wantErr bool
	}{
		{"default", DefaultLayout(), false},
		{"zero steps", Layout{BaseFrequency: 220, StepsPerOctave: 0}, true},
		{"negative steps", Layout{BaseFrequency: 220, StepsPerOctave: -19}, true},
		{"zero base", Layout{BaseFrequency: 0, StepsPerOctave: 19}, true},
		{"negative base", Layout{BaseFrequency: -440, StepsPerOctave: 19}, true},
		{"nan base", Layout{BaseFrequency: math.NaN(), StepsPerOctave: 19}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.layout.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}
