package tet19

import (
	"reflect"
	"testing"
)

func TestScaleDegrees(t *testing.T) {
	cases := []struct {
		name    string
		pattern []int
		root    int
		want    []int
	}{
		{"major from root", ScalePatterns["major_diatonic"], 0, []int{0, 3, 6, 7, 10, 13, 16}},
		{"minor from root", ScalePatterns["minor_diatonic"], 0, []int{0, 3, 4, 7, 10, 11, 14}},
		{"pentatonic transposed", ScalePatterns["pentatonic"], 5, []int{5, 9, 12, 16, 20}},
		{"empty pattern", nil, 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScaleDegrees(tc.pattern, tc.root)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ScaleDegrees(%v, %d) = %v, want %v", tc.pattern, tc.root, got, tc.want)
			}
		})
	}
}

func TestChromaticCoversOctave(t *testing.T) {
	got := ScaleDegrees(ScalePatterns["chromatic"], 0)
	if len(got) != 19 {
		t.Fatalf("len = %d, want 19", len(got))
	}
	for i, d := range got {
		if d != i {
			t.Fatalf("degree %d = %d, want %d", i, d, i)
		}
	}
}
