package tet19

// ScalePatterns holds step patterns for common 19-TET scales, expressed
// in degrees per step. 19-TET offers many more; these are starting
// points.
var ScalePatterns = map[string][]int{
	"chromatic":      {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	"major_diatonic": {3, 3, 1, 3, 3, 3, 1},
	"minor_diatonic": {3, 1, 3, 3, 1, 3, 3},
	"pentatonic":     {4, 3, 4, 4, 4},
	"whole_tone":     {3, 3, 3, 3, 3, 3},
}

// ScaleDegrees expands a step pattern from a root degree into the scale's
// degrees, excluding the closing octave.
func ScaleDegrees(pattern []int, root int) []int {
	if len(pattern) == 0 {
		return nil
	}
	degrees := make([]int, 0, len(pattern))
	current := root
	degrees = append(degrees, current)
	for _, step := range pattern[:len(pattern)-1] {
		current += step
		degrees = append(degrees, current)
	}
	return degrees
}
