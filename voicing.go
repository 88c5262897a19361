package tet19

import "sort"

// Chord is one step of a progression: simultaneous degrees held for a
// number of beats.
type Chord struct {
	Degrees []int
	Beats   float64
}

// VoiceLines holds a four-part realization of a chord progression, each
// part a legato sequence.
type VoiceLines struct {
	Bass    *LegatoSequence
	Tenor   *LegatoSequence
	Alto    *LegatoSequence
	Soprano *LegatoSequence
}

// Voices flattens the parts for Player.Play.
func (v VoiceLines) Voices() []Voice {
	return []Voice{v.Bass, v.Tenor, v.Alto, v.Soprano}
}

// FourPartVoicing distributes a chord progression over bass, tenor, alto
// and soprano lines, one octave down in the given layout. Chords with
// fewer than four notes double voices from the top or bottom; the lower
// parts get quicker glides and carry more weight in the mix.
func FourPartVoicing(progression []Chord, beatDuration, startOffset float64, layout Layout) VoiceLines {
	octave := layout.StepsPerOctave
	var bass, tenor, alto, soprano []Step

	for _, chord := range progression {
		duration := chord.Beats * beatDuration
		notes := append([]int(nil), chord.Degrees...)
		sort.Ints(notes)

		var b, t, a, s int
		switch {
		case len(notes) >= 4:
			b, t, a, s = notes[0], notes[1], notes[2], notes[3]
		case len(notes) == 3:
			b, t, a = notes[0], notes[1], notes[2]
			s = notes[2] // double the top
		case len(notes) == 2:
			b, t = notes[0], notes[0]
			a, s = notes[1], notes[1]
		case len(notes) == 1:
			b, t, a, s = notes[0], notes[0], notes[0], notes[0]
		default:
			continue
		}

		bass = append(bass, Step{Degree: b - octave, Duration: duration})
		tenor = append(tenor, Step{Degree: t - octave, Duration: duration})
		alto = append(alto, Step{Degree: a - octave, Duration: duration})
		soprano = append(soprano, Step{Degree: s - octave, Duration: duration})
	}

	return VoiceLines{
		Bass:    &LegatoSequence{Notes: bass, Start: startOffset, Velocity: 0.8, GlideTime: 0.005},
		Tenor:   &LegatoSequence{Notes: tenor, Start: startOffset, Velocity: 0.8, GlideTime: 0.007},
		Alto:    &LegatoSequence{Notes: alto, Start: startOffset, Velocity: 0.5, GlideTime: 0.010},
		Soprano: &LegatoSequence{Notes: soprano, Start: startOffset, Velocity: 0.3, GlideTime: 0.015},
	}
}
