// Command tet19-demo plays a short tour of the 19-TET system through the
// system audio device: a scale, a chord, a timed melody, two-voice
// polyphony, and a phase-continuous legato piece.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/VH-abc/tet19"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		baseFreq   = flag.Float64("base-freq", 220.0, "frequency of degree 0 in Hz")
		steps      = flag.Int("steps", 19, "equal divisions of the octave")
		section    = flag.String("section", "all", "demo section: scale|chord|melody|poly|piece|all")
	)
	flag.Parse()

	layout := tet19.Layout{BaseFrequency: *baseFreq, BaseDegree: 0, StepsPerOctave: *steps}
	pl, err := tet19.NewPlayer(*sampleRate, tet19.WithTuning(layout))
	if err != nil {
		log.Fatal(err)
	}
	defer pl.Close()

	sections := map[string]func(*tet19.Player) error{
		"scale":  playScale,
		"chord":  playChord,
		"melody": playMelody,
		"poly":   playPolyphony,
		"piece":  playPiece,
	}
	order := []string{"scale", "chord", "melody", "poly", "piece"}

	if *section != "all" {
		fn, ok := sections[*section]
		if !ok {
			log.Fatalf("unknown section %q (want %s)", *section, strings.Join(order, "|"))
		}
		if err := fn(pl); err != nil {
			log.Fatal(err)
		}
		return
	}
	for _, name := range order {
		fmt.Printf("-- %s\n", name)
		if err := sections[name](pl); err != nil {
			log.Fatal(err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func playScale(pl *tet19.Player) error {
	degrees := tet19.ScaleDegrees(tet19.ScalePatterns["major_diatonic"], 0)
	for _, d := range degrees {
		fmt.Printf("degree %3d: %7.2f Hz\n", d, pl.Frequency(d))
		if _, err := pl.PlayNote(d, 0.5, 1.0, true, false); err != nil {
			return err
		}
	}
	return nil
}

func playChord(pl *tet19.Player) error {
	// Root, approximate major third, approximate perfect fifth.
	_, err := pl.PlayChord([]int{0, 6, 11}, 2.0, 1.0, true)
	return err
}

func playMelody(pl *tet19.Player) error {
	melody := tet19.Melody{
		{Degree: 0, Duration: 0.5, Start: 0.0, Velocity: 1.0},
		{Degree: 3, Duration: 0.5, Start: 0.5, Velocity: 1.0},
		{Degree: 6, Duration: 0.5, Start: 1.0, Velocity: 1.0},
		{Degree: 9, Duration: 0.5, Start: 1.5, Velocity: 1.0},
		{Degree: 12, Duration: 1.0, Start: 2.0, Velocity: 1.0},
		{Degree: 6, Duration: 0.5, Start: 3.0, Velocity: 1.0},
		{Degree: 0, Duration: 1.0, Start: 3.5, Velocity: 1.0},
	}
	_, err := pl.PlayMelody(melody, true)
	return err
}

func playPolyphony(pl *tet19.Player) error {
	bass := tet19.Melody{
		{Degree: -19, Duration: 1.0, Start: 0.0, Velocity: 1.0},
		{Degree: -13, Duration: 1.0, Start: 1.0, Velocity: 1.0},
		{Degree: -8, Duration: 1.0, Start: 2.0, Velocity: 1.0},
		{Degree: -19, Duration: 1.0, Start: 3.0, Velocity: 1.0},
	}
	melody := tet19.Melody{
		{Degree: 0, Duration: 0.5, Start: 0.0, Velocity: 1.0},
		{Degree: 3, Duration: 0.5, Start: 0.5, Velocity: 1.0},
		{Degree: 6, Duration: 0.5, Start: 1.0, Velocity: 1.0},
		{Degree: 9, Duration: 0.5, Start: 1.5, Velocity: 1.0},
		{Degree: 12, Duration: 0.5, Start: 2.0, Velocity: 1.0},
		{Degree: 15, Duration: 0.5, Start: 2.5, Velocity: 1.0},
		{Degree: 18, Duration: 0.5, Start: 3.0, Velocity: 1.0},
		{Degree: 0, Duration: 0.5, Start: 3.5, Velocity: 1.0},
	}
	_, err := pl.Play([]tet19.Voice{bass, melody}, true)
	return err
}

func playPiece(pl *tet19.Player) error {
	progression := []tet19.Chord{
		{Degrees: []int{0, 6, 11}, Beats: 1},
		{Degrees: []int{0, 5, 11}, Beats: 1},
		{Degrees: []int{0, 5, 13}, Beats: 1},
		{Degrees: []int{0, 6, 11}, Beats: 1},
		{Degrees: []int{0, 8, 13}, Beats: 1},
		{Degrees: []int{0, 5, 13}, Beats: 1},
		{Degrees: []int{2, 8, 16}, Beats: 1},
		{Degrees: []int{0, 6, 11}, Beats: 1},
	}
	lines := tet19.FourPartVoicing(progression, 2.0, 0.5, pl.Layout())
	for _, part := range lines.Voices() {
		if seq, ok := part.(*tet19.LegatoSequence); ok {
			if err := pl.Precompute(seq); err != nil {
				return err
			}
		}
	}
	_, err := pl.Play(lines.Voices(), true)
	return err
}
