// Command tet19-render renders the built-in 19-TET chord-progression
// piece offline, mixes its four chordal voices with the melody line, and
// writes a 16-bit stereo WAV file. No audio device is needed.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"

	"github.com/VH-abc/tet19"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "render sample rate in Hz")
		beat       = flag.Float64("beat", 2.0, "seconds per beat")
		lead       = flag.Float64("lead", 0.5, "silence before the first chord, seconds")
		output     = flag.String("output", "piece.wav", "output WAV file path")
	)
	flag.Parse()

	layout := tet19.DefaultLayout()
	lines := tet19.FourPartVoicing(pieceProgression, *beat, *lead, layout)
	voices := append(lines.Voices(), melodyVoice(*beat, *lead))

	fmt.Printf("Rendering %d chords (%g s/beat) at %d Hz...\n", len(pieceProgression), *beat, *sampleRate)

	mix, err := mixdown(voices, *sampleRate, layout)
	if err != nil {
		log.Fatal(err)
	}
	if err := writeWAV(*output, mix, *sampleRate); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %s (%.1f s)\n", *output, float64(len(mix)/2)/float64(*sampleRate))
}

// pieceProgression is the chord progression of the demo piece, degrees in
// 19-TET.
var pieceProgression = []tet19.Chord{
	{Degrees: []int{0, 6, 11}, Beats: 1},
	{Degrees: []int{0, 5, 11}, Beats: 1},
	{Degrees: []int{0, 5, 13}, Beats: 1},
	{Degrees: []int{0, 6, 11}, Beats: 1},

	{Degrees: []int{0, 8, 13}, Beats: 1},
	{Degrees: []int{0, 5, 13}, Beats: 1},
	{Degrees: []int{2, 8, 16}, Beats: 1},
	{Degrees: []int{0, 6, 11}, Beats: 1},

	{Degrees: []int{0, 8, 13}, Beats: 1},
	{Degrees: []int{0, 5, 13}, Beats: 1},
	{Degrees: []int{2, 8, 16}, Beats: 1},
	{Degrees: []int{0, 6, 11}, Beats: 1},

	{Degrees: []int{0, 8, 13}, Beats: 1},
	{Degrees: []int{3, 11, 16}, Beats: 0.25},
	{Degrees: []int{2, 10, 15}, Beats: 0.25},
	{Degrees: []int{1, 9, 14}, Beats: 0.25},
	{Degrees: []int{0, 8, 13}, Beats: 0.25},
	{Degrees: []int{-3, 2, 8}, Beats: 1},
	{Degrees: []int{0, 5, 13}, Beats: 1},

	{Degrees: []int{2, 13}, Beats: 1},
	{Degrees: []int{-1, 13}, Beats: 1},
	{Degrees: []int{-1, 5}, Beats: 1},
	{Degrees: []int{0, 11}, Beats: 1},

	{Degrees: []int{0, 8, 13}, Beats: 1},
	{Degrees: []int{0, 5, 13}, Beats: 1},
	{Degrees: []int{5, 13, 18}, Beats: 1},
	{Degrees: []int{5, 13, 19}, Beats: 1},

	{Degrees: []int{5, 13, 18}, Beats: 1},
	{Degrees: []int{4, 12, 18}, Beats: 1},
	{Degrees: []int{1, 6, 12}, Beats: 1},
	{Degrees: []int{0, 6, 11}, Beats: 1},

	{Degrees: []int{0, 6, 19, 25}, Beats: 1},
	{Degrees: []int{6, 12, 25, 31}, Beats: 1},
	{Degrees: []int{12, 18, 31, 37}, Beats: 1},
	{Degrees: []int{12, 31, 37, 42}, Beats: 1},

	{Degrees: []int{13, 32, 38, 32}, Beats: 1},
	{Degrees: []int{12, 31, 37, 31}, Beats: 1},
	{Degrees: []int{11, 30, 38, 30}, Beats: 2},
}

// pieceMelody is the melody line, each note as (degree, length in
// quarter notes).
var pieceMelody = []struct {
	degree   int
	quarters float64
}{
	{11, 1}, {8, 1}, {6, 1}, {3, 0.25}, {5, 0.25}, {3, 0.25}, {0, 0.25},
	{5, 2}, {11, 1}, {16, 1},

	{19, 0.75}, {22, 0.125}, {19, 0.125},
	{16, 0.75}, {19, 0.125}, {16, 0.125},
	{11, 0.75}, {16, 0.125}, {11, 0.125},
	{8, 1},

	{11, 4},

	{13, 2}, {8, 0.5}, {11, 0.5}, {13, 0.5}, {16, 0.5},

	{19, 1}, {22, 1},
	{24, 0.75}, {27, 0.125}, {24, 0.125},
	{22, 0.5}, {19, 0.5},

	{16, 1}, {19, 1},
	{21, 0.75}, {24, 0.125}, {21, 0.125},
	{19, 0.25}, {21, 0.125}, {19, 0.125}, {16, 0.5},

	{11, 2}, {19, 2},

	{13, 2}, {8, 0.5}, {11, 0.5}, {13, 0.5}, {16, 0.5},

	{19, 1}, {21, 1},
	{24, 0.75}, {25, 0.125}, {24, 0.125},
	{21, 0.5}, {19, 0.5},

	{16, 1}, {19, 1},
	{21, 0.75}, {24, 0.125}, {21, 0.125},
	{19, 0.25}, {20, 0.125}, {19, 0.125}, {18, 0.5},

	{19, 4},

	{8, 1}, {0, 1}, {8, 0.5}, {5, 0.5}, {3, 1.0 / 6}, {5, 1.0 / 6}, {3, 1.0 / 6}, {0, 0.5},
	{3, 4},
	{5, 1}, {-3, 1}, {5, 0.5}, {2, 0.5}, {0, 1.0 / 6}, {1, 1.0 / 6}, {0, 1.0 / 6}, {-1, 0.5},
	{0, 0.25}, {2, 0.25}, {0, 1.0 / 6}, {1, 1.0 / 6}, {2, 1.0 / 6},
	{5, 0.25}, {6, 0.125}, {5, 0.125}, {4, 1.0 / 6}, {5, 1.0 / 6}, {8, 1.0 / 6},
	{5, 1.0 / 6}, {2, 1.0 / 6}, {5, 1.0 / 6}, {5, 1.5},

	{2, 1}, {-6, 1}, {2, 0.5}, {0, 0.5}, {-1, 1.0 / 6}, {0, 1.0 / 6}, {-1, 1.0 / 6}, {-6, 0.5},
	{-1, 4},
	{-9, 1}, {-6, 1}, {-9, 0.5}, {-6, 0.5}, {-1, 0.5}, {2, 0.5},
	{0, 4},

	{5, 0.125}, {0, 0.875}, {5, 1}, {8, 1}, {13, 1},
	{8, 0.125}, {5, 0.875}, {8, 1}, {13, 1}, {19, 0.125}, {18, 0.75}, {19, 0.125},
	{13, 0.125}, {8, 0.875}, {13, 1}, {18, 1}, {24, 1},
	{19, 1.5}, {18, 0.25}, {19, 0.25}, {18, 1.0 / 12}, {19, 1.0 / 12}, {18, 1.0 / 12},
	{13, 0.25}, {8, 0.25}, {5, 0.25}, {8, 0.25}, {5, 0.25}, {0, 0.25}, {-1, 0.125}, {0, 0.125},
}

// melodyVoice realizes pieceMelody as a portamento legato line against
// the given beat length.
func melodyVoice(beat, lead float64) *tet19.LegatoSequence {
	quarter := beat / 4
	notes := make([]tet19.Step, len(pieceMelody))
	for i, n := range pieceMelody {
		notes[i] = tet19.Step{Degree: n.degree, Duration: n.quarters * quarter}
	}
	return &tet19.LegatoSequence{Notes: notes, Start: lead, Velocity: 0.45, GlideTime: 0.01}
}

// mixdown renders every voice and sums them, each shifted to its start
// offset, into one interleaved int16 sample stream.
func mixdown(voices []tet19.Voice, sampleRate int, layout tet19.Layout) ([]int, error) {
	type part struct {
		samples []int16
		offset  int // in frames
	}
	var parts []part
	totalFrames := 0
	for _, v := range voices {
		seq, ok := v.(*tet19.LegatoSequence)
		if !ok {
			continue
		}
		pcm, err := tet19.RenderSequence(seq, sampleRate, layout)
		if err != nil {
			return nil, err
		}
		offset := int(seq.Start * float64(sampleRate))
		frames := len(pcm) / 4
		if end := offset + frames; end > totalFrames {
			totalFrames = end
		}
		parts = append(parts, part{samples: decodeInt16(pcm), offset: offset})
	}

	mix := make([]int, totalFrames*2)
	for _, pt := range parts {
		for i, s := range pt.samples {
			idx := pt.offset*2 + i
			v := mix[idx] + int(s)
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			mix[idx] = v
		}
	}
	return mix, nil
}

func decodeInt16(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}
	return out
}

func writeWAV(path string, samples []int, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	defer enc.Close()

	data := make([]float32, len(samples))
	for i, s := range samples {
		data[i] = float32(s) / 32768
	}
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 2,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}
