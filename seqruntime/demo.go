package seqruntime

import (
	"fmt"
	"math"

	"lumina/typedef"
)

// DemoShow builds the seeded show used when nothing exists on disk: five
// 20-pixel strings with layered effects across a 30 second sequence, plus a
// synthetic waveform so the backdrop renders without an audio pipeline.
func DemoShow() typedef.Show {
	const strings = 5

	fixtures := make([]typedef.FixtureDef, strings)
	members := make([]typedef.GroupMember, strings)
	for i := 0; i < strings; i++ {
		fixtures[i] = typedef.FixtureDef{
			ID:         typedef.FixtureID(i),
			Name:       fmt.Sprintf("String %d", i+1),
			PixelCount: 20,
		}
		members[i] = typedef.FixtureMember(typedef.FixtureID(i))
	}

	groups := []typedef.FixtureGroup{
		{ID: 0, Name: "All Strings", Members: members},
	}

	seq := typedef.Sequence{
		Name:      "Demo Sequence",
		Duration:  30,
		FrameRate: 30,
		Tracks: []typedef.Track{
			{
				Name:   "Rainbow Base",
				Target: typedef.TargetGroupRef(0),
				Effects: []typedef.EffectInstance{{
					Kind:      typedef.EffectRainbow,
					TimeRange: typedef.TimeRange{Start: 0, End: 30},
					BlendMode: typedef.BlendOverride,
					Opacity:   1,
					Params:    map[string]float64{"speed": 0.5, "spread": 2, "brightness": 0.4},
				}},
			},
			{
				Name:   "Chase Top",
				Target: typedef.TargetFixtureList(0, 1),
				Effects: []typedef.EffectInstance{{
					Kind:      typedef.EffectChase,
					TimeRange: typedef.TimeRange{Start: 0, End: 20},
					BlendMode: typedef.BlendAdd,
					Opacity:   1,
					Params:    map[string]float64{"speed": 3, "pulse_width": 0.4},
				}},
			},
			{
				Name:   "Twinkle Bottom",
				Target: typedef.TargetFixtureList(3, 4),
				Effects: []typedef.EffectInstance{{
					Kind:      typedef.EffectTwinkle,
					TimeRange: typedef.TimeRange{Start: 0, End: 30},
					BlendMode: typedef.BlendAdd,
					Opacity:   1,
					Params:    map[string]float64{"density": 0.4, "speed": 8},
				}},
			},
			{
				Name:   "Strobe Burst",
				Target: typedef.TargetFixtureList(2),
				Effects: []typedef.EffectInstance{{
					Kind:      typedef.EffectStrobe,
					TimeRange: typedef.TimeRange{Start: 15, End: 20},
					BlendMode: typedef.BlendMax,
					Opacity:   1,
					Params:    map[string]float64{"rate": 8, "duty_cycle": 0.3},
				}},
			},
			{
				Name:   "Gradient Finale",
				Target: typedef.TargetGroupRef(0),
				Effects: []typedef.EffectInstance{{
					Kind:      typedef.EffectGradient,
					TimeRange: typedef.TimeRange{Start: 20, End: 30},
					BlendMode: typedef.BlendAlpha,
					Opacity:   1,
				}},
			},
		},
	}

	return typedef.Show{
		Name:      "Demo Show",
		Fixtures:  fixtures,
		Groups:    groups,
		Sequences: []typedef.Sequence{seq.Validated()},
	}
}

// DemoWaveform synthesizes an amplitude envelope shaped like a song (builds,
// drops, decay) so the waveform backdrop has something to show in the demo.
func DemoWaveform(duration float64, peaks int) typedef.WaveformData {
	out := make([]float64, peaks)
	for i := range out {
		t := float64(i) / float64(peaks)
		envelope := 0.35 + 0.3*math.Sin(2*math.Pi*3*t) + 0.25*math.Sin(2*math.Pi*17*t)
		if t > 0.9 {
			envelope *= (1 - t) * 10 // fade out
		}
		out[i] = math.Abs(envelope)
		if out[i] > 1 {
			out[i] = 1
		}
	}
	return typedef.WaveformData{Peaks: out, Duration: duration}
}
