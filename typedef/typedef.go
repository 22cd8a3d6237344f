package typedef

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

var (
	ErrInvalidTimeRange = errors.New("time range start must be >= 0 and end > start")
	ErrUnknownSequence  = errors.New("sequence index out of range")
	ErrUnknownTrack     = errors.New("track index out of range")
	ErrUnknownEffect    = errors.New("effect index out of range")
	ErrUnknownFixture   = errors.New("fixture id not present in show")
)

// FixtureID identifies a fixture. Kept distinct from plain ints so track
// targets and group members cannot mix up fixture and group identity.
type FixtureID uint32

// GroupID identifies a fixture group.
type GroupID uint32

// TimeRange is a half-open interval [Start, End) in seconds within a sequence.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewTimeRange validates and builds a time range.
func NewTimeRange(start, end float64) (TimeRange, error) {
	if start < 0 || end <= start || math.IsNaN(start) || math.IsNaN(end) {
		return TimeRange{}, fmt.Errorf("%w: start=%v end=%v", ErrInvalidTimeRange, start, end)
	}
	return TimeRange{Start: start, End: end}, nil
}

func (t TimeRange) Duration() float64 { return t.End - t.Start }

// Contains reports whether the time falls within the range. Start is
// inclusive, End is exclusive.
func (t TimeRange) Contains(sec float64) bool { return sec >= t.Start && sec < t.End }

// Overlaps reports whether two half-open ranges intersect. Ranges that only
// touch at an endpoint do not overlap.
func (t TimeRange) Overlaps(o TimeRange) bool { return t.Start < o.End && o.Start < t.End }

// BlendMode describes how stacked effect layers combine their output.
type BlendMode uint8

const (
	BlendOverride BlendMode = iota
	BlendAdd
	BlendMultiply
	BlendMax
	BlendAlpha
	BlendSubtract
	BlendMin
	BlendAverage
	BlendScreen
	BlendMask
	BlendIntensityOverlay
)

func (b BlendMode) String() string {
	switch b {
	case BlendOverride:
		return "Override"
	case BlendAdd:
		return "Add"
	case BlendMultiply:
		return "Multiply"
	case BlendMax:
		return "Max"
	case BlendAlpha:
		return "Alpha"
	case BlendSubtract:
		return "Subtract"
	case BlendMin:
		return "Min"
	case BlendAverage:
		return "Average"
	case BlendScreen:
		return "Screen"
	case BlendMask:
		return "Mask"
	case BlendIntensityOverlay:
		return "IntensityOverlay"
	default:
		return "Unknown"
	}
}

// EffectKind enumerates the built-in effect types.
type EffectKind uint8

const (
	EffectSolid EffectKind = iota
	EffectChase
	EffectRainbow
	EffectStrobe
	EffectGradient
	EffectTwinkle
	EffectFade
	EffectWipe
)

func (k EffectKind) String() string {
	switch k {
	case EffectSolid:
		return "Solid"
	case EffectChase:
		return "Chase"
	case EffectRainbow:
		return "Rainbow"
	case EffectStrobe:
		return "Strobe"
	case EffectGradient:
		return "Gradient"
	case EffectTwinkle:
		return "Twinkle"
	case EffectFade:
		return "Fade"
	case EffectWipe:
		return "Wipe"
	default:
		return "Unknown"
	}
}

// DisplayColor returns the block color the timeline renderer draws for this
// effect kind. Rendering semantics (what the effect actually looks like on
// fixtures) live outside this editor.
func (k EffectKind) DisplayColor() color.RGBA {
	switch k {
	case EffectSolid:
		return color.RGBA{R: 66, G: 135, B: 245, A: 255}
	case EffectChase:
		return color.RGBA{R: 240, G: 160, B: 48, A: 255}
	case EffectRainbow:
		return color.RGBA{R: 170, G: 90, B: 220, A: 255}
	case EffectStrobe:
		return color.RGBA{R: 235, G: 235, B: 235, A: 255}
	case EffectGradient:
		return color.RGBA{R: 60, G: 190, B: 140, A: 255}
	case EffectTwinkle:
		return color.RGBA{R: 250, G: 220, B: 90, A: 255}
	case EffectFade:
		return color.RGBA{R: 110, G: 110, B: 200, A: 255}
	case EffectWipe:
		return color.RGBA{R: 220, G: 90, B: 90, A: 255}
	default:
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
}

// AllEffectKinds lists the built-in kinds in display order.
func AllEffectKinds() []EffectKind {
	return []EffectKind{
		EffectSolid, EffectChase, EffectRainbow, EffectStrobe,
		EffectGradient, EffectTwinkle, EffectFade, EffectWipe,
	}
}

// EffectInstance is one placed effect on a track. Params are carried
// opaquely; the editor never evaluates them.
type EffectInstance struct {
	Kind      EffectKind         `json:"kind"`
	TimeRange TimeRange          `json:"timeRange"`
	BlendMode BlendMode          `json:"blendMode"`
	Opacity   float64            `json:"opacity"`
	Params    map[string]float64 `json:"params,omitempty"`
}

// FixtureDef is a logical light or string of lights. Identity is stable for
// the lifetime of the show; rows in the timeline are keyed by it.
type FixtureDef struct {
	ID         FixtureID `json:"id"`
	Name       string    `json:"name"`
	PixelCount int       `json:"pixelCount"`
}

// GroupMember is either a direct fixture or a nested sub-group. Exactly one
// of the two pointers is set.
type GroupMember struct {
	Fixture *FixtureID `json:"fixture,omitempty"`
	Group   *GroupID   `json:"group,omitempty"`
}

// FixtureMember builds a member referencing a fixture.
func FixtureMember(id FixtureID) GroupMember { return GroupMember{Fixture: &id} }

// GroupRefMember builds a member referencing a nested group.
func GroupRefMember(id GroupID) GroupMember { return GroupMember{Group: &id} }

// FixtureGroup is a named set of fixtures for targeting effects. Groups may
// nest, including cyclically; resolution guards against cycles.
type FixtureGroup struct {
	ID      GroupID       `json:"id"`
	Name    string        `json:"name"`
	Members []GroupMember `json:"members"`
}

// ResolveFixtureIDs recursively expands this group to the fixture ids it
// reaches. Cycles terminate via the visited set; a group is expanded at most
// once per resolution.
func (g *FixtureGroup) ResolveFixtureIDs(all []FixtureGroup) []FixtureID {
	visited := map[GroupID]bool{g.ID: true}
	var out []FixtureID
	resolveMembers(g.Members, all, visited, &out)
	return out
}

func resolveMembers(members []GroupMember, all []FixtureGroup, visited map[GroupID]bool, out *[]FixtureID) {
	for _, m := range members {
		switch {
		case m.Fixture != nil:
			*out = append(*out, *m.Fixture)
		case m.Group != nil:
			if visited[*m.Group] {
				continue
			}
			visited[*m.Group] = true
			for i := range all {
				if all[i].ID == *m.Group {
					resolveMembers(all[i].Members, all, visited, out)
					break
				}
			}
		}
	}
}

// TargetKind tags the variants of EffectTarget.
type TargetKind uint8

const (
	TargetAll TargetKind = iota
	TargetFixtures
	TargetGroup
)

// EffectTarget selects which fixtures a track drives: every fixture in the
// show, an explicit list, or a (possibly nested) group.
type EffectTarget struct {
	Kind     TargetKind  `json:"kind"`
	Fixtures []FixtureID `json:"fixtures,omitempty"`
	Group    GroupID     `json:"group,omitempty"`
}

// TargetAllFixtures builds an all-fixtures target.
func TargetAllFixtures() EffectTarget { return EffectTarget{Kind: TargetAll} }

// TargetFixtureList builds an explicit fixture-set target.
func TargetFixtureList(ids ...FixtureID) EffectTarget {
	return EffectTarget{Kind: TargetFixtures, Fixtures: ids}
}

// TargetGroupRef builds a group-reference target.
func TargetGroupRef(id GroupID) EffectTarget { return EffectTarget{Kind: TargetGroup, Group: id} }

// Resolve evaluates the target against the current fixture/group snapshot
// and returns the fixture ids it covers, in show order for TargetAll and in
// declaration order otherwise. Membership is re-evaluated every call; a
// group edit changes the result on the next layout pass.
func (t EffectTarget) Resolve(fixtures []FixtureDef, groups []FixtureGroup) []FixtureID {
	switch t.Kind {
	case TargetAll:
		out := make([]FixtureID, len(fixtures))
		for i := range fixtures {
			out[i] = fixtures[i].ID
		}
		return out
	case TargetFixtures:
		out := make([]FixtureID, len(t.Fixtures))
		copy(out, t.Fixtures)
		return out
	case TargetGroup:
		for i := range groups {
			if groups[i].ID == t.Group {
				return groups[i].ResolveFixtureIDs(groups)
			}
		}
		return nil
	default:
		return nil
	}
}

// Covers reports whether the resolved target includes the fixture.
func (t EffectTarget) Covers(id FixtureID, fixtures []FixtureDef, groups []FixtureGroup) bool {
	for _, f := range t.Resolve(fixtures, groups) {
		if f == id {
			return true
		}
	}
	return false
}

// Track is an ordered list of effects plus the fixture target they apply to.
type Track struct {
	Name    string           `json:"name"`
	Target  EffectTarget     `json:"target"`
	Effects []EffectInstance `json:"effects"`
}

// Sequence is the top-level timeline container, one per song.
type Sequence struct {
	Name      string  `json:"name"`
	Duration  float64 `json:"duration"`  // seconds
	FrameRate float64 `json:"frameRate"` // evaluation target fps
	AudioFile string  `json:"audioFile,omitempty"`
	Tracks    []Track `json:"tracks"`
}

// Validated clamps sequence parameters to safe ranges. Non-finite or
// non-positive duration and frame rate fall back to defaults so downstream
// layout math never divides by zero.
func (s Sequence) Validated() Sequence {
	if s.Duration <= 0 || math.IsNaN(s.Duration) || math.IsInf(s.Duration, 0) {
		s.Duration = 30.0
	}
	if s.FrameRate <= 0 || math.IsNaN(s.FrameRate) || math.IsInf(s.FrameRate, 0) {
		s.FrameRate = 30.0
	}
	return s
}

// Show is the top-level model: everything needed to describe a light show.
type Show struct {
	Name      string         `json:"name"`
	Fixtures  []FixtureDef   `json:"fixtures"`
	Groups    []FixtureGroup `json:"groups"`
	Sequences []Sequence     `json:"sequences"`
}

// EmptyShow returns a show with no fixtures or sequences.
func EmptyShow() Show {
	return Show{}
}

// FixtureByID looks up a fixture definition.
func (s *Show) FixtureByID(id FixtureID) (FixtureDef, bool) {
	for _, f := range s.Fixtures {
		if f.ID == id {
			return f, true
		}
	}
	return FixtureDef{}, false
}

// PlaybackInfo is the transport state the editor reads each frame.
type PlaybackInfo struct {
	Playing       bool        `json:"playing"`
	CurrentTime   float64     `json:"currentTime"`
	Duration      float64     `json:"duration"`
	SequenceIndex int         `json:"sequenceIndex"`
	Region        *[2]float64 `json:"region,omitempty"`
	Looping       bool        `json:"looping"`
}

// WaveformData is a downsampled amplitude envelope of the sequence audio.
// Peaks are absolute amplitudes in [0, 1]; Duration is the source audio
// length in seconds, which may differ from the sequence duration.
type WaveformData struct {
	Peaks    []float64 `json:"peaks"`
	Duration float64   `json:"duration"`
}

// AnalysisData carries beat/section markers produced by an external audio
// analysis pipeline. The editor passes it through to the renderer opaquely.
type AnalysisData struct {
	BeatTimes    []float64 `json:"beatTimes,omitempty"`
	SectionTimes []float64 `json:"sectionTimes,omitempty"`
}
