package seqruntime

import (
	"fmt"
	"log"

	"lumina/typedef"
)

// Edit commands. Each command validates against the current show, applies
// atomically under the state lock, and fires the state-change callback on
// success. A failed command leaves the show untouched.

func locateEffect(seqIdx, trackIdx, effectIdx int) (*typedef.Sequence, *typedef.Track, *typedef.EffectInstance, error) {
	if seqIdx < 0 || seqIdx >= len(st.show.Sequences) {
		return nil, nil, nil, fmt.Errorf("%w: %d", typedef.ErrUnknownSequence, seqIdx)
	}
	seq := &st.show.Sequences[seqIdx]
	if trackIdx < 0 || trackIdx >= len(seq.Tracks) {
		return nil, nil, nil, fmt.Errorf("%w: %d", typedef.ErrUnknownTrack, trackIdx)
	}
	track := &seq.Tracks[trackIdx]
	if effectIdx < 0 || effectIdx >= len(track.Effects) {
		return nil, nil, nil, fmt.Errorf("%w: %d", typedef.ErrUnknownEffect, effectIdx)
	}
	return seq, track, &track.Effects[effectIdx], nil
}

// UpdateEffectTimeRange sets a placed effect's [start, end) interval.
func UpdateEffectTimeRange(seqIdx, trackIdx, effectIdx int, start, end float64) error {
	tr, err := typedef.NewTimeRange(start, end)
	if err != nil {
		return err
	}

	st.mu.Lock()
	seq, _, effect, lerr := locateEffect(seqIdx, trackIdx, effectIdx)
	if lerr != nil {
		st.mu.Unlock()
		return lerr
	}
	if tr.End > seq.Duration {
		st.mu.Unlock()
		return fmt.Errorf("effect end %.3fs exceeds sequence duration %.3fs", tr.End, seq.Duration)
	}
	effect.TimeRange = tr
	st.mu.Unlock()

	notifyStateChange()
	return nil
}

// MoveEffect reassigns an effect to a track targeting the given fixture and
// sets its new interval, preserving kind, params, blend mode and opacity.
// If no track in the sequence resolves to exactly that single fixture, one is
// created, named after the fixture. Returns the destination track and effect
// indices.
func MoveEffect(seqIdx, trackIdx, effectIdx int, target typedef.FixtureID, start, end float64) (int, int, error) {
	tr, err := typedef.NewTimeRange(start, end)
	if err != nil {
		return 0, 0, err
	}

	st.mu.Lock()
	seq, track, effect, lerr := locateEffect(seqIdx, trackIdx, effectIdx)
	if lerr != nil {
		st.mu.Unlock()
		return 0, 0, lerr
	}
	fixture, ok := st.show.FixtureByID(target)
	if !ok {
		st.mu.Unlock()
		return 0, 0, fmt.Errorf("%w: %d", typedef.ErrUnknownFixture, target)
	}
	if tr.End > seq.Duration {
		st.mu.Unlock()
		return 0, 0, fmt.Errorf("effect end %.3fs exceeds sequence duration %.3fs", tr.End, seq.Duration)
	}

	moved := *effect
	moved.TimeRange = tr

	// Same-track move: only the interval changes.
	if track.Target.Covers(target, st.show.Fixtures, st.show.Groups) {
		effect.TimeRange = tr
		st.mu.Unlock()
		notifyStateChange()
		return trackIdx, effectIdx, nil
	}

	// Remove from the origin track.
	track.Effects = append(track.Effects[:effectIdx], track.Effects[effectIdx+1:]...)

	// Find a track that targets exactly this fixture.
	destTrack := -1
	for i := range seq.Tracks {
		ids := seq.Tracks[i].Target.Resolve(st.show.Fixtures, st.show.Groups)
		if len(ids) == 1 && ids[0] == target {
			destTrack = i
			break
		}
	}
	if destTrack < 0 {
		seq.Tracks = append(seq.Tracks, typedef.Track{
			Name:   fixture.Name,
			Target: typedef.TargetFixtureList(target),
		})
		destTrack = len(seq.Tracks) - 1
	}
	seq.Tracks[destTrack].Effects = append(seq.Tracks[destTrack].Effects, moved)
	destIdx := len(seq.Tracks[destTrack].Effects) - 1
	st.mu.Unlock()

	notifyStateChange()
	return destTrack, destIdx, nil
}

// AddEffect appends a new effect with default opacity to a track. Returns the
// new effect index.
func AddEffect(seqIdx, trackIdx int, kind typedef.EffectKind, start, end float64) (int, error) {
	tr, err := typedef.NewTimeRange(start, end)
	if err != nil {
		return 0, err
	}

	st.mu.Lock()
	if seqIdx < 0 || seqIdx >= len(st.show.Sequences) {
		st.mu.Unlock()
		return 0, fmt.Errorf("%w: %d", typedef.ErrUnknownSequence, seqIdx)
	}
	seq := &st.show.Sequences[seqIdx]
	if trackIdx < 0 || trackIdx >= len(seq.Tracks) {
		st.mu.Unlock()
		return 0, fmt.Errorf("%w: %d", typedef.ErrUnknownTrack, trackIdx)
	}
	if tr.End > seq.Duration {
		tr.End = seq.Duration
	}
	if tr.End <= tr.Start {
		st.mu.Unlock()
		return 0, fmt.Errorf("%w: effect would fall outside the sequence", typedef.ErrInvalidTimeRange)
	}
	seq.Tracks[trackIdx].Effects = append(seq.Tracks[trackIdx].Effects, typedef.EffectInstance{
		Kind:      kind,
		TimeRange: tr,
		BlendMode: typedef.BlendOverride,
		Opacity:   1.0,
	})
	idx := len(seq.Tracks[trackIdx].Effects) - 1
	st.mu.Unlock()

	notifyStateChange()
	return idx, nil
}

// AddEffectForFixture places a new effect on a track targeting the fixture,
// creating a single-fixture track when none exists. Used by the editor's
// empty-area double-click.
func AddEffectForFixture(seqIdx int, fixture typedef.FixtureID, kind typedef.EffectKind, start, end float64) (int, int, error) {
	st.mu.Lock()
	if seqIdx < 0 || seqIdx >= len(st.show.Sequences) {
		st.mu.Unlock()
		return 0, 0, fmt.Errorf("%w: %d", typedef.ErrUnknownSequence, seqIdx)
	}
	if _, ok := st.show.FixtureByID(fixture); !ok {
		st.mu.Unlock()
		return 0, 0, fmt.Errorf("%w: %d", typedef.ErrUnknownFixture, fixture)
	}
	seq := &st.show.Sequences[seqIdx]
	trackIdx := -1
	for i := range seq.Tracks {
		if seq.Tracks[i].Target.Covers(fixture, st.show.Fixtures, st.show.Groups) {
			trackIdx = i
			break
		}
	}
	if trackIdx < 0 {
		fix, _ := st.show.FixtureByID(fixture)
		seq.Tracks = append(seq.Tracks, typedef.Track{
			Name:   fix.Name,
			Target: typedef.TargetFixtureList(fixture),
		})
		trackIdx = len(seq.Tracks) - 1
	}
	st.mu.Unlock()

	idx, err := AddEffect(seqIdx, trackIdx, kind, start, end)
	return trackIdx, idx, err
}

// AddTrack appends a track to a sequence and returns its index.
func AddTrack(seqIdx int, name string, target typedef.EffectTarget) (int, error) {
	st.mu.Lock()
	if seqIdx < 0 || seqIdx >= len(st.show.Sequences) {
		st.mu.Unlock()
		return 0, fmt.Errorf("%w: %d", typedef.ErrUnknownSequence, seqIdx)
	}
	seq := &st.show.Sequences[seqIdx]
	seq.Tracks = append(seq.Tracks, typedef.Track{Name: name, Target: target})
	idx := len(seq.Tracks) - 1
	st.mu.Unlock()

	notifyStateChange()
	return idx, nil
}

// DeleteEffects removes effects identified by (trackIndex, effectIndex)
// pairs. Indices are resolved against the pre-delete show; deletion happens
// highest-index first within each track so earlier pairs stay valid.
func DeleteEffects(seqIdx int, targets [][2]int) error {
	st.mu.Lock()
	if seqIdx < 0 || seqIdx >= len(st.show.Sequences) {
		st.mu.Unlock()
		return fmt.Errorf("%w: %d", typedef.ErrUnknownSequence, seqIdx)
	}
	seq := &st.show.Sequences[seqIdx]

	// Validate everything before touching anything.
	for _, tgt := range targets {
		ti, ei := tgt[0], tgt[1]
		if ti < 0 || ti >= len(seq.Tracks) {
			st.mu.Unlock()
			return fmt.Errorf("%w: %d", typedef.ErrUnknownTrack, ti)
		}
		if ei < 0 || ei >= len(seq.Tracks[ti].Effects) {
			st.mu.Unlock()
			return fmt.Errorf("%w: %d", typedef.ErrUnknownEffect, ei)
		}
	}

	byTrack := make(map[int][]int)
	for _, tgt := range targets {
		byTrack[tgt[0]] = append(byTrack[tgt[0]], tgt[1])
	}
	for ti, idxs := range byTrack {
		// Delete descending so remaining indices keep their meaning.
		for i := 0; i < len(idxs); i++ {
			for j := i + 1; j < len(idxs); j++ {
				if idxs[j] > idxs[i] {
					idxs[i], idxs[j] = idxs[j], idxs[i]
				}
			}
		}
		effects := seq.Tracks[ti].Effects
		for _, ei := range idxs {
			effects = append(effects[:ei], effects[ei+1:]...)
		}
		seq.Tracks[ti].Effects = effects
	}
	st.mu.Unlock()

	notifyStateChange()
	return nil
}

// ReplaceShow swaps in a whole new show, resetting playback. Used by load
// and by the file watcher.
func ReplaceShow(show typedef.Show) {
	st.mu.Lock()
	for i := range show.Sequences {
		show.Sequences[i] = show.Sequences[i].Validated()
	}
	st.show = show
	st.sequenceIndex = 0
	st.currentTime = 0
	st.playing = false
	st.mu.Unlock()

	log.Printf("[SEQRUNTIME] Show replaced: %q, %d fixtures, %d sequences",
		show.Name, len(show.Fixtures), len(show.Sequences))
	notifyStateChange()
}
