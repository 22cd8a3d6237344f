// Package seqruntime owns the authoritative show, sequence and playback
// state. The timeline editor reads immutable snapshots from here and commits
// edits through the command API; it never mutates the show directly.
package seqruntime

import (
	"sync"
	"time"

	"lumina/typedef"
)

// StateChangeCallback is invoked after every successful mutation and after a
// show reload, so views can rebuild their derived layout.
type StateChangeCallback func()

// PlaybackCallback is invoked when transport state changes (play, pause, seek).
type PlaybackCallback func(typedef.PlaybackInfo)

type state struct {
	mu   sync.RWMutex
	show typedef.Show

	playing       bool
	currentTime   float64
	sequenceIndex int
	region        *[2]float64
	looping       bool
	lastTick      time.Time

	waveforms map[int]typedef.WaveformData // keyed by sequence index
	analysis  map[int]typedef.AnalysisData

	showPath string // on-disk location of the loaded show, empty until saved

	stateChangeCallbacks []StateChangeCallback
	playbackCallbacks    []PlaybackCallback
}

var st = state{
	waveforms: make(map[int]typedef.WaveformData),
	analysis:  make(map[int]typedef.AnalysisData),
}

// SetStateChangeCallback registers a callback fired after show mutations.
// Multiple consumers (view, websocket bridge) may each register one.
func SetStateChangeCallback(cb StateChangeCallback) {
	st.mu.Lock()
	st.stateChangeCallbacks = append(st.stateChangeCallbacks, cb)
	st.mu.Unlock()
}

// SetPlaybackCallback registers a callback fired on transport changes.
func SetPlaybackCallback(cb PlaybackCallback) {
	st.mu.Lock()
	st.playbackCallbacks = append(st.playbackCallbacks, cb)
	st.mu.Unlock()
}

// notifyStateChange must be called without st.mu held.
func notifyStateChange() {
	st.mu.RLock()
	cbs := append([]StateChangeCallback(nil), st.stateChangeCallbacks...)
	st.mu.RUnlock()
	for _, cb := range cbs {
		cb()
	}
}

func notifyPlayback() {
	st.mu.RLock()
	cbs := append([]PlaybackCallback(nil), st.playbackCallbacks...)
	st.mu.RUnlock()
	if len(cbs) == 0 {
		return
	}
	pb := GetPlayback()
	for _, cb := range cbs {
		cb(pb)
	}
}

// GetShow returns a snapshot copy of the show. Tracks and effects are copied
// so callers can hold the snapshot across frames without racing edits.
func GetShow() typedef.Show {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return copyShow(st.show)
}

func copyShow(s typedef.Show) typedef.Show {
	out := s
	out.Fixtures = append([]typedef.FixtureDef(nil), s.Fixtures...)
	out.Groups = make([]typedef.FixtureGroup, len(s.Groups))
	for i, g := range s.Groups {
		g.Members = append([]typedef.GroupMember(nil), g.Members...)
		out.Groups[i] = g
	}
	out.Sequences = make([]typedef.Sequence, len(s.Sequences))
	for i, seq := range s.Sequences {
		seq.Tracks = copyTracks(seq.Tracks)
		out.Sequences[i] = seq
	}
	return out
}

func copyTracks(tracks []typedef.Track) []typedef.Track {
	out := make([]typedef.Track, len(tracks))
	for i, tr := range tracks {
		tr.Effects = append([]typedef.EffectInstance(nil), tr.Effects...)
		tr.Target.Fixtures = append([]typedef.FixtureID(nil), tr.Target.Fixtures...)
		out[i] = tr
	}
	return out
}

// GetPlayback returns the current transport state.
func GetPlayback() typedef.PlaybackInfo {
	st.mu.RLock()
	defer st.mu.RUnlock()
	duration := 0.0
	if st.sequenceIndex >= 0 && st.sequenceIndex < len(st.show.Sequences) {
		duration = st.show.Sequences[st.sequenceIndex].Duration
	}
	return typedef.PlaybackInfo{
		Playing:       st.playing,
		CurrentTime:   st.currentTime,
		Duration:      duration,
		SequenceIndex: st.sequenceIndex,
		Region:        st.region,
		Looping:       st.looping,
	}
}

// ActiveSequence returns a snapshot of the sequence playback points at.
func ActiveSequence() (typedef.Sequence, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.sequenceIndex < 0 || st.sequenceIndex >= len(st.show.Sequences) {
		return typedef.Sequence{}, false
	}
	seq := st.show.Sequences[st.sequenceIndex]
	seq.Tracks = copyTracks(seq.Tracks)
	return seq, true
}

// GetWaveform returns the peak envelope for the active sequence, if any.
func GetWaveform() (typedef.WaveformData, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	w, ok := st.waveforms[st.sequenceIndex]
	return w, ok
}

// SetWaveform installs a peak envelope for a sequence.
func SetWaveform(seqIdx int, w typedef.WaveformData) {
	st.mu.Lock()
	st.waveforms[seqIdx] = w
	st.mu.Unlock()
	notifyStateChange()
}

// GetAnalysis returns beat/section markers for the active sequence, if any.
func GetAnalysis() (typedef.AnalysisData, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	a, ok := st.analysis[st.sequenceIndex]
	return a, ok
}

// SetAnalysis installs analysis markers for a sequence.
func SetAnalysis(seqIdx int, a typedef.AnalysisData) {
	st.mu.Lock()
	st.analysis[seqIdx] = a
	st.mu.Unlock()
	notifyStateChange()
}

// SetActiveSequence switches which sequence the editor is pointed at.
func SetActiveSequence(idx int) {
	st.mu.Lock()
	if idx >= 0 && idx < len(st.show.Sequences) {
		st.sequenceIndex = idx
		st.currentTime = 0
		st.playing = false
	}
	st.mu.Unlock()
	notifyStateChange()
}

// Play starts playback from the current time.
func Play() {
	st.mu.Lock()
	st.playing = true
	st.lastTick = time.Now()
	st.mu.Unlock()
	notifyPlayback()
}

// Pause stops playback, keeping the current time.
func Pause() {
	st.mu.Lock()
	st.playing = false
	st.lastTick = time.Time{}
	st.mu.Unlock()
	notifyPlayback()
}

// TogglePlayback flips between playing and paused.
func TogglePlayback() {
	st.mu.Lock()
	st.playing = !st.playing
	if st.playing {
		st.lastTick = time.Now()
	} else {
		st.lastTick = time.Time{}
	}
	st.mu.Unlock()
	notifyPlayback()
}

// Seek jumps the playhead. Negative times clamp to zero; times past the
// sequence end clamp to the end.
func Seek(t float64) {
	st.mu.Lock()
	if t < 0 {
		t = 0
	}
	if st.sequenceIndex >= 0 && st.sequenceIndex < len(st.show.Sequences) {
		if d := st.show.Sequences[st.sequenceIndex].Duration; t > d {
			t = d
		}
	}
	st.currentTime = t
	if st.playing {
		// Re-anchor the clock so the next tick measures from here.
		st.lastTick = time.Now()
	}
	st.mu.Unlock()
	notifyPlayback()
}

// SetRegion sets or clears the playback region.
func SetRegion(region *[2]float64) {
	st.mu.Lock()
	st.region = region
	st.mu.Unlock()
	notifyPlayback()
}

// SetLooping controls whether playback loops within the region.
func SetLooping(looping bool) {
	st.mu.Lock()
	st.looping = looping
	st.mu.Unlock()
	notifyPlayback()
}

// Tick advances playback by wall-clock elapsed time. Call once per frame;
// the Instant anchor means multiple callers cannot double-advance time.
func Tick() {
	st.mu.Lock()
	if !st.playing || st.sequenceIndex < 0 || st.sequenceIndex >= len(st.show.Sequences) {
		st.mu.Unlock()
		return
	}
	now := time.Now()
	if st.lastTick.IsZero() {
		st.lastTick = now
	}
	dt := now.Sub(st.lastTick).Seconds()
	st.lastTick = now
	st.currentTime += dt

	duration := st.show.Sequences[st.sequenceIndex].Duration
	loopStart, loopEnd := 0.0, duration
	if st.region != nil {
		loopStart, loopEnd = st.region[0], st.region[1]
	}
	if st.currentTime >= loopEnd {
		if st.looping {
			st.currentTime = loopStart
		} else {
			st.currentTime = loopEnd
			st.playing = false
		}
	}
	st.mu.Unlock()
}
