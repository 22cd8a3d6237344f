package seqruntime

import (
	"os"
	"path/filepath"
	"testing"

	"lumina/typedef"
)

// resetState gives each test a clean singleton. Tests in this package cannot
// run in parallel because the store is package-level, matching production use.
func resetState(t *testing.T) {
	t.Helper()
	st.mu.Lock()
	st.show = typedef.Show{}
	st.playing = false
	st.currentTime = 0
	st.sequenceIndex = 0
	st.region = nil
	st.looping = false
	st.showPath = ""
	st.waveforms = make(map[int]typedef.WaveformData)
	st.analysis = make(map[int]typedef.AnalysisData)
	st.stateChangeCallbacks = nil
	st.playbackCallbacks = nil
	st.mu.Unlock()
}

func seedDemo(t *testing.T) {
	t.Helper()
	resetState(t)
	ReplaceShow(DemoShow())
}

func TestUpdateEffectTimeRange(t *testing.T) {
	seedDemo(t)

	if err := UpdateEffectTimeRange(0, 0, 0, 2, 12); err != nil {
		t.Fatalf("valid update failed: %v", err)
	}
	got := GetShow().Sequences[0].Tracks[0].Effects[0].TimeRange
	if got.Start != 2 || got.End != 12 {
		t.Fatalf("time range = %+v, want [2,12)", got)
	}

	if err := UpdateEffectTimeRange(0, 0, 0, 5, 5); err == nil {
		t.Error("zero-length range must be rejected")
	}
	if err := UpdateEffectTimeRange(0, 0, 0, 0, 99); err == nil {
		t.Error("range past sequence duration must be rejected")
	}
	if err := UpdateEffectTimeRange(0, 99, 0, 0, 5); err == nil {
		t.Error("unknown track must be rejected")
	}

	// Failed commands leave the show untouched.
	got = GetShow().Sequences[0].Tracks[0].Effects[0].TimeRange
	if got.Start != 2 || got.End != 12 {
		t.Fatalf("failed update mutated state: %+v", got)
	}
}

func TestMoveEffectSameTrackTarget(t *testing.T) {
	seedDemo(t)

	// Track 1 ("Chase Top") targets fixtures 0 and 1; moving within its
	// own target set only retimes the effect.
	ti, ei, err := MoveEffect(0, 1, 0, 1, 3, 23)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if ti != 1 || ei != 0 {
		t.Fatalf("same-target move relocated to (%d,%d), want (1,0)", ti, ei)
	}
	got := GetShow().Sequences[0].Tracks[1].Effects[0].TimeRange
	if got.Start != 3 || got.End != 23 {
		t.Fatalf("time range = %+v, want [3,23)", got)
	}
}

func TestMoveEffectCrossTrack(t *testing.T) {
	seedDemo(t)

	show := GetShow()
	trackCount := len(show.Sequences[0].Tracks)

	// "Strobe Burst" (track 3) targets only fixture 2; move it to fixture 0.
	// No existing track targets exactly fixture 0, so one is created.
	ti, ei, err := MoveEffect(0, 3, 0, 0, 5, 10)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	show = GetShow()
	if len(show.Sequences[0].Tracks) != trackCount+1 {
		t.Fatalf("expected a new track, have %d", len(show.Sequences[0].Tracks))
	}
	if ti != trackCount || ei != 0 {
		t.Fatalf("moved to (%d,%d), want (%d,0)", ti, ei, trackCount)
	}
	moved := show.Sequences[0].Tracks[ti].Effects[ei]
	if moved.Kind != typedef.EffectStrobe {
		t.Errorf("move changed kind to %v", moved.Kind)
	}
	if moved.BlendMode != typedef.BlendMax {
		t.Errorf("move changed blend mode to %v", moved.BlendMode)
	}
	if len(show.Sequences[0].Tracks[3].Effects) != 0 {
		t.Error("effect not removed from origin track")
	}

	// Unknown fixture is rejected without mutation.
	if _, _, err := MoveEffect(0, 0, 0, 999, 0, 5); err == nil {
		t.Error("unknown fixture must be rejected")
	}
}

func TestAddEffectForFixture(t *testing.T) {
	seedDemo(t)

	ti, ei, err := AddEffectForFixture(0, 4, typedef.EffectSolid, 1, 3)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	eff := GetShow().Sequences[0].Tracks[ti].Effects[ei]
	if eff.Kind != typedef.EffectSolid || eff.TimeRange.Start != 1 || eff.TimeRange.End != 3 {
		t.Fatalf("added effect = %+v", eff)
	}
	if eff.Opacity != 1.0 {
		t.Errorf("default opacity = %v, want 1", eff.Opacity)
	}

	// End past the sequence clamps rather than failing.
	_, ei2, err := AddEffectForFixture(0, 4, typedef.EffectFade, 29, 45)
	if err != nil {
		t.Fatalf("clamped add failed: %v", err)
	}
	_ = ei2
}

func TestDeleteEffects(t *testing.T) {
	seedDemo(t)

	if _, err := AddEffect(0, 0, typedef.EffectFade, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := AddEffect(0, 0, typedef.EffectWipe, 3, 4); err != nil {
		t.Fatal(err)
	}

	// Delete indices 0 and 2 of track 0; the pair order must not matter.
	if err := DeleteEffects(0, [][2]int{{0, 0}, {0, 2}}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	left := GetShow().Sequences[0].Tracks[0].Effects
	if len(left) != 1 || left[0].Kind != typedef.EffectFade {
		t.Fatalf("remaining effects = %+v, want single Fade", left)
	}

	if err := DeleteEffects(0, [][2]int{{0, 99}}); err == nil {
		t.Error("out-of-range delete must be rejected")
	}
}

func TestSeekClampsAndTickAdvances(t *testing.T) {
	seedDemo(t)

	Seek(-5)
	if got := GetPlayback().CurrentTime; got != 0 {
		t.Errorf("seek(-5) = %v, want 0", got)
	}
	Seek(1e9)
	if got := GetPlayback().CurrentTime; got != 30 {
		t.Errorf("seek past end = %v, want 30 (duration)", got)
	}

	Seek(29.9999)
	Play()
	// Force an elapsed interval instead of sleeping.
	st.mu.Lock()
	st.lastTick = st.lastTick.Add(-1e9) // 1s ago in ns
	st.mu.Unlock()
	Tick()
	pb := GetPlayback()
	if pb.Playing {
		t.Error("playback should stop at sequence end when not looping")
	}
	if pb.CurrentTime != 30 {
		t.Errorf("current time = %v, want clamped to 30", pb.CurrentTime)
	}
}

func TestTickLoopsRegion(t *testing.T) {
	seedDemo(t)
	SetRegion(&[2]float64{5, 10})
	SetLooping(true)
	Seek(9.9)
	Play()
	st.mu.Lock()
	st.lastTick = st.lastTick.Add(-1e9)
	st.mu.Unlock()
	Tick()
	pb := GetPlayback()
	if !pb.Playing {
		t.Error("looping playback must keep playing")
	}
	if pb.CurrentTime != 5 {
		t.Errorf("loop wrapped to %v, want region start 5", pb.CurrentTime)
	}
}

func TestStateChangeCallbackFires(t *testing.T) {
	seedDemo(t)
	fired := 0
	SetStateChangeCallback(func() { fired++ })
	if _, err := AddEffect(0, 0, typedef.EffectSolid, 0, 1); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Fatalf("callback fired %d times, want 1", fired)
	}
	// Rejected command must not notify.
	if err := UpdateEffectTimeRange(0, 0, 0, 9, 9); err == nil {
		t.Fatal("expected rejection")
	}
	if fired != 1 {
		t.Fatalf("failed command fired callback (%d)", fired)
	}
}

func TestShowSaveLoadRoundTrip(t *testing.T) {
	seedDemo(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "roundtrip.lumshow")

	if err := SaveShowAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("show file missing: %v", err)
	}

	want := GetShow()
	resetState(t)
	if err := LoadShow(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := GetShow()
	if got.Name != want.Name || len(got.Fixtures) != len(want.Fixtures) || len(got.Sequences) != len(want.Sequences) {
		t.Fatalf("round trip mismatch: got %q/%d/%d", got.Name, len(got.Fixtures), len(got.Sequences))
	}
	if len(got.Sequences[0].Tracks) != len(want.Sequences[0].Tracks) {
		t.Fatalf("track count mismatch: %d vs %d", len(got.Sequences[0].Tracks), len(want.Sequences[0].Tracks))
	}
}

func TestLZ4RoundTrip(t *testing.T) {
	payload := []byte(`{"name":"compress me","sequences":[]}`)
	packed, err := compressLZ4(payload)
	if err != nil {
		t.Fatal(err)
	}
	unpacked, err := decompressLZ4(packed)
	if err != nil {
		t.Fatal(err)
	}
	if string(unpacked) != string(payload) {
		t.Fatalf("lz4 round trip corrupted data: %q", unpacked)
	}
}
