package app

import (
	"sort"

	"lumina/config"
	"lumina/typedef"
)

// PlacedEffect is one effect projected onto one fixture row, tagged with the
// (track, effect) identity edits are committed against and the lane the
// packer assigned. Derived fresh every layout pass, never persisted.
type PlacedEffect struct {
	TrackIndex  int
	EffectIndex int
	Start       float64
	End         float64
	Kind        typedef.EffectKind
	Blend       typedef.BlendMode
	Lane        int
}

// StackedRow is the per-fixture layout result: all effects that target the
// fixture, packed into non-overlapping lanes, plus the computed row height.
type StackedRow struct {
	Fixture   typedef.FixtureDef
	Effects   []PlacedEffect
	LaneCount int
	Height    int
}

type timeSpan struct {
	start, end float64
}

// packLanes assigns each span to the first lane free at its start time.
// Spans are visited in start order (stable on ties) and a lane is free when
// its last end time is <= the span's start, so touching intervals share a
// lane. The returned slice parallels the input; laneCount is at least 1 even
// for empty input so empty rows keep one lane's worth of height.
func packLanes(spans []timeSpan) ([]int, int) {
	lanes := make([]int, len(spans))
	if len(spans) == 0 {
		return lanes, 1
	}

	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return spans[order[a]].start < spans[order[b]].start
	})

	var laneEnds []float64
	for _, idx := range order {
		s := spans[idx]
		assigned := -1
		for lane, end := range laneEnds {
			if end <= s.start {
				assigned = lane
				break
			}
		}
		if assigned < 0 {
			laneEnds = append(laneEnds, 0)
			assigned = len(laneEnds) - 1
		}
		laneEnds[assigned] = s.end
		lanes[idx] = assigned
	}
	return lanes, len(laneEnds)
}

// rowHeightFor computes a row's pixel height from its lane count, floored at
// the configured minimum so empty rows remain clickable.
func rowHeightFor(laneCount int, cfg config.EditorConfig) int {
	if laneCount < 1 {
		laneCount = 1
	}
	h := laneCount*cfg.LaneUnitHeight + cfg.RowPadding*2
	if h < cfg.MinRowHeight {
		h = cfg.MinRowHeight
	}
	return h
}

// buildStackedRows derives the complete row layout for one sequence: each
// fixture in show order gets a row; every track whose resolved target covers
// the fixture contributes its effects; overlapping effects stack into lanes.
// Target resolution runs against the current snapshot, so group edits
// retarget rows on the next pass.
func buildStackedRows(show typedef.Show, seq typedef.Sequence, cfg config.EditorConfig) []StackedRow {
	byFixture := make(map[typedef.FixtureID][]PlacedEffect, len(show.Fixtures))

	for ti := range seq.Tracks {
		track := &seq.Tracks[ti]
		targets := track.Target.Resolve(show.Fixtures, show.Groups)
		if len(targets) == 0 {
			continue
		}
		for ei := range track.Effects {
			eff := &track.Effects[ei]
			for _, fid := range targets {
				byFixture[fid] = append(byFixture[fid], PlacedEffect{
					TrackIndex:  ti,
					EffectIndex: ei,
					Start:       eff.TimeRange.Start,
					End:         eff.TimeRange.End,
					Kind:        eff.Kind,
					Blend:       eff.BlendMode,
				})
			}
		}
	}

	rows := make([]StackedRow, 0, len(show.Fixtures))
	for _, fixture := range show.Fixtures {
		placed := byFixture[fixture.ID]
		spans := make([]timeSpan, len(placed))
		for i := range placed {
			spans[i] = timeSpan{start: placed[i].Start, end: placed[i].End}
		}
		lanes, laneCount := packLanes(spans)
		for i := range placed {
			placed[i].Lane = lanes[i]
		}
		rows = append(rows, StackedRow{
			Fixture:   fixture,
			Effects:   placed,
			LaneCount: laneCount,
			Height:    rowHeightFor(laneCount, cfg),
		})
	}
	return rows
}

// findPlaced locates a placed effect by identity within the rows of one
// fixture. Used to re-resolve a drag's subject after a layout refresh.
func findPlaced(rows []StackedRow, fixture typedef.FixtureID, trackIdx, effectIdx int) (PlacedEffect, bool) {
	for i := range rows {
		if rows[i].Fixture.ID != fixture {
			continue
		}
		for _, p := range rows[i].Effects {
			if p.TrackIndex == trackIdx && p.EffectIndex == effectIdx {
				return p, true
			}
		}
	}
	return PlacedEffect{}, false
}
