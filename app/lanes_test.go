package app

import (
	"testing"

	"lumina/config"
	"lumina/seqruntime"
)

func spansOf(pairs ...[2]float64) []timeSpan {
	spans := make([]timeSpan, len(pairs))
	for i, p := range pairs {
		spans[i] = timeSpan{start: p[0], end: p[1]}
	}
	return spans
}

func TestPackLanesOverlapSplits(t *testing.T) {
	lanes, count := packLanes(spansOf([2]float64{0, 5}, [2]float64{3, 8}))
	if count != 2 {
		t.Fatalf("lane count = %d, want 2", count)
	}
	if lanes[0] == lanes[1] {
		t.Fatalf("overlapping spans share lane %d", lanes[0])
	}
}

func TestPackLanesTouchingShares(t *testing.T) {
	lanes, count := packLanes(spansOf([2]float64{0, 5}, [2]float64{5, 8}))
	if count != 1 {
		t.Fatalf("lane count = %d, want 1", count)
	}
	if lanes[0] != 0 || lanes[1] != 0 {
		t.Fatalf("touching spans got lanes %v, want both 0", lanes)
	}
}

func TestPackLanesReusesFreedLane(t *testing.T) {
	// Third span starts after the first ends, so lane 0 is free again.
	lanes, count := packLanes(spansOf(
		[2]float64{0, 4},
		[2]float64{2, 6},
		[2]float64{5, 9},
	))
	if count != 2 {
		t.Fatalf("lane count = %d, want 2", count)
	}
	if lanes[2] != 0 {
		t.Fatalf("third span lane = %d, want 0", lanes[2])
	}
}

func TestPackLanesInputOrderIndependent(t *testing.T) {
	// Spans given out of start order still pack by start.
	lanes, count := packLanes(spansOf(
		[2]float64{6, 9},
		[2]float64{0, 3},
		[2]float64{3, 6},
	))
	if count != 1 {
		t.Fatalf("lane count = %d, want 1", count)
	}
	for i, l := range lanes {
		if l != 0 {
			t.Fatalf("span %d lane = %d, want 0", i, l)
		}
	}
}

func TestPackLanesEmpty(t *testing.T) {
	lanes, count := packLanes(nil)
	if len(lanes) != 0 || count != 1 {
		t.Fatalf("empty pack = (%v, %d), want ([], 1)", lanes, count)
	}
}

func TestRowHeightFor(t *testing.T) {
	cfg := config.Default()
	cases := []struct {
		lanes int
		want  int
	}{
		{0, cfg.MinRowHeight},
		{1, cfg.MinRowHeight},
		{2, 2*cfg.LaneUnitHeight + 2*cfg.RowPadding},
		{4, 4*cfg.LaneUnitHeight + 2*cfg.RowPadding},
	}
	for _, c := range cases {
		if got := rowHeightFor(c.lanes, cfg); got != c.want {
			t.Errorf("rowHeightFor(%d) = %d, want %d", c.lanes, got, c.want)
		}
	}
}

func TestBuildStackedRowsDemoShow(t *testing.T) {
	cfg := config.Default()
	show := seqruntime.DemoShow()
	seq := show.Sequences[0]

	rows := buildStackedRows(show, seq, cfg)
	if len(rows) != len(show.Fixtures) {
		t.Fatalf("rows = %d, want one per fixture (%d)", len(rows), len(show.Fixtures))
	}

	for _, row := range rows {
		if row.LaneCount < 1 {
			t.Errorf("fixture %d lane count %d < 1", row.Fixture.ID, row.LaneCount)
		}
		if row.Height < cfg.MinRowHeight {
			t.Errorf("fixture %d height %d below floor %d", row.Fixture.ID, row.Height, cfg.MinRowHeight)
		}
		for _, p := range row.Effects {
			if p.Lane < 0 || p.Lane >= row.LaneCount {
				t.Errorf("fixture %d: lane %d outside [0,%d)", row.Fixture.ID, p.Lane, row.LaneCount)
			}
		}
		// No two effects in the same lane may overlap.
		for i, a := range row.Effects {
			for _, b := range row.Effects[i+1:] {
				if a.Lane == b.Lane && a.Start < b.End && b.Start < a.End {
					t.Errorf("fixture %d lane %d: [%g,%g) overlaps [%g,%g)",
						row.Fixture.ID, a.Lane, a.Start, a.End, b.Start, b.End)
				}
			}
		}
	}

	// Fixture 2 carries the base rainbow, the finale and the strobe burst;
	// the burst overlaps the rainbow so its row needs at least two lanes.
	for _, row := range rows {
		if row.Fixture.ID == 2 && row.LaneCount < 2 {
			t.Errorf("fixture 2 lane count = %d, want >= 2", row.LaneCount)
		}
	}
}

func TestFindPlaced(t *testing.T) {
	cfg := config.Default()
	show := seqruntime.DemoShow()
	rows := buildStackedRows(show, show.Sequences[0], cfg)

	first := rows[0].Effects[0]
	got, ok := findPlaced(rows, rows[0].Fixture.ID, first.TrackIndex, first.EffectIndex)
	if !ok {
		t.Fatal("known effect not found")
	}
	if got.Start != first.Start || got.End != first.End {
		t.Fatalf("found [%g,%g), want [%g,%g)", got.Start, got.End, first.Start, first.End)
	}
	if _, ok := findPlaced(rows, rows[0].Fixture.ID, 99, 0); ok {
		t.Fatal("found effect for bogus track index")
	}
}
