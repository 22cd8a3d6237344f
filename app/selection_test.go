package app

import (
	"testing"

	"lumina/seqruntime"
)

func TestSelectionReplaceAndToggle(t *testing.T) {
	s := newSelectionSet()
	a := effectRef{Track: 0, Effect: 0}
	b := effectRef{Track: 1, Effect: 2}

	s.replace(a)
	if !s.contains(a) || s.count() != 1 {
		t.Fatal("replace did not install sole selection")
	}

	s.toggle(b)
	if !s.contains(a) || !s.contains(b) || s.count() != 2 {
		t.Fatal("toggle did not add second ref")
	}

	s.toggle(a)
	if s.contains(a) || s.count() != 1 {
		t.Fatal("toggle did not remove existing ref")
	}

	s.replace(a)
	if s.contains(b) || s.count() != 1 {
		t.Fatal("replace did not drop prior selection")
	}

	s.clear()
	if s.count() != 0 {
		t.Fatal("clear left refs behind")
	}
}

func TestSelectionOrdered(t *testing.T) {
	s := newSelectionSet()
	refs := []effectRef{
		{Track: 2, Effect: 0},
		{Track: 0, Effect: 1},
		{Track: 0, Effect: 0},
		{Track: 1, Effect: 3},
	}
	for _, r := range refs {
		s.toggle(r)
	}

	got := s.ordered()
	want := []effectRef{
		{Track: 0, Effect: 0},
		{Track: 0, Effect: 1},
		{Track: 1, Effect: 3},
		{Track: 2, Effect: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("ordered len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordered[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSelectionPrune(t *testing.T) {
	show := seqruntime.DemoShow()
	seq := show.Sequences[0]

	s := newSelectionSet()
	valid := effectRef{Track: 0, Effect: 0}
	staleTrack := effectRef{Track: len(seq.Tracks), Effect: 0}
	staleEffect := effectRef{Track: 0, Effect: len(seq.Tracks[0].Effects)}
	s.toggle(valid)
	s.toggle(staleTrack)
	s.toggle(staleEffect)

	s.prune(seq)
	if !s.contains(valid) {
		t.Fatal("prune dropped a valid ref")
	}
	if s.contains(staleTrack) || s.contains(staleEffect) {
		t.Fatal("prune kept stale refs")
	}
	if s.count() != 1 {
		t.Fatalf("count = %d, want 1", s.count())
	}
}
