package app

import (
	"encoding/json"
	"log"
	"sort"

	"golang.design/x/clipboard"

	"lumina/typedef"
)

// selectionSet tracks which placed effects are selected. Mutated only by the
// timeline's click/drag-release logic; last writer wins if the host UI ever
// writes it too.
type selectionSet struct {
	refs map[effectRef]bool
}

func newSelectionSet() *selectionSet {
	return &selectionSet{refs: make(map[effectRef]bool)}
}

func (s *selectionSet) contains(r effectRef) bool { return s.refs[r] }

func (s *selectionSet) count() int { return len(s.refs) }

// replace makes r the sole selection (plain click).
func (s *selectionSet) replace(r effectRef) {
	s.refs = map[effectRef]bool{r: true}
}

// toggle flips r's membership (shift-click).
func (s *selectionSet) toggle(r effectRef) {
	if s.refs[r] {
		delete(s.refs, r)
	} else {
		s.refs[r] = true
	}
}

func (s *selectionSet) clear() {
	s.refs = make(map[effectRef]bool)
}

// ordered returns the selection sorted by (track, effect) for stable
// iteration when deleting or copying.
func (s *selectionSet) ordered() []effectRef {
	out := make([]effectRef, 0, len(s.refs))
	for r := range s.refs {
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Track != out[b].Track {
			return out[a].Track < out[b].Track
		}
		return out[a].Effect < out[b].Effect
	})
	return out
}

// prune drops refs that no longer resolve in the sequence, for use after a
// data refresh invalidates indices.
func (s *selectionSet) prune(seq typedef.Sequence) {
	for r := range s.refs {
		if r.Track < 0 || r.Track >= len(seq.Tracks) ||
			r.Effect < 0 || r.Effect >= len(seq.Tracks[r.Track].Effects) {
			delete(s.refs, r)
		}
	}
}

// copiedEffect is the clipboard representation of one selected effect.
type copiedEffect struct {
	Track  string                 `json:"track"`
	Effect typedef.EffectInstance `json:"effect"`
}

// copyToClipboard writes the selected effects to the system clipboard as
// JSON so they can be pasted into another sequence or inspected externally.
func (s *selectionSet) copyToClipboard(seq typedef.Sequence) {
	if len(s.refs) == 0 {
		return
	}
	var out []copiedEffect
	for _, r := range s.ordered() {
		if r.Track >= len(seq.Tracks) || r.Effect >= len(seq.Tracks[r.Track].Effects) {
			continue
		}
		out = append(out, copiedEffect{
			Track:  seq.Tracks[r.Track].Name,
			Effect: seq.Tracks[r.Track].Effects[r.Effect],
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Printf("[TIMELINE] Clipboard copy failed: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
}
