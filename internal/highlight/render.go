package highlight

import (
	"fmt"
	"sort"
)

// Segment is one displayable piece of an article: either plain text or a
// highlighted slice carrying its display attributes.
type Segment struct {
	Text        string
	Highlighted bool

	// Key is the segment's stable identifier: the server id when known,
	// then the client id, then a span-derived fallback.
	Key    string
	Color  Color
	Active bool
}

// SegmentKey returns the stable identifier the renderer attaches to a
// record's segments.
func SegmentKey(h LocalHighlight) string {
	if id := h.serverKey(); id != 0 {
		return fmt.Sprintf("%d", id)
	}
	if h.ClientID != "" {
		return h.ClientID
	}
	return fmt.Sprintf("r%d-%d", h.CharacterStart, h.CharacterEnd)
}

// Render splits text into plain and highlighted segments. Overlapping
// highlights degrade by clipping: a later-starting overlap begins where the
// previous highlight ended and is never rendered twice. Inverted or
// out-of-range spans are skipped silently. The function is pure and total;
// it never panics on malformed records.
//
// Offsets count Unicode code points. The segment whose key equals activeKey
// is flagged Active.
func Render(text string, highlights []LocalHighlight, activeKey string) []Segment {
	if text == "" {
		return nil
	}
	if len(highlights) == 0 {
		return []Segment{{Text: text}}
	}

	sorted := make([]LocalHighlight, len(highlights))
	copy(sorted, highlights)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CharacterStart < sorted[j].CharacterStart
	})

	runes := []rune(text)
	segments := make([]Segment, 0, 2*len(sorted)+1)
	current := 0

	for _, h := range sorted {
		start := h.CharacterStart
		if start < current {
			start = current
		}
		if start >= len(runes) || h.CharacterEnd <= start {
			continue
		}
		end := h.CharacterEnd
		if end > len(runes) {
			end = len(runes)
		}

		if start > current {
			segments = append(segments, Segment{Text: string(runes[current:start])})
		}

		key := SegmentKey(h)
		segments = append(segments, Segment{
			Text:        string(runes[start:end]),
			Highlighted: true,
			Key:         key,
			Color:       NormalizeColor(h.Color),
			Active:      activeKey != "" && key == activeKey,
		})
		current = end
	}

	if current < len(runes) {
		segments = append(segments, Segment{Text: string(runes[current:])})
	}
	return segments
}
