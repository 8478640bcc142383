package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(clientID string, start, end int) LocalHighlight {
	return LocalHighlight{
		Highlight: Highlight{
			CharacterStart: start,
			CharacterEnd:   end,
			Color:          ColorYellow,
		},
		ClientID: clientID,
	}
}

func joined(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestRender_EmptyText(t *testing.T) {
	assert.Empty(t, Render("", []LocalHighlight{span("c1", 0, 5)}, ""))
}

func TestRender_NoHighlights(t *testing.T) {
	out := Render("plain text", nil, "")
	require.Len(t, out, 1)
	assert.Equal(t, Segment{Text: "plain text"}, out[0])
}

func TestRender_SingleHighlightWithGaps(t *testing.T) {
	out := Render("abcdefghij", []LocalHighlight{span("c1", 3, 6)}, "")
	require.Len(t, out, 3)
	assert.Equal(t, "abc", out[0].Text)
	assert.False(t, out[0].Highlighted)
	assert.Equal(t, "def", out[1].Text)
	assert.True(t, out[1].Highlighted)
	assert.Equal(t, "c1", out[1].Key)
	assert.Equal(t, "ghij", out[2].Text)
}

func TestRender_OverlapIsClippedNotDoubled(t *testing.T) {
	text := "abcdefghijklmnopqrst" // 20 chars
	out := Render(text, []LocalHighlight{span("c1", 0, 10), span("c2", 5, 15)}, "")

	var highlighted []string
	for _, s := range out {
		if s.Highlighted {
			highlighted = append(highlighted, s.Text)
		}
	}
	// [0,10) and the clipped [10,15): disjoint, union exactly [0,15).
	require.Equal(t, []string{"abcdefghij", "klmno"}, highlighted)
	assert.Equal(t, text, joined(out))
}

func TestRender_InvertedSpanIsSkipped(t *testing.T) {
	out := Render("hello", []LocalHighlight{span("c1", 50, 10)}, "")
	require.Len(t, out, 1)
	assert.Equal(t, Segment{Text: "hello"}, out[0])
}

func TestRender_SpanPastEndIsClamped(t *testing.T) {
	out := Render("hello", []LocalHighlight{span("c1", 3, 99)}, "")
	require.Len(t, out, 2)
	assert.Equal(t, "hel", out[0].Text)
	assert.Equal(t, "lo", out[1].Text)
	assert.True(t, out[1].Highlighted)
}

func TestRender_NegativeStartIsClamped(t *testing.T) {
	out := Render("hello", []LocalHighlight{span("c1", -3, 2)}, "")
	require.Len(t, out, 2)
	assert.Equal(t, "he", out[0].Text)
	assert.True(t, out[0].Highlighted)
}

func TestRender_KeyPrefersServerID(t *testing.T) {
	h := span("c1", 0, 2)
	h.ServerID = 42
	out := Render("hello", []LocalHighlight{h}, "")
	assert.Equal(t, "42", out[0].Key)
}

func TestRender_KeyFallsBackToRange(t *testing.T) {
	h := span("", 1, 3)
	out := Render("hello", []LocalHighlight{h}, "")
	require.True(t, out[1].Highlighted)
	assert.Equal(t, "r1-3", out[1].Key)
}

func TestRender_ActiveFlag(t *testing.T) {
	out := Render("hello", []LocalHighlight{span("c1", 0, 2), span("c2", 3, 5)}, "c2")
	var active []string
	for _, s := range out {
		if s.Active {
			active = append(active, s.Key)
		}
	}
	assert.Equal(t, []string{"c2"}, active)
}

func TestRender_UnknownColorFallsBackToYellow(t *testing.T) {
	h := span("c1", 0, 2)
	h.Color = Color("chartreuse")
	out := Render("hello", []LocalHighlight{h}, "")
	assert.Equal(t, ColorYellow, out[0].Color)
}

func TestRender_TieOrderIsDeterministic(t *testing.T) {
	a := span("c-first", 2, 4)
	b := span("c-second", 2, 6)

	first := Render("abcdefgh", []LocalHighlight{a, b}, "")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Render("abcdefgh", []LocalHighlight{a, b}, ""))
	}
	// Stable sort keeps input order on equal starts: c-first renders [2,4),
	// c-second is clipped to [4,6).
	require.Len(t, first, 4)
	assert.Equal(t, "c-first", first[1].Key)
	assert.Equal(t, "c-second", first[2].Key)
}

func TestRender_MultibyteOffsetsCountRunes(t *testing.T) {
	// Offsets are code points, not bytes.
	out := Render("héllo wörld", []LocalHighlight{span("c1", 2, 5)}, "")
	require.Len(t, out, 3)
	assert.Equal(t, "llo", out[1].Text)
	assert.Equal(t, "héllo wörld", joined(out))
}
