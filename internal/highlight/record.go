// Package highlight implements the NewsMarks domain core: highlight records,
// the local/remote reconciliation merge, the segment renderer, and the
// character-offset mapper. All character offsets in this package count
// Unicode code points within an article's flattened plain text.
package highlight

import "time"

// Color classifies a highlight for display. It carries no meaning for the
// merge logic.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
)

// ValidColor reports whether c is one of the five palette colors.
func ValidColor(c Color) bool {
	switch c {
	case ColorYellow, ColorBlue, ColorRed, ColorGreen, ColorPurple:
		return true
	}
	return false
}

// NormalizeColor maps any color value onto the palette, falling back to
// yellow for unrecognized values.
func NormalizeColor(c Color) Color {
	if ValidColor(c) {
		return c
	}
	return ColorYellow
}

// Highlight is the canonical, server-shaped record: one contiguous span of
// text within one article. ID is zero until the server has assigned one.
// The span is half-open, [CharacterStart, CharacterEnd).
type Highlight struct {
	ID              int64      `json:"id,omitempty"`
	ArticleURL      string     `json:"article_url"`
	HighlightedText string     `json:"highlighted_text"`
	CharacterStart  int        `json:"character_start"`
	CharacterEnd    int        `json:"character_end"`
	Color           Color      `json:"color"`
	Note            string     `json:"note,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// ServerTime returns the server's notion of when the record last changed:
// UpdatedAt when present, otherwise CreatedAt, otherwise nil.
func (h Highlight) ServerTime() *time.Time {
	if h.UpdatedAt != nil {
		return h.UpdatedAt
	}
	return h.CreatedAt
}

// SpanValid reports whether the record describes a renderable span.
func (h Highlight) SpanValid() bool {
	return h.CharacterStart >= 0 && h.CharacterEnd > h.CharacterStart
}
