package scrub

import "fmt"

// Label placement constants, in layout units
const (
	// LabelWidth is the rendered width of one time label
	LabelWidth = 30.0

	// LabelGap is the space between consecutive labels
	LabelGap = 36.0

	// LabelStep is the horizontal distance between label origins
	LabelStep = LabelWidth + LabelGap
)

// Label is a time caption positioned along the strip content
type Label struct {
	// X is the left edge of the label in content coordinates
	X float64 `json:"x"`

	// Time is the media time at the label's center, in seconds
	Time float64 `json:"time"`

	// Text is the label caption, formatted mm:ss
	Text string `json:"text"`
}

// Separator is a glyph centered in the gap between two labels
type Separator struct {
	// X is the center of the separator in content coordinates
	X float64 `json:"x"`
}

// PlaceLabels computes the time captions for a strip. Labels are placed at
// x = i*step for floor(contentWidth/step)+1 labels, each captioned with the
// media time at its center, and a separator sits centered in every
// inter-label gap except after the last label.
func PlaceLabels(contentWidth, duration float64) ([]Label, []Separator, error) {
	if contentWidth <= 0 {
		return nil, nil, ErrInvalidLayout
	}
	if duration <= 0 {
		return nil, nil, ErrInvalidDuration
	}

	count := int(contentWidth/LabelStep) + 1

	labels := make([]Label, 0, count)
	separators := make([]Separator, 0, count-1)
	for i := 0; i < count; i++ {
		x := float64(i) * LabelStep
		center := x + LabelWidth/2
		t := center / contentWidth * duration

		labels = append(labels, Label{
			X:    x,
			Time: t,
			Text: FormatTimestamp(t),
		})

		// No separator after the last label
		if i < count-1 {
			separators = append(separators, Separator{
				X: x + LabelWidth + LabelGap/2,
			})
		}
	}

	return labels, separators, nil
}

// FormatTimestamp formats a time in seconds as mm:ss
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
