package scrub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceLabels_ExactMultiple(t *testing.T) {
	// Content width is exactly ten steps, so an eleventh label lands on the
	// right edge
	labels, separators, err := PlaceLabels(660, 60)

	require.NoError(t, err)
	require.Len(t, labels, 11)
	require.Len(t, separators, 10)

	for i, label := range labels {
		assert.InDelta(t, float64(i)*LabelStep, label.X, 1e-9)
	}

	// Each label is captioned with the media time at its center
	assert.InDelta(t, 15.0/660*60, labels[0].Time, 1e-9)
	assert.Equal(t, "00:01", labels[0].Text)
	assert.InDelta(t, (330+15.0)/660*60, labels[5].Time, 1e-9)

	// Separators sit centered in the gap between labels
	for i, sep := range separators {
		assert.InDelta(t, float64(i)*LabelStep+LabelWidth+LabelGap/2, sep.X, 1e-9)
	}
}

func TestPlaceLabels_PartialStep(t *testing.T) {
	labels, separators, err := PlaceLabels(700, 120)

	require.NoError(t, err)
	// floor(700/66) + 1
	assert.Len(t, labels, 11)
	assert.Len(t, separators, 10)
}

func TestPlaceLabels_NarrowStrip(t *testing.T) {
	// Narrower than one step still produces the label at the origin and no
	// separator after it
	labels, separators, err := PlaceLabels(50, 10)

	require.NoError(t, err)
	assert.Len(t, labels, 1)
	assert.Empty(t, separators)
}

func TestPlaceLabels_InvalidInput(t *testing.T) {
	_, _, err := PlaceLabels(0, 60)
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, _, err = PlaceLabels(660, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{1.36, "00:01"},
		{59.99, "00:59"},
		{60, "01:00"},
		{754, "12:34"},
		{3661, "61:01"},
		{-5, "00:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(tt.seconds))
	}
}
