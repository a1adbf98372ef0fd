package scrub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeometry_Success(t *testing.T) {
	geo, err := NewGeometry(60, 66, 10, 400)

	require.NoError(t, err)
	assert.Equal(t, 660.0, geo.ContentWidth())
	assert.Equal(t, 200.0, geo.Padding())
	assert.Equal(t, -200.0, geo.MinOffset())
	assert.Equal(t, 460.0, geo.MaxOffset())
}

func TestNewGeometry_InvalidDuration(t *testing.T) {
	_, err := NewGeometry(0, 66, 10, 400)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = NewGeometry(-5, 66, 10, 400)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestNewGeometry_InvalidLayout(t *testing.T) {
	tests := []struct {
		name          string
		pitch         float64
		thumbCount    int
		viewportWidth float64
	}{
		{"zero pitch", 0, 10, 400},
		{"zero thumb count", 66, 0, 400},
		{"zero viewport", 66, 10, 0},
		{"negative pitch", -1, 10, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeometry(60, tt.pitch, tt.thumbCount, tt.viewportWidth)
			assert.ErrorIs(t, err, ErrInvalidLayout)
		})
	}
}

func TestOffsetForTime(t *testing.T) {
	geo, err := NewGeometry(60, 66, 10, 400)
	require.NoError(t, err)

	tests := []struct {
		name string
		time float64
		want float64
	}{
		{"time zero is min offset", 0, -200},
		{"midpoint", 30, 130},
		{"end is max offset", 60, 460},
		{"negative time clamps to start", -10, -200},
		{"past end clamps to max offset", 90, 460},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, geo.OffsetForTime(tt.time), 1e-9)
		})
	}
}

func TestTimeForOffset(t *testing.T) {
	geo, err := NewGeometry(60, 66, 10, 400)
	require.NoError(t, err)

	tests := []struct {
		name   string
		offset float64
		want   float64
	}{
		{"min offset is time zero", -200, 0},
		{"midpoint", 130, 30},
		{"max offset is duration", 460, 60},
		{"overscroll left clamps to zero", -350, 0},
		{"overscroll right clamps to duration", 700, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, geo.TimeForOffset(tt.offset), 1e-9)
		})
	}
}

func TestGeometry_RoundTrip(t *testing.T) {
	geo, err := NewGeometry(137.5, 37.33, 25, 390)
	require.NoError(t, err)

	for _, tm := range []float64{0, 0.5, 12.25, 60, 137.5} {
		offset := geo.OffsetForTime(tm)
		assert.InDelta(t, tm, geo.TimeForOffset(offset), 1e-9, "time %v should round-trip", tm)
	}
}

// Benchmark tests to verify the mapping stays cheap enough for the
// time-update cadence
func BenchmarkOffsetForTime(b *testing.B) {
	geo, _ := NewGeometry(3600, 66.67, 100, 400)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = geo.OffsetForTime(float64(i % 3600))
	}
}

func BenchmarkTimeForOffset(b *testing.B) {
	geo, _ := NewGeometry(3600, 66.67, 100, 400)
	span := geo.MaxOffset() - geo.MinOffset()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = geo.TimeForOffset(geo.MinOffset() + float64(i%1000)/1000*span)
	}
}
