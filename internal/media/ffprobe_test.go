package media

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMetadata_FullFile(t *testing.T) {
	result := &FFprobeResult{
		Streams: []Stream{
			{Index: 0, CodecName: "h264", CodecType: "video", Width: 1920, Height: 1080, Duration: "120.512000"},
			{Index: 1, CodecName: "aac", CodecType: "audio"},
		},
		Format: Format{
			Filename:   "/videos/clip.mp4",
			FormatName: "mov,mp4,m4a,3gp,3g2,mj2",
			Duration:   "120.533333",
			Size:       "1073741824",
		},
	}

	metadata, err := extractMetadata(result)
	require.NoError(t, err)

	assert.Equal(t, "h264", metadata.VideoCodec)
	assert.Equal(t, "aac", metadata.AudioCodec)
	assert.Equal(t, 1920, metadata.Width)
	assert.Equal(t, 1080, metadata.Height)
	// Stream duration wins over format duration
	assert.Equal(t, 120.512, metadata.Duration)
	assert.Equal(t, int64(1073741824), metadata.FileSize)
	assert.True(t, metadata.HasVideoTrack())
}

func TestExtractMetadata_FormatDurationFallback(t *testing.T) {
	result := &FFprobeResult{
		Streams: []Stream{
			{Index: 0, CodecName: "vp9", CodecType: "video", Width: 1280, Height: 720},
		},
		Format: Format{Duration: "42.5"},
	}

	metadata, err := extractMetadata(result)
	require.NoError(t, err)
	assert.Equal(t, 42.5, metadata.Duration)
}

func TestExtractMetadata_AudioOnly(t *testing.T) {
	result := &FFprobeResult{
		Streams: []Stream{
			{Index: 0, CodecName: "mp3", CodecType: "audio"},
		},
		Format: Format{Duration: "180.0"},
	}

	metadata, err := extractMetadata(result)
	require.NoError(t, err)

	assert.Equal(t, "mp3", metadata.AudioCodec)
	assert.Empty(t, metadata.VideoCodec)
	assert.False(t, metadata.HasVideoTrack())
	assert.Equal(t, 180.0, metadata.Duration)
}

func TestExtractMetadata_NoDuration(t *testing.T) {
	result := &FFprobeResult{
		Streams: []Stream{
			{Index: 0, CodecName: "h264", CodecType: "video", Width: 640, Height: 480},
		},
	}

	_, err := extractMetadata(result)
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestExtractMetadata_FirstStreamsWin(t *testing.T) {
	result := &FFprobeResult{
		Streams: []Stream{
			{Index: 0, CodecName: "h264", CodecType: "video", Width: 1920, Height: 1080},
			{Index: 1, CodecName: "hevc", CodecType: "video", Width: 3840, Height: 2160},
			{Index: 2, CodecName: "aac", CodecType: "audio"},
			{Index: 3, CodecName: "ac3", CodecType: "audio"},
		},
		Format: Format{Duration: "60"},
	}

	metadata, err := extractMetadata(result)
	require.NoError(t, err)

	assert.Equal(t, "h264", metadata.VideoCodec)
	assert.Equal(t, 1920, metadata.Width)
	assert.Equal(t, "aac", metadata.AudioCodec)
}

func TestFFprobeResult_ParsesRealOutput(t *testing.T) {
	raw := `{
		"streams": [
			{"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "duration": "596.458333"},
			{"index": 1, "codec_name": "aac", "codec_type": "audio"}
		],
		"format": {
			"filename": "/videos/big_buck_bunny.mp4",
			"format_name": "mov,mp4,m4a,3gp,3g2,mj2",
			"duration": "596.459000",
			"size": "158008374"
		}
	}`

	var result FFprobeResult
	require.NoError(t, json.Unmarshal([]byte(raw), &result))

	metadata, err := extractMetadata(&result)
	require.NoError(t, err)
	assert.InDelta(t, 596.458333, metadata.Duration, 1e-6)
	assert.Equal(t, int64(158008374), metadata.FileSize)
}
