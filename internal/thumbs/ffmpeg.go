package thumbs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/zcsoft/videotimeline/internal/logger"
)

// Frame output defaults
const (
	defaultMaxWidth  = 160
	defaultMaxHeight = 120
	jpegQuality      = 4 // ffmpeg -q:v scale, 2 (best) to 31
)

// ErrFFmpegNotFound indicates ffmpeg is not installed
var ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")

// FFmpegGenerator extracts thumbnail frames by shelling out to ffmpeg,
// one invocation per frame so a run can be cancelled between frames and a
// single bad frame doesn't abort the rest of the strip.
type FFmpegGenerator struct{}

// NewFFmpegGenerator creates an ffmpeg-backed generator
func NewFFmpegGenerator() *FFmpegGenerator {
	return &FFmpegGenerator{}
}

// CheckFFmpegInstalled checks if ffmpeg is available in PATH
func CheckFFmpegInstalled() error {
	_, err := exec.LookPath("ffmpeg")
	if err != nil {
		return ErrFFmpegNotFound
	}
	return nil
}

// Generate produces req.Count frames at req.Interval spacing, delivering
// each through sink in index order. Returns ErrCancelled if ctx ends
// before the final frame.
func (g *FFmpegGenerator) Generate(ctx context.Context, req Request, sink func(Result)) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if err := CheckFFmpegInstalled(); err != nil {
		return err
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Log.Info().
		Str("source", req.Source).
		Float64("interval", req.Interval).
		Int("count", req.Count).
		Msg("Starting thumbnail generation")

	for i := 0; i < req.Count; i++ {
		select {
		case <-ctx.Done():
			logger.Log.Debug().
				Str("source", req.Source).
				Int("completed", i).
				Msg("Thumbnail generation cancelled")
			return ErrCancelled
		default:
		}

		outPath := FramePath(req.OutputDir, i)
		args := buildFrameArgs(req, i, outPath)

		cmd := exec.CommandContext(ctx, "ffmpeg", args...)
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return ErrCancelled
			}
			// One bad frame doesn't abort the strip: deliver a failed slot
			// and keep going
			logger.Log.Warn().
				Err(err).
				Str("source", req.Source).
				Int("index", i).
				Msg("Frame extraction failed, skipping slot")
			sink(Result{Index: i, Total: req.Count, Err: err})
			continue
		}

		sink(Result{Path: outPath, Index: i, Total: req.Count})
	}

	logger.Log.Info().
		Str("source", req.Source).
		Int("count", req.Count).
		Msg("Thumbnail generation complete")

	return nil
}

// validateRequest validates generation parameters
func validateRequest(req Request) error {
	if req.Source == "" {
		return ErrEmptySource
	}
	if req.OutputDir == "" {
		return ErrEmptyOutput
	}
	if req.Interval <= 0 || req.Count <= 0 {
		return ErrInvalidParams
	}
	return nil
}

// FramePath returns the on-disk path of the frame at the given index
func FramePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("thumb_%04d.jpg", index))
}

// buildFrameArgs builds the ffmpeg arguments for extracting one frame.
// -ss before -i for fast keyframe seeking; the scale filter fits the frame
// inside the max box while preserving aspect.
func buildFrameArgs(req Request, index int, outPath string) []string {
	maxW := req.MaxWidth
	maxH := req.MaxHeight
	if maxW <= 0 {
		maxW = defaultMaxWidth
	}
	if maxH <= 0 {
		maxH = defaultMaxHeight
	}

	timestamp := float64(index) * req.Interval

	return []string{
		"-v", "error",
		"-ss", strconv.FormatFloat(timestamp, 'f', 3, 64),
		"-i", req.Source,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", maxW, maxH),
		"-q:v", strconv.Itoa(jpegQuality),
		"-y",
		outPath,
	}
}
