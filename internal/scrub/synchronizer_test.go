package scrub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zcsoft/videotimeline/internal/playback"
)

// fakeSeeker records the player calls a synchronizer issues
type fakeSeeker struct {
	mu        sync.Mutex
	pauses    int
	seeks     []float64
	failSeeks bool
}

func (f *fakeSeeker) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *fakeSeeker) SeekTo(seconds float64, done func(success bool)) {
	f.mu.Lock()
	f.seeks = append(f.seeks, seconds)
	fail := f.failSeeks
	f.mu.Unlock()

	if done != nil {
		done(!fail)
	}
}

func (f *fakeSeeker) seekTargets() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.seeks...)
}

func (f *fakeSeeker) pauseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pauses
}

// offsetRecorder collects offsets applied to the strip
type offsetRecorder struct {
	mu      sync.Mutex
	offsets []float64
}

func (r *offsetRecorder) apply(offset float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offsets = append(r.offsets, offset)
}

func (r *offsetRecorder) all() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.offsets...)
}

// testGeometry maps time t to offset -10 + 10t over a 10 second source
func testGeometry(t *testing.T) Geometry {
	t.Helper()
	geo, err := NewGeometry(10, 10, 10, 20)
	require.NoError(t, err)
	return geo
}

func setupSynchronizer(t *testing.T, cfg Config) (*Synchronizer, *fakeSeeker, *offsetRecorder) {
	t.Helper()
	player := &fakeSeeker{}
	recorder := &offsetRecorder{}
	s := NewSynchronizer(player, recorder.apply, cfg)
	require.NoError(t, s.SetGeometry(testGeometry(t)))
	t.Cleanup(s.Close)
	return s, player, recorder
}

func TestSynchronizer_FollowsTimeUpdates(t *testing.T) {
	s, _, recorder := setupSynchronizer(t, Config{})

	s.OnTimeUpdate(0)
	s.OnTimeUpdate(2.5)
	s.OnTimeUpdate(10)

	offsets := recorder.all()
	require.Len(t, offsets, 3)
	assert.InDelta(t, -10.0, offsets[0], 1e-9)
	assert.InDelta(t, 15.0, offsets[1], 1e-9)
	assert.InDelta(t, 90.0, offsets[2], 1e-9)
}

func TestSynchronizer_TimeUpdatesIgnoredWhileDragging(t *testing.T) {
	s, _, recorder := setupSynchronizer(t, Config{})

	s.BeginDrag()
	s.OnTimeUpdate(5)

	assert.Empty(t, recorder.all())
	assert.Equal(t, ModeDragging, s.Mode())
}

func TestSynchronizer_TimeUpdateBeforeGeometry(t *testing.T) {
	player := &fakeSeeker{}
	recorder := &offsetRecorder{}
	s := NewSynchronizer(player, recorder.apply, Config{})
	defer s.Close()

	s.OnTimeUpdate(5)
	s.OnScroll(50)

	assert.Empty(t, recorder.all())
	assert.Empty(t, player.seekTargets())
}

func TestSynchronizer_BeginDragPausesPlayback(t *testing.T) {
	s, player, _ := setupSynchronizer(t, Config{})

	s.BeginDrag()

	assert.Equal(t, ModeDragging, s.Mode())
	assert.Equal(t, 1, player.pauseCount())
}

func TestSynchronizer_ScrollThrottle(t *testing.T) {
	s, player, _ := setupSynchronizer(t, Config{SeekThrottle: 300 * time.Millisecond})
	s.BeginDrag()

	// Offsets mapping to targets 1.0s, 1.05s, 1.4s
	s.OnScroll(0)
	s.OnScroll(0.5)
	s.OnScroll(4)

	// 1.05 is within 0.3s of the issued 1.0 and is dropped; 1.4 is not
	targets := player.seekTargets()
	require.Len(t, targets, 2)
	assert.InDelta(t, 1.0, targets[0], 1e-9)
	assert.InDelta(t, 1.4, targets[1], 1e-9)

	last, issued := s.LastSeekTarget()
	assert.True(t, issued)
	assert.InDelta(t, 1.4, last, 1e-9)
}

func TestSynchronizer_ThrottleMeasuresFromIssuedTarget(t *testing.T) {
	s, player, _ := setupSynchronizer(t, Config{SeekThrottle: 300 * time.Millisecond})
	s.BeginDrag()

	// Each drop re-evaluates against the last issued seek, not the last
	// scroll, so creeping deltas accumulate until the window is cleared
	s.OnScroll(0)   // 1.0 issued
	s.OnScroll(1)   // 1.1 dropped
	s.OnScroll(2)   // 1.2 dropped
	s.OnScroll(3.5) // 1.35 issued

	targets := player.seekTargets()
	require.Len(t, targets, 2)
	assert.InDelta(t, 1.35, targets[1], 1e-9)
}

func TestSynchronizer_ScrollIgnoredWhileFollowing(t *testing.T) {
	s, player, _ := setupSynchronizer(t, Config{})

	s.OnScroll(50)

	assert.Empty(t, player.seekTargets())
	_, issued := s.LastSeekTarget()
	assert.False(t, issued)
}

func TestSynchronizer_PlayingReleasesDrag(t *testing.T) {
	s, _, recorder := setupSynchronizer(t, Config{})

	s.BeginDrag()
	s.OnStatusChange(playback.StatusPlaying)

	assert.Equal(t, ModeFollowing, s.Mode())

	// Time updates drive the strip again
	s.OnTimeUpdate(3)
	offsets := recorder.all()
	require.Len(t, offsets, 1)
	assert.InDelta(t, 20.0, offsets[0], 1e-9)
}

func TestSynchronizer_SeekFailureNotRetried(t *testing.T) {
	s, player, _ := setupSynchronizer(t, Config{SeekThrottle: 300 * time.Millisecond})
	player.failSeeks = true
	s.BeginDrag()

	s.OnScroll(0)
	// Still inside the throttle window of the failed seek; no retry
	s.OnScroll(0.5)

	assert.Len(t, player.seekTargets(), 1)
}

func TestSynchronizer_FinishedRewindsAfterDelay(t *testing.T) {
	s, player, recorder := setupSynchronizer(t, Config{FinishResetDelay: 20 * time.Millisecond})
	s.BeginDrag()
	s.OnScroll(4)

	s.OnStatusChange(playback.StatusFinished)

	assert.Eventually(t, func() bool {
		targets := player.seekTargets()
		return len(targets) == 2 && targets[1] == 0
	}, time.Second, 5*time.Millisecond)

	// The rewind parks the strip at its initial offset and clears the scrub
	// state
	offsets := recorder.all()
	require.NotEmpty(t, offsets)
	assert.InDelta(t, -10.0, offsets[len(offsets)-1], 1e-9)
	assert.Equal(t, ModeFollowing, s.Mode())

	_, issued := s.LastSeekTarget()
	assert.False(t, issued)
}

func TestSynchronizer_CloseCancelsPendingRewind(t *testing.T) {
	s, player, _ := setupSynchronizer(t, Config{FinishResetDelay: 20 * time.Millisecond})

	s.OnStatusChange(playback.StatusFinished)
	s.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, player.seekTargets())
}

func TestSynchronizer_SetGeometryTwice(t *testing.T) {
	s, _, _ := setupSynchronizer(t, Config{})

	err := s.SetGeometry(testGeometry(t))
	assert.ErrorIs(t, err, ErrGeometryAlreadySet)
}

func TestSynchronizer_GeometryAccessor(t *testing.T) {
	player := &fakeSeeker{}
	s := NewSynchronizer(player, nil, Config{})
	defer s.Close()

	_, err := s.Geometry()
	assert.ErrorIs(t, err, ErrGeometryNotSet)

	require.NoError(t, s.SetGeometry(testGeometry(t)))
	geo, err := s.Geometry()
	require.NoError(t, err)
	assert.Equal(t, 100.0, geo.ContentWidth())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "following", ModeFollowing.String())
	assert.Equal(t, "dragging", ModeDragging.String())
	assert.Equal(t, "unknown", Mode(99).String())
}
