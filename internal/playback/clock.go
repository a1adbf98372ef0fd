package playback

import (
	"sync"
	"time"

	"github.com/zcsoft/videotimeline/internal/logger"
)

// Clock is a ticker-driven playback engine. It advances a simulated
// playhead over a known duration and delivers the same time/status streams
// a native decoder would, which makes it usable both behind live sessions
// and in tests that need deterministic callback sequences.
//
// Callbacks are never invoked while the internal lock is held, so a
// subscriber may call back into the clock (e.g. seek from a time update)
// without deadlocking.
type Clock struct {
	mu         sync.Mutex
	duration   float64
	tick       time.Duration
	current    float64
	status     Status
	nextSubID  int
	timeSubs   map[int]func(float64)
	statusSubs map[int]func(Status)
	stopChan   chan struct{}
	done       chan struct{}
	closed     bool
}

// NewClock creates a clock engine for a source of the given duration,
// ticking at the given cadence. The engine starts in StatusReady with the
// playhead at zero.
func NewClock(duration float64, tick time.Duration) *Clock {
	c := &Clock{
		duration:   duration,
		tick:       tick,
		status:     StatusReady,
		timeSubs:   make(map[int]func(float64)),
		statusSubs: make(map[int]func(Status)),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	go c.run()
	return c
}

// run advances the playhead while the status is playing
func (c *Clock) run() {
	defer close(c.done)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.advance()
		}
	}
}

// advance moves the playhead forward by one tick and emits updates
func (c *Clock) advance() {
	c.mu.Lock()
	if c.status != StatusPlaying {
		c.mu.Unlock()
		return
	}

	c.current += c.tick.Seconds()
	finished := false
	if c.current >= c.duration {
		c.current = c.duration
		c.status = StatusFinished
		finished = true
	}

	t := c.current
	timeSubs := c.timeSubsLocked()
	var statusSubs []func(Status)
	if finished {
		statusSubs = c.statusSubsLocked()
	}
	c.mu.Unlock()

	for _, fn := range timeSubs {
		fn(t)
	}
	for _, fn := range statusSubs {
		fn(StatusFinished)
	}
}

// Play starts or resumes playback. Playing a finished source restarts it
// from the beginning.
func (c *Clock) Play() {
	c.mu.Lock()
	if c.closed || c.status == StatusPlaying || c.status == StatusFailed {
		c.mu.Unlock()
		return
	}
	if c.status == StatusFinished {
		c.current = 0
	}
	c.status = StatusPlaying
	statusSubs := c.statusSubsLocked()
	c.mu.Unlock()

	for _, fn := range statusSubs {
		fn(StatusPlaying)
	}
}

// Pause halts playback without losing position
func (c *Clock) Pause() {
	c.mu.Lock()
	if c.closed || c.status != StatusPlaying {
		c.mu.Unlock()
		return
	}
	c.status = StatusPaused
	statusSubs := c.statusSubsLocked()
	c.mu.Unlock()

	for _, fn := range statusSubs {
		fn(StatusPaused)
	}
}

// SeekTo moves the playhead to the given time, clamped to [0, duration].
// Seeking a finished source out of its end leaves it paused.
func (c *Clock) SeekTo(seconds float64, seekDone func(success bool)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if seekDone != nil {
			seekDone(false)
		}
		return
	}

	if seconds < 0 {
		seconds = 0
	}
	if seconds > c.duration {
		seconds = c.duration
	}
	c.current = seconds

	var statusSubs []func(Status)
	if c.status == StatusFinished && seconds < c.duration {
		c.status = StatusPaused
		statusSubs = c.statusSubsLocked()
	}

	t := c.current
	timeSubs := c.timeSubsLocked()
	c.mu.Unlock()

	for _, fn := range timeSubs {
		fn(t)
	}
	for _, fn := range statusSubs {
		fn(StatusPaused)
	}
	if seekDone != nil {
		seekDone(true)
	}
}

// CurrentTime returns the playhead position in seconds
func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Duration returns the source length in seconds
func (c *Clock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Status returns the current engine status
func (c *Clock) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SubscribeTime registers a periodic time callback
func (c *Clock) SubscribeTime(fn func(float64)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.timeSubs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.timeSubs, id)
	}
}

// SubscribeStatus registers an edge-triggered status callback
func (c *Clock) SubscribeStatus(fn func(Status)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.statusSubs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.statusSubs, id)
	}
}

// Close stops the clock goroutine and drops all subscribers. The clock
// must not be used after Close.
func (c *Clock) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.timeSubs = make(map[int]func(float64))
	c.statusSubs = make(map[int]func(Status))
	c.mu.Unlock()

	close(c.stopChan)
	<-c.done

	logger.Log.Debug().Msg("Playback clock closed")
}

// timeSubsLocked snapshots time subscribers for emission outside the lock
func (c *Clock) timeSubsLocked() []func(float64) {
	subs := make([]func(float64), 0, len(c.timeSubs))
	for _, fn := range c.timeSubs {
		subs = append(subs, fn)
	}
	return subs
}

// statusSubsLocked snapshots status subscribers for emission outside the lock
func (c *Clock) statusSubsLocked() []func(Status) {
	subs := make([]func(Status), 0, len(c.statusSubs))
	for _, fn := range c.statusSubs {
		subs = append(subs, fn)
	}
	return subs
}
