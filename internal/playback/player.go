package playback

// Player is the surface a playback engine exposes to the rest of the
// system. Implementations deliver time updates and status edges through
// subscriptions; the returned unsubscribe funcs must be called by the
// owner before teardown so no callback outlives its subscriber.
type Player interface {
	// Play starts or resumes playback
	Play()

	// Pause halts playback without losing position
	Pause()

	// SeekTo moves the playhead to the given time in seconds. done, if
	// non-nil, is invoked with the outcome; a failed seek is not retried.
	SeekTo(seconds float64, done func(success bool))

	// CurrentTime returns the playhead position in seconds
	CurrentTime() float64

	// Duration returns the source length in seconds
	Duration() float64

	// Status returns the current engine status
	Status() Status

	// SubscribeTime registers a periodic time callback and returns its
	// unsubscribe func
	SubscribeTime(fn func(seconds float64)) (unsubscribe func())

	// SubscribeStatus registers an edge-triggered status callback and
	// returns its unsubscribe func
	SubscribeStatus(fn func(status Status)) (unsubscribe func())
}

// Seeker is the minimal player surface the scrubber needs while dragging
type Seeker interface {
	Pause()
	SeekTo(seconds float64, done func(success bool))
}
