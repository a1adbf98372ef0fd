// Package playback defines the playback-engine boundary: a narrow Player
// interface, edge-triggered status and periodic time streams with explicit
// unsubscribe, and a ticker-driven clock engine used for sessions and tests.
package playback

// Status represents the state of a playback engine
type Status int

const (
	// StatusInitial indicates no source has been attached yet
	StatusInitial Status = iota
	// StatusLoading indicates the source is being prepared
	StatusLoading
	// StatusFailed indicates the source could not be played
	StatusFailed
	// StatusReady indicates the source is prepared and paused at its start
	StatusReady
	// StatusPlaying indicates playback is advancing
	StatusPlaying
	// StatusPaused indicates playback is halted but resumable
	StatusPaused
	// StatusFinished indicates playback reached the end of the source
	StatusFinished
)

const statusUnknown = "unknown"

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusInitial:
		return "initial"
	case StatusLoading:
		return "loading"
	case StatusFailed:
		return "failed"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	default:
		return statusUnknown
	}
}
