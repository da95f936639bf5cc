package media

// VideoInfo describes the currently loaded video. The zero value is the
// sentinel returned before a successful load and after a failed one.
type VideoInfo struct {
	// Width and Height are the video track's natural size in pixels.
	Width  int
	Height int
	// DurationMs is the asset duration in whole milliseconds.
	DurationMs int64
}

// IsZero reports whether the info is the unloaded sentinel.
func (i VideoInfo) IsZero() bool {
	return i == VideoInfo{}
}

// PlaybackStatus is the coarse playback state of a controller. It is
// derived from the underlying player's rate and error state at query time,
// never stored authoritatively.
type PlaybackStatus int

const (
	// StatusIdle indicates no video is loaded.
	StatusIdle PlaybackStatus = iota
	// StatusPlaying indicates the player rate is non-zero and no
	// player-level error is set.
	StatusPlaying
	// StatusPaused indicates a video is loaded, the rate is zero, and the
	// position is mid-stream.
	StatusPaused
	// StatusStopped indicates a video is loaded, the rate is zero, and the
	// position is at the start.
	StatusStopped
)

// String returns a human-readable label for the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	case StatusStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
