package media

import "errors"

// Sentinel errors for controller operations.
var (
	// ErrDisposed is returned when operating on a disposed controller.
	ErrDisposed = errors.New("media: controller disposed")

	// ErrInvalidSource is returned when a VideoSource fails argument
	// validation before any load is attempted.
	ErrInvalidSource = errors.New("media: invalid source")

	// ErrInvalidSpeed is returned for zero or negative playback speeds.
	ErrInvalidSpeed = errors.New("media: playback speed must be positive")
)

// Error event messages for picture-in-picture requests that cannot be
// served. These exact strings cross the event channel.
const (
	pipUnavailableMessage = "Picture in Picture is not available"
	noVideoLoadedMessage  = "No video loaded"
)
