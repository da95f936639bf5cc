package mediatest

import "github.com/go-drift/mediakit/pkg/channel"

// Setup installs a synchronous dispatch function so background completions
// run inline, and registers a teardown that resets global channel state.
// The cleanup function should be testing.T.Cleanup or equivalent:
//
//	mediatest.Setup(t.Cleanup)
func Setup(cleanup func(func())) {
	channel.RegisterDispatch(func(cb func()) { cb() })
	cleanup(channel.ResetForTest)
}

// Surface is a trivial media.Surface for tests and the demo harness.
type Surface struct {
	SurfaceID int64
}

// ID implements media.Surface.
func (s Surface) ID() int64 { return s.SurfaceID }
