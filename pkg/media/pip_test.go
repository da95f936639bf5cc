package media_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/mediakit/pkg/media"
	"github.com/go-drift/mediakit/pkg/mediatest"
)

func loadedController(t *testing.T, capability *mediatest.FakeCapability, svc *media.Service, opts media.ControllerOptions) (*media.Controller, *[]media.Event) {
	t.Helper()
	c := svc.NewController(mediatest.Surface{SurfaceID: 7}, opts)
	events := collectEvents(t, svc, c.ID())
	require.NoError(t, c.LoadVideo(networkSource(introURL)))
	capability.LastPlayer().Item().SignalReady()
	require.Len(t, *events, 1)
	return c, events
}

func TestPictureInPictureUnsupported(t *testing.T) {
	mediatest.Setup(t.Cleanup)
	capability := mediatest.NewFakeCapability()
	capability.PiPSupported = false
	capability.AddMedia(introURL, mediatest.FakeMedia{DurationMs: 10000})
	svc := media.NewService(capability)

	c := svc.NewController(mediatest.Surface{SurfaceID: 7}, media.ControllerOptions{})
	events := collectEvents(t, svc, c.ID())
	require.NoError(t, c.LoadVideo(networkSource(introURL)))

	require.NoError(t, c.EnterPictureInPicture())
	require.Len(t, *events, 1)
	errEvent := (*events)[0].(media.ErrorEvent)
	assert.Equal(t, "Picture in Picture is not available", errEvent.Message)
	assert.False(t, c.IsPictureInPictureActive())
}

func TestPictureInPictureWithoutSurface(t *testing.T) {
	capability, svc := newService(t)

	c := svc.NewController(nil, media.ControllerOptions{})
	events := collectEvents(t, svc, c.ID())
	require.NoError(t, c.LoadVideo(networkSource(introURL)))
	capability.LastPlayer().Item().SignalReady()
	require.Len(t, *events, 1)

	require.NoError(t, c.EnterPictureInPicture())
	require.Len(t, *events, 2)
	assert.Equal(t, "Picture in Picture is not available", (*events)[1].(media.ErrorEvent).Message)
}

func TestPictureInPictureNoVideoLoaded(t *testing.T) {
	_, svc := newService(t)
	c := svc.NewController(mediatest.Surface{SurfaceID: 7}, media.ControllerOptions{})
	events := collectEvents(t, svc, c.ID())

	require.NoError(t, c.EnterPictureInPicture())
	require.Len(t, *events, 1)
	assert.Equal(t, "No video loaded", (*events)[0].(media.ErrorEvent).Message)

	require.NoError(t, c.ExitPictureInPicture())
	require.Len(t, *events, 2)
	assert.Equal(t, "No video loaded", (*events)[1].(media.ErrorEvent).Message)
}

func TestPictureInPictureEnterExit(t *testing.T) {
	capability, svc := newService(t)
	c, events := loadedController(t, capability, svc, media.ControllerOptions{})

	driver := capability.LastPiP()
	require.NotNil(t, driver)
	assert.EqualValues(t, 7, driver.SurfaceID())

	// Entering is a request; nothing is active until the native side
	// confirms.
	require.NoError(t, c.EnterPictureInPicture())
	assert.Equal(t, 1, driver.StartCalls())
	assert.False(t, c.IsPictureInPictureActive())
	assert.Len(t, *events, 1)

	driver.ConfirmActive(true)
	require.Len(t, *events, 2)
	pip := (*events)[1].(media.PictureInPictureEvent)
	assert.True(t, pip.Active)
	assert.True(t, c.IsPictureInPictureActive())

	// Entering again while active is a no-op.
	require.NoError(t, c.EnterPictureInPicture())
	assert.Equal(t, 1, driver.StartCalls())

	require.NoError(t, c.ExitPictureInPicture())
	assert.Equal(t, 1, driver.StopCalls())
	driver.ConfirmActive(false)
	require.Len(t, *events, 3)
	assert.False(t, (*events)[2].(media.PictureInPictureEvent).Active)
	assert.False(t, c.IsPictureInPictureActive())

	// Exiting again while inactive is a no-op.
	require.NoError(t, c.ExitPictureInPicture())
	assert.Equal(t, 1, driver.StopCalls())
}

func TestPictureInPictureDuplicateConfirmation(t *testing.T) {
	capability, svc := newService(t)
	c, events := loadedController(t, capability, svc, media.ControllerOptions{})

	require.NoError(t, c.EnterPictureInPicture())
	driver := capability.LastPiP()
	driver.ConfirmActive(true)
	driver.ConfirmActive(true)

	// Only the actual transition surfaces.
	assert.Len(t, *events, 2)
}

func TestPictureInPictureSystemInitiatedExit(t *testing.T) {
	capability, svc := newService(t)
	c, events := loadedController(t, capability, svc, media.ControllerOptions{})

	require.NoError(t, c.EnterPictureInPicture())
	driver := capability.LastPiP()
	driver.ConfirmActive(true)

	// The system can end the session without an exit request, e.g. the
	// user closing the floating window.
	driver.ConfirmActive(false)
	require.Len(t, *events, 3)
	assert.False(t, (*events)[2].(media.PictureInPictureEvent).Active)
	assert.False(t, c.IsPictureInPictureActive())
}

func TestPictureInPictureKeepControlsTicker(t *testing.T) {
	capability, svc := newService(t)
	clock := mediatest.NewFakeClock()
	c, _ := loadedController(t, capability, svc, media.ControllerOptions{
		KeepControlsVisible: true,
		Clock:               clock,
	})

	driver := capability.LastPiP()
	require.Len(t, clock.Tickers(), 1)

	clock.Tick()
	require.Eventually(t, func() bool {
		return driver.RefreshCalls() >= 1
	}, time.Second, time.Millisecond)

	c.Dispose()
	assert.True(t, clock.Tickers()[0].Stopped())

	// Further ticks after dispose do not reach the driver.
	refreshed := driver.RefreshCalls()
	clock.Tick()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, refreshed, driver.RefreshCalls())
}

func TestPictureInPictureDisposeReleasesObserver(t *testing.T) {
	capability, svc := newService(t)
	c, events := loadedController(t, capability, svc, media.ControllerOptions{})

	require.NoError(t, c.EnterPictureInPicture())
	driver := capability.LastPiP()
	require.Equal(t, 1, driver.ObserverCount())

	c.Dispose()
	assert.Equal(t, 0, driver.ObserverCount())

	// A confirmation arriving after dispose must not surface.
	driver.ConfirmActive(true)
	assert.Len(t, *events, 1)
}
