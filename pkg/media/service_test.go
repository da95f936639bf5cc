package media_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/mediakit/pkg/channel"
	"github.com/go-drift/mediakit/pkg/media"
	"github.com/go-drift/mediakit/pkg/mediatest"
)

// invoke sends a command over the method channel exactly as an embedder
// would, with the playerId folded into the argument map.
func invoke(t *testing.T, playerID int64, method string, args map[string]any) (any, error) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	args["playerId"] = playerID
	return channel.Invoke(media.MethodChannelName, method, args)
}

func TestServiceWireCommands(t *testing.T) {
	capability, svc := newService(t)
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})
	events := collectEvents(t, svc, c.ID())

	_, err := invoke(t, c.ID(), "loadVideo", map[string]any{
		"source": map[string]any{"path": introURL, "type": "network"},
	})
	require.NoError(t, err)
	capability.LastPlayer().Item().SignalReady()
	require.Len(t, *events, 1)
	require.IsType(t, media.ReadyEvent{}, (*events)[0])

	info, err := invoke(t, c.ID(), "getVideoInfo", nil)
	require.NoError(t, err)
	m := channel.ParseMap(info)
	require.NotNil(t, m)
	durationMs, ok := channel.ToInt64(m["durationMs"])
	require.True(t, ok)
	assert.EqualValues(t, 10000, durationMs)

	_, err = invoke(t, c.ID(), "play", map[string]any{"speed": 1.0})
	require.NoError(t, err)
	playing, err := invoke(t, c.ID(), "isPlaying", nil)
	require.NoError(t, err)
	assert.Equal(t, true, playing)

	_, err = invoke(t, c.ID(), "seekTo", map[string]any{"positionMs": 2500})
	require.NoError(t, err)
	pos, err := invoke(t, c.ID(), "getPlaybackPosition", nil)
	require.NoError(t, err)
	posMs, ok := channel.ToInt64(pos)
	require.True(t, ok)
	assert.EqualValues(t, 2500, posMs)

	_, err = invoke(t, c.ID(), "setPlaybackSpeed", map[string]any{"speed": 2.0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, capability.LastPlayer().Rate())

	_, err = invoke(t, c.ID(), "setVolume", map[string]any{"volume": 0.25})
	require.NoError(t, err)
	assert.Equal(t, 0.25, capability.LastPlayer().Volume())

	_, err = invoke(t, c.ID(), "pause", nil)
	require.NoError(t, err)
	playing, err = invoke(t, c.ID(), "isPlaying", nil)
	require.NoError(t, err)
	assert.Equal(t, false, playing)

	_, err = invoke(t, c.ID(), "stop", nil)
	require.NoError(t, err)
	pos, err = invoke(t, c.ID(), "getPlaybackPosition", nil)
	require.NoError(t, err)
	posMs, _ = channel.ToInt64(pos)
	assert.EqualValues(t, 0, posMs)
}

func TestServiceWirePictureInPicture(t *testing.T) {
	capability, svc := newService(t)
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})

	_, err := invoke(t, c.ID(), "loadVideo", map[string]any{
		"source": map[string]any{"path": introURL, "type": "network"},
	})
	require.NoError(t, err)

	_, err = invoke(t, c.ID(), "enterPictureInPicture", nil)
	require.NoError(t, err)
	capability.LastPiP().ConfirmActive(true)

	active, err := invoke(t, c.ID(), "isPictureInPictureActive", nil)
	require.NoError(t, err)
	assert.Equal(t, true, active)

	_, err = invoke(t, c.ID(), "exitPictureInPicture", nil)
	require.NoError(t, err)
	capability.LastPiP().ConfirmActive(false)

	active, err = invoke(t, c.ID(), "isPictureInPictureActive", nil)
	require.NoError(t, err)
	assert.Equal(t, false, active)
}

func TestServiceWireDispose(t *testing.T) {
	_, svc := newService(t)
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})

	_, err := invoke(t, c.ID(), "dispose", nil)
	require.NoError(t, err)

	// The instance is gone from routing; repeating the command fails with
	// the routing error, not ErrDisposed.
	_, err = invoke(t, c.ID(), "dispose", nil)
	assert.ErrorIs(t, err, channel.ErrInstanceNotFound)

	_, err = invoke(t, c.ID(), "play", nil)
	assert.ErrorIs(t, err, channel.ErrInstanceNotFound)
}

func TestServiceWireErrors(t *testing.T) {
	_, svc := newService(t)
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})

	_, err := invoke(t, c.ID(), "teleport", nil)
	assert.ErrorIs(t, err, channel.ErrMethodNotFound)

	_, err = invoke(t, 9999, "play", nil)
	assert.ErrorIs(t, err, channel.ErrInstanceNotFound)

	_, err = channel.Invoke(media.MethodChannelName, "play", map[string]any{})
	assert.ErrorIs(t, err, channel.ErrInvalidArguments)

	_, err = channel.Invoke(media.MethodChannelName, "play", "not a map")
	assert.ErrorIs(t, err, channel.ErrInvalidArguments)

	_, err = invoke(t, c.ID(), "loadVideo", map[string]any{
		"source": map[string]any{"path": "", "type": "file"},
	})
	assert.ErrorIs(t, err, media.ErrInvalidSource)

	_, err = invoke(t, c.ID(), "seekTo", nil)
	assert.ErrorIs(t, err, channel.ErrInvalidArguments)
}

func TestServiceEventDemultiplexing(t *testing.T) {
	capability, svc := newService(t)
	a := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})
	b := svc.NewController(mediatest.Surface{SurfaceID: 2}, media.ControllerOptions{})
	eventsA := collectEvents(t, svc, a.ID())
	eventsB := collectEvents(t, svc, b.ID())

	require.NoError(t, a.LoadVideo(networkSource(introURL)))
	require.NoError(t, b.LoadVideo(networkSource(featureURL)))

	players := capability.Players()
	require.Len(t, players, 2)
	players[0].Item().SignalReady()

	require.Len(t, *eventsA, 1)
	assert.Empty(t, *eventsB, "instance B must not see instance A's events")

	players[1].Item().SignalReady()
	require.Len(t, *eventsB, 1)
	assert.EqualValues(t, 30000, (*eventsB)[0].(media.ReadyEvent).Info.DurationMs)
	assert.Len(t, *eventsA, 1)
}

func TestServiceListenCancel(t *testing.T) {
	capability, svc := newService(t)
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})

	var seen int
	cancel := svc.Listen(c.ID(), func(media.Event) { seen++ })

	require.NoError(t, c.LoadVideo(networkSource(introURL)))
	capability.LastPlayer().Item().SignalReady()
	require.Equal(t, 1, seen)

	cancel()
	require.NoError(t, c.LoadVideo(networkSource(featureURL)))
	capability.LastPlayer().Item().SignalReady()
	assert.Equal(t, 1, seen)
}

func TestServiceReleaseIsIdempotent(t *testing.T) {
	_, svc := newService(t)
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})

	svc.Release(c)
	svc.Release(c)
	svc.Release(nil)

	assert.Nil(t, svc.Controller(c.ID()))
	assert.ErrorIs(t, c.Play(1.0), media.ErrDisposed)
}
