package media_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/mediakit/pkg/media"
	"github.com/go-drift/mediakit/pkg/mediatest"
)

func TestLoadAssetSourceResolution(t *testing.T) {
	capability, svc := newService(t)
	capability.Assets["videos/intro"] = introURL
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})
	events := collectEvents(t, svc, c.ID())

	require.NoError(t, c.LoadVideo(media.VideoSource{
		Path: "videos/intro",
		Type: media.SourceTypeAsset,
	}))
	capability.LastPlayer().Item().SignalReady()

	require.Len(t, *events, 1)
	assert.Equal(t, int64(10000), (*events)[0].(media.ReadyEvent).Info.DurationMs)
}

func TestLoadAssetKeyNotFound(t *testing.T) {
	capability, svc := newService(t)
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})
	events := collectEvents(t, svc, c.ID())

	require.NoError(t, c.LoadVideo(media.VideoSource{
		Path: "videos/nope",
		Type: media.SourceTypeAsset,
	}))

	require.Len(t, *events, 1)
	errEvent := (*events)[0].(media.ErrorEvent)
	assert.Contains(t, errEvent.Message, "videos/nope")
	assert.Nil(t, capability.LastPlayer().Item())
}

func TestLoadNetworkHeadersForwarded(t *testing.T) {
	capability, svc := newService(t)
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})

	headers := map[string]string{"Authorization": "Bearer token"}
	require.NoError(t, c.LoadVideo(media.VideoSource{
		Path:    introURL,
		Type:    media.SourceTypeNetwork,
		Headers: headers,
	}))

	item := capability.LastPlayer().Item()
	require.NotNil(t, item)
	assert.Equal(t, headers, item.Asset().Headers)
}

func TestLoadEmptyHeadersNotForwarded(t *testing.T) {
	capability, svc := newService(t)
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})

	// An empty-but-present header map takes the headerless open path.
	require.NoError(t, c.LoadVideo(media.VideoSource{
		Path:    introURL,
		Type:    media.SourceTypeNetwork,
		Headers: map[string]string{},
	}))

	item := capability.LastPlayer().Item()
	require.NotNil(t, item)
	assert.Nil(t, item.Asset().Headers)
}

func TestLoadFileSourceIgnoresHeaders(t *testing.T) {
	capability, svc := newService(t)
	capability.AddMedia("/sdcard/clip.mp4", mediatest.FakeMedia{DurationMs: 2000})
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})

	require.NoError(t, c.LoadVideo(media.VideoSource{
		Path:    "/sdcard/clip.mp4",
		Type:    media.SourceTypeFile,
		Headers: map[string]string{"ignored": "yes"},
	}))

	item := capability.LastPlayer().Item()
	require.NotNil(t, item)
	assert.Nil(t, item.Asset().Headers)
}

func TestLoadOpenError(t *testing.T) {
	capability, svc := newService(t)
	capability.AddMedia("https://example.com/denied.mp4", mediatest.FakeMedia{
		OpenErr: assert.AnError,
	})
	c := svc.NewController(mediatest.Surface{SurfaceID: 1}, media.ControllerOptions{})
	events := collectEvents(t, svc, c.ID())

	require.NoError(t, c.LoadVideo(networkSource("https://example.com/denied.mp4")))

	require.Len(t, *events, 1)
	assert.Equal(t, assert.AnError.Error(), (*events)[0].(media.ErrorEvent).Message)
}
