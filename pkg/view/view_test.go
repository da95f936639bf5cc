package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/mediakit/pkg/media"
	"github.com/go-drift/mediakit/pkg/mediatest"
	"github.com/go-drift/mediakit/pkg/view"
)

func newVideoRegistry(t *testing.T) (*mediatest.FakeCapability, *media.Service, *view.Registry) {
	t.Helper()
	mediatest.Setup(t.Cleanup)
	capability := mediatest.NewFakeCapability()
	capability.AddMedia("https://example.com/a.mp4", mediatest.FakeMedia{DurationMs: 4000, Width: 640, Height: 360})
	svc := media.NewService(capability)
	r := view.NewRegistry()
	r.RegisterFactory(view.NewVideoFactory(svc))
	return capability, svc, r
}

func TestRegistryCreateAndLookup(t *testing.T) {
	_, _, r := newVideoRegistry(t)

	v, err := r.Create(view.VideoViewType, nil)
	require.NoError(t, err)
	assert.Equal(t, view.VideoViewType, v.ViewType())
	assert.Same(t, v, r.GetView(v.ViewID()))

	_, err = r.Create("hologram", nil)
	assert.Error(t, err)
	assert.Nil(t, r.GetView(v.ViewID()+1))
}

func TestVideoSurfaceModes(t *testing.T) {
	_, _, r := newVideoRegistry(t)

	plain, err := r.Create(view.VideoViewType, nil)
	require.NoError(t, err)
	assert.Equal(t, view.SurfaceOnly, plain.(*view.VideoSurface).Mode())

	chrome, err := r.Create(view.VideoViewType, map[string]any{"showNativeControls": true})
	require.NoError(t, err)
	assert.Equal(t, view.SurfaceWithControls, chrome.(*view.VideoSurface).Mode())
}

func TestVideoSurfaceOwnsController(t *testing.T) {
	capability, svc, r := newVideoRegistry(t)

	v, err := r.Create(view.VideoViewType, nil)
	require.NoError(t, err)
	surface := v.(*view.VideoSurface)
	c := surface.Controller()
	require.NotNil(t, c)
	require.NotNil(t, svc.Controller(c.ID()))

	// The surface is the picture-in-picture binding: the driver is bound
	// to the view's id.
	require.NoError(t, c.LoadVideo(media.VideoSource{
		Path: "https://example.com/a.mp4",
		Type: media.SourceTypeNetwork,
	}))
	require.NoError(t, c.EnterPictureInPicture())
	assert.Equal(t, v.ViewID(), capability.LastPiP().SurfaceID())
}

func TestVideoSurfaceDisposeReleasesController(t *testing.T) {
	_, svc, r := newVideoRegistry(t)

	v, err := r.Create(view.VideoViewType, nil)
	require.NoError(t, err)
	c := v.(*view.VideoSurface).Controller()
	id := c.ID()

	r.Dispose(v.ViewID())

	assert.Nil(t, r.GetView(v.ViewID()))
	assert.Nil(t, svc.Controller(id))
	assert.ErrorIs(t, c.Play(1.0), media.ErrDisposed)
	assert.Nil(t, v.(*view.VideoSurface).Controller())

	// Disposing an unknown or already-disposed view is harmless.
	r.Dispose(v.ViewID())
	r.Dispose(9999)
}

func TestVideoSurfaceGeometry(t *testing.T) {
	_, _, r := newVideoRegistry(t)

	v, err := r.Create(view.VideoViewType, nil)
	require.NoError(t, err)

	// Geometry updates must not panic or disturb the controller.
	v.SetSize(view.Size{Width: 320, Height: 180})
	v.SetOffset(view.Offset{X: 10, Y: 20})
	v.SetVisible(true)
	v.SetVisible(false)
	assert.NotNil(t, v.(*view.VideoSurface).Controller())
}
