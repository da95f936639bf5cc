// Package view implements the render-surface boundary: native surface
// wrappers embedded by the application, created one per view instance,
// each owning a playback controller. The controller never knows which
// surface variant it is embedded in.
package view

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-drift/mediakit/pkg/channel"
	"github.com/go-drift/mediakit/pkg/media"
)

// Size is a view size in logical pixels.
type Size struct {
	Width  float64
	Height float64
}

// Offset is a view position in logical pixels.
type Offset struct {
	X float64
	Y float64
}

// SurfaceMode selects the render-surface variant.
type SurfaceMode int

const (
	// SurfaceOnly renders the video without platform playback chrome.
	SurfaceOnly SurfaceMode = iota
	// SurfaceWithControls renders with platform-provided playback chrome.
	SurfaceWithControls
)

// String returns a human-readable label for the surface mode.
func (m SurfaceMode) String() string {
	switch m {
	case SurfaceOnly:
		return "surface"
	case SurfaceWithControls:
		return "surfaceWithControls"
	default:
		return "unknown"
	}
}

// View represents a native view embedded in the application's UI.
type View interface {
	// ViewID returns the unique identifier for this view.
	ViewID() int64

	// ViewType returns the type identifier for this view.
	ViewType() string

	// Dispose cleans up the native view and everything it owns.
	Dispose()

	// SetSize updates the view size in logical pixels.
	SetSize(size Size)

	// SetOffset updates the view position in logical pixels.
	SetOffset(offset Offset)

	// SetVisible shows or hides the native view.
	SetVisible(visible bool)
}

// Factory creates views of a specific type.
type Factory interface {
	// Create creates a new view instance.
	Create(viewID int64, params map[string]any) (View, error)

	// ViewType returns the view type this factory creates.
	ViewType() string
}

// Registry manages view types and instances.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	views     map[int64]View
	nextID    atomic.Int64
}

// NewRegistry creates an empty view registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		views:     make(map[int64]View),
	}
}

// RegisterFactory registers a factory for a view type.
func (r *Registry) RegisterFactory(factory Factory) {
	r.mu.Lock()
	r.factories[factory.ViewType()] = factory
	r.mu.Unlock()
}

// Create creates a new view of the given type.
func (r *Registry) Create(viewType string, params map[string]any) (View, error) {
	r.mu.RLock()
	factory, ok := r.factories[viewType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("view type %q not registered", viewType)
	}

	viewID := r.nextID.Add(1)
	v, err := factory.Create(viewID, params)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.views[viewID] = v
	r.mu.Unlock()
	return v, nil
}

// Dispose destroys a view and everything it owns.
func (r *Registry) Dispose(viewID int64) {
	r.mu.Lock()
	v, ok := r.views[viewID]
	if ok {
		delete(r.views, viewID)
	}
	r.mu.Unlock()
	if ok {
		v.Dispose()
	}
}

// GetView returns a view by ID, or nil.
func (r *Registry) GetView(viewID int64) View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.views[viewID]
}

// VideoSurface is the native video render surface. It doubles as the
// media.Surface borrowed by the picture-in-picture session; the binding
// holds for the surface's whole life, so rebinding is only ever needed
// across view re-creation.
type VideoSurface struct {
	viewID int64
	mode   SurfaceMode
	svc    *media.Service

	mu         sync.Mutex
	controller *media.Controller
	offset     Offset
	size       Size
	visible    bool
}

// ViewID implements View.
func (v *VideoSurface) ViewID() int64 { return v.viewID }

// ViewType implements View.
func (v *VideoSurface) ViewType() string { return VideoViewType }

// ID implements media.Surface.
func (v *VideoSurface) ID() int64 { return v.viewID }

// Mode returns the render-surface variant.
func (v *VideoSurface) Mode() SurfaceMode { return v.mode }

// Controller returns the playback controller bound to this surface.
func (v *VideoSurface) Controller() *media.Controller {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.controller
}

// SetSize implements View. Geometry is cached for the embedder to consume.
func (v *VideoSurface) SetSize(size Size) {
	v.mu.Lock()
	v.size = size
	v.mu.Unlock()
}

// SetOffset implements View.
func (v *VideoSurface) SetOffset(offset Offset) {
	v.mu.Lock()
	v.offset = offset
	v.mu.Unlock()
}

// SetVisible implements View.
func (v *VideoSurface) SetVisible(visible bool) {
	v.mu.Lock()
	v.visible = visible
	v.mu.Unlock()
}

// Dispose implements View. It releases the controller, which detaches all
// native observers and invalidates the picture-in-picture session.
func (v *VideoSurface) Dispose() {
	v.mu.Lock()
	c := v.controller
	v.controller = nil
	v.mu.Unlock()
	v.svc.Release(c)
}

// VideoViewType is the view type the video factory registers under.
const VideoViewType = "video_player"

// VideoFactory creates video surfaces, one controller per view instance.
type VideoFactory struct {
	svc *media.Service
}

// NewVideoFactory creates a factory backed by the given service.
func NewVideoFactory(svc *media.Service) *VideoFactory {
	return &VideoFactory{svc: svc}
}

// ViewType implements Factory.
func (f *VideoFactory) ViewType() string { return VideoViewType }

// Create implements Factory. The showNativeControls creation parameter
// selects the surface variant; it affects only this wrapper, never the
// controller's behavior.
func (f *VideoFactory) Create(viewID int64, params map[string]any) (View, error) {
	mode := SurfaceOnly
	if channel.ParseBool(params["showNativeControls"]) {
		mode = SurfaceWithControls
	}
	v := &VideoSurface{
		viewID: viewID,
		mode:   mode,
		svc:    f.svc,
	}
	v.controller = f.svc.NewController(v, media.ControllerOptions{
		KeepControlsVisible: mode == SurfaceWithControls,
	})
	return v, nil
}
