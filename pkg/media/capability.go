package media

// Timescale is the fixed time resolution used across the capability
// boundary: 1000 units per second, so one unit is one millisecond. Using
// one fixed timescale for both set and get avoids rounding drift between
// the wire's integer milliseconds and the platform time representation.
const Timescale int32 = 1000

// MediaTime is a rational time value: Value ticks at Timescale per second.
// The zero value is invalid, matching a player with no current time.
type MediaTime struct {
	Value     int64
	Timescale int32
}

// TimeFromMillis builds a MediaTime at the fixed timescale.
func TimeFromMillis(ms int64) MediaTime {
	return MediaTime{Value: ms, Timescale: Timescale}
}

// Valid reports whether the time carries a usable timescale.
func (t MediaTime) Valid() bool {
	return t.Timescale > 0
}

// Millis converts the time to whole milliseconds, or 0 if invalid.
func (t MediaTime) Millis() int64 {
	if !t.Valid() {
		return 0
	}
	if t.Timescale == Timescale {
		return t.Value
	}
	return t.Value * int64(Timescale) / int64(t.Timescale)
}

// Property names a descriptive asset property loaded asynchronously before
// playback can begin.
type Property string

const (
	// PropertyTracks is the asset's track list.
	PropertyTracks Property = "tracks"
	// PropertyDuration is the asset's duration.
	PropertyDuration Property = "duration"
	// PropertyPlayable is the asset's playability check.
	PropertyPlayable Property = "playable"
)

// RequiredProperties is the set every load must resolve before an item may
// be attached. Each must settle as loaded or unknown, never failed.
var RequiredProperties = []Property{PropertyTracks, PropertyDuration, PropertyPlayable}

// PropertyStatus is the load outcome of one asset property.
type PropertyStatus int

const (
	// PropertyStatusUnknown indicates the property has not resolved.
	PropertyStatusUnknown PropertyStatus = iota
	// PropertyStatusLoaded indicates the property resolved successfully.
	PropertyStatusLoaded
	// PropertyStatusFailed indicates the property failed to resolve.
	PropertyStatusFailed
)

// String returns a human-readable label for the property status.
func (s PropertyStatus) String() string {
	switch s {
	case PropertyStatusLoaded:
		return "loaded"
	case PropertyStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ObserverHandle is an attach/detach-paired subscription to a native
// signal. Release detaches the observer; it must take effect exactly once
// regardless of how often it is called.
type ObserverHandle interface {
	Release()
}

// Asset is a resolved, inspectable video resource from which a player item
// is built. Descriptive properties load asynchronously; each property's
// outcome is polled individually rather than inferred from the others.
type Asset interface {
	// LoadProperties begins loading the named properties on a background
	// execution context and calls done, on an arbitrary goroutine, once
	// every property has settled.
	LoadProperties(props []Property, done func())

	// PropertyStatus returns the settled status of one property and, when
	// failed, the failure reason.
	PropertyStatus(p Property) (PropertyStatus, error)

	// Playable reports the asset's playability check. Meaningful only
	// after PropertyPlayable has loaded.
	Playable() bool

	// Duration returns the asset duration. Meaningful only after
	// PropertyDuration has loaded.
	Duration() MediaTime

	// VideoSize returns the video track's natural size in pixels.
	VideoSize() (width, height int)
}

// ItemStatus is the native player item's readiness state.
type ItemStatus int

const (
	// ItemStatusUnknown indicates the item has not finished preparing.
	ItemStatusUnknown ItemStatus = iota
	// ItemStatusReady indicates the item is ready to play.
	ItemStatusReady
	// ItemStatusFailed indicates the item entered a failed state.
	ItemStatusFailed
)

// PlayerItem is the currently active, playable unit attached to the native
// player. Status observation (readiness) and ended observation
// (end-of-stream) are independent native channels.
type PlayerItem interface {
	// ObserveStatus attaches a readiness observer. On failure the error
	// carries the native failure description.
	ObserveStatus(fn func(status ItemStatus, err error)) ObserverHandle

	// ObserveEnded attaches an end-of-stream observer.
	ObserveEnded(fn func()) ObserverHandle
}

// Player is the host platform's media player. It is exclusively owned by
// one controller; no other component may mutate it.
type Player interface {
	// NewItem builds a player item from a loaded asset.
	NewItem(asset Asset) PlayerItem

	// ReplaceItem swaps the current item. A nil item detaches the current
	// one without attaching a replacement.
	ReplaceItem(item PlayerItem)

	// CurrentItem returns the attached item, or nil.
	CurrentItem() PlayerItem

	// Rate returns the current playback rate (0 when paused or stopped).
	Rate() float64

	// SetRate sets the playback rate.
	SetRate(rate float64)

	// SetVolume sets the playback volume in [0, 1].
	SetVolume(volume float64)

	// Position returns the current playback time, invalid when the player
	// has no current time.
	Position() MediaTime

	// SeekTo seeks exactly to the given time (zero tolerance).
	SeekTo(t MediaTime)

	// Err returns the player-level error, or nil.
	Err() error
}

// Surface identifies the render surface a player draws into. The
// picture-in-picture session borrows it; it never owns it.
type Surface interface {
	ID() int64
}

// PictureInPictureDriver is the platform's picture-in-picture capability
// bound to one render surface. Start and Stop are requests; the actual
// transitions arrive asynchronously through the active observer.
type PictureInPictureDriver interface {
	Start()
	Stop()
	ObserveActive(fn func(active bool)) ObserverHandle

	// RefreshControls keeps the native playback controls visibly rendered.
	// Called periodically while an on-screen controls surface is in use.
	RefreshControls()
}

// Capability is the host operating system's media framework, treated as an
// opaque external collaborator. Implementations exist per platform; tests
// and the demo harness use the simulated one in pkg/mediatest.
type Capability interface {
	// NewPlayer creates a native player instance.
	NewPlayer() Player

	// ResolveAssetPath maps a bundled asset key to a readable location.
	ResolveAssetPath(key string) (string, error)

	// OpenAsset resolves a local path or remote URL into an asset.
	OpenAsset(location string) (Asset, error)

	// OpenAssetWithHeaders resolves a remote URL with request headers
	// attached. Callers must not pass an empty header map.
	OpenAssetWithHeaders(location string, headers map[string]string) (Asset, error)

	// SupportsPictureInPicture reports platform picture-in-picture
	// support, resolved once at controller construction.
	SupportsPictureInPicture() bool

	// NewPictureInPicture binds a picture-in-picture driver to a player's
	// render surface.
	NewPictureInPicture(player Player, surface Surface) (PictureInPictureDriver, error)
}
