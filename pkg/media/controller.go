// Package media implements the per-instance video playback controller: it
// owns one native player, translates uniform commands into capability
// calls, normalizes native signals into a small typed event stream, and
// manages the lifecycle coupling between a render surface, a player, and
// an optional picture-in-picture session.
package media

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/go-drift/mediakit/pkg/errors"
	"github.com/go-drift/mediakit/pkg/log"
)

// ControllerOptions configure a controller at construction.
type ControllerOptions struct {
	// KeepControlsVisible runs the picture-in-picture keep-controls ticker,
	// used when the render surface shows native playback chrome.
	KeepControlsVisible bool

	// Clock drives the keep-controls ticker. Defaults to SystemClock.
	Clock Clock
}

// Controller is one playback session bound to one embedded view. Commands
// execute synchronously on the main execution context; load completion is
// signaled only through emitted events. All failures are recovered locally
// and surfaced as ErrorEvents; no failure is fatal to the instance.
//
// Create controllers through a Service so that events reach the event
// channel. Call Dispose exactly once before discarding the instance —
// skipping it leaks native observer registrations.
type Controller struct {
	id      int64
	player  Player
	surface Surface
	loader  *assetLoader
	pip     *PictureInPictureSession
	logger  zerolog.Logger

	// OnEvent receives every normalized playback event for this instance,
	// in native signal order. Set before LoadVideo; the Service wires it
	// to the event channel.
	OnEvent func(Event)

	mu           sync.Mutex
	generation   uint64
	asset        Asset
	item         PlayerItem
	obs          *observation
	info         VideoInfo
	speed        float64
	readySent    bool
	playerFailed bool
	disposed     bool
}

// NewController creates a controller owning a fresh player from the
// capability. surface may be nil when the embedding view provides no
// render surface; picture-in-picture is then unavailable.
func NewController(id int64, cap Capability, surface Surface, opts ControllerOptions) *Controller {
	c := &Controller{
		id:      id,
		player:  cap.NewPlayer(),
		surface: surface,
		loader:  &assetLoader{cap: cap},
		logger:  log.WithComponent("media.controller").With().Int64("player", id).Logger(),
		speed:   1.0,
	}

	// Picture-in-picture support is probed once here, never ad hoc.
	if cap.SupportsPictureInPicture() && surface != nil {
		driver, err := cap.NewPictureInPicture(c.player, surface)
		if err != nil {
			errors.Report(&errors.Error{
				Op:     "media.NewController",
				Kind:   errors.KindPlatform,
				Player: id,
				Err:    err,
			})
		} else {
			c.pip = newPictureInPictureSession(driver, opts.Clock, opts.KeepControlsVisible, c.emitPiP)
		}
	}

	return c
}

// ID returns the controller's instance id.
func (c *Controller) ID() int64 {
	return c.id
}

// LoadVideo begins an asynchronous load of src, superseding any loaded or
// in-flight asset. It returns immediately; completion arrives as a
// ReadyEvent or ErrorEvent. Only argument validation fails synchronously.
func (c *Controller) LoadVideo(src VideoSource) error {
	if err := src.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	// Detach the previous item's observers before initiating the new load
	// so stale signals can never be misattributed to the new asset. The
	// item itself stays attached until the replacement is ready, so a
	// failed load never blanks out a currently-playing video.
	c.generation++
	gen := c.generation
	c.obs.release()
	c.obs = nil
	c.mu.Unlock()

	c.logger.Debug().Str("type", src.Type.String()).Str("path", src.Path).Msg("load requested")

	c.loader.Load(src, func(asset Asset, err error) {
		c.finishLoad(gen, asset, err)
	})
	return nil
}

// finishLoad runs on the main execution context once the loader settles.
// A completion whose generation no longer matches was superseded by a
// newer LoadVideo or by Dispose; its result is dropped without any event.
func (c *Controller) finishLoad(gen uint64, asset Asset, err error) {
	c.mu.Lock()
	if c.disposed || gen != c.generation {
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.mu.Unlock()
		errors.Report(&errors.Error{
			Op:     "media.Controller.finishLoad",
			Kind:   errors.KindLoad,
			Player: c.id,
			Err:    err,
		})
		c.emit(ErrorEvent{Message: err.Error()})
		return
	}

	width, height := asset.VideoSize()
	item := c.player.NewItem(asset)
	c.player.ReplaceItem(item)
	c.asset = asset
	c.item = item
	c.info = VideoInfo{Width: width, Height: height, DurationMs: asset.Duration().Millis()}
	c.readySent = false
	c.playerFailed = false
	c.attachObserversLocked(item, gen)
	c.mu.Unlock()

	c.logger.Debug().Msg("item attached")
}

// attachObserversLocked attaches the readiness and end-of-stream observers
// for the newly swapped-in item. Called with c.mu held, only after a
// successful swap; the observation is released before any replacement
// load and on dispose.
func (c *Controller) attachObserversLocked(item PlayerItem, gen uint64) {
	obs := &observation{}
	obs.add(item.ObserveStatus(func(status ItemStatus, err error) {
		c.handleItemStatus(gen, status, err)
	}))
	obs.add(item.ObserveEnded(func() {
		c.handleEnded(gen)
	}))
	c.obs = obs
}

func (c *Controller) handleItemStatus(gen uint64, status ItemStatus, err error) {
	c.mu.Lock()
	if c.disposed || gen != c.generation {
		c.mu.Unlock()
		return
	}
	switch status {
	case ItemStatusReady:
		if c.readySent {
			c.mu.Unlock()
			return
		}
		c.readySent = true
		info := c.info
		c.mu.Unlock()
		c.emit(ReadyEvent{Info: info})
	case ItemStatusFailed:
		c.playerFailed = true
		c.mu.Unlock()
		message := "playback failed"
		if err != nil {
			message = err.Error()
		}
		errors.Report(&errors.Error{
			Op:     "media.Controller.handleItemStatus",
			Kind:   errors.KindPlayback,
			Player: c.id,
			Err:    err,
		})
		c.emit(ErrorEvent{Message: message})
	default:
		c.mu.Unlock()
	}
}

func (c *Controller) handleEnded(gen uint64) {
	c.mu.Lock()
	if c.disposed || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.emit(EndedEvent{})
}

// VideoInfo returns the last successfully resolved metadata, or the zero
// sentinel if no asset is loaded or metadata is not yet available. Never
// blocks.
func (c *Controller) VideoInfo() VideoInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// Play starts playback at the given speed. The speed must be positive.
func (c *Controller) Play(speed float64) error {
	if speed <= 0 {
		return ErrInvalidSpeed
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	c.speed = speed
	c.player.SetRate(speed)
	c.mu.Unlock()
	return nil
}

// Pause pauses playback. Pausing an already-paused player is a no-op.
func (c *Controller) Pause() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	c.player.SetRate(0)
	c.mu.Unlock()
	return nil
}

// Stop pauses playback and resets the position to zero. The loaded item
// is retained; Play restarts from the beginning.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	c.player.SetRate(0)
	c.player.SeekTo(TimeFromMillis(0))
	c.mu.Unlock()
	return nil
}

// SetPlaybackSpeed stores the playback speed and applies it immediately if
// the player is currently playing. The speed must be positive.
func (c *Controller) SetPlaybackSpeed(speed float64) error {
	if speed <= 0 {
		return ErrInvalidSpeed
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	c.speed = speed
	if c.player.Rate() != 0 {
		c.player.SetRate(speed)
	}
	c.mu.Unlock()
	return nil
}

// SetVolume sets the playback volume, clamped to [0, 1].
func (c *Controller) SetVolume(volume float64) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	c.player.SetVolume(volume)
	c.mu.Unlock()
	return nil
}

// SeekTo seeks exactly to the given position in milliseconds.
func (c *Controller) SeekTo(positionMs int64) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	c.player.SeekTo(TimeFromMillis(positionMs))
	c.mu.Unlock()
	return nil
}

// Position returns the current playback position in milliseconds, or 0 if
// the player has no valid current time.
func (c *Controller) Position() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return 0
	}
	return c.player.Position().Millis()
}

// IsPlaying reports true iff the current rate is non-zero and no
// player-level error is set. Paused and stopped both report false.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return false
	}
	return c.player.Rate() != 0 && !c.playerFailed && c.player.Err() == nil
}

// Status derives the coarse playback status from the player's rate, error
// state, and position at query time.
func (c *Controller) Status() PlaybackStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || c.item == nil {
		return StatusIdle
	}
	if c.player.Rate() != 0 && !c.playerFailed && c.player.Err() == nil {
		return StatusPlaying
	}
	if c.player.Position().Millis() == 0 {
		return StatusStopped
	}
	return StatusPaused
}

// EnterPictureInPicture requests a picture-in-picture session. Emits an
// ErrorEvent if the capability is unavailable or no video is loaded;
// entering while already active is a no-op.
func (c *Controller) EnterPictureInPicture() error {
	pip, err := c.pipSession("enter")
	if err != nil || pip == nil {
		return err
	}
	pip.Enter()
	return nil
}

// ExitPictureInPicture requests the end of the picture-in-picture session.
// Emits an ErrorEvent if the capability is unavailable or no video is
// loaded; exiting while already inactive is a no-op.
func (c *Controller) ExitPictureInPicture() error {
	pip, err := c.pipSession("exit")
	if err != nil || pip == nil {
		return err
	}
	pip.Exit()
	return nil
}

// IsPictureInPictureActive reports whether the session is confirmed
// active. Returns false when unsupported, unloaded, or disposed.
func (c *Controller) IsPictureInPictureActive() bool {
	c.mu.Lock()
	pip := c.pip
	disposed := c.disposed
	c.mu.Unlock()
	if disposed || pip == nil {
		return false
	}
	return pip.Active()
}

// pipSession validates a picture-in-picture request and returns the
// session, emitting the appropriate ErrorEvent when the request cannot be
// served. A nil session with nil error means the error was emitted.
func (c *Controller) pipSession(op string) (*PictureInPictureSession, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, ErrDisposed
	}
	pip := c.pip
	loaded := c.item != nil
	c.mu.Unlock()

	if pip == nil {
		c.logger.Debug().Str("op", op).Msg("picture in picture unavailable")
		c.emit(ErrorEvent{Message: pipUnavailableMessage})
		return nil, nil
	}
	if !loaded {
		c.emit(ErrorEvent{Message: noVideoLoadedMessage})
		return nil, nil
	}
	return pip, nil
}

// Dispose detaches all native observers, releases the player's current
// item, and invalidates the picture-in-picture session and its timers.
// Subsequent commands return ErrDisposed and no further events are
// emitted. Dispose is idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.generation++
	c.obs.release()
	c.obs = nil
	hadItem := c.item != nil
	c.item = nil
	c.asset = nil
	c.info = VideoInfo{}
	pip := c.pip
	c.pip = nil
	if hadItem {
		c.player.ReplaceItem(nil)
	}
	c.mu.Unlock()

	if pip != nil {
		pip.Invalidate()
	}
	c.logger.Debug().Msg("disposed")
}

// emit delivers an event to the instance's sink, if any.
func (c *Controller) emit(ev Event) {
	c.mu.Lock()
	sink := c.OnEvent
	disposed := c.disposed
	c.mu.Unlock()
	if disposed || sink == nil {
		return
	}
	sink(ev)
}

// emitPiP forwards session transitions as events.
func (c *Controller) emitPiP(active bool) {
	c.emit(PictureInPictureEvent{Active: active})
}
