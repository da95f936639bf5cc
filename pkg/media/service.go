package media

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/go-drift/mediakit/pkg/channel"
	"github.com/go-drift/mediakit/pkg/errors"
	"github.com/go-drift/mediakit/pkg/log"
)

// Channel names for the video player service.
const (
	// MethodChannelName carries commands from the application layer,
	// demultiplexed to controller instances by the playerId argument.
	MethodChannelName = "mediakit/video_player"

	// EventChannelName carries normalized playback events, each tagged
	// with the playerId it belongs to.
	EventChannelName = "mediakit/video_player/events"
)

// Service owns the channel surface for all video playback controllers in
// the process. Inbound commands are routed to the controller named by
// their playerId; events are published tagged with their instance id.
type Service struct {
	cap     Capability
	channel *channel.MethodChannel
	events  *channel.EventChannel
	logger  zerolog.Logger

	mu      sync.RWMutex
	players map[int64]*Controller
	nextID  atomic.Int64
}

// NewService creates the service and registers its channel handler.
// Creating a second service replaces the first's channel registration;
// one service per process is the intended shape.
func NewService(cap Capability) *Service {
	s := &Service{
		cap:     cap,
		channel: channel.NewMethodChannel(MethodChannelName),
		events:  channel.NewEventChannel(EventChannelName),
		logger:  log.WithComponent("media.service"),
		players: map[int64]*Controller{},
	}
	s.channel.SetHandler(s.handle)
	return s
}

// NewController creates a controller bound to the given render surface and
// registers it for command routing. The returned controller's events flow
// to the service's event channel.
func (s *Service) NewController(surface Surface, opts ControllerOptions) *Controller {
	id := s.nextID.Add(1)
	c := NewController(id, s.cap, surface, opts)
	c.OnEvent = func(ev Event) {
		s.publish(id, ev)
	}

	s.mu.Lock()
	s.players[id] = c
	s.mu.Unlock()

	s.logger.Debug().Int64("player", id).Msg("controller created")
	return c
}

// Release disposes the controller and removes it from command routing.
func (s *Service) Release(c *Controller) {
	if c == nil {
		return
	}
	s.mu.Lock()
	delete(s.players, c.ID())
	s.mu.Unlock()
	c.Dispose()
}

// Controller returns the registered controller for an instance id, or nil.
func (s *Service) Controller(id int64) *Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.players[id]
}

// Listen subscribes to decoded playback events for one controller
// instance. The returned function cancels the subscription.
func (s *Service) Listen(playerID int64, fn func(Event)) (cancel func()) {
	sub := s.events.Listen(channel.EventHandler{
		OnEvent: func(data any) {
			id, ev, err := DecodeEvent(data)
			if err != nil {
				errors.Report(&errors.Error{
					Op:      "media.Service.Listen",
					Kind:    errors.KindParsing,
					Channel: EventChannelName,
					Err:     err,
				})
				return
			}
			if id == playerID {
				fn(ev)
			}
		},
	})
	return sub.Cancel
}

// publish encodes and publishes one instance's event on the event channel.
func (s *Service) publish(id int64, ev Event) {
	if err := s.events.Publish(encodeEvent(id, ev)); err != nil {
		errors.Report(&errors.Error{
			Op:      "media.Service.publish",
			Kind:    errors.KindPlatform,
			Channel: EventChannelName,
			Player:  id,
			Err:     err,
		})
	}
}

// handle processes one inbound command from the application layer.
func (s *Service) handle(method string, args any) (any, error) {
	defer errors.Recover("media.Service.handle")

	m := channel.ParseMap(args)
	if m == nil {
		return nil, fmt.Errorf("%w: expected argument map, got %T", channel.ErrInvalidArguments, args)
	}
	id, ok := channel.ToInt64(m["playerId"])
	if !ok {
		return nil, fmt.Errorf("%w: missing playerId", channel.ErrInvalidArguments)
	}
	c := s.Controller(id)
	if c == nil {
		return nil, fmt.Errorf("%w: %d", channel.ErrInstanceNotFound, id)
	}

	switch method {
	case "loadVideo":
		src, err := SourceFromMap(channel.ParseMap(m["source"]))
		if err != nil {
			return nil, err
		}
		return nil, c.LoadVideo(src)

	case "getVideoInfo":
		info := c.VideoInfo()
		return map[string]any{
			"width":      info.Width,
			"height":     info.Height,
			"durationMs": info.DurationMs,
		}, nil

	case "play":
		speed, ok := channel.ToFloat64(m["speed"])
		if !ok {
			speed = 1.0
		}
		return nil, c.Play(speed)

	case "pause":
		return nil, c.Pause()

	case "stop":
		return nil, c.Stop()

	case "isPlaying":
		return c.IsPlaying(), nil

	case "seekTo":
		positionMs, ok := channel.ToInt64(m["positionMs"])
		if !ok {
			return nil, fmt.Errorf("%w: missing positionMs", channel.ErrInvalidArguments)
		}
		return nil, c.SeekTo(positionMs)

	case "getPlaybackPosition":
		return c.Position(), nil

	case "setPlaybackSpeed":
		speed, ok := channel.ToFloat64(m["speed"])
		if !ok {
			return nil, fmt.Errorf("%w: missing speed", channel.ErrInvalidArguments)
		}
		return nil, c.SetPlaybackSpeed(speed)

	case "setVolume":
		volume, ok := channel.ToFloat64(m["volume"])
		if !ok {
			return nil, fmt.Errorf("%w: missing volume", channel.ErrInvalidArguments)
		}
		return nil, c.SetVolume(volume)

	case "enterPictureInPicture":
		return nil, c.EnterPictureInPicture()

	case "exitPictureInPicture":
		return nil, c.ExitPictureInPicture()

	case "isPictureInPictureActive":
		return c.IsPictureInPictureActive(), nil

	case "dispose":
		s.Release(c)
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %s", channel.ErrMethodNotFound, method)
	}
}
