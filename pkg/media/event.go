package media

import (
	"fmt"

	"github.com/go-drift/mediakit/pkg/channel"
)

// Event is a normalized playback event emitted by one controller instance.
// Events for one instance are delivered in the order their underlying
// native signals fire; there is no ordering guarantee across instances.
type Event interface {
	eventName() string
}

// ReadyEvent signals that the loaded video is ready to play.
type ReadyEvent struct {
	Info VideoInfo
}

func (ReadyEvent) eventName() string { return "ready" }

// EndedEvent signals that playback reached the end of the media.
type EndedEvent struct{}

func (EndedEvent) eventName() string { return "ended" }

// ErrorEvent carries a human-readable failure description. Every failure
// class (source resolution, property load, not-playable, player-level,
// capability-unavailable) surfaces through this one event type.
type ErrorEvent struct {
	Message string
}

func (ErrorEvent) eventName() string { return "error" }

// PictureInPictureEvent signals an asynchronous confirmation that the
// picture-in-picture session became active or inactive.
type PictureInPictureEvent struct {
	Active bool
}

func (PictureInPictureEvent) eventName() string { return "pipChanged" }

// encodeEvent converts an event into its wire payload.
func encodeEvent(playerID int64, ev Event) map[string]any {
	m := map[string]any{
		"playerId": playerID,
		"event":    ev.eventName(),
	}
	switch e := ev.(type) {
	case ReadyEvent:
		m["width"] = e.Info.Width
		m["height"] = e.Info.Height
		m["durationMs"] = e.Info.DurationMs
	case ErrorEvent:
		m["message"] = e.Message
	case PictureInPictureEvent:
		m["active"] = e.Active
	}
	return m
}

// DecodeEvent converts a wire payload back into a typed event and the
// instance id it belongs to.
func DecodeEvent(data any) (int64, Event, error) {
	m := channel.ParseMap(data)
	if m == nil {
		return 0, nil, fmt.Errorf("event payload is not a map: %T", data)
	}
	playerID, ok := channel.ToInt64(m["playerId"])
	if !ok {
		return 0, nil, fmt.Errorf("event payload has no playerId")
	}
	switch name := channel.ParseString(m["event"]); name {
	case "ready":
		width, _ := channel.ToInt(m["width"])
		height, _ := channel.ToInt(m["height"])
		durationMs, _ := channel.ToInt64(m["durationMs"])
		return playerID, ReadyEvent{Info: VideoInfo{Width: width, Height: height, DurationMs: durationMs}}, nil
	case "ended":
		return playerID, EndedEvent{}, nil
	case "error":
		return playerID, ErrorEvent{Message: channel.ParseString(m["message"])}, nil
	case "pipChanged":
		return playerID, PictureInPictureEvent{Active: channel.ParseBool(m["active"])}, nil
	default:
		return playerID, nil, fmt.Errorf("unknown event %q", name)
	}
}
