package channel

import (
	"fmt"
	"sync"

	"github.com/go-drift/mediakit/pkg/errors"
)

// channelRegistry manages all registered channels.
type channelRegistry struct {
	methodChannels map[string]*MethodChannel
	eventChannels  map[string]*EventChannel
	mu             sync.RWMutex
}

var registry = &channelRegistry{
	methodChannels: make(map[string]*MethodChannel),
	eventChannels:  make(map[string]*EventChannel),
}

func (r *channelRegistry) registerMethod(name string, ch *MethodChannel) {
	r.mu.Lock()
	r.methodChannels[name] = ch
	r.mu.Unlock()
}

func (r *channelRegistry) registerEvent(name string, ch *EventChannel) {
	r.mu.Lock()
	r.eventChannels[name] = ch
	r.mu.Unlock()
}

func (r *channelRegistry) getMethodChannel(name string) *MethodChannel {
	r.mu.RLock()
	ch := r.methodChannels[name]
	r.mu.RUnlock()
	return ch
}

func (r *channelRegistry) getEventChannel(name string) *EventChannel {
	r.mu.RLock()
	ch := r.eventChannels[name]
	r.mu.RUnlock()
	return ch
}

// EventSink receives every encoded event published on any channel.
// Out-of-process embedders register a sink to bridge events across the
// process boundary; in-process embedders use EventChannel.Listen instead.
type EventSink func(channel string, payload []byte)

var (
	sinkMu    sync.RWMutex
	eventSink EventSink
)

// RegisterEventSink sets the global event sink. Pass nil to remove it.
func RegisterEventSink(sink EventSink) {
	sinkMu.Lock()
	eventSink = sink
	sinkMu.Unlock()
}

func sinkEvent(channel string, payload []byte) {
	sinkMu.RLock()
	sink := eventSink
	sinkMu.RUnlock()
	if sink != nil {
		sink(channel, payload)
	}
}

// HandleMethodCall is the embedder's entry point for invoking a method on a
// named channel. Arguments arrive codec-encoded; the result is returned
// codec-encoded.
func HandleMethodCall(channel, method string, argsData []byte) ([]byte, error) {
	ch := registry.getMethodChannel(channel)
	if ch == nil {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channel)
	}

	args, err := DefaultCodec.Decode(argsData)
	if err != nil {
		errors.Report(&errors.Error{
			Op:      "channel.HandleMethodCall",
			Kind:    errors.KindParsing,
			Channel: channel,
			Err:     err,
		})
		return nil, err
	}

	result, err := ch.handleCall(method, args)
	if err != nil {
		return nil, err
	}

	return DefaultCodec.Encode(result)
}

// Invoke routes one method call to the named channel through the codec
// boundary, for callers that hold the channel name rather than the
// channel object.
func Invoke(channelName, method string, args any) (any, error) {
	data, err := DefaultCodec.Encode(args)
	if err != nil {
		return nil, err
	}
	resultData, err := HandleMethodCall(channelName, method, data)
	if err != nil {
		return nil, err
	}
	return DefaultCodec.Decode(resultData)
}

// ResetForTest resets all global channel state for test isolation.
// It removes all event subscriptions, clears method handlers, the event
// sink, and the dispatch function. This should only be called from tests.
func ResetForTest() {
	registry.mu.RLock()
	events := make([]*EventChannel, 0, len(registry.eventChannels))
	for _, ch := range registry.eventChannels {
		events = append(events, ch)
	}
	methods := make([]*MethodChannel, 0, len(registry.methodChannels))
	for _, ch := range registry.methodChannels {
		methods = append(methods, ch)
	}
	registry.mu.RUnlock()

	for _, ch := range events {
		ch.mu.Lock()
		ch.subscriptions = nil
		ch.mu.Unlock()
	}
	for _, ch := range methods {
		ch.SetHandler(nil)
	}

	RegisterEventSink(nil)

	dispatchMu.Lock()
	dispatchFunc = nil
	dispatchMu.Unlock()
}
