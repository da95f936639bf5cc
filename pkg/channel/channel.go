package channel

import (
	"sync"
	"sync/atomic"
)

// MethodHandler handles incoming method calls on a channel.
type MethodHandler func(method string, args any) (any, error)

// MethodChannel receives method calls from the embedding application layer.
// The host side registers a handler; the application side invokes methods.
type MethodChannel struct {
	name    string
	codec   MessageCodec
	mu      sync.RWMutex
	handler MethodHandler
}

// NewMethodChannel creates a new method channel with the given name and
// registers it so that the embedder can reach it by name.
func NewMethodChannel(name string) *MethodChannel {
	ch := &MethodChannel{
		name:  name,
		codec: DefaultCodec,
	}
	registry.registerMethod(name, ch)
	return ch
}

// Name returns the channel name.
func (c *MethodChannel) Name() string {
	return c.name
}

// SetHandler sets the handler for incoming method calls.
func (c *MethodChannel) SetHandler(handler MethodHandler) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

// Invoke calls the channel's registered handler through the codec boundary,
// exactly as an out-of-process embedder would. Arguments and results are
// round-tripped through the codec, so handlers observe wire-shaped values
// (JSON maps with float64 numbers) regardless of the caller's types.
func (c *MethodChannel) Invoke(method string, args any) (any, error) {
	data, err := c.codec.Encode(args)
	if err != nil {
		return nil, err
	}
	resultData, err := HandleMethodCall(c.name, method, data)
	if err != nil {
		return nil, err
	}
	return c.codec.Decode(resultData)
}

// handleCall processes an incoming method call from the embedder.
func (c *MethodChannel) handleCall(method string, args any) (any, error) {
	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()
	if handler == nil {
		return nil, ErrMethodNotFound
	}
	return handler(method, args)
}

// EventHandler receives events from an EventChannel.
type EventHandler struct {
	OnEvent func(data any)
	OnError func(err error)
	OnDone  func()
}

// Subscription represents an active event subscription.
type Subscription struct {
	channel  *EventChannel
	handler  *EventHandler
	canceled atomic.Bool
}

// Cancel stops receiving events on this subscription.
func (s *Subscription) Cancel() {
	if s.canceled.CompareAndSwap(false, true) {
		s.channel.removeSubscription(s)
	}
}

// IsCanceled returns true if this subscription has been canceled.
func (s *Subscription) IsCanceled() bool {
	return s.canceled.Load()
}

// EventChannel carries events from playback controllers to the application
// layer. The host side publishes; the application side subscribes with
// Listen. Multiple subscribers receive every event independently.
type EventChannel struct {
	name          string
	codec         MessageCodec
	subscriptions []*Subscription
	mu            sync.Mutex
}

// NewEventChannel creates a new event channel with the given name and
// registers it so that the embedder can reach it by name.
func NewEventChannel(name string) *EventChannel {
	ch := &EventChannel{
		name:  name,
		codec: DefaultCodec,
	}
	registry.registerEvent(name, ch)
	return ch
}

// Name returns the channel name.
func (c *EventChannel) Name() string {
	return c.name
}

// Listen subscribes to events on this channel.
func (c *EventChannel) Listen(handler EventHandler) *Subscription {
	sub := &Subscription{
		channel: c,
		handler: &handler,
	}
	c.mu.Lock()
	c.subscriptions = append(c.subscriptions, sub)
	c.mu.Unlock()
	return sub
}

// removeSubscription removes a subscription from the channel.
func (c *EventChannel) removeSubscription(sub *Subscription) {
	c.mu.Lock()
	for i, s := range c.subscriptions {
		if s == sub {
			c.subscriptions = append(c.subscriptions[:i], c.subscriptions[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// Publish encodes the event through the codec and delivers the decoded
// wire-shaped value to all subscribers and to the registered event sink.
// Events published on one channel preserve publication order.
func (c *EventChannel) Publish(data any) error {
	payload, err := c.codec.Encode(data)
	if err != nil {
		return err
	}

	sinkEvent(c.name, payload)

	decoded, err := c.codec.Decode(payload)
	if err != nil {
		return err
	}
	c.dispatchEvent(decoded)
	return nil
}

// PublishError delivers an error to all subscribers.
func (c *EventChannel) PublishError(err error) {
	c.mu.Lock()
	subs := make([]*Subscription, len(c.subscriptions))
	copy(subs, c.subscriptions)
	c.mu.Unlock()

	for _, sub := range subs {
		if !sub.IsCanceled() && sub.handler.OnError != nil {
			sub.handler.OnError(err)
		}
	}
}

// Close notifies all subscribers that the stream has ended and cancels
// their subscriptions.
func (c *EventChannel) Close() {
	c.mu.Lock()
	subs := make([]*Subscription, len(c.subscriptions))
	copy(subs, c.subscriptions)
	c.subscriptions = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.canceled.Store(true)
		if sub.handler.OnDone != nil {
			sub.handler.OnDone()
		}
	}
}

// dispatchEvent sends an event to all subscribers.
func (c *EventChannel) dispatchEvent(data any) {
	c.mu.Lock()
	subs := make([]*Subscription, len(c.subscriptions))
	copy(subs, c.subscriptions)
	c.mu.Unlock()

	for _, sub := range subs {
		if !sub.IsCanceled() && sub.handler.OnEvent != nil {
			sub.handler.OnEvent(data)
		}
	}
}
