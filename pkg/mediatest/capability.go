// Package mediatest provides a simulated media capability, a controllable
// clock, and setup helpers for testing playback controllers without a
// host platform. The demo harness uses the same simulation.
package mediatest

import (
	"fmt"
	"sync"

	"github.com/go-drift/mediakit/pkg/channel"
	"github.com/go-drift/mediakit/pkg/media"
)

// FakeMedia describes one playable (or deliberately broken) entry in the
// simulated media library.
type FakeMedia struct {
	DurationMs int64
	Width      int
	Height     int

	// NotPlayable makes the asset resolve but report unplayable.
	NotPlayable bool

	// FailProperty, when non-empty, makes that required property report a
	// failed load status with FailReason.
	FailProperty media.Property
	FailReason   string

	// OpenErr makes asset resolution itself fail.
	OpenErr error
}

// FakeCapability is an in-memory media.Capability. Locations not present
// in Library fail to open, mirroring an unreadable source path.
type FakeCapability struct {
	mu sync.Mutex

	// Library maps resolved locations to media descriptions.
	Library map[string]FakeMedia

	// Assets maps bundled asset keys to resolved locations.
	Assets map[string]string

	// PiPSupported controls SupportsPictureInPicture.
	PiPSupported bool

	// DeferLoads holds property-load completions until CompletePendingLoad
	// is called, exposing the superseded-load race to tests.
	DeferLoads bool

	// AutoSignalReady dispatches an item readiness signal as soon as an
	// item is attached, so end-to-end runs produce Ready events without
	// manual signaling.
	AutoSignalReady bool

	players []*FakePlayer
	pips    []*FakePiPDriver
	pending []*FakeAsset
}

// NewFakeCapability creates an empty capability with PiP support enabled.
func NewFakeCapability() *FakeCapability {
	return &FakeCapability{
		Library:      map[string]FakeMedia{},
		Assets:       map[string]string{},
		PiPSupported: true,
	}
}

// AddMedia registers a playable entry at the given location.
func (c *FakeCapability) AddMedia(location string, m FakeMedia) {
	c.mu.Lock()
	c.Library[location] = m
	c.mu.Unlock()
}

// NewPlayer implements media.Capability.
func (c *FakeCapability) NewPlayer() media.Player {
	p := &FakePlayer{cap: c}
	c.mu.Lock()
	c.players = append(c.players, p)
	c.mu.Unlock()
	return p
}

// Players returns every player created so far.
func (c *FakeCapability) Players() []*FakePlayer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*FakePlayer, len(c.players))
	copy(out, c.players)
	return out
}

// LastPlayer returns the most recently created player, or nil.
func (c *FakeCapability) LastPlayer() *FakePlayer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.players) == 0 {
		return nil
	}
	return c.players[len(c.players)-1]
}

// ResolveAssetPath implements media.Capability.
func (c *FakeCapability) ResolveAssetPath(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	location, ok := c.Assets[key]
	if !ok {
		return "", fmt.Errorf("no bundled asset for key %q", key)
	}
	return location, nil
}

// OpenAsset implements media.Capability.
func (c *FakeCapability) OpenAsset(location string) (media.Asset, error) {
	return c.open(location, nil)
}

// OpenAssetWithHeaders implements media.Capability.
func (c *FakeCapability) OpenAssetWithHeaders(location string, headers map[string]string) (media.Asset, error) {
	return c.open(location, headers)
}

func (c *FakeCapability) open(location string, headers map[string]string) (media.Asset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	desc, ok := c.Library[location]
	if !ok {
		return nil, fmt.Errorf("cannot read source at %q", location)
	}
	if desc.OpenErr != nil {
		return nil, desc.OpenErr
	}
	return &FakeAsset{cap: c, Location: location, Desc: desc, Headers: headers}, nil
}

// SupportsPictureInPicture implements media.Capability.
func (c *FakeCapability) SupportsPictureInPicture() bool {
	return c.PiPSupported
}

// NewPictureInPicture implements media.Capability.
func (c *FakeCapability) NewPictureInPicture(player media.Player, surface media.Surface) (media.PictureInPictureDriver, error) {
	d := &FakePiPDriver{surfaceID: surface.ID()}
	c.mu.Lock()
	c.pips = append(c.pips, d)
	c.mu.Unlock()
	return d, nil
}

// LastPiP returns the most recently created picture-in-picture driver.
func (c *FakeCapability) LastPiP() *FakePiPDriver {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pips) == 0 {
		return nil
	}
	return c.pips[len(c.pips)-1]
}

// CompletePendingLoad finishes the oldest deferred property load. Returns
// false when none are pending.
func (c *FakeCapability) CompletePendingLoad() bool {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return false
	}
	a := c.pending[0]
	c.pending = c.pending[1:]
	c.mu.Unlock()
	a.complete()
	return true
}

// FakeAsset simulates a resolved asset whose properties load instantly
// (or on demand with DeferLoads).
type FakeAsset struct {
	cap      *FakeCapability
	Location string
	Desc     FakeMedia

	// Headers records what the loader forwarded; nil when the loader
	// used the headerless open path.
	Headers map[string]string

	mu     sync.Mutex
	loaded map[media.Property]bool
	done   func()
}

// LoadProperties implements media.Asset.
func (a *FakeAsset) LoadProperties(props []media.Property, done func()) {
	a.mu.Lock()
	if a.loaded == nil {
		a.loaded = map[media.Property]bool{}
	}
	for _, p := range props {
		a.loaded[p] = true
	}
	a.mu.Unlock()

	if a.cap != nil && a.cap.DeferLoads {
		a.mu.Lock()
		a.done = done
		a.mu.Unlock()
		a.cap.mu.Lock()
		a.cap.pending = append(a.cap.pending, a)
		a.cap.mu.Unlock()
		return
	}
	done()
}

func (a *FakeAsset) complete() {
	a.mu.Lock()
	done := a.done
	a.done = nil
	a.mu.Unlock()
	if done != nil {
		done()
	}
}

// PropertyStatus implements media.Asset.
func (a *FakeAsset) PropertyStatus(p media.Property) (media.PropertyStatus, error) {
	if a.Desc.FailProperty == p {
		reason := a.Desc.FailReason
		if reason == "" {
			reason = "simulated failure"
		}
		return media.PropertyStatusFailed, fmt.Errorf("%s", reason)
	}
	a.mu.Lock()
	requested := a.loaded[p]
	a.mu.Unlock()
	if !requested {
		return media.PropertyStatusUnknown, nil
	}
	return media.PropertyStatusLoaded, nil
}

// Playable implements media.Asset.
func (a *FakeAsset) Playable() bool {
	return !a.Desc.NotPlayable
}

// Duration implements media.Asset.
func (a *FakeAsset) Duration() media.MediaTime {
	return media.TimeFromMillis(a.Desc.DurationMs)
}

// VideoSize implements media.Asset.
func (a *FakeAsset) VideoSize() (int, int) {
	return a.Desc.Width, a.Desc.Height
}

// FakePlayer is an in-memory media.Player.
type FakePlayer struct {
	cap *FakeCapability

	mu      sync.Mutex
	item    *FakeItem
	rate    float64
	volume  float64
	pos     media.MediaTime
	err     error
	history []*FakeItem
}

// NewItem implements media.Player.
func (p *FakePlayer) NewItem(asset media.Asset) media.PlayerItem {
	return &FakeItem{asset: asset.(*FakeAsset)}
}

// ReplaceItem implements media.Player.
func (p *FakePlayer) ReplaceItem(item media.PlayerItem) {
	p.mu.Lock()
	var fake *FakeItem
	if item != nil {
		fake = item.(*FakeItem)
	}
	p.item = fake
	p.pos = media.TimeFromMillis(0)
	if fake != nil {
		p.history = append(p.history, fake)
	}
	auto := p.cap != nil && p.cap.AutoSignalReady && fake != nil
	p.mu.Unlock()

	if auto {
		channel.Dispatch(func() { fake.SignalReady() })
	}
}

// CurrentItem implements media.Player.
func (p *FakePlayer) CurrentItem() media.PlayerItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.item == nil {
		return nil
	}
	return p.item
}

// Item returns the attached fake item, or nil.
func (p *FakePlayer) Item() *FakeItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.item
}

// ItemHistory returns every non-nil item ever attached, in order.
func (p *FakePlayer) ItemHistory() []*FakeItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*FakeItem, len(p.history))
	copy(out, p.history)
	return out
}

// Rate implements media.Player.
func (p *FakePlayer) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// SetRate implements media.Player.
func (p *FakePlayer) SetRate(rate float64) {
	p.mu.Lock()
	p.rate = rate
	p.mu.Unlock()
}

// SetVolume implements media.Player.
func (p *FakePlayer) SetVolume(volume float64) {
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
}

// Volume returns the last volume set on the player.
func (p *FakePlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Position implements media.Player.
func (p *FakePlayer) Position() media.MediaTime {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// SeekTo implements media.Player.
func (p *FakePlayer) SeekTo(t media.MediaTime) {
	p.mu.Lock()
	p.pos = t
	p.mu.Unlock()
}

// Err implements media.Player.
func (p *FakePlayer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// SetErr injects a player-level error.
func (p *FakePlayer) SetErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// AdvanceTo moves the playhead, simulating playback progress.
func (p *FakePlayer) AdvanceTo(positionMs int64) {
	p.mu.Lock()
	p.pos = media.TimeFromMillis(positionMs)
	p.mu.Unlock()
}

// CompletePlayback simulates the media running to its end: the rate drops
// to zero and the attached item signals end-of-stream.
func (p *FakePlayer) CompletePlayback() {
	p.mu.Lock()
	item := p.item
	p.rate = 0
	if item != nil {
		p.pos = item.asset.Duration()
	}
	p.mu.Unlock()
	if item != nil {
		item.SignalEnded()
	}
}

// FakeItem is an in-memory media.PlayerItem with manually fired signals.
type FakeItem struct {
	asset *FakeAsset

	mu        sync.Mutex
	statusObs map[int]func(media.ItemStatus, error)
	endedObs  map[int]func()
	nextObsID int
}

// Asset returns the item's backing asset.
func (i *FakeItem) Asset() *FakeAsset { return i.asset }

// ObserveStatus implements media.PlayerItem.
func (i *FakeItem) ObserveStatus(fn func(media.ItemStatus, error)) media.ObserverHandle {
	i.mu.Lock()
	if i.statusObs == nil {
		i.statusObs = map[int]func(media.ItemStatus, error){}
	}
	id := i.nextObsID
	i.nextObsID++
	i.statusObs[id] = fn
	i.mu.Unlock()
	return media.NewObserverHandle(func() {
		i.mu.Lock()
		delete(i.statusObs, id)
		i.mu.Unlock()
	})
}

// ObserveEnded implements media.PlayerItem.
func (i *FakeItem) ObserveEnded(fn func()) media.ObserverHandle {
	i.mu.Lock()
	if i.endedObs == nil {
		i.endedObs = map[int]func(){}
	}
	id := i.nextObsID
	i.nextObsID++
	i.endedObs[id] = fn
	i.mu.Unlock()
	return media.NewObserverHandle(func() {
		i.mu.Lock()
		delete(i.endedObs, id)
		i.mu.Unlock()
	})
}

// ObserverCount returns how many observers are currently attached.
func (i *FakeItem) ObserverCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.statusObs) + len(i.endedObs)
}

// SignalReady fires the readiness observers.
func (i *FakeItem) SignalReady() {
	for _, fn := range i.snapshotStatus() {
		fn(media.ItemStatusReady, nil)
	}
}

// SignalFailed fires the readiness observers with a failed status.
func (i *FakeItem) SignalFailed(err error) {
	for _, fn := range i.snapshotStatus() {
		fn(media.ItemStatusFailed, err)
	}
}

// SignalEnded fires the end-of-stream observers.
func (i *FakeItem) SignalEnded() {
	i.mu.Lock()
	obs := make([]func(), 0, len(i.endedObs))
	for _, fn := range i.endedObs {
		obs = append(obs, fn)
	}
	i.mu.Unlock()
	for _, fn := range obs {
		fn()
	}
}

func (i *FakeItem) snapshotStatus() []func(media.ItemStatus, error) {
	i.mu.Lock()
	obs := make([]func(media.ItemStatus, error), 0, len(i.statusObs))
	for _, fn := range i.statusObs {
		obs = append(obs, fn)
	}
	i.mu.Unlock()
	return obs
}

// FakePiPDriver is an in-memory media.PictureInPictureDriver whose
// transitions are confirmed manually, mirroring the asynchronous native
// confirmations.
type FakePiPDriver struct {
	surfaceID int64

	mu           sync.Mutex
	active       bool
	startCalls   int
	stopCalls    int
	refreshCalls int
	obs          map[int]func(bool)
	nextObsID    int
}

// SurfaceID returns the surface this driver was bound to.
func (d *FakePiPDriver) SurfaceID() int64 { return d.surfaceID }

// Start implements media.PictureInPictureDriver. The session does not
// become active until ConfirmActive(true).
func (d *FakePiPDriver) Start() {
	d.mu.Lock()
	d.startCalls++
	d.mu.Unlock()
}

// Stop implements media.PictureInPictureDriver.
func (d *FakePiPDriver) Stop() {
	d.mu.Lock()
	d.stopCalls++
	d.mu.Unlock()
}

// RefreshControls implements media.PictureInPictureDriver.
func (d *FakePiPDriver) RefreshControls() {
	d.mu.Lock()
	d.refreshCalls++
	d.mu.Unlock()
}

// ObserveActive implements media.PictureInPictureDriver.
func (d *FakePiPDriver) ObserveActive(fn func(bool)) media.ObserverHandle {
	d.mu.Lock()
	if d.obs == nil {
		d.obs = map[int]func(bool){}
	}
	id := d.nextObsID
	d.nextObsID++
	d.obs[id] = fn
	d.mu.Unlock()
	return media.NewObserverHandle(func() {
		d.mu.Lock()
		delete(d.obs, id)
		d.mu.Unlock()
	})
}

// ConfirmActive delivers the asynchronous native confirmation of a
// session transition.
func (d *FakePiPDriver) ConfirmActive(active bool) {
	d.mu.Lock()
	d.active = active
	obs := make([]func(bool), 0, len(d.obs))
	for _, fn := range d.obs {
		obs = append(obs, fn)
	}
	d.mu.Unlock()
	for _, fn := range obs {
		fn(active)
	}
}

// StartCalls returns how many times Start was requested.
func (d *FakePiPDriver) StartCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startCalls
}

// StopCalls returns how many times Stop was requested.
func (d *FakePiPDriver) StopCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopCalls
}

// RefreshCalls returns how many times RefreshControls fired.
func (d *FakePiPDriver) RefreshCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshCalls
}

// ObserverCount returns how many active observers are attached.
func (d *FakePiPDriver) ObserverCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.obs)
}
