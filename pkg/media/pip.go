package media

import (
	"sync"
	"time"
)

// keepControlsInterval is how often the keep-controls ticker refreshes the
// native playback controls while an on-screen controls surface is in use.
const keepControlsInterval = 500 * time.Millisecond

// Clock abstracts ticker creation so the keep-controls timer can be driven
// deterministically in tests.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker the session needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock creates real tickers.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time { return s.t.C }
func (s *systemTicker) Stop()               { s.t.Stop() }

// PictureInPictureSession wraps the platform picture-in-picture capability
// bound to a controller's render surface. Enter and Exit are requests;
// the session emits a transition only when the native capability confirms
// it asynchronously. The session borrows the surface and must not outlive
// its controller's dispose.
type PictureInPictureSession struct {
	driver PictureInPictureDriver
	emit   func(active bool)
	clock  Clock

	mu          sync.Mutex
	obs         ObserverHandle
	active      bool
	invalidated bool
	keepAlive   Ticker
	stopCh      chan struct{}
}

// newPictureInPictureSession binds a session to the driver. When
// keepControls is set, a recurring low-frequency ticker keeps the native
// playback controls visibly rendered; the ticker is unrelated to playback
// state and is cancelled on Invalidate.
func newPictureInPictureSession(driver PictureInPictureDriver, clock Clock, keepControls bool, emit func(active bool)) *PictureInPictureSession {
	if clock == nil {
		clock = SystemClock
	}
	s := &PictureInPictureSession{
		driver: driver,
		emit:   emit,
		clock:  clock,
	}
	s.obs = driver.ObserveActive(s.handleActive)
	if keepControls {
		s.startKeepAlive()
	}
	return s
}

// Enter starts the session. No-op if already active or invalidated.
func (s *PictureInPictureSession) Enter() {
	s.mu.Lock()
	skip := s.invalidated || s.active
	s.mu.Unlock()
	if skip {
		return
	}
	s.driver.Start()
}

// Exit stops the session. No-op if already inactive or invalidated.
func (s *PictureInPictureSession) Exit() {
	s.mu.Lock()
	skip := s.invalidated || !s.active
	s.mu.Unlock()
	if skip {
		return
	}
	s.driver.Stop()
}

// Active reports whether the native session is confirmed active.
func (s *PictureInPictureSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && !s.invalidated
}

// Invalidate releases the native observer and cancels the keep-controls
// ticker. Safe to call more than once.
func (s *PictureInPictureSession) Invalidate() {
	s.mu.Lock()
	if s.invalidated {
		s.mu.Unlock()
		return
	}
	s.invalidated = true
	obs := s.obs
	s.obs = nil
	keepAlive := s.keepAlive
	stopCh := s.stopCh
	s.keepAlive = nil
	s.stopCh = nil
	s.mu.Unlock()

	if obs != nil {
		obs.Release()
	}
	if keepAlive != nil {
		keepAlive.Stop()
		close(stopCh)
	}
}

// handleActive processes asynchronous confirmations from the native
// capability and emits a transition only when the state actually changed.
func (s *PictureInPictureSession) handleActive(active bool) {
	s.mu.Lock()
	if s.invalidated {
		s.mu.Unlock()
		return
	}
	changed := active != s.active
	s.active = active
	emit := s.emit
	s.mu.Unlock()

	if changed && emit != nil {
		emit(active)
	}
}

func (s *PictureInPictureSession) startKeepAlive() {
	ticker := s.clock.NewTicker(keepControlsInterval)
	stopCh := make(chan struct{})

	s.mu.Lock()
	s.keepAlive = ticker
	s.stopCh = stopCh
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C():
				s.driver.RefreshControls()
			case <-stopCh:
				return
			}
		}
	}()
}
