package media

import "sync"

// NewObserverHandle wraps a detach function in an ObserverHandle whose
// Release takes effect exactly once. Capability implementations use it to
// satisfy the observer contract without tracking release state themselves.
func NewObserverHandle(release func()) ObserverHandle {
	return &observerHandle{release: release}
}

type observerHandle struct {
	once    sync.Once
	release func()
}

func (h *observerHandle) Release() {
	h.once.Do(func() {
		if h.release != nil {
			h.release()
		}
	})
}

// observation owns the observer handles attached to one player item. The
// controller creates one observation per attached item and releases it
// before any replacement load and on dispose, so a registration exists
// exactly while its item does.
type observation struct {
	handles  []ObserverHandle
	released bool
}

func (o *observation) add(h ObserverHandle) {
	o.handles = append(o.handles, h)
}

// release detaches every handle. Safe to call more than once; only the
// first call detaches.
func (o *observation) release() {
	if o == nil || o.released {
		return
	}
	o.released = true
	for _, h := range o.handles {
		h.Release()
	}
	o.handles = nil
}
