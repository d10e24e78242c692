package view

import "sync"

// ApplyAuthTransition maps the current view to the view that should be shown
// once the session state is known. Public and auth screens jump to the
// dashboard on sign-in; protected screens fall back to landing on sign-out.
// Everything else is left alone, which keeps deep links stable across token
// refreshes.
func ApplyAuthTransition(hasSession bool, previous View) View {
	// unknown views fall through to the default and are returned as given
	switch previous.Class() {
	case ClassPublic, ClassAuth:
		if hasSession {
			return Dashboard
		}
	case ClassProtected:
		if !hasSession {
			return Landing
		}
	}
	return previous
}

type Listener func(from, to View)

type change struct {
	from, to  View
	listeners []Listener
}

// Router owns the current view. It is safe for concurrent use. Listeners run
// outside the lock but always in commit order: a change committed while
// another goroutine is notifying is queued and delivered by that goroutine.
type Router struct {
	mu        sync.Mutex
	current   View
	listeners []Listener
	pending   []change
	notifying bool
}

func NewRouter(initial View) *Router {
	if !initial.Valid() {
		initial = Landing
	}
	return &Router{current: initial}
}

func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnChange registers fn and returns a func that removes it.
func (r *Router) OnChange(fn Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = append(r.listeners, fn)
	idx := len(r.listeners) - 1
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if idx < len(r.listeners) {
			r.listeners[idx] = nil
		}
	}
}

// Navigate sets target unconditionally. Unknown targets are ignored and the
// current view is returned.
func (r *Router) Navigate(target View) View {
	if !target.Valid() {
		return r.Current()
	}
	return r.set(func(View) View { return target })
}

// Reconcile applies ApplyAuthTransition to the held view. It reports whether
// the view changed; listeners are only notified on change.
func (r *Router) Reconcile(hasSession bool) (View, bool) {
	var changed bool
	next := r.set(func(prev View) View {
		next := ApplyAuthTransition(hasSession, prev)
		changed = next != prev
		return next
	})
	return next, changed
}

// NavigateIfCurrent moves to target only when the view is still expected.
func (r *Router) NavigateIfCurrent(expected, target View) (View, bool) {
	var moved bool
	next := r.set(func(prev View) View {
		if prev != expected {
			return prev
		}
		moved = true
		return target
	})
	return next, moved
}

func (r *Router) set(fn func(View) View) View {
	r.mu.Lock()
	prev := r.current
	next := fn(prev)
	r.current = next
	if next != prev {
		notify := make([]Listener, 0, len(r.listeners))
		for _, l := range r.listeners {
			if l != nil {
				notify = append(notify, l)
			}
		}
		r.pending = append(r.pending, change{from: prev, to: next, listeners: notify})
	}
	if r.notifying {
		r.mu.Unlock()
		return next
	}
	r.notifying = true
	r.drain()
	return next
}

// drain is entered with r.mu held and returns with it released.
func (r *Router) drain() {
	defer func() {
		r.notifying = false
		r.mu.Unlock()
	}()
	for len(r.pending) > 0 {
		c := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		func() {
			defer r.mu.Lock()
			for _, l := range c.listeners {
				l(c.from, c.to)
			}
		}()
	}
}
