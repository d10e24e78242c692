package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/view"
)

var (
	ErrGateClosed     = errors.New("session gate is closed")
	ErrAlreadyMounted = errors.New("session gate is already mounted")
)

const logModule = "SESSION_GATE"

// SessionGate keeps a Router in step with auth events and loads the shop
// profile of whoever is signed in. Collaborator failures are logged and
// degrade to "no session" or "no profile"; they are never returned.
type SessionGate struct {
	auth   AuthCollaborator
	shops  ShopCollaborator
	router *view.Router
	logger logger.ILogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	mounted     bool
	closed      bool
	session     *Session
	shop        *ShopProfile
	authGen     uint64
	fetchSeq    uint64
	fetchCancel context.CancelFunc
	unsubscribe func()
	timers      map[uint64]*time.Timer
	nextTimer   uint64
	shopChanged []func(*ShopProfile)

	closeOnce sync.Once
}

func NewSessionGate(auth AuthCollaborator, shops ShopCollaborator, router *view.Router, log logger.ILogger) *SessionGate {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionGate{
		auth:   auth,
		shops:  shops,
		router: router,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[uint64]*time.Timer),
	}
}

// Mount subscribes to auth changes and then performs the initial session
// lookup. The subscription is released if setup does not complete.
func (g *SessionGate) Mount(ctx context.Context) (err error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGateClosed
	}
	if g.mounted {
		g.mu.Unlock()
		return ErrAlreadyMounted
	}
	g.mounted = true
	g.mu.Unlock()

	unsubscribe, err := g.auth.Subscribe(g.OnAuthChange)
	if err != nil {
		return fmt.Errorf("subscribe to auth changes: %w", err)
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		unsubscribe()
		return ErrGateClosed
	}
	g.unsubscribe = unsubscribe
	gen := g.authGen
	g.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			g.Close()
			panic(r)
		}
	}()

	session, lookupErr := g.auth.GetCurrentSession(ctx)
	if lookupErr != nil {
		g.logger.Warn(logModule, "Initial session lookup failed, continuing signed out", map[string]interface{}{"error": lookupErr.Error()})
		return nil
	}
	if session == nil {
		return nil
	}

	g.mu.Lock()
	if g.closed || g.authGen != gen {
		// an auth event arrived while the lookup was in flight and wins
		g.mu.Unlock()
		return nil
	}
	s := *session
	g.session = &s
	seq := g.bumpFetchLocked()
	g.mu.Unlock()

	g.startFetch(seq, s)
	g.router.NavigateIfCurrent(view.Landing, view.Dashboard)
	return nil
}

// OnAuthChange is the subscription callback. It may also be called directly.
func (g *SessionGate) OnAuthChange(session *Session) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.authGen++
	seq := g.bumpFetchLocked()

	var s Session
	if session != nil {
		s = *session
		g.session = &s
	} else {
		g.session = nil
		g.shop = nil
	}
	listeners := g.shopListenersLocked(session == nil)
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
	if session != nil {
		g.startFetch(seq, s)
	}
	g.router.Reconcile(session != nil)
}

// bumpFetchLocked invalidates any in-flight profile fetch.
func (g *SessionGate) bumpFetchLocked() uint64 {
	g.fetchSeq++
	if g.fetchCancel != nil {
		g.fetchCancel()
		g.fetchCancel = nil
	}
	return g.fetchSeq
}

func (g *SessionGate) shopListenersLocked(want bool) []func(*ShopProfile) {
	if !want || len(g.shopChanged) == 0 {
		return nil
	}
	out := make([]func(*ShopProfile), len(g.shopChanged))
	copy(out, g.shopChanged)
	return out
}

func (g *SessionGate) startFetch(seq uint64, session Session) {
	g.mu.Lock()
	if g.closed || seq != g.fetchSeq {
		g.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(g.ctx)
	g.fetchCancel = cancel
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer cancel()

		shop, err := g.fetchShop(ctx, session)

		g.mu.Lock()
		if g.closed || seq != g.fetchSeq {
			g.mu.Unlock()
			g.logger.Debug(logModule, "Discarding stale shop profile result", map[string]interface{}{"seq": seq})
			return
		}
		g.fetchCancel = nil
		if err != nil {
			g.shop = nil
		} else {
			g.shop = shop
		}
		listeners := g.shopListenersLocked(true)
		current := g.shop
		g.mu.Unlock()

		if err != nil {
			g.logger.Warn(logModule, "Shop profile fetch failed", map[string]interface{}{"user_id": session.UserID, "error": err.Error()})
		}
		for _, fn := range listeners {
			fn(cloneShop(current))
		}
	}()
}

func (g *SessionGate) fetchShop(ctx context.Context, session Session) (shop *ShopProfile, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("shop fetch panicked: %v", r)
		}
	}()
	return g.shops.FetchShop(ctx, session)
}

// ScheduleRedirect navigates to target after delay unless cancelled or the
// gate is closed first.
func (g *SessionGate) ScheduleRedirect(target view.View, delay time.Duration) (cancel func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return func() {}
	}

	g.nextTimer++
	id := g.nextTimer
	g.timers[id] = time.AfterFunc(delay, func() {
		g.mu.Lock()
		_, pending := g.timers[id]
		delete(g.timers, id)
		closed := g.closed
		g.mu.Unlock()
		if pending && !closed {
			g.router.Navigate(target)
		}
	})

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if t, ok := g.timers[id]; ok {
			t.Stop()
			delete(g.timers, id)
		}
	}
}

// OnShopChange registers fn to be called whenever the held profile changes.
func (g *SessionGate) OnShopChange(fn func(*ShopProfile)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shopChanged = append(g.shopChanged, fn)
}

// Close releases the auth subscription exactly once, stops pending redirects
// and waits for in-flight profile fetches to return.
func (g *SessionGate) Close() {
	g.closeOnce.Do(func() {
		g.mu.Lock()
		g.closed = true
		unsubscribe := g.unsubscribe
		g.unsubscribe = nil
		for id, t := range g.timers {
			t.Stop()
			delete(g.timers, id)
		}
		g.mu.Unlock()

		g.cancel()
		if unsubscribe != nil {
			unsubscribe()
		}
		g.wg.Wait()
	})
}

func (g *SessionGate) Session() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	s := *g.session
	return &s
}

func (g *SessionGate) Shop() *ShopProfile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cloneShop(g.shop)
}

func (g *SessionGate) View() view.View {
	return g.router.Current()
}

func (g *SessionGate) Router() *view.Router {
	return g.router
}

func cloneShop(p *ShopProfile) *ShopProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.NotificationEmails = append([]string(nil), p.NotificationEmails...)
	return &c
}
