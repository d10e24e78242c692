package shell

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type fakeAuth struct {
	mu           sync.Mutex
	current      *Session
	currentErr   error
	subscribeErr error
	onChange     func(*Session)
	unsubscribed int32
	signInErr    error
	signOuts     int
	beforeLookup func()
}

func (f *fakeAuth) GetCurrentSession(ctx context.Context) (*Session, error) {
	if f.beforeLookup != nil {
		f.beforeLookup()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.currentErr
}

func (f *fakeAuth) Subscribe(onChange func(*Session)) (func(), error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.mu.Lock()
	f.onChange = onChange
	f.mu.Unlock()
	return func() { atomic.AddInt32(&f.unsubscribed, 1) }, nil
}

func (f *fakeAuth) emit(s *Session) {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func (f *fakeAuth) unsubscribeCount() int32 { return atomic.LoadInt32(&f.unsubscribed) }

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	s := &Session{AccessToken: "tok", UserID: "u-" + email, Email: email}
	f.emit(s)
	return s, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string, profile SignUpProfile) (*Session, error) {
	return f.SignInWithPassword(ctx, email, password)
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOuts++
	f.mu.Unlock()
	f.emit(nil)
	return nil
}

// fakeShops answers immediately unless a gate channel is registered for the
// user, in which case it waits for that channel to be closed.
type fakeShops struct {
	mu    sync.Mutex
	shops map[string]*ShopProfile
	errs  map[string]error
	gates map[string]chan struct{}
	calls int32
}

func newFakeShops() *fakeShops {
	return &fakeShops{
		shops: map[string]*ShopProfile{},
		errs:  map[string]error{},
		gates: map[string]chan struct{}{},
	}
}

func (f *fakeShops) FetchShop(ctx context.Context, s Session) (*ShopProfile, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	gate := f.gates[s.UserID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[s.UserID]; err != nil {
		return nil, err
	}
	return f.shops[s.UserID], nil
}

type fakeBilling struct {
	guard       UsageGuardResult
	guardErr    error
	checkoutURL string
	portalURL   string
	err         error
	guardCalls  int
}

func (f *fakeBilling) StartCheckout(ctx context.Context, s Session) (string, error) {
	return f.checkoutURL, f.err
}

func (f *fakeBilling) OpenBillingPortal(ctx context.Context, s Session) (string, error) {
	return f.portalURL, f.err
}

func (f *fakeBilling) GuardUsage(ctx context.Context, s Session) (UsageGuardResult, error) {
	f.guardCalls++
	return f.guard, f.guardErr
}

type fakeRecovery struct {
	requested []string
	err       error
}

func (f *fakeRecovery) RequestResetCode(ctx context.Context, email string) error {
	f.requested = append(f.requested, email)
	return f.err
}

func (f *fakeRecovery) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return f.err
}

var errBoom = errors.New("boom")

type staticSessions struct{ s *Session }

func (s staticSessions) Session() *Session { return s.s }
