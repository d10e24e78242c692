package shell

import (
	"sync"

	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/view"
)

// Instance is one client's shell: its router, session gate and the gates
// that hang off it, plus UI state that lives only as long as the instance.
type Instance struct {
	ID      string
	Router  *view.Router
	Gate    *SessionGate
	Usage   *UsageGate
	Billing *BillingActions

	mu             sync.Mutex
	mobileMenuOpen bool
	stopMenuReset  func()
	closeOnce      sync.Once
}

// NewInstance wires a router and gate around the given collaborators. The
// caller still has to Mount the gate.
func NewInstance(id string, initial view.View, auth AuthCollaborator, shops ShopCollaborator, billing BillingCollaborator, log logger.ILogger) *Instance {
	router := view.NewRouter(initial)
	gate := NewSessionGate(auth, shops, router, log)
	inst := &Instance{
		ID:      id,
		Router:  router,
		Gate:    gate,
		Usage:   NewUsageGate(gate, billing, log),
		Billing: NewBillingActions(gate, billing, log),
	}
	// any view change closes the mobile menu
	inst.stopMenuReset = router.OnChange(func(_, _ view.View) { inst.SetMobileMenu(false) })
	return inst
}

func (i *Instance) MobileMenuOpen() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.mobileMenuOpen
}

func (i *Instance) SetMobileMenu(open bool) {
	i.mu.Lock()
	i.mobileMenuOpen = open
	i.mu.Unlock()
}

func (i *Instance) Close() {
	i.closeOnce.Do(func() {
		i.stopMenuReset()
		i.Gate.Close()
	})
}
