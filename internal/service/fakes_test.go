package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/pkg/mailer"
	"simpliparts-be/internal/repository/contract"
	"simpliparts-be/internal/repository/specification"
	"simpliparts-be/internal/repository/unitofwork"
	"simpliparts-be/pkg/authbus"
	"simpliparts-be/pkg/events"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// memStore backs every fake repository. Transactions are not simulated.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*entity.User
	profiles      map[uuid.UUID]*entity.Profile
	shops         map[uuid.UUID]*entity.Shop
	integrations  map[string]*entity.ShopIntegration
	feedback      []*entity.Feedback
	waitlist      map[string]*entity.WaitlistEntry
	waitlistErr   error
	transactions  map[string]*entity.BillingTransaction
	refreshTokens map[string]*entity.UserRefreshToken
	resetCodes    []*entity.ResetCode
	providers     []*entity.UserProvider
	commits       int
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]*entity.User{},
		profiles:      map[uuid.UUID]*entity.Profile{},
		shops:         map[uuid.UUID]*entity.Shop{},
		integrations:  map[string]*entity.ShopIntegration{},
		waitlist:      map[string]*entity.WaitlistEntry{},
		transactions:  map[string]*entity.BillingTransaction{},
		refreshTokens: map[string]*entity.UserRefreshToken{},
	}
}

func (s *memStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUow{s: s}
}

// seedUser stores a user with a shop and the profile linking them.
func (s *memStore) seedUser(email string, shop *entity.Shop) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &entity.User{Id: uuid.New(), Email: email, FirstName: "Sam", LastName: "Lee", Status: entity.UserStatusActive}
	if shop.Id == uuid.Nil {
		shop.Id = uuid.New()
	}
	s.users[u.Id] = u
	s.shops[shop.Id] = shop
	s.profiles[u.Id] = &entity.Profile{UserId: u.Id, ShopId: shop.Id}
	return u
}

type memUow struct {
	s *memStore
}

func (u *memUow) Begin(ctx context.Context) error { return nil }
func (u *memUow) Commit() error {
	u.s.mu.Lock()
	u.s.commits++
	u.s.mu.Unlock()
	return nil
}
func (u *memUow) Rollback() error { return nil }

func (u *memUow) UserRepository() contract.UserRepository               { return memUsers{u.s} }
func (u *memUow) ShopRepository() contract.ShopRepository               { return memShops{u.s} }
func (u *memUow) IntegrationRepository() contract.IntegrationRepository { return memIntegrations{u.s} }
func (u *memUow) FeedbackRepository() contract.FeedbackRepository       { return memFeedback{u.s} }
func (u *memUow) WaitlistRepository() contract.WaitlistRepository       { return memWaitlist{u.s} }
func (u *memUow) BillingRepository() contract.BillingRepository         { return memBilling{u.s} }

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.Id] = user
	return nil
}

func (r memUsers) Update(ctx context.Context, user *entity.User) error { return r.Create(ctx, user) }

func (r memUsers) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if matchUser(u, specs) {
			return u, nil
		}
	}
	return nil, nil
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByEmail:
			if u.Email != strings.ToLower(strings.TrimSpace(v.Email)) {
				return false
			}
		case specification.ByID:
			if u.Id != v.ID {
				return false
			}
		}
	}
	return true
}

func (r memUsers) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if matchUser(u, specs) {
			n++
		}
	}
	return n, nil
}

func (r memUsers) UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[userId].PasswordHash = &hash
	return nil
}

func (r memUsers) CreateProfile(ctx context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[p.UserId] = p
	return nil
}

func (r memUsers) FindProfile(ctx context.Context, userId uuid.UUID) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.profiles[userId], nil
}

func (r memUsers) CreateRefreshToken(ctx context.Context, t *entity.UserRefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.refreshTokens[t.TokenHash] = t
	return nil
}

func (r memUsers) FindRefreshToken(ctx context.Context, specs ...specification.Specification) (*entity.UserRefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range specs {
		if v, ok := sp.(specification.ByTokenHash); ok {
			return r.s.refreshTokens[v.Hash], nil
		}
	}
	return nil, nil
}

func (r memUsers) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.refreshTokens[tokenHash]; ok {
		t.Revoked = true
	}
	return nil
}

func (r memUsers) CreateResetCode(ctx context.Context, c *entity.ResetCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.resetCodes = append(r.s.resetCodes, c)
	return nil
}

func (r memUsers) FindResetCode(ctx context.Context, specs ...specification.Specification) (*entity.ResetCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
next:
	for _, c := range r.s.resetCodes {
		for _, sp := range specs {
			switch v := sp.(type) {
			case specification.ByResetCode:
				if c.Email != strings.ToLower(v.Email) || c.Code != v.Code {
					continue next
				}
			case specification.Unused:
				if c.Used {
					continue next
				}
			case specification.NotExpired:
				if !c.ExpiresAt.After(v.Now) {
					continue next
				}
			}
		}
		return c, nil
	}
	return nil, nil
}

func (r memUsers) MarkResetCodeUsed(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.resetCodes {
		if c.Id == id {
			c.Used = true
		}
	}
	return nil
}

func (r memUsers) FindUserProvider(ctx context.Context, specs ...specification.Specification) (*entity.UserProvider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range specs {
		if bp, ok := sp.(specification.ByProvider); ok {
			for _, p := range r.s.providers {
				if p.ProviderName == bp.Name && p.ProviderUserId == bp.ProviderUserID {
					return p, nil
				}
			}
		}
	}
	return nil, nil
}

func (r memUsers) SaveUserProvider(ctx context.Context, p *entity.UserProvider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.providers = append(r.s.providers, p)
	return nil
}

type memShops struct{ s *memStore }

func (r memShops) Create(ctx context.Context, shop *entity.Shop) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.shops[shop.Id] = shop
	return nil
}

func (r memShops) Update(ctx context.Context, shop *entity.Shop) error { return r.Create(ctx, shop) }

func (r memShops) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range specs {
		if v, ok := sp.(specification.ByID); ok {
			if shop, found := r.s.shops[v.ID]; found {
				cp := *shop
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r memShops) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.shops[id].Name = name
	return nil
}

func (r memShops) UpdateNotificationEmails(ctx context.Context, id uuid.UUID, emails []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.shops[id].NotificationEmails = emails
	return nil
}

func (r memShops) UpdateSubscription(ctx context.Context, id uuid.UUID, status entity.SubscriptionStatus, periodEnd *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.shops[id].SubscriptionStatus = status
	r.s.shops[id].SubscriptionCurrentPeriodEnd = periodEnd
	return nil
}

func (r memShops) SetBillingCustomer(ctx context.Context, id uuid.UUID, customerId string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.shops[id].BillingCustomerId = &customerId
	return nil
}

func (r memShops) ConsumeFreeCredit(ctx context.Context, id uuid.UUID) (int, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shop := r.s.shops[id]
	if shop.FreeCreditsRemaining <= 0 {
		return 0, false, nil
	}
	shop.FreeCreditsRemaining--
	return shop.FreeCreditsRemaining, true, nil
}

type memIntegrations struct{ s *memStore }

func integrationKey(shopId uuid.UUID, p entity.IntegrationProvider) string {
	return shopId.String() + "/" + string(p)
}

func (r memIntegrations) Upsert(ctx context.Context, i *entity.ShopIntegration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.integrations[integrationKey(i.ShopId, i.Provider)] = i
	return nil
}

func (r memIntegrations) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ShopIntegration, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r memIntegrations) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ShopIntegration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ShopIntegration
	for _, i := range r.s.integrations {
		ok := true
		for _, sp := range specs {
			if v, isShop := sp.(specification.ByShopID); isShop && v.ShopID != i.ShopId {
				ok = false
			}
		}
		if ok {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r memIntegrations) Delete(ctx context.Context, shopId uuid.UUID, p entity.IntegrationProvider) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := integrationKey(shopId, p)
	if _, ok := r.s.integrations[key]; !ok {
		return false, nil
	}
	delete(r.s.integrations, key)
	return true, nil
}

type memFeedback struct{ s *memStore }

func (r memFeedback) Create(ctx context.Context, f *entity.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.feedback = append(r.s.feedback, f)
	return nil
}

func (r memFeedback) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*entity.Feedback(nil), r.s.feedback...), nil
}

type memWaitlist struct{ s *memStore }

func (r memWaitlist) Create(ctx context.Context, e *entity.WaitlistEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.waitlistErr != nil {
		return r.s.waitlistErr
	}
	r.s.waitlist[e.Email] = e
	return nil
}

func (r memWaitlist) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.waitlist)), nil
}

type memBilling struct{ s *memStore }

func (r memBilling) CreateTransaction(ctx context.Context, t *entity.BillingTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transactions[t.OrderId] = t
	return nil
}

func (r memBilling) FindTransaction(ctx context.Context, specs ...specification.Specification) (*entity.BillingTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	newest := false
	for _, sp := range specs {
		if _, ok := sp.(specification.NewestFirst); ok {
			newest = true
		}
	}
	var best *entity.BillingTransaction
	for _, t := range r.s.transactions {
		if !matchTransaction(t, specs) {
			continue
		}
		if best == nil || (newest && t.CreatedAt.After(best.CreatedAt)) {
			best = t
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func matchTransaction(t *entity.BillingTransaction, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByOrderID:
			if t.OrderId != v.OrderID {
				return false
			}
		case specification.ByShopID:
			if t.ShopId != v.ShopID {
				return false
			}
		case specification.ByPaymentStatus:
			if string(t.Status) != v.Status {
				return false
			}
		}
	}
	return true
}

func (r memBilling) UpdateTransactionStatus(ctx context.Context, orderId string, status entity.PaymentStatus, paymentType string, raw map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.transactions[orderId]
	t.Status = status
	t.PaymentType = paymentType
	t.Raw = raw
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes map[string][]authbus.Change
}

func (n *recordingNotifier) Publish(id string, c authbus.Change) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.changes == nil {
		n.changes = map[string][]authbus.Change{}
	}
	n.changes[id] = append(n.changes[id], c)
	return nil
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	codes chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: make(chan string, 4)}
}

func (m *fakeMailer) SendResetCode(to, code string) error {
	m.codes <- code
	return nil
}

func (m *fakeMailer) SendContactMessage(to string, msg mailer.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: []string{to}, subject: msg.Name, body: msg.Message})
	return nil
}

func (m *fakeMailer) SendNotification(to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeSnap struct {
	lastReq *snap.Request
	err     *midtrans.Error
}

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &snap.Response{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}, nil
}
