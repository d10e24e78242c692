package memory

import (
	"time"

	"simpliparts-be/internal/shell"

	"github.com/patrickmn/go-cache"
)

const (
	appSessionIdleTTL = 1 * time.Hour
	appSessionJanitor = 10 * time.Minute
)

// AppSessionRepository holds live shell instances. Touching an instance
// through Get extends its life; expiry or Delete closes it.
type AppSessionRepository struct {
	cache *cache.Cache
}

func NewAppSessionRepository() *AppSessionRepository {
	return newAppSessionRepository(appSessionIdleTTL, appSessionJanitor)
}

func newAppSessionRepository(ttl, cleanup time.Duration) *AppSessionRepository {
	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(_ string, v interface{}) {
		if inst, ok := v.(*shell.Instance); ok {
			inst.Close()
		}
	})
	return &AppSessionRepository{cache: c}
}

func (r *AppSessionRepository) Save(inst *shell.Instance) {
	r.cache.Set(inst.ID, inst, cache.DefaultExpiration)
}

func (r *AppSessionRepository) Get(id string) (*shell.Instance, bool) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	inst := x.(*shell.Instance)
	r.cache.Set(id, inst, cache.DefaultExpiration)
	return inst, true
}

func (r *AppSessionRepository) Delete(id string) bool {
	if _, found := r.cache.Get(id); !found {
		return false
	}
	r.cache.Delete(id)
	return true
}

func (r *AppSessionRepository) Count() int {
	return r.cache.ItemCount()
}

// Close disposes every instance still held.
func (r *AppSessionRepository) Close() {
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}
