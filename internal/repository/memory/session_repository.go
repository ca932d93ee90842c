package memory

import (
	"time"

	"catalog-assist-be/pkg/dialog"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live conversations in process memory with a
// TTL, so an idle dialog expires instead of leaking.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *SessionRepository) Save(session *dialog.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*dialog.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*dialog.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
