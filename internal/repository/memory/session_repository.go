package memory

import (
	"time"

	"context-generator-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps per-browser sessions in process memory. Sessions
// expire after ttl without access and are never persisted.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *SessionRepository) Save(session entity.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

// Get returns a copy of the session and refreshes its expiry.
func (r *SessionRepository) Get(sessionID string) (entity.Session, bool) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return entity.Session{}, false
	}
	session := x.(entity.Session)
	r.cache.Set(sessionID, session, cache.DefaultExpiration)
	return session, true
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
