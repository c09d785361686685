package memory

import (
	"time"

	"scentence-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// StateRepository keeps per-session conversation state in process memory.
// State is reconstructable from persisted chat history, so eviction after
// idle expiry only costs a cold start, not data.
type StateRepository struct {
	cache *cache.Cache
}

func NewStateRepository() *StateRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &StateRepository{
		cache: c,
	}
}

func (r *StateRepository) Save(state *store.ConversationState) {
	r.cache.Set(state.SessionID, state, cache.DefaultExpiration)
}

func (r *StateRepository) Get(sessionID string) (*store.ConversationState, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.ConversationState), true
	}
	return nil, false
}

func (r *StateRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
