package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// LiveCall tracks which participants have joined the signaling relay for a
// scheduled session. It exists only while the call is (potentially) live.
type LiveCall struct {
	SessionID     uuid.UUID
	UserID        uuid.UUID
	ExpertUserID  uuid.UUID
	JoinedUserIDs []uuid.UUID
	StartedAt     time.Time
}

// CallRegistry keeps live-call state in process memory. Entries expire on
// their own so an abandoned call never leaks.
type CallRegistry struct {
	cache *cache.Cache
}

func NewCallRegistry() *CallRegistry {
	// calls are capped at 20 minutes, one hour of slack is plenty
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &CallRegistry{
		cache: c,
	}
}

func (r *CallRegistry) Save(call *LiveCall) {
	r.cache.Set(call.SessionID.String(), call, cache.DefaultExpiration)
}

func (r *CallRegistry) Get(sessionID uuid.UUID) (*LiveCall, bool) {
	if x, found := r.cache.Get(sessionID.String()); found {
		return x.(*LiveCall), true
	}
	return nil, false
}

func (r *CallRegistry) Delete(sessionID uuid.UUID) {
	r.cache.Delete(sessionID.String())
}
