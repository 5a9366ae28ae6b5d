package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
	"github.com/satriahrh/cocoa-fruit/playground/usecase"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

// NewSessionFunc builds the orchestrator of a fresh session.
type NewSessionFunc func(sessionID string) *usecase.Orchestrator

// SessionRegistry keeps live sessions in memory. A session expires after ttl
// without activity; nothing survives a restart.
type SessionRegistry struct {
	sessions   *cache.Cache
	newSession NewSessionFunc
	broker     domain.MessageBroker

	endMu sync.Mutex
}

func NewSessionRegistry(ttl time.Duration, newSession NewSessionFunc, broker domain.MessageBroker) *SessionRegistry {
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}

	r := &SessionRegistry{
		sessions:   cache.New(ttl, cleanup),
		newSession: newSession,
		broker:     broker,
	}
	r.sessions.OnEvicted(r.onEvicted)
	return r
}

// Create starts a session with a fresh identity.
func (r *SessionRegistry) Create(ctx context.Context) *usecase.Orchestrator {
	id := uuid.NewString()
	o := r.newSession(id)
	r.sessions.SetDefault(id, o)

	log.WithCtx(log.WithSession(ctx, id)).Info("session started", zap.Int("live_sessions", r.sessions.ItemCount()))
	return o
}

// Get returns a live session and pushes its expiry back. A session ended
// concurrently stays ended.
func (r *SessionRegistry) Get(id string) (*usecase.Orchestrator, bool) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	o := v.(*usecase.Orchestrator)
	if err := r.sessions.Replace(id, o, cache.DefaultExpiration); err != nil {
		return nil, false
	}
	return o, true
}

// End destroys a session. It reports whether the session was live.
func (r *SessionRegistry) End(id string) bool {
	r.endMu.Lock()
	defer r.endMu.Unlock()

	if _, ok := r.sessions.Get(id); !ok {
		return false
	}
	r.sessions.Delete(id)
	return true
}

func (r *SessionRegistry) Count() int {
	return r.sessions.ItemCount()
}

func (r *SessionRegistry) onEvicted(id string, _ interface{}) {
	ctx := log.WithSession(context.Background(), id)
	log.WithCtx(ctx).Info("session ended")

	if r.broker == nil {
		return
	}
	payload, err := json.Marshal(domain.SessionEvent{SessionID: id, Kind: domain.EventSessionEnded, At: time.Now()})
	if err != nil {
		return
	}
	if err := r.broker.Publish(ctx, domain.SessionTopic, id, payload); err != nil {
		log.WithCtx(ctx).Warn("publish session end", zap.Error(err))
	}
}
