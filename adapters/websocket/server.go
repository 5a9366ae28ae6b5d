package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
	"github.com/satriahrh/cocoa-fruit/playground/usecase"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

// SessionLookup finds a live session.
type SessionLookup interface {
	Get(id string) (*usecase.Orchestrator, bool)
}

// Message is what a UI client receives: the session state after an event.
type Message struct {
	Type      string                  `json:"type"`
	Event     domain.SessionEventKind `json:"event,omitempty"`
	SessionID string                  `json:"session_id"`
	Timestamp time.Time               `json:"timestamp"`
	Snapshot  *domain.SessionSnapshot `json:"snapshot,omitempty"`
}

const (
	MessageSnapshot = "snapshot"
	MessageEnded    = "session_ended"
)

type Server struct {
	upgrader      websocket.Upgrader
	sessions      SessionLookup
	messageBroker domain.MessageBroker
	hub           *Hub
}

func NewServer(sessions SessionLookup, messageBroker domain.MessageBroker, allowedOrigins []string) *Server {
	return &Server{
		upgrader:      websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		sessions:      sessions,
		messageBroker: messageBroker,
		hub:           NewHub(),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

func (s *Server) GetHub() *Hub {
	return s.hub
}

// Listen pushes a fresh snapshot to the clients of a session after each of
// its events, until ctx is done.
func (s *Server) Listen(ctx context.Context) error {
	messageChan, err := s.messageBroker.Subscribe(ctx, domain.SessionTopic, "")
	if err != nil {
		return err
	}

	log.WithCtx(ctx).Info("websocket server listening to session events")
	go func() {
		for msg := range messageChan {
			s.dispatch(ctx, msg)
		}
		log.WithCtx(ctx).Info("session event listener stopped")
	}()
	return nil
}

func (s *Server) dispatch(ctx context.Context, msg domain.Message) {
	var event domain.SessionEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.WithCtx(ctx).Error("failed to unmarshal session event", zap.Error(err))
		return
	}
	ctx = log.WithSession(ctx, event.SessionID)

	if s.hub.SessionClientCount(event.SessionID) == 0 {
		return
	}

	if event.Kind == domain.EventSessionEnded {
		s.push(ctx, Message{Type: MessageEnded, Event: event.Kind, SessionID: event.SessionID, Timestamp: event.At})
		s.hub.CloseSession(event.SessionID)
		return
	}

	o, ok := s.sessions.Get(event.SessionID)
	if !ok {
		return
	}
	snap := o.Snapshot()
	s.push(ctx, Message{Type: MessageSnapshot, Event: event.Kind, SessionID: event.SessionID, Timestamp: event.At, Snapshot: &snap})
}

func (s *Server) push(ctx context.Context, m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		log.WithCtx(ctx).Error("failed to marshal websocket message", zap.Error(err))
		return
	}
	sent := s.hub.SendToSession(m.SessionID, data)
	log.WithCtx(ctx).Debug("pushed to websocket clients", zap.String("type", m.Type), zap.Int("clients", sent))
}
