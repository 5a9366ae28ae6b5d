package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/satriahrh/cocoa-fruit/playground/usecase"
)

// Handler serves /ws. It expects a middleware to have stored the session
// under "session", and sends its snapshot right after the upgrade.
func (s *Server) Handler(c echo.Context) error {
	o, ok := c.Get("session").(*usecase.Orchestrator)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(conn, o.SessionID())
	s.hub.Register(client)
	defer s.hub.Unregister(client)

	snap := o.Snapshot()
	first, err := json.Marshal(Message{Type: MessageSnapshot, SessionID: o.SessionID(), Timestamp: time.Now(), Snapshot: &snap})
	if err != nil {
		return err
	}
	_ = client.SendMessage(first)

	client.Run()

	// Wait for the client context to be done (connection closed)
	<-client.Context().Done()
	return nil
}
