// Command watch prints the session updates a playground server pushes over
// its websocket. Without -token it starts a new session and prints its token.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

type pushMessage struct {
	Type      string `json:"type"`
	Event     string `json:"event"`
	SessionID string `json:"session_id"`
	Snapshot  *struct {
		SelectedModel string `json:"selected_model"`
		ViewMode      string `json:"view_mode"`
		Draft         struct {
			UserPrompt string `json:"user_prompt"`
		} `json:"draft"`
		Entries []struct {
			Index    int `json:"index"`
			Response struct {
				ModelName    string `json:"model_name"`
				ResponseText string `json:"response_text"`
				TokenCount   int    `json:"token_count"`
			} `json:"response"`
		} `json:"entries"`
		Engage struct {
			Level     int               `json:"level"`
			Exchanges []json.RawMessage `json:"exchanges"`
		} `json:"engage"`
	} `json:"snapshot"`
}

func startSession(baseURL string) (string, error) {
	resp, err := http.Post(baseURL+"/api/v1/sessions", "application/json", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create session: status %d", resp.StatusCode)
	}

	var created struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	color.Cyan("session %s", created.SessionID)
	fmt.Printf("token: %s\n", created.Token)
	return created.Token, nil
}

func render(m pushMessage) {
	switch {
	case m.Type == "session_ended":
		color.Red("session %s ended", m.SessionID)
	case m.Snapshot == nil:
		fmt.Printf("%s\n", m.Type)
	default:
		snap := m.Snapshot
		event := m.Event
		if event == "" {
			event = "connected"
		}
		color.Yellow("[%s] model=%s view=%s responses=%d engage_level=%d engage_exchanges=%d",
			event, snap.SelectedModel, snap.ViewMode, len(snap.Entries), snap.Engage.Level, len(snap.Engage.Exchanges))
		if event == "response_added" && len(snap.Entries) > 0 {
			last := snap.Entries[len(snap.Entries)-1]
			color.Green("#%d %s (%d tokens)", last.Index, last.Response.ModelName, last.Response.TokenCount)
			fmt.Println(last.Response.ResponseText)
		}
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "playground server")
	token := flag.String("token", "", "session token; a new session is started when empty")
	flag.Parse()

	if *token == "" {
		t, err := startSession(*baseURL)
		if err != nil {
			log.Fatalf("Failed to start session: %v", err)
		}
		*token = t
	}

	wsURL := "ws" + strings.TrimPrefix(*baseURL, "http") + "/ws?token=" + url.QueryEscape(*token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}
	defer conn.Close()

	// Set up a signal handler to gracefully shut down on interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down...")
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		os.Exit(0)
	}()

	for {
		var m pushMessage
		if err := conn.ReadJSON(&m); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Println("Error reading message:", err)
			}
			return
		}
		render(m)
	}
}
