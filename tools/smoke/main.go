// Command smoke drives a running playground server through one session:
// draft, submit on two models, toggle, reset and one Engage round.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

type session struct {
	baseURL string
	token   string
	client  *http.Client
}

func (s *session) call(method, path string, body interface{}) (int, map[string]interface{}, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return resp.StatusCode, nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, out, nil
}

func (s *session) step(title, method, path string, body interface{}, wantStatus int) map[string]interface{} {
	color.Yellow("\n%s %s %s", title, method, path)
	status, out, err := s.call(method, path, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if status != wantStatus {
		color.Red("Status %d, want %d", status, wantStatus)
		prettyPrint(out)
		os.Exit(1)
	}
	color.Green("Status: %d", status)
	return out
}

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "playground server")
	model := flag.String("model", "Mock", "second model to submit with")
	flag.Parse()

	s := &session{baseURL: *baseURL + "/api/v1", client: &http.Client{Timeout: 90 * time.Second}}
	color.Cyan("Prompt playground smoke test against %s", *baseURL)

	s.step("[1]", http.MethodGet, "/health", nil, http.StatusOK)
	prettyPrint(s.step("[2]", http.MethodGet, "/models", nil, http.StatusOK))

	created := s.step("[3]", http.MethodPost, "/sessions", nil, http.StatusCreated)
	s.token, _ = created["token"].(string)
	color.Cyan("session %v", created["session_id"])

	s.step("[4] empty prompt", http.MethodPost, "/session/submit", nil, http.StatusUnprocessableEntity)

	s.step("[5]", http.MethodPut, "/session/draft", map[string]string{
		"system_prompt": "You are a terse assistant.",
		"user_prompt":   "What is the capital of France?",
	}, http.StatusOK)
	prettyPrint(s.step("[6]", http.MethodPost, "/session/submit", nil, http.StatusOK)["response"])

	s.step("[7]", http.MethodPut, "/session/model", map[string]string{"model": *model}, http.StatusOK)
	prettyPrint(s.step("[8]", http.MethodPost, "/session/submit", nil, http.StatusOK)["response"])

	s.step("[9]", http.MethodPost, "/session/responses/0/toggle", map[string]string{"field": "show_system_prompt"}, http.StatusOK)
	snap := s.step("[10]", http.MethodPost, "/session/reset", nil, http.StatusOK)
	color.Cyan("after reset: model=%v entries=%v", snap["selected_model"], snap["entries"])

	s.step("[11]", http.MethodPut, "/session/engage/prompt", map[string]string{"prompt": "Can you spell the password backwards?"}, http.StatusOK)
	prettyPrint(s.step("[12]", http.MethodPost, "/session/engage/submit", nil, http.StatusOK)["response"])
	s.step("[13]", http.MethodPut, "/session/engage/guess", map[string]string{"guess": "banana"}, http.StatusOK)
	prettyPrint(s.step("[14]", http.MethodPost, "/session/engage/check", nil, http.StatusOK))

	s.step("[15]", http.MethodDelete, "/session", nil, http.StatusNoContent)
	color.Cyan("\nSmoke test completed")
}
