// Command smoke walks a running server through register, login and a short chat.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var client = &http.Client{Timeout: 30 * time.Second}

func baseURL() string {
	if v := os.Getenv("SMOKE_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8000/api"
}

func sendRequest(method, path, token string, body interface{}) (int, *envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL()+path, bodyReader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, &env, nil
}

func step(title string, expect int, method, path, token string, body, out interface{}) {
	color.Yellow("\n%s", title)
	status, env, err := sendRequest(method, path, token, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if status != expect {
		color.Red("Status: %d (want %d) %s", status, expect, env.Message)
		os.Exit(1)
	}
	color.Green("Status: %d %s", status, env.Message)
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			color.Red("Bad payload: %v", err)
			os.Exit(1)
		}
	}
}

func main() {
	color.Cyan("Starting chat API smoke test against %s", baseURL())

	username := "smoke_" + uuid.NewString()[:8]
	password := "smoke-password"

	step("1. Register", http.StatusCreated, http.MethodPost, "/users/register", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": password,
	}, nil)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	step("2. Login", http.StatusOK, http.MethodPost, "/users/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &login)

	var reply struct {
		SessionId string `json:"session_id"`
		Content   string `json:"content"`
	}
	step("3. First message (opens a session)", http.StatusOK, http.MethodPost, "/chat/send", login.AccessToken, map[string]string{
		"content": "Hello",
	}, &reply)
	fmt.Printf("Counselor: %s\n", reply.Content)

	step("4. Follow-up in the same session", http.StatusOK, http.MethodPost, "/chat/send", login.AccessToken, map[string]string{
		"session_id": reply.SessionId,
		"content":    "How are you?",
	}, &reply)
	fmt.Printf("Counselor: %s\n", reply.Content)

	var history struct {
		Messages []json.RawMessage `json:"messages"`
	}
	step("5. History", http.StatusOK, http.MethodGet, "/chat/sessions/"+reply.SessionId+"/messages", login.AccessToken, nil, &history)
	if len(history.Messages) != 4 {
		color.Red("Expected 4 messages, got %d", len(history.Messages))
		os.Exit(1)
	}

	step("6. Delete session", http.StatusOK, http.MethodDelete, "/chat/sessions/"+reply.SessionId, login.AccessToken, nil, nil)
	step("7. Delete again", http.StatusNotFound, http.MethodDelete, "/chat/sessions/"+reply.SessionId, login.AccessToken, nil, nil)

	color.Cyan("\nSmoke test passed")
}
