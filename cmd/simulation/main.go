package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const baseURL = "http://localhost:3000/api/chat/v1"

// Simplified DTOs for the script
type createSessionResponse struct {
	Data struct {
		Id string `json:"id"`
	} `json:"data"`
}

type sendChatRequest struct {
	ChatSessionId string `json:"chat_session_id"`
	Chat          string `json:"chat"`
}

type streamEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Usage   *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
}

func main() {
	fmt.Println("=== Perfume Recommendation Simulation Client ===")

	sessionId := createSession()
	fmt.Printf("Session created: %s\n\n", sessionId)

	// A typical interview-then-search conversation
	turns := []string{
		"Hi there!",
		"I'm looking for a perfume as a gift",
		"It's for my girlfriend, she likes sweet and cozy scents",
		"She wears it mostly in winter, on dates",
		"yes",
	}

	for i, turn := range turns {
		fmt.Printf("--- Turn %d ---\n", i+1)
		fmt.Printf("USER: %s\n", turn)
		sendTurn(sessionId, turn)
		fmt.Println()
		time.Sleep(500 * time.Millisecond)
	}
}

func createSession() string {
	payload := []byte(`{"title": "Simulation run"}`)
	resp, err := http.Post(baseURL+"/session", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	defer resp.Body.Close()

	var res createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		log.Fatalf("Failed to decode session response: %v", err)
	}
	return res.Data.Id
}

func sendTurn(sessionId, chat string) {
	payload, _ := json.Marshal(sendChatRequest{ChatSessionId: sessionId, Chat: chat})
	resp, err := http.Post(baseURL+"/stream", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		log.Fatalf("Failed to send chat: %v", err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 256*1024), 256*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			continue
		}

		switch ev.Type {
		case "log":
			fmt.Printf("  [log] %s\n", ev.Content)
		case "answer":
			fmt.Printf("BOT: %s\n", ev.Content)
			if ev.Usage != nil {
				fmt.Printf("  [usage] in=%d out=%d\n", ev.Usage.InputTokens, ev.Usage.OutputTokens)
			}
		case "error":
			fmt.Printf("  [error] %s\n", ev.Content)
		}
	}
}
