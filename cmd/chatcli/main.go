package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
)

type chatRequest struct {
	Message        string `json:"message"`
	ConversationId string `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	Reply          string `json:"reply"`
	ConversationId string `json:"conversation_id"`
	Intent         string `json:"intent"`
	Cached         bool   `json:"cached"`
	QuickActions   []struct {
		Label string `json:"label"`
		Icon  string `json:"icon"`
	} `json:"quick_actions"`
	Sources []string `json:"sources"`
}

// Interactive terminal client for the chat API. Streams tokens over SSE
// and keeps the conversation id across turns.
func main() {
	baseURL := flag.String("url", "http://localhost:3000", "API base URL")
	flag.Parse()

	token := os.Getenv("NEXTMIND_TOKEN")
	if token == "" {
		color.Yellow("NEXTMIND_TOKEN is not set, requests will be rejected")
	}

	bot := color.New(color.FgCyan)
	meta := color.New(color.FgHiBlack)
	prompt := color.New(color.FgGreen, color.Bold)

	color.Cyan("NEXTMIND — assistant BTP")
	meta.Println("Tape ta question, ou /quit pour sortir.")

	conversationId := ""
	stdin := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("toi> ")
		if !stdin.Scan() {
			break
		}
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		res, err := send(*baseURL, token, conversationId, line, bot)
		if err != nil {
			color.Red("erreur: %v", err)
			continue
		}
		conversationId = res.ConversationId

		if len(res.QuickActions) > 0 {
			var labels []string
			for _, a := range res.QuickActions {
				labels = append(labels, a.Icon+" "+a.Label)
			}
			meta.Println("actions: " + strings.Join(labels, " | "))
		}
		if len(res.Sources) > 0 {
			meta.Println("sources: " + strings.Join(res.Sources, ", "))
		}
	}
}

func send(baseURL, token, conversationId, message string, bot *color.Color) (*chatResponse, error) {
	payload, err := json.Marshal(chatRequest{Message: message, ConversationId: conversationId})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/chat/v1?stream=true", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var (
		event string
		data  []string
		final *chatResponse
	)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case line == "":
			body := strings.Join(data, "\n")
			switch event {
			case "token":
				bot.Print(body)
			case "done":
				var res chatResponse
				if err := json.Unmarshal([]byte(body), &res); err == nil {
					final = &res
				}
			case "error":
				fmt.Println()
				return nil, fmt.Errorf("%s", body)
			}
			event, data = "", nil
		}
	}
	fmt.Println()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if final == nil {
		return nil, fmt.Errorf("stream ended without final response")
	}
	return final, nil
}
