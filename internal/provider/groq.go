package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultGroqModel = "llama-3.1-8b-instant"
	groqBaseURL      = "https://api.groq.com/openai/v1"
)

// groqModel speaks the OpenAI-compatible chat completions protocol.
type groqModel struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	model     string
	streaming bool
}

func newGroq(cfg AgentConfig, o options) *groqModel {
	m := &groqModel{
		client:    o.httpClient,
		baseURL:   o.baseURL,
		apiKey:    cfg.Credential,
		model:     cfg.ModelID,
		streaming: cfg.Streaming,
	}
	if m.client == nil {
		m.client = &http.Client{Timeout: 120 * time.Second}
	}
	if m.baseURL == "" {
		m.baseURL = groqBaseURL
	}
	if m.model == "" {
		m.model = DefaultGroqModel
	}
	return m
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	Stop      []string      `json:"stop,omitempty"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
		Delta   chatMessage `json:"delta"`
	} `json:"choices"`
	Error *chatError `json:"error,omitempty"`
}

// chatError is an error object delivered with a 200 status, either as the
// whole body or as one stream event.
type chatError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

func (e *chatError) asError() *Error {
	pe := &Error{Provider: ProviderGroq, Message: e.Message}
	if pe.Message == "" {
		pe.Message = "provider returned an error"
	}
	if e.Type == "rate_limit_exceeded" || e.Code == "rate_limit_exceeded" {
		pe.StatusCode = http.StatusTooManyRequests
	}
	return pe
}

func (m *groqModel) Generate(ctx context.Context, req Request, onToken func(string)) (string, error) {
	if onToken == nil {
		onToken = func(string) {}
	}
	body := chatRequest{Model: m.model, Stream: m.streaming, Stop: req.Stop, MaxTokens: req.MaxTokens}
	if body.MaxTokens <= 0 {
		body.MaxTokens = defaultMaxTokens
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	if m.streaming {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", &Error{Provider: ProviderGroq, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return "", &Error{Provider: ProviderGroq, StatusCode: resp.StatusCode, Message: apiErrorMessage(string(raw), resp.StatusCode)}
	}

	if !m.streaming {
		var cr chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
			return "", &Error{Provider: ProviderGroq, Message: fmt.Sprintf("decode response: %v", err), Err: err}
		}
		if cr.Error != nil {
			return "", cr.Error.asError()
		}
		if len(cr.Choices) == 0 {
			return "", nil
		}
		text := cr.Choices[0].Message.Content
		if text != "" {
			onToken(text)
		}
		return text, nil
	}
	return readChatStream(resp.Body, onToken)
}

// readChatStream consumes "data: {...}" server-sent events until [DONE] or EOF.
func readChatStream(r io.Reader, onToken func(string)) (string, error) {
	var b strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			break
		}
		var chunk chatResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return b.String(), &Error{Provider: ProviderGroq, Message: fmt.Sprintf("decode stream chunk: %v", err), Err: err}
		}
		if chunk.Error != nil {
			return b.String(), chunk.Error.asError()
		}
		for _, c := range chunk.Choices {
			if c.Delta.Content != "" {
				b.WriteString(c.Delta.Content)
				onToken(c.Delta.Content)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return b.String(), &Error{Provider: ProviderGroq, Message: err.Error(), Err: err}
	}
	return b.String(), nil
}

// apiErrorMessage pulls error.message out of a JSON error body, falling back to
// the HTTP status text.
func apiErrorMessage(raw string, status int) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	if s := http.StatusText(status); s != "" {
		return s
	}
	return "unexpected response"
}
