package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

const defaultMaxTokens = 1024

type anthropicModel struct {
	client    *anthropic.Client
	model     anthropic.Model
	streaming bool
}

func newAnthropic(cfg AgentConfig, o options) *anthropicModel {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.Credential)}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}
	c := anthropic.NewClient(reqOpts...)
	model := anthropic.Model(cfg.ModelID)
	if cfg.ModelID == "" {
		model = DefaultAnthropicModel
	}
	return &anthropicModel{client: &c, model: model, streaming: cfg.Streaming}
}

func (m *anthropicModel) params(req Request) anthropic.MessageNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	p := anthropic.MessageNewParams{
		Model:     m.model,
		MaxTokens: int64(maxTokens),
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
	}
	if req.System != "" {
		p.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Stop) > 0 {
		p.StopSequences = req.Stop
	}
	return p
}

func (m *anthropicModel) Generate(ctx context.Context, req Request, onToken func(string)) (string, error) {
	if onToken == nil {
		onToken = func(string) {}
	}
	params := m.params(req)

	if !m.streaming {
		msg, err := m.client.Messages.New(ctx, params)
		if err != nil {
			return "", wrapAnthropic(err)
		}
		var b strings.Builder
		for _, block := range msg.Content {
			if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
				b.WriteString(tb.Text)
			}
		}
		text := b.String()
		if text != "" {
			onToken(text)
		}
		return text, nil
	}

	stream := m.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()
	var b strings.Builder
	for stream.Next() {
		event := stream.Current()
		if ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if d, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && d.Text != "" {
				b.WriteString(d.Text)
				onToken(d.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return b.String(), wrapAnthropic(err)
	}
	return b.String(), nil
}

func wrapAnthropic(err error) error {
	pe := &Error{Provider: ProviderAnthropic, Message: err.Error(), Err: err}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		pe.StatusCode = apiErr.StatusCode
		pe.Message = apiErrorMessage(apiErr.RawJSON(), apiErr.StatusCode)
	}
	return pe
}
