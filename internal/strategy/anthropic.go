package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/formcoach/trendwatch/internal/config"
	"github.com/formcoach/trendwatch/internal/models"
)

// ErrNoAPIKey means the Anthropic provider was constructed without
// credentials. Callers fall back to the template strategy.
var ErrNoAPIKey = errors.New("anthropic api key not configured")

// Provider turns a brief into a written content strategy.
type Provider interface {
	Generate(ctx context.Context, brief *models.Brief) (string, error)
}

// AnthropicProvider calls the Messages API, non-streaming. A weekly
// batch job has no use for tokens arriving one at a time.
type AnthropicProvider struct {
	client    *resty.Client
	apiKey    string
	model     string
	maxTokens int
	log       *logrus.Entry
}

func NewAnthropicProvider(cfg *config.Config, logger *logrus.Logger) *AnthropicProvider {
	client := resty.New()
	client.SetBaseURL("https://api.anthropic.com")
	client.SetTimeout(120 * time.Second)

	return &AnthropicProvider{
		client:    client,
		apiKey:    cfg.AnthropicAPIKey,
		model:     cfg.AnthropicModel,
		maxTokens: cfg.MaxTokens,
		log:       logger.WithField("source", "anthropic"),
	}
}

func (p *AnthropicProvider) SetBaseURL(u string) {
	p.client.SetBaseURL(u)
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate builds the prompt from the brief and returns the model's
// strategy text.
func (p *AnthropicProvider) Generate(ctx context.Context, brief *models.Brief) (string, error) {
	if p.apiKey == "" {
		return "", ErrNoAPIKey
	}
	if p.model == "" {
		return "", errors.New("anthropic model not configured")
	}

	req := anthropicRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildPrompt(brief)},
		},
	}

	var result anthropicResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-API-Key", p.apiKey).
		SetHeader("Anthropic-Version", "2023-06-01").
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		if result.Error != nil {
			return "", fmt.Errorf("anthropic error %d: %s: %s",
				resp.StatusCode(), result.Error.Type, result.Error.Message)
		}
		return "", fmt.Errorf("anthropic error %d: %s", resp.StatusCode(), resp.String())
	}

	var text string
	for _, block := range result.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", errors.New("anthropic returned no text content")
	}

	p.log.WithField("stop_reason", result.StopReason).Debug("strategy generated")
	return text, nil
}
