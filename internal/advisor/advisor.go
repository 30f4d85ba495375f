// Package advisor adds short natural-language commentary to generated
// trade ideas. It is optional; when no API key is configured, ideas pass
// through untouched.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"stockdeck/internal/logging"
	"stockdeck/internal/models"
)

const systemPrompt = `You are a concise markets commentator embedded in a trading dashboard.
Given a symbol, its signal score, and a candidate strategy, write one or two sentences of
commentary for a retail trader. Mention the key risk. Never give financial advice language
like "you should"; describe the setup instead. Plain text only.`

// LLMClient is the completion interface the advisor needs.
type LLMClient interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIClient implements LLMClient over the OpenAI chat API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI-backed client.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CompleteWithSystem sends a system and user prompt and returns the reply.
func (c *OpenAIClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

// Advisor annotates ideas with commentary.
type Advisor struct {
	llm    LLMClient
	logger zerolog.Logger
}

// New creates an advisor. A nil llm produces a disabled advisor whose
// Annotate is a no-op.
func New(llm LLMClient, logger zerolog.Logger) *Advisor {
	return &Advisor{
		llm:    llm,
		logger: logging.WithComponent(logger, "advisor"),
	}
}

// Enabled reports whether commentary generation is active.
func (a *Advisor) Enabled() bool {
	return a != nil && a.llm != nil
}

// Annotate fills the Commentary field of the top idea. Commentary is
// best-effort: failures are logged and the ideas returned unchanged.
func (a *Advisor) Annotate(ctx context.Context, symbol string, score *models.SignalScore, ideas []models.StrategyIdea) []models.StrategyIdea {
	if !a.Enabled() || len(ideas) == 0 {
		return ideas
	}

	top := &ideas[0]
	prompt := buildPrompt(symbol, score, top)

	text, err := a.llm.CompleteWithSystem(ctx, systemPrompt, prompt)
	if err != nil {
		a.logger.Warn().Err(err).Str("symbol", symbol).Msg("Commentary generation failed")
		return ideas
	}
	top.Commentary = strings.TrimSpace(text)
	return ideas
}

func buildPrompt(symbol string, score *models.SignalScore, idea *models.StrategyIdea) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s\n", symbol)
	if score != nil {
		fmt.Fprintf(&b, "Signal score: %.1f (%s)\n", score.Score, score.Recommendation)
		for name, v := range score.Components {
			fmt.Fprintf(&b, "  %s: %.1f\n", name, v)
		}
	}
	fmt.Fprintf(&b, "Strategy: %s (%s bias, confidence %.0f)\n", idea.Name, idea.Bias, idea.Confidence)
	fmt.Fprintf(&b, "Rationale: %s\n", idea.Rationale)
	return b.String()
}
