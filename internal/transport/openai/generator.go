package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/toolsel/internal/domain"
	"github.com/kailas-cloud/toolsel/internal/metrics"
)

const (
	modeText     = "text"
	modeFunction = "function"
)

// Generator is a chat completion provider using the OpenAI-compatible API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	user        string
	provider    string
	logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible text generation provider.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{
		client:      newClient(cfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		user:        cfg.User,
		provider:    cfg.Provider,
		logger:      loggerOrNop(cfg.Logger),
	}
}

// Complete implements domain.Generator in free-text mode.
func (g *Generator) Complete(ctx context.Context, messages []domain.Message) (domain.Completion, error) {
	resp, err := g.create(ctx, modeText, g.request(messages))
	if err != nil {
		return domain.Completion{}, err
	}
	if len(resp.Choices) == 0 {
		g.fail(modeText)
		return domain.Completion{}, fmt.Errorf("empty completion: %w", domain.ErrGenerationProviderError)
	}

	return domain.Completion{
		Text:             strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// CallFunction implements domain.Generator in forced function-call mode.
// Every returned call is passed through; callers decide how many they accept.
func (g *Generator) CallFunction(
	ctx context.Context, messages []domain.Message, fn domain.FunctionSpec,
) ([]domain.FunctionCall, error) {
	req := g.request(messages)
	req.Tools = []openai.Tool{{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        fn.Name,
			Description: fn.Description,
			Parameters:  fn.Parameters,
		},
	}}
	req.ToolChoice = openai.ToolChoice{
		Type:     openai.ToolTypeFunction,
		Function: openai.ToolFunction{Name: fn.Name},
	}

	resp, err := g.create(ctx, modeFunction, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	msg := resp.Choices[0].Message
	calls := make([]domain.FunctionCall, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		calls = append(calls, domain.FunctionCall{
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	// Older backends answer with the legacy single function_call field.
	if len(calls) == 0 && msg.FunctionCall != nil {
		calls = append(calls, domain.FunctionCall{
			Name:      msg.FunctionCall.Name,
			Arguments: json.RawMessage(msg.FunctionCall.Arguments),
		})
	}
	return calls, nil
}

// HealthCheck verifies API availability via ListModels.
func (g *Generator) HealthCheck(ctx context.Context) error {
	return listModels(ctx, g.client)
}

func (g *Generator) request(messages []domain.Message) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: g.temperature,
		User:        g.user,
	}
}

func (g *Generator) create(
	ctx context.Context, mode string, req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		g.fail(mode)
		return openai.ChatCompletionResponse{}, parseAPIError("generation", err, domain.ErrGenerationProviderError)
	}

	domain.UsageFromContext(ctx).AddGeneration(resp.Usage.TotalTokens)

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, mode, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model, mode).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	g.logger.Debug("chat completion",
		zap.String("mode", mode),
		zap.Int("messages", len(req.Messages)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration),
	)
	return resp, nil
}

func (g *Generator) fail(mode string) {
	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, mode, "error").Inc()
}
