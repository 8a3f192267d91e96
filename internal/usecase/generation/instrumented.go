// Package generation decorates the text generation port with logging.
package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/toolsel/internal/domain"
	"github.com/kailas-cloud/toolsel/internal/logger"
)

// InstrumentedGenerator wraps Generator with logging.
// Metrics and usage accounting happen in transport/openai, which sees token counts for both modes.
type InstrumentedGenerator struct {
	inner    domain.Generator
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedGenerator wraps a generator with observability.
func NewInstrumentedGenerator(inner domain.Generator, provider, model string, logger *zap.Logger) *InstrumentedGenerator {
	return &InstrumentedGenerator{inner: inner, provider: provider, model: model, logger: logger}
}

// Complete delegates a free-text completion.
func (g *InstrumentedGenerator) Complete(ctx context.Context, messages []domain.Message) (domain.Completion, error) {
	log := logger.FromContextOr(ctx, g.logger)
	start := time.Now()

	c, err := g.inner.Complete(ctx, messages)
	if err != nil {
		g.logFailure(log, "text", time.Since(start), err)
		return domain.Completion{}, fmt.Errorf("complete: %w", err)
	}

	log.Debug("Completion finished",
		zap.String("provider", g.provider),
		zap.String("model", g.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", c.TotalTokens),
		zap.Int("chars", len(c.Text)),
	)
	return c, nil
}

// CallFunction delegates a forced function call.
func (g *InstrumentedGenerator) CallFunction(
	ctx context.Context, messages []domain.Message, fn domain.FunctionSpec,
) ([]domain.FunctionCall, error) {
	log := logger.FromContextOr(ctx, g.logger)
	start := time.Now()

	calls, err := g.inner.CallFunction(ctx, messages, fn)
	if err != nil {
		g.logFailure(log, "function", time.Since(start), err)
		return nil, fmt.Errorf("call %s: %w", fn.Name, err)
	}

	log.Debug("Function call finished",
		zap.String("provider", g.provider),
		zap.String("model", g.model),
		zap.String("function", fn.Name),
		zap.Duration("duration", time.Since(start)),
		zap.Int("calls", len(calls)),
	)
	return calls, nil
}

// HealthCheck delegates to the inner generator when it supports health checks.
func (g *InstrumentedGenerator) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (g *InstrumentedGenerator) logFailure(log *zap.Logger, mode string, d time.Duration, err error) {
	log.Warn("Generation request failed",
		zap.String("provider", g.provider),
		zap.String("model", g.model),
		zap.String("mode", mode),
		zap.Duration("duration", d),
		zap.Error(err),
	)
}
