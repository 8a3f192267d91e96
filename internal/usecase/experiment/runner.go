// Package experiment compares vector-restricted tool selection against the full catalog.
package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/toolsel/internal/domain"
	domexp "github.com/kailas-cloud/toolsel/internal/domain/experiment"
	"github.com/kailas-cloud/toolsel/internal/domain/query"
	"github.com/kailas-cloud/toolsel/internal/domain/tool"
	"github.com/kailas-cloud/toolsel/internal/logger"
	"github.com/kailas-cloud/toolsel/internal/metrics"
)

// Runner measures every test query under both conditions, in input order.
type Runner struct {
	selector Selector
	tools    ToolSource
	cfg      domexp.Config
	logger   *zap.Logger
}

// NewRunner creates an experiment runner.
func NewRunner(selector Selector, tools ToolSource, cfg domexp.Config, logger *zap.Logger) *Runner {
	return &Runner{selector: selector, tools: tools, cfg: cfg, logger: logger}
}

// Run processes queries sequentially. The corpus must be fully embedded.
// Any selection failure aborts the run.
func (r *Runner) Run(ctx context.Context, queries []query.TestQuery) ([]domexp.Result, error) {
	tools := r.tools.Tools()
	for i := range tools {
		if !tools[i].HasEmbedding() {
			return nil, fmt.Errorf("tool %s: %w", tools[i].Name(), domain.ErrNotEmbedded)
		}
	}
	descriptions := tool.Descriptions(tools)

	results := make([]domexp.Result, 0, len(queries))
	correct := 0
	for i := range queries {
		q := &queries[i]
		qctx := logger.With(ctx, r.logger, zap.Int("query", i+1), zap.Int("of", len(queries)))
		log := logger.FromContext(qctx)

		start := time.Now()
		selected, err := r.selector.Select(qctx, q.Text(), r.cfg.UseHyDE(), r.cfg.TopK())
		vectorTime := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i+1, err)
		}

		start = time.Now()
		all := tool.Names(tools)
		fullTime := time.Since(start)

		res := domexp.NewResult(q.Text(), q.ExpectedTool(),
			domexp.Measurement{
				Tools:        selected,
				ResponseTime: vectorTime,
				TokenCount:   domexp.TokenProxy(selected, descriptions),
			},
			domexp.Measurement{
				Tools:        all,
				ResponseTime: fullTime,
				TokenCount:   domexp.TokenProxy(all, descriptions),
			},
		)
		results = append(results, res)

		outcome := "incorrect"
		if res.Correct() {
			correct++
			outcome = "correct"
		}
		accuracy := domexp.Accuracy(correct, len(results))
		r.record(&res, outcome, accuracy)

		log.Info("Query processed",
			zap.String("expected", q.ExpectedTool()),
			zap.Strings("selected", selected),
			zap.Bool("correct", res.Correct()),
			zap.Float64("running_accuracy", accuracy),
		)
	}
	return results, nil
}

func (r *Runner) record(res *domexp.Result, outcome string, accuracy float64) {
	metrics.QueriesProcessedTotal.WithLabelValues(outcome).Inc()
	metrics.RunningAccuracy.Set(accuracy)
	metrics.RetrievalDuration.WithLabelValues("vector").Observe(res.VectorResponseTime().Seconds())
	metrics.RetrievalDuration.WithLabelValues("full").Observe(res.FullToolsResponseTime().Seconds())
	metrics.TokenProxyTotal.WithLabelValues("vector").Add(float64(res.VectorTokenCount()))
	metrics.TokenProxyTotal.WithLabelValues("full").Add(float64(res.FullToolsTokenCount()))
}
