package queryset

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/kailas-cloud/toolsel/internal/domain"
	"github.com/kailas-cloud/toolsel/internal/domain/query"
	"github.com/kailas-cloud/toolsel/internal/domain/sampling"
	"github.com/kailas-cloud/toolsel/internal/domain/similarity"
	"github.com/kailas-cloud/toolsel/internal/domain/tool"
	"github.com/kailas-cloud/toolsel/internal/logger"
	"github.com/kailas-cloud/toolsel/internal/metrics"
)

// Defaults for query generation.
const (
	DefaultSimilarityThreshold = 0.98
	DefaultMaxAttempts         = 10
	DefaultGroundingSize       = 5
)

const kind = "query"

var errTooSimilar = errors.New("query too similar to another query of this batch")

// ErrNoTools is returned when queries must be generated but the corpus is empty.
var ErrNoTools = errors.New("no tools to ground queries in")

// Service owns the test query set.
type Service struct {
	repo          Repository
	gen           FunctionCaller
	embedder      Embedder
	rng           *rand.Rand
	threshold     float64
	maxAttempts   int
	groundingSize int
	logger        *zap.Logger
}

// New creates a query set service. rng drives shrink sampling and grounding draws.
func New(repo Repository, gen FunctionCaller, embedder Embedder, rng *rand.Rand, logger *zap.Logger) *Service {
	return &Service{
		repo:          repo,
		gen:           gen,
		embedder:      embedder,
		rng:           rng,
		threshold:     DefaultSimilarityThreshold,
		maxAttempts:   DefaultMaxAttempts,
		groundingSize: DefaultGroundingSize,
		logger:        logger,
	}
}

// WithThreshold sets the cosine similarity above which a new query is rejected.
func (s *Service) WithThreshold(t float64) *Service {
	if t > 0 {
		s.threshold = t
	}
	return s
}

// WithMaxAttempts sets the per-slot attempt budget.
func (s *Service) WithMaxAttempts(n int) *Service {
	if n > 0 {
		s.maxAttempts = n
	}
	return s
}

// WithGroundingSize sets how many tools each generation attempt sees.
func (s *Service) WithGroundingSize(n int) *Service {
	if n > 0 {
		s.groundingSize = n
	}
	return s
}

// EnsureSize returns target queries, generating the missing ones grounded in tools.
// Growth persists old ++ new once; a larger cache is sampled without persisting.
func (s *Service) EnsureSize(ctx context.Context, target int, tools []tool.Tool) ([]query.TestQuery, error) {
	log := logger.FromContextOr(ctx, s.logger)

	cached, err := s.repo.Load(ctx)
	if err != nil {
		log.Warn("Query cache unreadable, starting from empty", zap.Error(err))
		cached = nil
	}

	var out []query.TestQuery
	switch {
	case len(cached) > target:
		out = sampling.Sample(s.rng, cached, target)
		log.Info("Sampled queries from cache", zap.Int("cached", len(cached)), zap.Int("target", target))
	case len(cached) < target:
		fresh, err := s.generate(ctx, target-len(cached), tools)
		if err != nil {
			return nil, err
		}
		all := make([]query.TestQuery, 0, len(cached)+len(fresh))
		all = append(all, cached...)
		all = append(all, fresh...)
		if err := s.repo.Save(ctx, all); err != nil {
			return nil, fmt.Errorf("persist queries: %w", err)
		}
		out = all[:min(len(all), target)]
		log.Info("Grew query cache", zap.Int("cached", len(cached)), zap.Int("total", len(all)))
	default:
		out = cached
	}

	if dangling := query.Dangling(out, tool.Names(tools)); len(dangling) > 0 {
		log.Warn("Queries expect tools missing from the corpus",
			zap.Int("count", len(dangling)),
			zap.String("example", dangling[0].ExpectedTool()),
		)
	}
	return out, nil
}

// batch holds the queries of one growth operation; dedup only looks here.
type batch struct {
	queries []query.TestQuery
	vectors [][]float32
}

func (s *Service) generate(ctx context.Context, n int, tools []tool.Tool) ([]query.TestQuery, error) {
	if len(tools) == 0 {
		return nil, ErrNoTools
	}
	log := logger.FromContextOr(ctx, s.logger)
	b := &batch{}

	for slot := range n {
		var last error
		accepted := false
		for attempt := 1; attempt <= s.maxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("grow queries: %w", err)
			}

			q, vec, err := s.candidate(ctx, b, tools)
			if err == nil {
				b.queries = append(b.queries, q)
				b.vectors = append(b.vectors, vec)
				accepted = true
				metrics.GeneratedItemsTotal.WithLabelValues(kind).Inc()
				log.Info("Query accepted",
					zap.Int("slot", slot+1),
					zap.Int("new", n),
					zap.String("expected_tool", q.ExpectedTool()),
					zap.Int("attempt", attempt),
				)
				break
			}
			if ctx.Err() != nil {
				return nil, fmt.Errorf("grow queries: %w", err)
			}

			last = err
			metrics.RejectedCandidatesTotal.WithLabelValues(kind, rejectReason(err)).Inc()
			log.Debug("Query candidate rejected",
				zap.Int("slot", slot+1),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		if !accepted {
			return nil, domain.NewExhausted(kind, slot, s.maxAttempts, last)
		}
	}
	return b.queries, nil
}

func (s *Service) candidate(ctx context.Context, b *batch, tools []tool.Tool) (query.TestQuery, []float32, error) {
	grounding := sampling.Sample(s.rng, tools, s.groundingSize)
	allowed := tool.Names(grounding)

	calls, err := s.gen.CallFunction(ctx, queryPrompt(grounding), createQueryFunction(allowed))
	if err != nil {
		return query.TestQuery{}, nil, fmt.Errorf("generate query: %w", err)
	}
	args, err := parseCall(calls, allowed)
	if err != nil {
		return query.TestQuery{}, nil, err
	}

	emb, err := s.embedder.Embed(ctx, args.Query)
	if err != nil {
		return query.TestQuery{}, nil, fmt.Errorf("embed query: %w", err)
	}
	if idx, score := similarity.MostSimilar(emb.Embedding, b.vectors); idx >= 0 && score > s.threshold {
		return query.TestQuery{}, nil, fmt.Errorf("%w (%.3f)", errTooSimilar, score)
	}

	return query.New(args.Query, args.Tool), emb.Embedding, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, errTooSimilar):
		return "similar"
	case errors.Is(err, domain.ErrMalformedCall):
		return "malformed"
	default:
		return "error"
	}
}
