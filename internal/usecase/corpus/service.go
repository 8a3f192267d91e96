package corpus

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/toolsel/internal/domain"
	"github.com/kailas-cloud/toolsel/internal/domain/sampling"
	"github.com/kailas-cloud/toolsel/internal/domain/similarity"
	"github.com/kailas-cloud/toolsel/internal/domain/tool"
	"github.com/kailas-cloud/toolsel/internal/logger"
	"github.com/kailas-cloud/toolsel/internal/metrics"
)

// Defaults for tool generation.
const (
	DefaultSimilarityThreshold = 0.9
	DefaultMaxAttempts         = 10
)

const kind = "tool"

// Candidate rejections. Each consumes one attempt of the slot.
var (
	errTooSimilar       = errors.New("description too similar to an existing tool")
	errNameTaken        = errors.New("tool name already taken")
	errEmptyName        = errors.New("generated name has no letters")
	errEmptyDescription = errors.New("generated description is empty")
)

// Service owns the tool catalog: it grows, samples, embeds and persists it.
type Service struct {
	repo        Repository
	gen         Generator
	embedder    Embedder
	rng         *rand.Rand
	threshold   float64
	maxAttempts int
	categories  []string
	logger      *zap.Logger

	catalog []tool.Tool // everything persisted, a superset of active after a shrink
	active  []tool.Tool // the session corpus
}

// New creates a corpus service. rng drives shrink sampling.
func New(repo Repository, gen Generator, embedder Embedder, rng *rand.Rand, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		gen:         gen,
		embedder:    embedder,
		rng:         rng,
		threshold:   DefaultSimilarityThreshold,
		maxAttempts: DefaultMaxAttempts,
		categories:  DefaultCategories,
		logger:      logger,
	}
}

// WithThreshold sets the cosine similarity above which a new description is rejected.
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

// WithCategories replaces the round-robin category list.
func (s *Service) WithCategories(categories []string) *Service {
	if len(categories) > 0 {
		s.categories = categories
	}
	return s
}

// Tools returns a copy of the session corpus.
func (s *Service) Tools() []tool.Tool {
	out := make([]tool.Tool, len(s.active))
	copy(out, s.active)
	return out
}

// EnsureSize makes the session corpus exactly target tools.
// A larger cache is sampled without persisting; a smaller one is grown and persisted once.
func (s *Service) EnsureSize(ctx context.Context, target int) ([]tool.Tool, error) {
	log := logger.FromContextOr(ctx, s.logger)

	cached, err := s.repo.Load(ctx)
	if err != nil {
		log.Warn("Tool cache unreadable, starting from empty", zap.Error(err))
		cached = nil
	}
	s.catalog = cached

	switch {
	case len(cached) > target:
		s.active = sampling.Sample(s.rng, cached, target)
		log.Info("Sampled tools from cache", zap.Int("cached", len(cached)), zap.Int("target", target))
	case len(cached) < target:
		grown, err := s.grow(ctx, newAccumulator(cached), target)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, grown); err != nil {
			return nil, fmt.Errorf("persist tools: %w", err)
		}
		s.catalog = grown
		s.active = clone(grown)
		log.Info("Grew tool cache", zap.Int("cached", len(cached)), zap.Int("total", len(grown)))
	default:
		s.active = clone(cached)
		log.Info("Tool cache matches target", zap.Int("tools", target))
	}

	return s.Tools(), nil
}

// accumulator is the growing catalog every later slot is checked against.
type accumulator struct {
	tools   []tool.Tool
	vectors [][]float32
	names   map[string]struct{}
	dims    int
}

func newAccumulator(seed []tool.Tool) *accumulator {
	acc := &accumulator{names: make(map[string]struct{}, len(seed))}
	for _, t := range seed {
		acc.add(t)
	}
	return acc
}

func (a *accumulator) add(t tool.Tool) {
	a.tools = append(a.tools, t)
	a.names[t.Name()] = struct{}{}
	if v := t.Embedding(); len(v) > 0 {
		a.vectors = append(a.vectors, v)
		if a.dims == 0 {
			a.dims = len(v)
		}
	}
}

func (a *accumulator) hasName(name string) bool {
	_, ok := a.names[name]
	return ok
}

func (s *Service) grow(ctx context.Context, acc *accumulator, target int) ([]tool.Tool, error) {
	log := logger.FromContextOr(ctx, s.logger)
	start := len(acc.tools)

	for slot := start; slot < target; slot++ {
		category := s.categories[(slot-start)%len(s.categories)]

		var last error
		accepted := false
		for attempt := 1; attempt <= s.maxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("grow tools: %w", err)
			}

			t, err := s.candidate(ctx, acc, category)
			if err == nil {
				acc.add(t)
				accepted = true
				metrics.GeneratedItemsTotal.WithLabelValues(kind).Inc()
				log.Info("Tool accepted",
					zap.Int("slot", slot+1),
					zap.Int("target", target),
					zap.String("name", t.Name()),
					zap.String("category", category),
					zap.Int("attempt", attempt),
				)
				break
			}
			if ctx.Err() != nil || errors.Is(err, domain.ErrVectorDimMismatch) {
				return nil, fmt.Errorf("grow tools: %w", err)
			}

			last = err
			metrics.RejectedCandidatesTotal.WithLabelValues(kind, rejectReason(err)).Inc()
			log.Debug("Tool candidate rejected",
				zap.Int("slot", slot+1),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		if !accepted {
			return nil, domain.NewExhausted(kind, slot, s.maxAttempts, last)
		}
	}
	return acc.tools, nil
}

// candidate runs one generate-and-test attempt for category.
func (s *Service) candidate(ctx context.Context, acc *accumulator, category string) (tool.Tool, error) {
	desc, err := s.gen.Complete(ctx, descriptionPrompt(category))
	if err != nil {
		return tool.Tool{}, fmt.Errorf("generate description: %w", err)
	}
	description := strings.TrimSpace(desc.Text)
	if description == "" {
		return tool.Tool{}, errEmptyDescription
	}

	emb, err := s.embedder.Embed(ctx, description)
	if err != nil {
		return tool.Tool{}, fmt.Errorf("embed description: %w", err)
	}
	if acc.dims > 0 && len(emb.Embedding) != acc.dims {
		return tool.Tool{}, fmt.Errorf("got %d dimensions, corpus has %d: %w",
			len(emb.Embedding), acc.dims, domain.ErrVectorDimMismatch)
	}
	if idx, score := similarity.MostSimilar(emb.Embedding, acc.vectors); idx >= 0 && score > s.threshold {
		return tool.Tool{}, fmt.Errorf("%w (%.3f)", errTooSimilar, score)
	}

	named, err := s.gen.Complete(ctx, namePrompt(description))
	if err != nil {
		return tool.Tool{}, fmt.Errorf("generate name: %w", err)
	}
	name := tool.NormalizeName(named.Text)
	if name == "" {
		return tool.Tool{}, errEmptyName
	}
	if acc.hasName(name) {
		return tool.Tool{}, fmt.Errorf("%w: %s", errNameTaken, name)
	}

	return tool.New(name, description, category, emb.Embedding), nil
}

// EmbedMissing embeds session tools that lack an embedding and persists the catalog once.
// The persisted catalog keeps every tool, including those left out of a sampled session.
func (s *Service) EmbedMissing(ctx context.Context) (int, error) {
	log := logger.FromContextOr(ctx, s.logger)

	dims := 0
	for i := range s.active {
		if s.active[i].HasEmbedding() {
			dims = len(s.active[i].Embedding())
			break
		}
	}

	embedded := make(map[string][]float32)
	for i := range s.active {
		t := s.active[i]
		if t.HasEmbedding() {
			continue
		}
		res, err := s.embedder.Embed(ctx, t.Description())
		if err != nil {
			return 0, fmt.Errorf("embed tool %s: %w", t.Name(), err)
		}
		if dims == 0 {
			dims = len(res.Embedding)
		}
		if len(res.Embedding) != dims {
			return 0, fmt.Errorf("tool %s has %d dimensions, corpus has %d: %w",
				t.Name(), len(res.Embedding), dims, domain.ErrVectorDimMismatch)
		}
		embedded[t.Name()] = res.Embedding
		log.Debug("Embedded tool", zap.String("name", t.Name()))
	}
	if len(embedded) == 0 {
		return 0, nil
	}

	s.active = withEmbeddings(s.active, embedded)
	s.catalog = withEmbeddings(s.catalog, embedded)
	if err := s.repo.Save(ctx, s.catalog); err != nil {
		return 0, fmt.Errorf("persist tools: %w", err)
	}

	log.Info("Embedded missing tools", zap.Int("count", len(embedded)))
	return len(embedded), nil
}

func withEmbeddings(tools []tool.Tool, byName map[string][]float32) []tool.Tool {
	out := make([]tool.Tool, len(tools))
	for i, t := range tools {
		if vec, ok := byName[t.Name()]; ok && !t.HasEmbedding() {
			t = t.WithEmbedding(vec)
		}
		out[i] = t
	}
	return out
}

func clone(tools []tool.Tool) []tool.Tool {
	out := make([]tool.Tool, len(tools))
	copy(out, tools)
	return out
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, errTooSimilar):
		return "similar"
	case errors.Is(err, errNameTaken):
		return "name_collision"
	case errors.Is(err, errEmptyName), errors.Is(err, errEmptyDescription):
		return "invalid"
	default:
		return "error"
	}
}
