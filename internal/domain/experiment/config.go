package experiment

import "fmt"

// Default run parameters.
const (
	DefaultToolCount  = 100
	DefaultQueryCount = 400
	DefaultTopK       = 5
)

// Config is immutable for the lifetime of a run.
type Config struct {
	toolCount  int
	queryCount int
	useHyDE    bool
	topK       int
	seed       uint64
}

// NewConfig validates and creates a run configuration.
func NewConfig(toolCount, queryCount int, useHyDE bool, topK int, seed uint64) (Config, error) {
	if toolCount < 0 {
		return Config{}, fmt.Errorf("tool count must be >= 0, got %d", toolCount)
	}
	if queryCount < 0 {
		return Config{}, fmt.Errorf("query count must be >= 0, got %d", queryCount)
	}
	if topK <= 0 {
		return Config{}, fmt.Errorf("top-k must be > 0, got %d", topK)
	}
	return Config{
		toolCount:  toolCount,
		queryCount: queryCount,
		useHyDE:    useHyDE,
		topK:       topK,
		seed:       seed,
	}, nil
}

// ToolCount returns the target corpus size.
func (c Config) ToolCount() int { return c.toolCount }

// QueryCount returns the target query set size.
func (c Config) QueryCount() int { return c.queryCount }

// UseHyDE reports whether queries are expanded before embedding.
func (c Config) UseHyDE() bool { return c.useHyDE }

// TopK returns the restricted tool set size.
func (c Config) TopK() int { return c.topK }

// Seed returns the pseudo-random seed for sampling.
func (c Config) Seed() uint64 { return c.seed }

// ParseHyDE interprets a --hyde value: anything but the literal "false" enables HyDE.
func ParseHyDE(v string) bool {
	return v != "false"
}
