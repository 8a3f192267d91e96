package experiment

import "time"

// Result is the paired measurement for one test query.
type Result struct {
	query                 string
	expectedTool          string
	vectorSelectedTools   []string
	vectorResponseTime    time.Duration
	vectorTokenCount      int
	fullToolsResponseTime time.Duration
	fullToolsTokenCount   int
	correct               bool
}

// Measurement groups the timing and cost of one condition.
type Measurement struct {
	Tools        []string
	ResponseTime time.Duration
	TokenCount   int
}

// NewResult creates a result. Correctness is derived from the vector selection.
func NewResult(query, expectedTool string, vector, full Measurement) Result {
	correct := false
	for _, name := range vector.Tools {
		if name == expectedTool {
			correct = true
			break
		}
	}
	return Result{
		query:                 query,
		expectedTool:          expectedTool,
		vectorSelectedTools:   vector.Tools,
		vectorResponseTime:    vector.ResponseTime,
		vectorTokenCount:      vector.TokenCount,
		fullToolsResponseTime: full.ResponseTime,
		fullToolsTokenCount:   full.TokenCount,
		correct:               correct,
	}
}

// Query returns the user request text.
func (r *Result) Query() string { return r.query }

// ExpectedTool returns the tool that should have been selected.
func (r *Result) ExpectedTool() string { return r.expectedTool }

// VectorSelectedTools returns the top-K tool names in rank order.
func (r *Result) VectorSelectedTools() []string { return r.vectorSelectedTools }

// VectorResponseTime returns the retrieval duration.
func (r *Result) VectorResponseTime() time.Duration { return r.vectorResponseTime }

// VectorTokenCount returns the token proxy of the selected tools.
func (r *Result) VectorTokenCount() int { return r.vectorTokenCount }

// FullToolsResponseTime returns the full-catalog enumeration duration.
func (r *Result) FullToolsResponseTime() time.Duration { return r.fullToolsResponseTime }

// FullToolsTokenCount returns the token proxy of the full catalog.
func (r *Result) FullToolsTokenCount() int { return r.fullToolsTokenCount }

// Correct reports whether the expected tool was among the selected ones.
func (r *Result) Correct() bool { return r.correct }
