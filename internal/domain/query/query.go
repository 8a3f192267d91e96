package query

// TestQuery is a user request paired with the tool expected to serve it.
type TestQuery struct {
	text         string
	expectedTool string
}

// New creates a test query.
func New(text, expectedTool string) TestQuery {
	return TestQuery{text: text, expectedTool: expectedTool}
}

// Text returns the user request.
func (q *TestQuery) Text() string { return q.text }

// ExpectedTool returns the name of the tool that should be selected.
func (q *TestQuery) ExpectedTool() string { return q.expectedTool }

// Dangling returns queries whose expected tool is not among names.
// Query sets and corpora may diverge across runs; callers decide what to do.
func Dangling(queries []TestQuery, names []string) []TestQuery {
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}
	var out []TestQuery
	for _, q := range queries {
		if _, ok := known[q.expectedTool]; !ok {
			out = append(out, q)
		}
	}
	return out
}
