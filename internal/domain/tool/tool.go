package tool

// Tool is a single catalog entry the model may select.
type Tool struct {
	name        string
	description string
	category    string
	embedding   []float32
}

// New creates a tool. embedding may be nil when not computed yet.
func New(name, description, category string, embedding []float32) Tool {
	return Tool{
		name:        name,
		description: description,
		category:    category,
		embedding:   embedding,
	}
}

// Name returns the unique tool name.
func (t *Tool) Name() string { return t.name }

// Description returns the tool description.
func (t *Tool) Description() string { return t.description }

// Category returns the generation category.
func (t *Tool) Category() string { return t.category }

// Embedding returns the description embedding, nil if absent.
func (t *Tool) Embedding() []float32 { return t.embedding }

// HasEmbedding reports whether the embedding was computed.
func (t *Tool) HasEmbedding() bool { return len(t.embedding) > 0 }

// WithEmbedding returns a copy carrying the given embedding.
func (t Tool) WithEmbedding(vec []float32) Tool {
	t.embedding = vec
	return t
}

// Names returns tool names in catalog order.
func Names(tools []Tool) []string {
	names := make([]string, len(tools))
	for i := range tools {
		names[i] = tools[i].name
	}
	return names
}

// Descriptions returns a name → description lookup.
func Descriptions(tools []Tool) map[string]string {
	m := make(map[string]string, len(tools))
	for i := range tools {
		m[tools[i].name] = tools[i].description
	}
	return m
}
