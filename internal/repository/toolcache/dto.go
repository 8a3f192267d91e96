package toolcache

import "github.com/kailas-cloud/toolsel/internal/domain/tool"

// document is the persisted shape: {"tools":[...]}.
type document struct {
	Tools []toolRow `json:"tools"`
}

type toolRow struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

func toDocument(tools []tool.Tool) document {
	rows := make([]toolRow, len(tools))
	for i := range tools {
		t := &tools[i]
		rows[i] = toolRow{
			Name:        t.Name(),
			Description: t.Description(),
			Category:    t.Category(),
			Embedding:   t.Embedding(),
		}
	}
	return document{Tools: rows}
}

func fromDocument(doc document) []tool.Tool {
	tools := make([]tool.Tool, len(doc.Tools))
	for i, r := range doc.Tools {
		tools[i] = tool.New(r.Name, r.Description, r.Category, r.Embedding)
	}
	return tools
}
