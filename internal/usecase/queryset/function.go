package queryset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/kailas-cloud/toolsel/internal/domain"
	"github.com/kailas-cloud/toolsel/internal/domain/tool"
)

// FunctionName is the single function the model must call per attempt.
const FunctionName = "create_test_query"

type createQueryArgs struct {
	Query string `json:"query"`
	Tool  string `json:"tool"`
}

// createQueryFunction restricts the tool argument to the grounding names.
func createQueryFunction(toolNames []string) domain.FunctionSpec {
	return domain.FunctionSpec{
		Name:        FunctionName,
		Description: "Record a realistic user request and the one tool that should handle it.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"query": {
					Type:        jsonschema.String,
					Description: "What a user would type to an assistant, without naming the tool.",
				},
				"tool": {
					Type:        jsonschema.String,
					Description: "Name of the tool that should handle the query.",
					Enum:        toolNames,
				},
			},
			Required: []string{"query", "tool"},
		},
	}
}

func queryPrompt(grounding []tool.Tool) []domain.Message {
	var b strings.Builder
	b.WriteString("Available tools:\n")
	for i := range grounding {
		fmt.Fprintf(&b, "- %s: %s\n", grounding[i].Name(), grounding[i].Description())
	}
	b.WriteString("\nPick one of these tools and write a request a user might send that only this tool can fulfil. " +
		"Call " + FunctionName + " exactly once.")

	return []domain.Message{
		domain.System("You write test queries for evaluating tool selection."),
		domain.User(b.String()),
	}
}

// parseCall validates a function-call response: exactly one call of FunctionName
// whose tool is one of allowed.
func parseCall(calls []domain.FunctionCall, allowed []string) (createQueryArgs, error) {
	if len(calls) != 1 {
		return createQueryArgs{}, fmt.Errorf("%w: expected 1 call, got %d", domain.ErrMalformedCall, len(calls))
	}
	c := calls[0]
	if c.Name != FunctionName {
		return createQueryArgs{}, fmt.Errorf("%w: unexpected function %q", domain.ErrMalformedCall, c.Name)
	}

	var args createQueryArgs
	if err := json.Unmarshal(c.Arguments, &args); err != nil {
		return createQueryArgs{}, fmt.Errorf("%w: arguments: %v", domain.ErrMalformedCall, err)
	}
	args.Query = strings.TrimSpace(args.Query)
	args.Tool = strings.TrimSpace(args.Tool)
	if args.Query == "" {
		return createQueryArgs{}, fmt.Errorf("%w: empty query", domain.ErrMalformedCall)
	}
	for _, name := range allowed {
		if name == args.Tool {
			return args, nil
		}
	}
	return createQueryArgs{}, fmt.Errorf("%w: tool %q not among grounding tools", domain.ErrMalformedCall, args.Tool)
}
