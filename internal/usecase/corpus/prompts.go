package corpus

import (
	"fmt"

	"github.com/kailas-cloud/toolsel/internal/domain"
)

// DefaultCategories is the round-robin category order for new tools.
var DefaultCategories = []string{
	"Communication",
	"Productivity",
	"Finance",
	"Travel",
	"Health",
	"Entertainment",
	"Education",
	"Utilities",
	"Shopping",
	"Data Analysis",
}

const systemPrompt = "You design realistic tools that an AI assistant can call on behalf of a user."

func descriptionPrompt(category string) []domain.Message {
	return []domain.Message{
		domain.System(systemPrompt),
		domain.User(fmt.Sprintf(
			"Describe one tool in the %q category in two or three sentences: what it does and which inputs it takes. "+
				"Reply with the description only.", category)),
	}
}

func namePrompt(description string) []domain.Message {
	return []domain.Message{
		domain.System(systemPrompt),
		domain.User("Give this tool a short CamelCase function name such as SendEmail or ConvertUnits. " +
			"Reply with the name only.\n\nTool: " + description),
	}
}
