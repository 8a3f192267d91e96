package retrieval

import "github.com/kailas-cloud/toolsel/internal/domain"

const hydeSystem = "Given a user request, describe in two or three sentences the software tool " +
	"that would handle it: what the tool does and which inputs it takes. Do not answer the request itself."

type example struct {
	query, description string
}

// hydeExamples steer the model towards catalog-style descriptions.
var hydeExamples = []example{
	{
		"Remind me to call mom tomorrow at 6pm",
		"Creates a reminder that notifies the user at a given date and time. Takes the reminder text, " +
			"the due time and an optional repeat rule.",
	},
	{
		"How many kilometers is 26 miles?",
		"Converts a numeric value between units of length, weight, volume or temperature. " +
			"Takes the value, the source unit and the target unit.",
	},
	{
		"Send Sarah the quarterly report by email",
		"Sends an email message to one or more recipients. Takes recipient addresses, a subject, " +
			"a body and optional attachments.",
	},
	{
		"What's the weather going to be like in Lisbon this weekend?",
		"Retrieves the weather forecast for a location. Takes a city or coordinates and a date range " +
			"and returns temperature, precipitation and wind.",
	},
	{
		"Split the $84 dinner bill between 3 people with a 15% tip",
		"Calculates how to split a bill among several people. Takes the total amount, the number of people " +
			"and a tip percentage and returns the share per person.",
	},
}

func hydePrompt(q string) []domain.Message {
	msgs := make([]domain.Message, 0, 2+2*len(hydeExamples))
	msgs = append(msgs, domain.System(hydeSystem))
	for _, ex := range hydeExamples {
		msgs = append(msgs, domain.User(ex.query), domain.Assistant(ex.description))
	}
	return append(msgs, domain.User(q))
}
