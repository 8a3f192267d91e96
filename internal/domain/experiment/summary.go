package experiment

import (
	"time"
	"unicode/utf8"
)

// Summary aggregates a result sequence.
// An empty sequence yields the zero Summary (Total == 0, every ratio 0).
type Summary struct {
	Total                 int
	Correct               int
	Accuracy              float64
	AvgVectorResponseTime time.Duration
	AvgFullResponseTime   time.Duration
	AvgVectorTokens       float64
	AvgFullTokens         float64
	TotalVectorTokens     int
	TotalFullTokens       int
	TokenReduction        float64
}

// Aggregate computes arithmetic means over results.
func Aggregate(results []Result) Summary {
	var s Summary
	s.Total = len(results)
	if s.Total == 0 {
		return s
	}

	var vecTime, fullTime time.Duration
	for i := range results {
		r := &results[i]
		if r.correct {
			s.Correct++
		}
		vecTime += r.vectorResponseTime
		fullTime += r.fullToolsResponseTime
		s.TotalVectorTokens += r.vectorTokenCount
		s.TotalFullTokens += r.fullToolsTokenCount
	}

	n := float64(s.Total)
	s.Accuracy = float64(s.Correct) / n
	s.AvgVectorResponseTime = vecTime / time.Duration(s.Total)
	s.AvgFullResponseTime = fullTime / time.Duration(s.Total)
	s.AvgVectorTokens = float64(s.TotalVectorTokens) / n
	s.AvgFullTokens = float64(s.TotalFullTokens) / n
	if s.TotalFullTokens > 0 {
		s.TokenReduction = 1 - float64(s.TotalVectorTokens)/float64(s.TotalFullTokens)
	}
	return s
}

// Accuracy is the running hit rate: correct / processed, 0 before the first query.
func Accuracy(correct, processed int) float64 {
	if processed == 0 {
		return 0
	}
	return float64(correct) / float64(processed)
}

// TokenProxy is the character-length stand-in for prompt cost:
// sum over names of len(name) + len(description). Unknown names count their name only.
func TokenProxy(names []string, descriptions map[string]string) int {
	total := 0
	for _, n := range names {
		total += utf8.RuneCountInString(n) + utf8.RuneCountInString(descriptions[n])
	}
	return total
}
