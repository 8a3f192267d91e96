package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrDedupExhausted signals that no acceptable candidate was generated within the attempt budget.
	ErrDedupExhausted = errors.New("dedup attempts exhausted")
	// ErrMalformedCall signals a function-call completion without exactly one usable call.
	ErrMalformedCall = errors.New("malformed function call")
	// ErrNotEmbedded signals a corpus with tools that have no embedding yet.
	ErrNotEmbedded = errors.New("corpus not fully embedded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a text generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
)

// ExhaustedError wraps ErrDedupExhausted with the slot that could not be filled
// and the last rejection or failure observed for it.
type ExhaustedError struct {
	Kind     string
	Slot     int
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("%s: %s slot %d after %d attempts", ErrDedupExhausted.Error(), e.Kind, e.Slot, e.Attempts)
	}
	return fmt.Sprintf("%s: %s slot %d after %d attempts: %v",
		ErrDedupExhausted.Error(), e.Kind, e.Slot, e.Attempts, e.Last)
}

// Unwrap exposes both the sentinel and the last underlying failure.
func (e *ExhaustedError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrDedupExhausted}
	}
	return []error{ErrDedupExhausted, e.Last}
}

// NewExhausted creates a dedup exhaustion error.
func NewExhausted(kind string, slot, attempts int, last error) error {
	return &ExhaustedError{Kind: kind, Slot: slot, Attempts: attempts, Last: last}
}
