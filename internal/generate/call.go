package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joestump/blockprompt/internal/llm"
	"github.com/joestump/blockprompt/internal/metrics"
)

var (
	ErrEmptyGoal  = errors.New("userPrompt must not be empty")
	ErrNoTargets  = errors.New("no blocks to generate")
	ErrNoProvider = errors.New("no language model provider configured")
)

// Outcome classifies a provider round trip.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeSchemaInvalid Outcome = "schema_invalid"
	OutcomeProviderError Outcome = "provider_error"
	// OutcomeDiscarded means a valid result arrived after the session's
	// block set was replaced and was dropped.
	OutcomeDiscarded Outcome = "discarded"
)

// Error is a failed provider round trip.
type Error struct {
	Outcome Outcome
	Raw     []byte // provider body, set for OutcomeSchemaInvalid
	Err     error
}

func (e *Error) Error() string {
	if e.Outcome == OutcomeSchemaInvalid {
		return fmt.Sprintf("provider response did not match the expected shape: %v", e.Err)
	}
	return fmt.Sprintf("provider request failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// caller issues provider calls and records their outcome.
type caller struct {
	provider llm.Provider
	timeout  time.Duration
}

// invoke performs one provider call and validates the body with decode.
// Nothing reaches the caller unless decode accepts the whole body.
func invoke[T any](ctx context.Context, c caller, mode string, call llm.Call, decode func([]byte) (T, error)) (T, error) {
	var zero T
	if c.provider == nil {
		return zero, ErrNoProvider
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := c.provider.Complete(ctx, call)
	metrics.GenerationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(mode, string(OutcomeProviderError)).Inc()
		log.Printf("generate: provider error (%s, model %s): %v", mode, call.Model, err)
		return zero, &Error{Outcome: OutcomeProviderError, Err: err}
	}

	v, err := decode(body)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(mode, string(OutcomeSchemaInvalid)).Inc()
		log.Printf("generate: schema invalid (%s, model %s): %v", mode, call.Model, err)
		return zero, &Error{Outcome: OutcomeSchemaInvalid, Raw: body, Err: err}
	}
	metrics.GenerationsTotal.WithLabelValues(mode, string(OutcomeSuccess)).Inc()
	return v, nil
}
