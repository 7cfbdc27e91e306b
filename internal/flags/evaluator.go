// Package flags is the boundary to the external flag-evaluation service.
package flags

import (
	"context"
	"errors"

	"github.com/patrickwarner/edgeads/internal/flagctx"
)

// EnableAds gates the advertisement block on the demo page.
const EnableAds = "enable-ads"

var (
	// ErrEvaluation is returned when the evaluator could not produce a value.
	ErrEvaluation = errors.New("flag evaluation failed")
	// ErrInvalidContext is returned when the record cannot be turned into an evaluation context.
	ErrInvalidContext = errors.New("invalid evaluation context")
)

// Evaluator resolves a boolean flag for a request context. defaultValue is
// what the underlying service falls back to; whether a failure is reported as
// an error or as the default is up to the implementation.
type Evaluator interface {
	BoolVariation(ctx context.Context, flagKey string, rec flagctx.Record, defaultValue bool) (bool, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, flagKey string, rec flagctx.Record, defaultValue bool) (bool, error)

// BoolVariation calls f.
func (f EvaluatorFunc) BoolVariation(ctx context.Context, flagKey string, rec flagctx.Record, defaultValue bool) (bool, error) {
	return f(ctx, flagKey, rec, defaultValue)
}
