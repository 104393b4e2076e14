// Package genai produces report bodies and summaries.
//
// The shipped implementation is a mock that waits a fixed delay and returns
// canned HTML; decorators add retries and call metrics.
package genai

import (
	"context"
	"errors"
)

// Service is the content generation contract used by the editor.
// Both calls may block for seconds and must honour ctx cancellation.
type Service interface {
	GenerateReport(ctx context.Context, prompt string) (string, error)
	SummarizeContent(ctx context.Context, content string) (string, error)
}

var ErrEmptyInput = errors.New("empty input")

// TransientError marks a failure worth retrying.
type TransientError struct {
	Err error
}

func (e TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e TransientError) Unwrap() error { return e.Err }

// Recoverable reports whether err may succeed on a later attempt.
func Recoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrEmptyInput) {
		return false
	}
	var te TransientError
	return errors.As(err, &te)
}

// Failing is a Service whose calls always return Err.
type Failing struct {
	Err error
}

func (f Failing) GenerateReport(context.Context, string) (string, error)   { return "", f.Err }
func (f Failing) SummarizeContent(context.Context, string) (string, error) { return "", f.Err }

// Func adapts plain functions to Service; nil fields fail with ErrEmptyInput.
type Func struct {
	Generate  func(ctx context.Context, prompt string) (string, error)
	Summarize func(ctx context.Context, content string) (string, error)
}

func (f Func) GenerateReport(ctx context.Context, prompt string) (string, error) {
	if f.Generate == nil {
		return "", ErrEmptyInput
	}
	return f.Generate(ctx, prompt)
}

func (f Func) SummarizeContent(ctx context.Context, content string) (string, error) {
	if f.Summarize == nil {
		return "", ErrEmptyInput
	}
	return f.Summarize(ctx, content)
}
