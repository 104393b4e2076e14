package genai

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first. Zero disables retries.
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Logger          zerolog.Logger
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Logger:          zerolog.Nop(),
	}
}

type retrying struct {
	next   Service
	policy RetryPolicy
}

// WithRetry retries calls that fail with a Recoverable error using exponential backoff.
func WithRetry(svc Service, policy RetryPolicy) Service {
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = DefaultRetryPolicy().InitialInterval
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = DefaultRetryPolicy().MaxInterval
	}
	return retrying{next: svc, policy: policy}
}

func (r retrying) GenerateReport(ctx context.Context, prompt string) (string, error) {
	return r.do(ctx, opGenerate, func() (string, error) { return r.next.GenerateReport(ctx, prompt) })
}

func (r retrying) SummarizeContent(ctx context.Context, content string) (string, error) {
	return r.do(ctx, opSummarize, func() (string, error) { return r.next.SummarizeContent(ctx, content) })
}

func (r retrying) do(ctx context.Context, op string, call func() (string, error)) (string, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.InitialInterval
	exp.Multiplier = 2
	exp.MaxInterval = r.policy.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()

	b := backoff.WithContext(backoff.WithMaxRetries(exp, r.policy.MaxRetries), ctx)

	var out string
	operation := func() error {
		v, err := call()
		if err == nil {
			out = v
			return nil
		}
		if !Recoverable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.policy.Logger.Warn().Err(err).Str("op", op).Dur("wait", wait).Msg("genai call failed; retrying")
	}
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return "", err
	}
	return out, nil
}
