package genai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_ReturnsCannedContent(t *testing.T) {
	m := Mock{}
	out, err := m.GenerateReport(context.Background(), "AI history")
	require.NoError(t, err)
	assert.Contains(t, out, "A Brief Timeline of AI Evolution (Mock Report)")

	out, err = m.SummarizeContent(context.Background(), out)
	require.NoError(t, err)
	assert.Contains(t, out, "Key Points Summary:")
}

func TestMock_RejectsEmptyInput(t *testing.T) {
	m := Mock{}
	_, err := m.GenerateReport(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = m.SummarizeContent(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMock_HonoursCancellation(t *testing.T) {
	m := NewMock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := m.GenerateReport(ctx, "prompt")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), DefaultGenerateDelay)
}

func TestMock_WaitsConfiguredDelay(t *testing.T) {
	m := Mock{SummarizeDelay: 20 * time.Millisecond}
	start := time.Now()
	_, err := m.SummarizeContent(context.Background(), "x")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestRecoverable(t *testing.T) {
	assert.False(t, Recoverable(nil))
	assert.False(t, Recoverable(errors.New("plain")))
	assert.False(t, Recoverable(context.Canceled))
	assert.True(t, Recoverable(TransientError{Err: errors.New("timeout")}))
	assert.False(t, Recoverable(TransientError{Err: ErrEmptyInput}))
}

func fastPolicy(retries uint64) RetryPolicy {
	p := DefaultRetryPolicy()
	p.MaxRetries = retries
	p.InitialInterval = time.Millisecond
	p.MaxInterval = 2 * time.Millisecond
	return p
}

func TestWithRetry_RetriesTransientErrors(t *testing.T) {
	var calls int32
	svc := Func{Generate: func(context.Context, string) (string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", TransientError{Err: errors.New("unavailable")}
		}
		return "<p>ok</p>", nil
	}}

	out, err := WithRetry(svc, fastPolicy(3)).GenerateReport(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", out)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	boom := errors.New("bad request")
	var calls int32
	svc := Func{Summarize: func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", boom
	}}

	_, err := WithRetry(svc, fastPolicy(5)).SummarizeContent(context.Background(), "c")
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	svc := Func{Generate: func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", TransientError{Err: errors.New("flaky")}
	}}

	_, err := WithRetry(svc, fastPolicy(2)).GenerateReport(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, Recoverable(err))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestInstrument_CountsCallsAndFailures(t *testing.T) {
	calls := testutil.ToFloat64(callsTotal.WithLabelValues(opSummarize))
	fails := testutil.ToFloat64(failuresTotal.WithLabelValues(opSummarize))

	ok := Instrument(Mock{})
	_, err := ok.SummarizeContent(context.Background(), "x")
	require.NoError(t, err)

	bad := Instrument(Failing{Err: errors.New("down")})
	_, err = bad.SummarizeContent(context.Background(), "x")
	require.Error(t, err)

	assert.Equal(t, calls+2, testutil.ToFloat64(callsTotal.WithLabelValues(opSummarize)))
	assert.Equal(t, fails+1, testutil.ToFloat64(failuresTotal.WithLabelValues(opSummarize)))
}

func TestStats_ReadsInstrumentedCounters(t *testing.T) {
	before, err := Stats(prometheus.DefaultGatherer)
	require.NoError(t, err)
	require.Len(t, before, 2)
	assert.Equal(t, opGenerate, before[0].Op)
	assert.Equal(t, opSummarize, before[1].Op)

	_, err = Instrument(Mock{}).GenerateReport(context.Background(), "x")
	require.NoError(t, err)
	_, err = Instrument(Failing{Err: errors.New("down")}).GenerateReport(context.Background(), "x")
	require.Error(t, err)

	after, err := Stats(prometheus.DefaultGatherer)
	require.NoError(t, err)
	assert.Equal(t, before[0].Calls+2, after[0].Calls)
	assert.Equal(t, before[0].Failures+1, after[0].Failures)
	assert.Equal(t, before[1], after[1])
}
