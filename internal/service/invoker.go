package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts     = 3
	DefaultCallTimeout     = 30 * time.Second
	DefaultMaxOutputTokens = 2048

	backoffBase = time.Second
	jitterRange = time.Second
)

// InvocationError is returned once an invocation gives up.
type InvocationError struct {
	Attempts  int
	Retryable bool
	Err       error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("completion failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// BackoffDelay is the wait after the k-th failed attempt (1-based):
// 2^k seconds plus up to one second of jitter.
func BackoffDelay(k int, jitter time.Duration) time.Duration {
	if jitter < 0 {
		jitter = 0
	}
	if jitter >= jitterRange {
		jitter = jitterRange - 1
	}
	return (backoffBase << uint(k)) + jitter
}

// InvokerMetrics receives one observation per attempt outcome.
type InvokerMetrics interface {
	ObserveAttempt(outcome string)
}

// RetryInvoker wraps a TextCompletionService with bounded retries and
// exponential backoff. It keeps no state between invocations.
type RetryInvoker struct {
	completion      TextCompletionService
	callTimeout     time.Duration
	maxOutputTokens int
	logger          *zap.Logger
	metrics         InvokerMetrics

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

type InvokerOption func(*RetryInvoker)

func WithCallTimeout(d time.Duration) InvokerOption {
	return func(i *RetryInvoker) {
		if d > 0 {
			i.callTimeout = d
		}
	}
}

func WithMaxOutputTokens(n int) InvokerOption {
	return func(i *RetryInvoker) {
		if n > 0 {
			i.maxOutputTokens = n
		}
	}
}

func WithInvokerLogger(l *zap.Logger) InvokerOption {
	return func(i *RetryInvoker) {
		if l != nil {
			i.logger = l
		}
	}
}

func WithInvokerMetrics(m InvokerMetrics) InvokerOption {
	return func(i *RetryInvoker) {
		i.metrics = m
	}
}

// WithSleeper replaces the wait between attempts. Tests use it to skip real delays.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) InvokerOption {
	return func(i *RetryInvoker) {
		if sleep != nil {
			i.sleep = sleep
		}
	}
}

func NewRetryInvoker(completion TextCompletionService, opts ...InvokerOption) *RetryInvoker {
	i := &RetryInvoker{
		completion:      completion,
		callTimeout:     DefaultCallTimeout,
		maxOutputTokens: DefaultMaxOutputTokens,
		logger:          zap.NewNop(),
		sleep:           sleepContext,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(jitterRange)))
		},
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Invoke calls the completion service up to maxAttempts times. Client faults
// stop immediately; timeouts, server faults and blank output are retried.
func (i *RetryInvoker) Invoke(ctx context.Context, prompt string, maxAttempts int, temperature float32) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := i.attempt(ctx, prompt, temperature)
		if err == nil {
			i.observe("success")
			if attempt > 1 {
				i.logger.Info("completion succeeded after retry", zap.Int("attempt", attempt))
			}
			return text, nil
		}
		lastErr = err

		if IsNonRetryable(err) {
			i.observe("client_fault")
			i.logger.Warn("non-retryable completion error",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return "", &InvocationError{Attempts: attempt, Err: err}
		}
		if ctx.Err() != nil {
			i.observe("canceled")
			return "", &InvocationError{Attempts: attempt, Err: ctx.Err()}
		}

		i.observe("transient_fault")
		if attempt == maxAttempts {
			break
		}

		delay := BackoffDelay(attempt, i.jitter())
		i.logger.Warn("retryable completion error",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := i.sleep(ctx, delay); err != nil {
			return "", &InvocationError{Attempts: attempt, Err: err}
		}
	}

	return "", &InvocationError{Attempts: maxAttempts, Retryable: true, Err: lastErr}
}

func (i *RetryInvoker) attempt(ctx context.Context, prompt string, temperature float32) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, i.callTimeout)
	defer cancel()

	text, err := i.completion.Generate(callCtx, prompt, temperature, i.maxOutputTokens)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("completion timed out after %s: %w", i.callTimeout, err)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (i *RetryInvoker) observe(outcome string) {
	if i.metrics != nil {
		i.metrics.ObserveAttempt(outcome)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
