package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// ErrEmptyCompletion marks a completion that came back blank. It is retryable.
var ErrEmptyCompletion = errors.New("completion returned empty text")

// TextCompletionService generates text for a prompt. Implementations must
// surface client faults in a way IsNonRetryable recognises.
type TextCompletionService interface {
	Generate(ctx context.Context, prompt string, temperature float32, maxOutputTokens int) (string, error)
}

// StatusError carries the HTTP status of a failed provider call.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Code, e.Message)
}

// IsNonRetryable reports whether err is a client fault (bad request, auth,
// not found...) that will not succeed on retry. Rate limiting and request
// timeouts stay retryable.
func IsNonRetryable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return isClientFault(statusErr.Code)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return isClientFault(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return isClientFault(apiErrPtr.Code)
	}

	return false
}

func isClientFault(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return false
	}
	return code >= 400 && code < 500
}
