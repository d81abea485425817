package domain

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// ErrorCategory classifies a failed delivery attempt.
type ErrorCategory string

const (
	// ErrorCategoryTransient covers network failures, timeouts, 429 and 5xx. Retried with backoff.
	ErrorCategoryTransient ErrorCategory = "TRANSIENT"
	// ErrorCategoryPermanent covers 4xx other than 429. Dead-lettered immediately.
	ErrorCategoryPermanent ErrorCategory = "PERMANENT"
	// ErrorCategoryStructural covers payload or schema rejections. Dead-lettered immediately.
	ErrorCategoryStructural ErrorCategory = "STRUCTURAL"
	// ErrorCategoryUnknown covers anything else. Retried like TRANSIENT and flagged for audit.
	ErrorCategoryUnknown ErrorCategory = "UNKNOWN"
)

// Valid reports whether c is a known category.
func (c ErrorCategory) Valid() bool {
	switch c {
	case ErrorCategoryTransient, ErrorCategoryPermanent, ErrorCategoryStructural, ErrorCategoryUnknown:
		return true
	}
	return false
}

// DeadLetterReason records why an item left the retry loop.
type DeadLetterReason string

const (
	DeadLetterReasonMaxAttemptsExceeded DeadLetterReason = "MAX_ATTEMPTS_EXCEEDED"
	DeadLetterReasonPermanentError      DeadLetterReason = "PERMANENT_ERROR"
	DeadLetterReasonStructuralFailure   DeadLetterReason = "STRUCTURAL_FAILURE"
	DeadLetterReasonManual              DeadLetterReason = "MANUAL"
)

// Valid reports whether r is a known reason.
func (r DeadLetterReason) Valid() bool {
	switch r {
	case DeadLetterReasonMaxAttemptsExceeded,
		DeadLetterReasonPermanentError,
		DeadLetterReasonStructuralFailure,
		DeadLetterReasonManual:
		return true
	}
	return false
}

// SendResult is what a transport reports for one delivery.
type SendResult struct {
	Success    bool
	HTTPStatus int
	Body       string
}

// AttemptOutcome describes one failed delivery attempt handed to the dead-letter manager.
type AttemptOutcome struct {
	Category     ErrorCategory
	Error        string
	HTTPStatus   int
	ResponseBody string
	AttemptedAt  time.Time
}

// ValidatePayload reports a STRUCTURAL outcome when the stored payload is not valid JSON.
// Such an item can never be delivered and is not sent at all.
func ValidatePayload(item *OutboxItem, now time.Time) (AttemptOutcome, bool) {
	if len(item.Payload) > 0 && json.Valid(item.Payload) {
		return AttemptOutcome{}, true
	}
	return AttemptOutcome{
		Category:    ErrorCategoryStructural,
		Error:       "payload is not valid JSON",
		AttemptedAt: now,
	}, false
}

// Classify turns a transport result into success or a categorized outcome.
// The transport is never inspected beyond the status code and the error value.
func Classify(result *SendResult, err error, now time.Time) (AttemptOutcome, bool) {
	outcome := AttemptOutcome{AttemptedAt: now}
	if result != nil {
		outcome.HTTPStatus = result.HTTPStatus
		outcome.ResponseBody = result.Body
	}

	switch {
	case err != nil && errors.Is(err, ErrPayloadRejected):
		outcome.Category = ErrorCategoryStructural
		outcome.Error = err.Error()
		return outcome, false
	case err != nil:
		outcome.Category = ErrorCategoryTransient
		outcome.Error = err.Error()
		return outcome, false
	case result == nil:
		outcome.Category = ErrorCategoryTransient
		outcome.Error = "transport returned no result"
		return outcome, false
	case result.Success:
		return outcome, true
	}

	outcome.Category = CategoryForStatus(result.HTTPStatus)
	outcome.Error = "remote responded with status " + statusText(result.HTTPStatus)
	return outcome, false
}

// CategoryForStatus maps an unsuccessful HTTP status to its category.
func CategoryForStatus(code int) ErrorCategory {
	switch {
	case code == http.StatusTooManyRequests, code >= 500 && code <= 599:
		return ErrorCategoryTransient
	case code >= 400 && code <= 499:
		return ErrorCategoryPermanent
	default:
		return ErrorCategoryUnknown
	}
}

func statusText(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code) + " " + text
}
