package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrEmptyResponse indicates the provider answered without any choice.
var ErrEmptyResponse = errors.New("ai returned no choices")
