package pagetlai

import (
	"errors"
	"fmt"
	"time"
)

// ErrGlossaryNotFound is returned by glossary backends for unknown glossaries
// or language pairs without a dictionary.
var ErrGlossaryNotFound = errors.New("glossary not found")

// TranslationError is a failed translation of one value into one target.
type TranslationError struct {
	Message      string
	TargetLocale string
	Cause        error
}

func (e *TranslationError) Error() string {
	msg := e.Message
	if e.TargetLocale != "" {
		msg = fmt.Sprintf("%s (%s)", e.Message, e.TargetLocale)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a backend failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// GlossaryError indicates a glossary provisioning or dictionary failure.
type GlossaryError struct {
	Message string
	Cause   error
}

func (e *GlossaryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("glossary error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("glossary error: %s", e.Message)
}

func (e *GlossaryError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates a backend returned a different number of translations than expected.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

// ThrottleError rejects an interactive run started too soon after the
// page's previous modification.
type ThrottleError struct {
	Wait time.Duration // Remaining time before a new run is allowed
}

func (e *ThrottleError) Error() string {
	return "please wait some time before you try to translate again"
}
