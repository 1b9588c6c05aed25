package source

import (
	"errors"
	"fmt"
)

// FetchError is a transient transport failure: network error, timeout, or a
// retryable HTTP status. Callers retry with backoff.
type FetchError struct {
	Source string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: fetch %s: HTTP %d", e.Source, e.URL, e.Status)
	}
	return fmt.Sprintf("%s: fetch %s: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// BlockedError means the board is actively rejecting us: HTTP 403/429 or a
// CAPTCHA wall. Distinct from FetchError because it triggers an extended
// cool-down for the whole source instead of an immediate retry.
type BlockedError struct {
	Source string
	Status int
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: blocked (HTTP %d): %s", e.Source, e.Status, e.Reason)
}

// ParseError means the page structure no longer matches the adapter's
// expectations. The page is skipped and counted; the run continues.
type ParseError struct {
	Source string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse: %s", e.Source, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsBlocked reports whether err is (or wraps) a BlockedError.
func IsBlocked(err error) bool {
	var be *BlockedError
	return errors.As(err, &be)
}

// IsFetch reports whether err is (or wraps) a FetchError.
func IsFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsParse reports whether err is (or wraps) a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
