package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCaseNotFound     = errors.New("case not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrCatalogue        = errors.New("catalogue invariant violated")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// AnalysisGateError is the admission-control denial signal. It is not a
// failure: callers render the banner instead of an analysis panel and must
// never surface it as an internal error.
type AnalysisGateError struct {
	Banner      string
	Diagnostics DocumentDiagnostics
}

func (e *AnalysisGateError) Error() string {
	if e == nil {
		return "analysis gate denied"
	}
	return fmt.Sprintf("analysis gate denied: %s", e.Banner)
}

// AsGateError unwraps an AnalysisGateError if err carries one.
func AsGateError(err error) (*AnalysisGateError, bool) {
	var gateErr *AnalysisGateError
	if errors.As(err, &gateErr) {
		return gateErr, true
	}
	return nil, false
}
