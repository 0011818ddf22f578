package sales

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidQuery reports a query that cannot be sent to the backend.
	ErrInvalidQuery = errors.New("sales: invalid query")
	// ErrTransport marks network failures and transient remote errors (5xx, 429).
	ErrTransport = errors.New("sales: transport failure")
	// ErrRemote marks non-transient remote rejections (4xx).
	ErrRemote = errors.New("sales: remote rejected request")
	// ErrMalformedResponse marks responses missing expected fields or undecodable bodies.
	ErrMalformedResponse = errors.New("sales: malformed response")
	// ErrStale is returned by a Session when a newer fetch superseded the call.
	ErrStale = errors.New("sales: result superseded by newer request")
)

// PredictionFailure captures a prediction call that failed in isolated mode.
type PredictionFailure struct {
	ProductID string
	Err       error
}

// PartialError is returned alongside a usable Result when some prediction
// calls failed under IsolateFailures.
type PartialError struct {
	Failures []PredictionFailure
}

func (e *PartialError) Error() string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = f.ProductID
	}
	return fmt.Sprintf("sales: %d prediction call(s) failed: %s", len(e.Failures), strings.Join(ids, ", "))
}

// Unwrap exposes the individual failure causes to errors.Is/As.
func (e *PartialError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}

func invalidQuery(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
