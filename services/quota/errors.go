package quota

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActivePeriod means the tenant has no quota period row.
	ErrNoActivePeriod = errors.New("no active quota period")
	// ErrQuotaExhausted means a guarded consume found nothing left to take.
	ErrQuotaExhausted = errors.New("quota exhausted")
)

// PlanError reports an unknown plan or response pack id.
type PlanError struct {
	Code    string
	Message string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newPlanError(code, id string) error {
	return &PlanError{Code: code, Message: fmt.Sprintf("unknown id %q", id)}
}
