package service

import (
	"errors"
	"fmt"

	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// ErrNotEditable is returned when a mutation targets an application that
// has already left the draft states.
var ErrNotEditable = errors.New("application is no longer editable")

// ValidationError carries the per-field failures of a rejected mutation.
// It is handled at the boundary closest to the user and never persisted.
type ValidationError struct {
	Fails []entity.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fails) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Fails[0].Error())
	}
	return fmt.Sprintf("validation failed: %d fields", len(e.Fails))
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
