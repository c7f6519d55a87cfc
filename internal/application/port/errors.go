package port

import "errors"

var (
	// ErrProviderFailure is returned when an external collaborator is
	// unreachable or rejects a request. Recoverable with caller action;
	// never silently converted into a fabricated success.
	ErrProviderFailure = errors.New("provider failure")

	// ErrProviderTimeout is returned when an external call exceeds its
	// configured deadline.
	ErrProviderTimeout = errors.New("provider timeout")
)
