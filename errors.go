package attach

import (
	"errors"
	"fmt"
)

var (
	// ErrCollision indicates a namespace key already bound in the target scope
	// at session begin. No mutation happens when this is returned.
	ErrCollision = errors.New("attach: namespace key collides with a global")
	// ErrImmutableGlobal indicates a pre-existing global binding was rebound
	// during a session. The scope is fully restored before this surfaces.
	ErrImmutableGlobal = errors.New("attach: pre-existing global was rebound")
	// ErrNameNotFound indicates attribute access on a key the namespace does
	// not hold.
	ErrNameNotFound = errors.New("attach: name not found")
	// ErrInvalidKey indicates a namespace key that is not a valid identifier
	// and therefore cannot be bound in a scope.
	ErrInvalidKey = errors.New("attach: key is not a valid identifier")
	// ErrSessionEnded indicates End was called on a session that already ran
	// its reconciliation.
	ErrSessionEnded = errors.New("attach: session already ended")
	// ErrNilScope indicates Begin received a nil scope.
	ErrNilScope = errors.New("attach: scope must not be nil")
	// ErrNilNamespace indicates Begin received a nil namespace.
	ErrNilNamespace = errors.New("attach: namespace must not be nil")
)

// ImmutableGlobalError reports the first pre-existing global binding found
// rebound at session end. BlockErr carries the error that was already
// propagating out of the overlaid block, if any, so callers see both failures
// through errors.Is/As.
type ImmutableGlobalError struct {
	Key      string
	BlockErr error
}

func (e *ImmutableGlobalError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.BlockErr != nil {
		return fmt.Sprintf("attach: rebinding %q is prohibited because it was already a global (block error: %v)", e.Key, e.BlockErr)
	}
	return fmt.Sprintf("attach: rebinding %q is prohibited because it was already a global", e.Key)
}

// Unwrap exposes both the ErrImmutableGlobal sentinel and the chained block
// error.
func (e *ImmutableGlobalError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.BlockErr != nil {
		return []error{ErrImmutableGlobal, e.BlockErr}
	}
	return []error{ErrImmutableGlobal}
}
