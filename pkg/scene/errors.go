package scene

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds returned by scene operations. Test with errors.Is.
var (
	ErrInsufficientSelection = errors.New("insufficient selection")
	ErrInvalidOperand        = errors.New("invalid operand")
	ErrNotAGroup             = errors.New("not a group")
	ErrDegenerateResult      = errors.New("degenerate result")
	ErrNotFound              = errors.New("entity not found")
)

// OpError records the operation and ids involved in a rejected mutation.
type OpError struct {
	Op  string
	IDs []EntityID
	Err error
}

func (e *OpError) Error() string {
	if len(e.IDs) == 0 {
		return fmt.Sprintf("scene: %s: %v", e.Op, e.Err)
	}
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.Short()
	}
	return fmt.Sprintf("scene: %s [%s]: %v", e.Op, strings.Join(ids, " "), e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opError(op string, ids []EntityID, kind error, format string, args ...any) *OpError {
	err := kind
	if format != "" {
		err = fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
	}
	return &OpError{Op: op, IDs: ids, Err: err}
}
