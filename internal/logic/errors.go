package logic

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks request problems the handler reports as 400.
var ErrInvalidRequest = errors.New("invalid request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
