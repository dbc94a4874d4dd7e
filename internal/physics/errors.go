package physics

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter indicates an input outside its documented range or a
// non-positive work function.
var ErrInvalidParameter = errors.New("physics: invalid parameter")

// ParameterError names the offending field.
type ParameterError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s=%g outside [%g, %g]", ErrInvalidParameter, e.Field, e.Value, e.Min, e.Max)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
