package flowfield

import (
	"fmt"
	"strings"
)

// SyntaxError reports a formula that is not well-formed array notation or
// that fails to tokenize. It is returned by Compile, never panicked.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string {
	return "flowfield: " + e.Msg
}

// ComponentCountError reports an array-notation formula with the wrong
// number of components for the requested dimension.
type ComponentCountError struct {
	Expected int
	Actual   int
}

func (e *ComponentCountError) Error() string {
	return fmt.Sprintf("flowfield: expected %d components, got %d", e.Expected, e.Actual)
}

// ComponentError wraps a parse failure inside one component of the array.
// Index is zero-based. A single bad component aborts the whole compile.
type ComponentError struct {
	Index int
	Err   error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("flowfield: component %d: %v", e.Index+1, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

// InvalidVariableError reports symbols that are not valid coordinate names
// for the field's dimension (x,y for 2D; x,y,z for 3D). Names is sorted.
type InvalidVariableError struct {
	Names []string
}

func (e *InvalidVariableError) Error() string {
	return "flowfield: invalid variables: " + strings.Join(e.Names, ", ")
}
