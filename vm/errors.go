package vm

import "fmt"

// ---------------------------------------------------------------------------
// Runtime errors
// ---------------------------------------------------------------------------

// ErrorKind classifies a runtime failure.
type ErrorKind int

const (
	ErrStackUnderflow ErrorKind = iota
	ErrUndefinedVariable
	ErrDivisionByZero
	ErrModuloByZero
	ErrInvalidOperation
)

var errorKindNames = [...]string{
	ErrStackUnderflow:    "StackUnderflow",
	ErrUndefinedVariable: "UndefinedVariable",
	ErrDivisionByZero:    "DivisionByZero",
	ErrModuloByZero:      "ModuloByZero",
	ErrInvalidOperation:  "InvalidOperation",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "RuntimeError"
}

// RuntimeError is a fatal execution error. Every runtime error aborts the
// current Run call; there is no in-language recovery mechanism.
type RuntimeError struct {
	Kind ErrorKind
	Op   Opcode // opcode being executed when the error was raised
	Pos  int    // instruction index within the executing stream
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s (at instruction %d: %s)", e.Kind, e.Msg, e.Pos, e.Op)
}

// newError builds a positioned runtime error.
func newError(kind ErrorKind, op Opcode, pos int, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{
		Kind: kind,
		Op:   op,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// invalidf builds an InvalidOperation error without position context.
// Built-ins use it; the interpreter fills in Op and Pos when the error
// crosses a call boundary.
func invalidf(format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: ErrInvalidOperation, Pos: -1, Msg: fmt.Sprintf(format, args...)}
}
