package snakec

import "fmt"

// ErrorKind tags a CompileError with one of the kinds §4.1 names. The
// validator fails fast on the first error it finds; passes never
// accumulate a list of errors.
type ErrorKind int

const (
	ErrUnboundVariable ErrorKind = iota
	ErrDuplicateBinding
	ErrDuplicateArgName
	ErrDuplicateFunName
	ErrDuplicateField
	ErrDuplicateMethod
	ErrUndefinedClass
	ErrUndefinedMethod
	ErrUndefinedField
	ErrWrongFieldSize
	ErrOverflow
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnboundVariable:
		return "unbound variable"
	case ErrDuplicateBinding:
		return "duplicate binding"
	case ErrDuplicateArgName:
		return "duplicate argument name"
	case ErrDuplicateFunName:
		return "duplicate function name"
	case ErrDuplicateField:
		return "duplicate field"
	case ErrDuplicateMethod:
		return "duplicate method"
	case ErrUndefinedClass:
		return "undefined class"
	case ErrUndefinedMethod:
		return "undefined method"
	case ErrUndefinedField:
		return "undefined field"
	case ErrWrongFieldSize:
		return "wrong field size"
	case ErrOverflow:
		return "integer overflow"
	default:
		return "unknown error"
	}
}

// CompileError is the single tagged error type produced by static
// validation (spec.md §4.1). It carries the offending name or literal
// and the annotation (source span) of the node where the
// problem was found.
type CompileError struct {
	Kind  ErrorKind
	Name  string
	Num   int64
	Where Range
}

func (e *CompileError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %q @ %s", e.Kind, e.Name, e.Where)
	}
	if e.Kind == ErrOverflow {
		return fmt.Sprintf("%s: %d @ %s", e.Kind, e.Num, e.Where)
	}
	return fmt.Sprintf("%s @ %s", e.Kind, e.Where)
}

func errUnboundVariable(name string, rg Range) error {
	return &CompileError{Kind: ErrUnboundVariable, Name: name, Where: rg}
}
func errDuplicateBinding(name string, rg Range) error {
	return &CompileError{Kind: ErrDuplicateBinding, Name: name, Where: rg}
}
func errDuplicateArgName(name string, rg Range) error {
	return &CompileError{Kind: ErrDuplicateArgName, Name: name, Where: rg}
}
func errDuplicateFunName(name string, rg Range) error {
	return &CompileError{Kind: ErrDuplicateFunName, Name: name, Where: rg}
}
func errDuplicateField(name string, rg Range) error {
	return &CompileError{Kind: ErrDuplicateField, Name: name, Where: rg}
}
func errDuplicateMethod(name string, rg Range) error {
	return &CompileError{Kind: ErrDuplicateMethod, Name: name, Where: rg}
}
func errUndefinedClass(name string, rg Range) error {
	return &CompileError{Kind: ErrUndefinedClass, Name: name, Where: rg}
}
func errUndefinedMethod(name string, rg Range) error {
	return &CompileError{Kind: ErrUndefinedMethod, Name: name, Where: rg}
}
func errUndefinedField(name string, rg Range) error {
	return &CompileError{Kind: ErrUndefinedField, Name: name, Where: rg}
}
func errWrongFieldSize(class string, rg Range) error {
	return &CompileError{Kind: ErrWrongFieldSize, Name: class, Where: rg}
}
func errOverflow(num int64, rg Range) error {
	return &CompileError{Kind: ErrOverflow, Num: num, Where: rg}
}
