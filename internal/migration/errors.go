package migration

import (
	"errors"
	"fmt"
)

// Code is the stable status code of a run, also used as the process exit code.
type Code int

// Status codes. The values are part of the tool's external contract.
const (
	OK                      Code = 0
	LackingInput            Code = 0xA1
	DescriptorNotFound      Code = 0xB1
	InvalidDescriptor       Code = 0xD1
	InvalidProjectDirectory Code = 0xD2
	InvalidSourcesDirectory Code = 0xD3
	InvalidWorkDirectory    Code = 0xD4
	UnknownArtifactKind     Code = 0xE1
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case LackingInput:
		return "LackingInput"
	case DescriptorNotFound:
		return "DescriptorNotFound"
	case InvalidDescriptor:
		return "InvalidDescriptor"
	case InvalidProjectDirectory:
		return "InvalidProjectDirectory"
	case InvalidSourcesDirectory:
		return "InvalidSourcesDirectory"
	case InvalidWorkDirectory:
		return "InvalidWorkDirectory"
	case UnknownArtifactKind:
		return "UnknownArtifactKind"
	default:
		return fmt.Sprintf("Code(0x%X)", int(c))
	}
}

// Validation sentinels, wrapped by the StatusError returned from Run.
var (
	ErrMissingDescriptorRef = errors.New("project file is not given")
	ErrMissingTargetRef     = errors.New("target project directory is not given or empty")
	ErrDescriptorNotFound   = errors.New("project file is not found")
	ErrTargetExists         = errors.New("target directory already exists")
)

// StatusError is a failure carrying a taxonomy code.
type StatusError struct {
	Code Code
	Err  error
}

// Errorf builds a StatusError whose message is formatted like fmt.Errorf,
// so %w keeps the wrapped error reachable.
func Errorf(code Code, format string, args ...any) *StatusError {
	return &StatusError{Code: code, Err: fmt.Errorf(format, args...)}
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// FaultError is an unexpected failure of a tool step: a recovered panic or
// an error without a taxonomy code.
type FaultError struct {
	State State
	// Panic holds the recovered value, nil for plain errors.
	Panic any
	Err   error
}

func (e *FaultError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s: panic: %v", e.State, e.Panic)
	}
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }

// CodeOf extracts the status code of a Run result. A nil error is OK. The
// second result is false for faults, which have no code.
func CodeOf(err error) (Code, bool) {
	if err == nil {
		return OK, true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// ExitCode maps a Run result to a process exit code. Faults exit with 1.
func ExitCode(err error) int {
	if code, ok := CodeOf(err); ok {
		return int(code)
	}
	return 1
}
