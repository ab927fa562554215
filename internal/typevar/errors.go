package typevar

import (
	"errors"
	"fmt"
)

// Error reports a defect in how type variables were declared or combined.
//
// Errors include:
//   - Invalid transform: a width or lane transform whose result leaves the
//     valid range for some type in the base set
//   - Rebinding a variable that is already derived or pinned to one type
//   - A derivation cycle
//   - Constraints that cannot be applied (derived operands, empty result)
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Var names the type variable the operation was applied to.
	Var string

	// Other names the second type variable, for binary operations.
	Other string
}

// ErrorCode categorizes type variable errors.
type ErrorCode string

const (
	// ErrCodeInvalidTransform indicates a derived function cannot apply to
	// every type in its base set.
	ErrCodeInvalidTransform ErrorCode = "INVALID_TRANSFORM"

	// ErrCodeAlreadyDerived indicates ChangeToDerived on a derived variable.
	ErrCodeAlreadyDerived ErrorCode = "ALREADY_DERIVED"

	// ErrCodePinned indicates ChangeToDerived on a singleton variable.
	ErrCodePinned ErrorCode = "PINNED"

	// ErrCodeCyclicDerivation indicates a variable would derive from itself.
	ErrCodeCyclicDerivation ErrorCode = "CYCLIC_DERIVATION"

	// ErrCodeForeignEnv indicates variables from two different environments.
	ErrCodeForeignEnv ErrorCode = "FOREIGN_ENV"

	// ErrCodePropagationUnsupported indicates a constraint involving a
	// derived variable. Such constraints are not propagated.
	ErrCodePropagationUnsupported ErrorCode = "PROPAGATION_UNSUPPORTED"

	// ErrCodeEmptyTypeSet indicates a constraint whose intersection admits
	// no concrete type. The variable is left unchanged.
	ErrCodeEmptyTypeSet ErrorCode = "EMPTY_TYPESET"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Other != "" {
		return fmt.Sprintf("%s: %s (var=%s, other=%s)", e.Code, e.Message, e.Var, e.Other)
	}
	if e.Var != "" {
		return fmt.Sprintf("%s: %s (var=%s)", e.Code, e.Message, e.Var)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is an *Error with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsPropagationUnsupported reports whether err is a constraint that was not
// applied because one side is derived.
func IsPropagationUnsupported(err error) bool {
	return HasCode(err, ErrCodePropagationUnsupported)
}

// IsEmptyTypeSet reports whether err is a constraint with an unsatisfiable
// result.
func IsEmptyTypeSet(err error) bool {
	return HasCode(err, ErrCodeEmptyTypeSet)
}

func newTransformError(tv TypeVar, f DerivedFunc, message string) *Error {
	return &Error{
		Code:    ErrCodeInvalidTransform,
		Message: fmt.Sprintf("%s: %s", f, message),
		Var:     tv.Name(),
	}
}
