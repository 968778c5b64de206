package timeerr

import (
	"errors"
	"fmt"
)

// Code categorizes time-scale errors.
type Code string

const (
	// CodeParse indicates text that is not in canonical form.
	CodeParse Code = "PARSE"

	// CodeValidation indicates a field value outside its valid range.
	CodeValidation Code = "VALIDATION"

	// CodeOverflow indicates an arithmetic result outside int64.
	CodeOverflow Code = "OVERFLOW"

	// CodeNullReference indicates a missing table or input.
	CodeNullReference Code = "NULL_REFERENCE"
)

// Error is the error type returned by all time-scale operations.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op names the operation that failed, e.g. "tai.Parse".
	Op string

	// Input is the offending text for parse errors.
	Input string

	// Message is a human-readable description.
	Message string

	// Err is an optional underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Input != "" {
		msg = fmt.Sprintf("%s (input=%q)", msg, e.Input)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Parse creates a parse error for the given input text.
func Parse(op, input, format string, args ...any) *Error {
	return &Error{Code: CodeParse, Op: op, Input: input, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(op, format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Overflow creates an arithmetic overflow error.
func Overflow(op, format string, args ...any) *Error {
	return &Error{Code: CodeOverflow, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NullReference creates an error for a missing collaborator.
func NullReference(op, what string) *Error {
	return &Error{Code: CodeNullReference, Op: op, Message: what + " must not be nil"}
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) Code {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsParse reports whether err is a parse error.
func IsParse(err error) bool {
	return CodeOf(err) == CodeParse
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}

// IsOverflow reports whether err is an arithmetic overflow error.
func IsOverflow(err error) bool {
	return CodeOf(err) == CodeOverflow
}

// IsNullReference reports whether err is a null-reference error.
func IsNullReference(err error) bool {
	return CodeOf(err) == CodeNullReference
}
