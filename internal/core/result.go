package core

// Unit is the value carried by a successful command that has nothing to return.
type Unit struct{}

// Result is the envelope every request handler returns.
//
// A result is in exactly one of three states:
//   - success with a value (Success)
//   - success without a value, meaning the referenced entity does not exist (NotFound)
//   - failure with a user-facing message (Failure)
//
// Infrastructure errors never travel inside a Result; handlers return them as Go errors.
type Result[T any] struct {
	IsSuccess bool
	Value     T
	Error     string

	hasValue bool
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{IsSuccess: true, Value: value, hasValue: true}
}

// NotFound is a successful result with no value.
func NotFound[T any]() Result[T] {
	return Result[T]{IsSuccess: true}
}

// Failure reports a domain rule violation.
func Failure[T any](message string) Result[T] {
	return Result[T]{Error: message}
}

// IsEmpty reports whether the result is a success that carries no value.
func (r Result[T]) IsEmpty() bool {
	return r.IsSuccess && !r.hasValue
}

// IsFailure reports whether the result carries a domain failure.
func (r Result[T]) IsFailure() bool {
	return !r.IsSuccess
}
