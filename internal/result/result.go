// Package result provides a two-variant outcome type used by every fallible
// service operation: a Result carries either a value or one classified
// application error, never both.
package result

import (
	apperrors "github.com/userbase/backend/internal/errors"
)

// Result holds either a success value of type T or an *apperrors.AppError.
// Construct one through Ok or Fail; the zero value is an invalid Result and
// IsOK reports false for it.
type Result[T any] struct {
	value T
	err   *apperrors.AppError
	ok    bool
}

// Ok returns a success Result carrying value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Fail returns an error Result carrying err. A nil err is promoted to an
// internal error so a Result can never be simultaneously empty and successful.
func Fail[T any](err *apperrors.AppError) Result[T] {
	if err == nil {
		err = apperrors.InternalError("error result constructed without an error")
	}
	return Result[T]{err: err}
}

// IsOK reports whether the Result carries a success value.
func (r Result[T]) IsOK() bool {
	return r.ok
}

// IsErr reports whether the Result carries an error.
func (r Result[T]) IsErr() bool {
	return !r.ok
}

// Value returns the success value. It is only meaningful when IsOK is true;
// on an error Result it returns the zero value of T.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the carried error, or nil on a success Result.
func (r Result[T]) Err() *apperrors.AppError {
	if r.ok {
		return nil
	}
	return r.err
}
