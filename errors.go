// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned when the input is truncated, corrupt,
	// or violates one of the sanity bounds.
	ErrInvalidFormat = errors.New("jxlmeta: invalid format")

	// ErrNotFound is returned when the requested tag or field does not exist
	// in otherwise well-formed data.
	ErrNotFound = errors.New("jxlmeta: not found")
)

// InvalidFormatError is used when the format is invalid.
type InvalidFormatError struct {
	Err error
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidFormat, e.Err)
}

// Is reports whether the target is ErrInvalidFormat.
func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// IsInvalidFormat reports whether the error was caused by malformed input.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

// IsNotFound reports whether the error signals a structurally absent value.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func newInvalidFormatError(err error) error {
	if err == nil {
		return nil
	}
	var ife *InvalidFormatError
	if errors.As(err, &ife) {
		return err
	}
	return &InvalidFormatError{Err: err}
}

func newInvalidFormatErrorf(format string, args ...any) error {
	return newInvalidFormatError(fmt.Errorf(format, args...))
}

func newNotFoundErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
