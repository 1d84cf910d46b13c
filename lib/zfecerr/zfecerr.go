// Copyright 2026 The zfecfs Authors
// SPDX-License-Identifier: Apache-2.0

package zfecerr

import (
	"errors"
	"fmt"
)

// Kind is a symbolic error category, independent of message text.
type Kind int

const (
	// Unknown is the zero value; KindOf returns it for errors that do
	// not wrap an *Error.
	Unknown Kind = iota

	// NotFound indicates a missing share file, source path, or
	// unparseable virtual path prefix.
	NotFound

	// Permission indicates the calling process lacks access to the
	// underlying path.
	Permission

	// IO indicates a read failure on an already-open handle.
	IO

	// CorruptMetadata indicates a share's header failed validation
	// (required == 0, excessBytes >= required, or fewer than H bytes).
	CorruptMetadata

	// InsufficientShares indicates fewer than K share files were
	// supplied to DecodedFile.Open.
	InsufficientShares

	// InconsistentShares indicates the supplied share files disagree
	// on required, excessBytes, encodedSize, or carry duplicate
	// indices.
	InconsistentShares

	// Internal indicates a precondition violation within the core
	// itself, such as an out-of-range share index reaching the FEC
	// primitive.
	Internal
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Permission:
		return "permission"
	case IO:
		return "io"
	case CorruptMetadata:
		return "corrupt_metadata"
	case InsufficientShares:
		return "insufficient_shares"
	case InconsistentShares:
		return "inconsistent_shares"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every core package. Op
// names the failing operation (e.g. "sharefs.OpenEncodedFile"); Kind
// classifies the failure; Err, if non-nil, is the underlying cause.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error with no underlying cause.
func New(op string, kind Kind) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap constructs an *Error carrying an underlying cause.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Is reports whether err carries the given symbolic kind.
func Is(err error, kind Kind) bool {
	var zerr *Error
	if !errors.As(err, &zerr) {
		return false
	}
	return zerr.Kind == kind
}

// KindOf returns the symbolic kind of err, or Unknown if err does not
// wrap a *Error.
func KindOf(err error) Kind {
	var zerr *Error
	if !errors.As(err, &zerr) {
		return Unknown
	}
	return zerr.Kind
}
