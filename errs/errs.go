// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs defines the sentinel errors surfaced by the bintensors codec.
//
// Every validation failure produced while parsing or checking untrusted
// input wraps exactly one of these values, so callers can classify failures
// with errors.Is without parsing error strings.
package errs

import "errors"

var (
	// ErrInvalidHeaderLength reports a declared header length that exceeds
	// the available data, violates the 8-byte alignment rule, or exceeds
	// the configured maximum header size. It also reports header content
	// that is truncated, has trailing bytes after the metadata, or declares
	// more descriptors, names or metadata entries than the limits or the
	// header size allow.
	ErrInvalidHeaderLength = errors.New("invalid header length")

	// ErrInvalidVarint reports a truncated varint, a reserved tag byte,
	// or a non-minimal encoding.
	ErrInvalidVarint = errors.New("invalid varint")

	// ErrUnknownDType reports a dtype code outside the registry.
	ErrUnknownDType = errors.New("unknown dtype")

	// ErrInvalidShape reports a tensor shape exceeding the rank or
	// dimension limits, or whose element count overflows.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrInvalidOffset reports a descriptor byte range that is reversed,
	// overlapping another range, out of payload bounds, or inconsistent
	// with the tensor's dtype and shape.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrDuplicateName reports a tensor or metadata name occurring twice.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrMissingDescriptor reports a descriptor not covered by exactly one
	// name (no name, or several names mapping to it), or a name without a
	// descriptor index.
	ErrMissingDescriptor = errors.New("missing descriptor")

	// ErrIndexOutOfRange reports a name mapping to a descriptor index
	// outside the descriptor table.
	ErrIndexOutOfRange = errors.New("descriptor index out of range")

	// ErrInvalidUTF8 reports a tensor name or metadata string that is not
	// valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8")

	// ErrInvalidFormatVersion reports an unsupported format version byte.
	ErrInvalidFormatVersion = errors.New("invalid format version")

	// ErrInvalidTensorData reports serializer input whose byte length does
	// not match the dtype and shape.
	ErrInvalidTensorData = errors.New("invalid tensor data")

	// ErrNotFound reports a lookup of an unknown tensor name.
	ErrNotFound = errors.New("tensor not found")

	// ErrIO reports a failure of the underlying storage.
	ErrIO = errors.New("i/o error")
)
