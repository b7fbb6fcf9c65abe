// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dtype defines the closed set of tensor element types supported
// by the bintensors format.
package dtype

import (
	"fmt"

	"github.com/GnosisFoundation/bintensors/errs"
)

// DType represents a bintensors data type.
//
// The numeric value of each constant is the wire code written in the
// header, so the table below is part of the on-disk format and must not
// be reordered. Code 14 is reserved and never valid.
type DType uint8

const (
	// BOL represents an 8-bit boolean data type.
	BOL DType = iota
	// U8 represents an 8-bit unsigned integer data type.
	U8
	// I8 represents an 8-bit signed integer data type.
	I8
	// F8E5M2 represents an 8-bit floating point data type (5-bit exponent,
	// 2-bit mantissa).
	F8E5M2
	// F8E4M3 represents an 8-bit floating point data type (4-bit exponent,
	// 3-bit mantissa).
	F8E4M3
	// I16 represents a 16-bit signed integer data type.
	I16
	// U16 represents a 16-bit unsigned integer data type.
	U16
	// F16 represents a 16-bit half-precision floating point data type.
	F16
	// BF16 represents a 16-bit brain floating point data type.
	BF16
	// I32 represents a 32-bit signed integer data type.
	I32
	// U32 represents a 32-bit unsigned integer data type.
	U32
	// F32 represents a 32-bit floating point data type.
	F32
	// F64 represents a 64-bit floating point data type.
	F64
	// I64 represents a 64-bit signed integer data type.
	I64

	// Code 14 is reserved.

	// U64 represents a 64-bit unsigned integer data type.
	U64 DType = 15
)

const reservedCode DType = 14

var (
	dTypeToString = [...]string{
		BOL:    "BOL",
		U8:     "U8",
		I8:     "I8",
		F8E5M2: "F8_E5M2",
		F8E4M3: "F8_E4M3",
		I16:    "I16",
		U16:    "U16",
		F16:    "F16",
		BF16:   "BF16",
		I32:    "I32",
		U32:    "U32",
		F32:    "F32",
		F64:    "F64",
		I64:    "I64",
		U64:    "U64",
	}
	dTypeToSize = [...]uint64{
		BOL:    1,
		U8:     1,
		I8:     1,
		F8E5M2: 1,
		F8E4M3: 1,
		I16:    2,
		U16:    2,
		F16:    2,
		BF16:   2,
		I32:    4,
		U32:    4,
		F32:    4,
		F64:    8,
		I64:    8,
		U64:    8,
	}
	stringToDType = map[string]DType{
		"BOL":     BOL,
		"U8":      U8,
		"I8":      I8,
		"F8_E5M2": F8E5M2,
		"F8_E4M3": F8E4M3,
		"I16":     I16,
		"U16":     U16,
		"F16":     F16,
		"BF16":    BF16,
		"I32":     I32,
		"U32":     U32,
		"F32":     F32,
		"F64":     F64,
		"I64":     I64,
		"U64":     U64,
	}
)

// FromCode interprets a wire code byte as a DType.
// It fails wrapping errs.ErrUnknownDType if the code is not in the registry.
func FromCode(code byte) (DType, error) {
	dt := DType(code)
	if err := dt.Validate(); err != nil {
		return 0, err
	}
	return dt, nil
}

// Code returns the wire code byte of the DType.
func (dt DType) Code() byte {
	return byte(dt)
}

// Validate returns an error if the DType is not valid, otherwise nil.
func (dt DType) Validate() error {
	if dt > U64 || dt == reservedCode {
		return fmt.Errorf("%w: code %d", errs.ErrUnknownDType, dt)
	}
	return nil
}

// Size returns the size in bytes of one element of this data type,
// or -1 if the DType value is invalid.
func (dt DType) Size() int {
	if err := dt.Validate(); err != nil {
		return -1
	}
	return int(dTypeToSize[dt])
}

// String returns a string representation of a DType.
func (dt DType) String() string {
	if err := dt.Validate(); err != nil {
		return err.Error()
	}
	return dTypeToString[dt]
}

// Parse attempts to parse a DType value from its string tag.
func Parse(s string) (DType, error) {
	dt, ok := stringToDType[s]
	if !ok {
		return 0, fmt.Errorf("%w: tag %q", errs.ErrUnknownDType, s)
	}
	return dt, nil
}

// MarshalText satisfies encoding.TextMarshaler interface.
func (dt DType) MarshalText() ([]byte, error) {
	if err := dt.Validate(); err != nil {
		return nil, err
	}
	return []byte(dTypeToString[dt]), nil
}

// UnmarshalText satisfies encoding.TextUnmarshaler interface.
func (dt *DType) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}
