// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package varint implements the variable-length unsigned integer encoding
// used throughout the bintensors header.
//
// A value N is encoded as:
//
//	N <= 0xFA                  single byte equal to N
//	0xFA < N <= 0xFFFF         0xFB followed by 2 little-endian bytes
//	0xFFFF < N <= 0xFFFFFFFF   0xFC followed by 4 little-endian bytes
//	N > 0xFFFFFFFF             0xFD followed by 8 little-endian bytes
//
// Tags 0xFE and 0xFF are reserved. Decoding rejects reserved tags,
// truncated input, and non-minimal encodings: every value has exactly one
// valid byte representation. Strict minimality keeps the header canonical,
// so equal headers are equal byte strings.
package varint

import (
	"encoding/binary"
	"fmt"

	"github.com/GnosisFoundation/bintensors/errs"
)

// MaxSingleByte is the largest value encoded as a bare single byte.
const MaxSingleByte = 0xFA

// Tag bytes introducing the wider little-endian forms.
const (
	Tag2 = 0xFB
	Tag4 = 0xFC
	Tag8 = 0xFD
)

// Len returns the number of bytes Append would write for v.
func Len(v uint64) int {
	switch {
	case v <= MaxSingleByte:
		return 1
	case v <= 0xFFFF:
		return 3
	case v <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// Append appends the encoding of v to dst and returns the extended slice.
func Append(dst []byte, v uint64) []byte {
	switch {
	case v <= MaxSingleByte:
		return append(dst, byte(v))
	case v <= 0xFFFF:
		return binary.LittleEndian.AppendUint16(append(dst, Tag2), uint16(v))
	case v <= 0xFFFFFFFF:
		return binary.LittleEndian.AppendUint32(append(dst, Tag4), uint32(v))
	default:
		return binary.LittleEndian.AppendUint64(append(dst, Tag8), v)
	}
}

// Uint decodes a single varint from the beginning of buf, returning the
// value and the number of bytes consumed.
//
// It fails wrapping errs.ErrInvalidVarint on empty or truncated input,
// on the reserved tags 0xFE and 0xFF, and on any non-minimal form.
func Uint(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, fmt.Errorf("%w: empty input", errs.ErrInvalidVarint)
	}
	switch tag := buf[0]; tag {
	case Tag2:
		if len(buf) < 3 {
			return 0, 0, fmt.Errorf("%w: truncated 2-byte form", errs.ErrInvalidVarint)
		}
		v := uint64(binary.LittleEndian.Uint16(buf[1:3]))
		if v <= MaxSingleByte {
			return 0, 0, fmt.Errorf("%w: non-minimal 2-byte form of %d", errs.ErrInvalidVarint, v)
		}
		return v, 3, nil
	case Tag4:
		if len(buf) < 5 {
			return 0, 0, fmt.Errorf("%w: truncated 4-byte form", errs.ErrInvalidVarint)
		}
		v := uint64(binary.LittleEndian.Uint32(buf[1:5]))
		if v <= 0xFFFF {
			return 0, 0, fmt.Errorf("%w: non-minimal 4-byte form of %d", errs.ErrInvalidVarint, v)
		}
		return v, 5, nil
	case Tag8:
		if len(buf) < 9 {
			return 0, 0, fmt.Errorf("%w: truncated 8-byte form", errs.ErrInvalidVarint)
		}
		v := binary.LittleEndian.Uint64(buf[1:9])
		if v <= 0xFFFFFFFF {
			return 0, 0, fmt.Errorf("%w: non-minimal 8-byte form of %d", errs.ErrInvalidVarint, v)
		}
		return v, 9, nil
	case 0xFE, 0xFF:
		return 0, 0, fmt.Errorf("%w: reserved tag 0x%X", errs.ErrInvalidVarint, tag)
	default:
		return uint64(tag), 1, nil
	}
}
