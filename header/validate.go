// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package header

import (
	"fmt"
	"math/bits"

	"github.com/GnosisFoundation/bintensors/errs"
)

// maxAlignGap is the largest hole tolerated between two consecutive tensor
// byte ranges, and before the first one. Writers may align tensor data up
// to an 8-byte boundary; anything wider than the worst-case alignment slack
// is not addressable by any descriptor and gets rejected.
const maxAlignGap = 7

// Validate checks the content of a Header against the bintensors format
// rules and the given payload length, returning an error wrapping the
// specific errs sentinel on the first violation, otherwise nil.
//
// It is a pure function of the header and payloadLen: payload bytes are
// never touched. The checks are:
//
//   - every descriptor has a valid dtype, a shape within the rank and
//     dimension limits, an element count that does not overflow, and a
//     byte range whose size equals element count times element size
//   - the name map is a bijection onto the descriptor table: every name
//     maps to an in-range index and every descriptor is covered exactly once
//   - byte ranges, sorted by begin, do not overlap, stay within
//     [0, payloadLen], and are separated by at most maxAlignGap bytes
func Validate(h Header, payloadLen uint64, limits Limits) error {
	if uint64(len(h.Tensors)) > limits.MaxDescriptors {
		return fmt.Errorf("%w: descriptor count %d exceeds limit %d", errs.ErrInvalidHeaderLength, len(h.Tensors), limits.MaxDescriptors)
	}
	for i, t := range h.Tensors {
		if err := validateTensorInfo(t, limits); err != nil {
			return fmt.Errorf("invalid tensor %q: %w", h.nameOfIndex(i), err)
		}
	}
	if err := validateNameMap(h); err != nil {
		return err
	}
	return validateOffsets(h, payloadLen)
}

func validateTensorInfo(t TensorInfo, limits Limits) error {
	if err := t.DType.Validate(); err != nil {
		return err
	}
	if uint64(len(t.Shape)) > limits.MaxRank {
		return fmt.Errorf("%w: rank %d exceeds limit %d", errs.ErrInvalidShape, len(t.Shape), limits.MaxRank)
	}

	numElements := uint64(1)
	for _, dim := range t.Shape {
		if dim > limits.MaxDim {
			return fmt.Errorf("%w: dim %d exceeds limit %d", errs.ErrInvalidShape, dim, limits.MaxDim)
		}
		var hi uint64
		if hi, numElements = bits.Mul64(numElements, dim); hi != 0 {
			return fmt.Errorf("%w: element count overflows", errs.ErrInvalidShape)
		}
	}
	hi, numBytes := bits.Mul64(numElements, uint64(t.DType.Size()))
	if hi != 0 {
		return fmt.Errorf("%w: byte size overflows", errs.ErrInvalidShape)
	}

	if t.DataOffsets.End < t.DataOffsets.Begin {
		return fmt.Errorf("%w: begin %d > end %d", errs.ErrInvalidOffset, t.DataOffsets.Begin, t.DataOffsets.End)
	}
	if offBytes := t.DataOffsets.ByteLen(); offBytes != numBytes {
		return fmt.Errorf("%w: byte size computed from shape (%d) differs from data-offsets size (%d)", errs.ErrInvalidOffset, numBytes, offBytes)
	}
	return nil
}

func validateNameMap(h Header) error {
	if len(h.Index) != len(h.Names) {
		return fmt.Errorf("%w: %d names, %d index entries", errs.ErrDuplicateName, len(h.Names), len(h.Index))
	}
	if len(h.Names) < len(h.Tensors) {
		return fmt.Errorf("%w: %d descriptors, only %d names", errs.ErrMissingDescriptor, len(h.Tensors), len(h.Names))
	}

	covered := make([]bool, len(h.Tensors))
	for _, name := range h.Names {
		idx := h.Index[name]
		if idx < 0 || idx >= len(h.Tensors) {
			return fmt.Errorf("%w: name %q maps to index %d of %d descriptors", errs.ErrIndexOutOfRange, name, idx, len(h.Tensors))
		}
		if covered[idx] {
			return fmt.Errorf("%w: descriptor %d mapped by more than one name", errs.ErrMissingDescriptor, idx)
		}
		covered[idx] = true
	}
	for idx, ok := range covered {
		if !ok {
			return fmt.Errorf("%w: descriptor %d has no name", errs.ErrMissingDescriptor, idx)
		}
	}
	return nil
}

func validateOffsets(h Header, payloadLen uint64) error {
	prevEnd := uint64(0)
	for _, i := range IndicesByDataOffsets(h.Tensors) {
		off := h.Tensors[i].DataOffsets
		if off.Begin < prevEnd {
			return fmt.Errorf("%w: tensor %q range [%d, %d) overlaps previous range ending at %d",
				errs.ErrInvalidOffset, h.nameOfIndex(i), off.Begin, off.End, prevEnd)
		}
		if off.Begin-prevEnd > maxAlignGap {
			return fmt.Errorf("%w: %d-byte gap before tensor %q", errs.ErrInvalidOffset, off.Begin-prevEnd, h.nameOfIndex(i))
		}
		prevEnd = off.End
	}
	if prevEnd > payloadLen {
		return fmt.Errorf("%w: data ends at %d, payload is %d bytes", errs.ErrInvalidOffset, prevEnd, payloadLen)
	}
	return nil
}

// nameOfIndex finds the name mapped to descriptor i, for error reporting.
func (h Header) nameOfIndex(i int) string {
	for name, idx := range h.Index {
		if idx == i {
			return name
		}
	}
	return "no_tensor"
}
