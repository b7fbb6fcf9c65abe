// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package header

import (
	"sort"

	"github.com/GnosisFoundation/bintensors/dtype"
)

// TensorInfo describes one tensor within the header: its element type,
// shape, and byte range in the payload.
// Endianness is assumed to be little-endian. Ordering is assumed to be 'C'.
type TensorInfo struct {
	// The DType of each element of the tensor.
	DType dtype.DType
	// The Shape of the tensor. An empty shape denotes a scalar.
	Shape []uint64
	// DataOffsets locates the tensor's data within the payload.
	DataOffsets DataOffsets
}

// DataOffsets describes the "[Begin, End)" byte range of a tensor's data
// within the payload. Both positions are relative to the beginning of the
// payload, not of the whole stream.
type DataOffsets struct {
	// Begin is the lower bound byte index (included).
	Begin uint64
	// End is the upper bound byte index (excluded).
	End uint64
}

// ByteLen returns the number of payload bytes the range spans.
// The result is meaningless if End < Begin.
func (a DataOffsets) ByteLen() uint64 {
	return a.End - a.Begin
}

// Less reports whether DataOffsets "a" is ordered before DataOffsets "b".
func (a DataOffsets) Less(b DataOffsets) bool {
	return a.Begin < b.Begin || (a.Begin == b.Begin && a.End < b.End)
}

// IndicesByDataOffsets returns the indices of ts sorted by ascending
// DataOffsets. The sort is stable, so descriptors with identical ranges
// keep their wire order.
func IndicesByDataOffsets(ts []TensorInfo) []int {
	order := make([]int, len(ts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ts[order[i]].DataOffsets.Less(ts[order[j]].DataOffsets)
	})
	return order
}
