// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors

import (
	"fmt"
	"math/bits"

	"github.com/GnosisFoundation/bintensors/dtype"
	"github.com/GnosisFoundation/bintensors/errs"
)

// byteSize computes the number of payload bytes a tensor of the given
// dtype and shape occupies. An empty shape is a scalar holding a single
// element. Overflow at any step is an error.
func byteSize(dt dtype.DType, shape []uint64) (uint64, error) {
	numElements := uint64(1)
	for _, dim := range shape {
		var hi uint64
		if hi, numElements = bits.Mul64(numElements, dim); hi != 0 {
			return 0, fmt.Errorf("%w: element count overflows: shape %v", errs.ErrInvalidShape, shape)
		}
	}
	hi, numBytes := bits.Mul64(numElements, uint64(dt.Size()))
	if hi != 0 {
		return 0, fmt.Errorf("%w: byte size overflows: shape %v dtype %s", errs.ErrInvalidShape, shape, dt)
	}
	return numBytes, nil
}
