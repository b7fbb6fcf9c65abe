// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors

import (
	"fmt"

	"github.com/GnosisFoundation/bintensors/dtype"
	"github.com/GnosisFoundation/bintensors/errs"
)

// View is the interface a tensor must satisfy to be serialized.
//
// It is the adapter boundary: framework bindings convert their native
// tensors to (dtype, shape, bytes) triples behind this interface, and the
// codec never learns about framework types.
type View interface {
	// The DType of the tensor.
	DType() dtype.DType

	// The Shape of the tensor.
	Shape() []uint64

	// The Data of the tensor, little-endian, row-major, contiguous.
	Data() []byte

	// DataLen returns the length of the data in bytes.
	//
	// This is necessary as this might be faster to get than `len(Data())`.
	DataLen() uint64
}

// NamedView is a pair of a View and its name (or label, or key).
type NamedView[V View] struct {
	Name string
	View V
}

// TensorView is a view of a tensor within a deserialized buffer.
//
// It references a sub-slice of the payload without copying, and is thus
// a readable zero-copy view of a single tensor.
type TensorView struct {
	dType dtype.DType
	shape []uint64
	data  []byte
}

// NamedTensorView is a pair of a TensorView and its name (or label, or key).
type NamedTensorView struct {
	Name       string
	TensorView TensorView
}

func (tv TensorView) DType() dtype.DType { return tv.dType }
func (tv TensorView) Shape() []uint64    { return tv.shape }
func (tv TensorView) Data() []byte       { return tv.data }
func (tv TensorView) DataLen() uint64    { return uint64(len(tv.data)) }

// NewTensorView creates a TensorView over the given data slice, checking
// that the data length matches the element count implied by shape times
// the dtype element size. The data is referenced, not copied.
func NewTensorView(dt dtype.DType, shape []uint64, data []byte) (TensorView, error) {
	if err := dt.Validate(); err != nil {
		return TensorView{}, err
	}
	numBytes, err := byteSize(dt, shape)
	if err != nil {
		return TensorView{}, err
	}
	if n := uint64(len(data)); n != numBytes {
		return TensorView{}, fmt.Errorf("%w: dtype=%s shape=%v wants %d bytes, have %d",
			errs.ErrInvalidTensorData, dt, shape, numBytes, n)
	}
	return TensorView{
		dType: dt,
		shape: shape,
		data:  data,
	}, nil
}
