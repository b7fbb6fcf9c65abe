// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors

import (
	"github.com/GnosisFoundation/bintensors/dtype"
)

// RawTensor is a tensor with data fully loaded in memory.
//
// Unlike the zero-copy TensorView, a RawTensor owns its data: it has no
// bonds with the stream (or file) it was read from.
type RawTensor struct {
	name  string
	dType dtype.DType
	shape []uint64
	data  []byte
}

// The Name of the tensor.
func (rt RawTensor) Name() string {
	return rt.name
}

// DType returns the data type of the tensor.
func (rt RawTensor) DType() dtype.DType {
	return rt.dType
}

// The Shape of the tensor. It can be nil.
func (rt RawTensor) Shape() []uint64 {
	return rt.shape
}

// Data returns the raw data of the tensor.
// It is expected to be little-endian and row-major ("C") ordered.
// There is no striding.
func (rt RawTensor) Data() []byte {
	return rt.data
}

// DataLen returns the length of the data in bytes.
func (rt RawTensor) DataLen() uint64 {
	return uint64(len(rt.data))
}
