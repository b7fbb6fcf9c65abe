// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bintensors implements the bintensors container format: a binary
// layout for persisting a named collection of dense, contiguous tensors
// together with optional string metadata.
//
// The format is designed to be loadable from untrusted input. Every parse
// path validates the header against the payload before handing out any
// tensor view: malformed varints, unknown dtypes, lying header lengths,
// overlapping or out-of-bounds byte ranges, duplicate names, and broken
// name→descriptor mappings are all rejected up front.
package bintensors

import (
	"bytes"
	"fmt"

	"github.com/GnosisFoundation/bintensors/errs"
	"github.com/GnosisFoundation/bintensors/header"
)

// BinTensors is a structure owning header information to look up tensors
// on a shared payload byte-buffer.
//
// It is immutable after construction and safe for concurrent readers.
// Views returned by Tensor and Tensors borrow from the backing buffer and
// must not outlive it.
type BinTensors struct {
	header header.Header
	data   []byte
}

// Deserialize parses a byte-buffer representing a whole bintensors stream
// and returns the validated container (no tensor data is copied).
//
// The returned BinTensors and every view obtained from it reference buf
// directly. On any validation failure no container is returned.
func Deserialize(buf []byte, opts ...Option) (BinTensors, error) {
	limits := newLimits(opts)
	h, n, err := header.Read(bytes.NewReader(buf), limits)
	if err != nil {
		return BinTensors{}, err
	}
	payload := buf[8+n:]
	if err = header.Validate(h, uint64(len(payload)), limits); err != nil {
		return BinTensors{}, err
	}
	return BinTensors{header: h, data: payload}, nil
}

// Keys returns the tensor names in name-map order, which is the order the
// serializer declared them in. The result is stable and reproducible.
func (bt BinTensors) Keys() []string {
	if len(bt.header.Names) == 0 {
		return nil
	}
	names := make([]string, len(bt.header.Names))
	copy(names, bt.header.Names)
	return names
}

// OffsetKeys returns the tensor names sorted ascending by the begin of
// their payload byte range. This is the order in which a streaming reader
// encounters the data.
func (bt BinTensors) OffsetKeys() []string {
	if len(bt.header.Names) == 0 {
		return nil
	}
	byIndex := bt.header.NamesByIndex()
	order := header.IndicesByDataOffsets(bt.header.Tensors)
	names := make([]string, len(order))
	for i, idx := range order {
		names[i] = byIndex[idx]
	}
	return names
}

// Tensor returns a zero-copy view of the named tensor.
// It fails wrapping errs.ErrNotFound if the name is unknown.
func (bt BinTensors) Tensor(name string) (TensorView, error) {
	info, ok := bt.header.TensorByName(name)
	if !ok {
		return TensorView{}, fmt.Errorf("%w: %q", errs.ErrNotFound, name)
	}
	return bt.view(info), nil
}

// Tensors returns named views of all tensors, sorted ascending by their
// payload byte range.
func (bt BinTensors) Tensors() []NamedTensorView {
	if len(bt.header.Tensors) == 0 {
		return nil
	}
	byIndex := bt.header.NamesByIndex()
	order := header.IndicesByDataOffsets(bt.header.Tensors)
	tensors := make([]NamedTensorView, len(order))
	for i, idx := range order {
		tensors[i] = NamedTensorView{
			Name:       byIndex[idx],
			TensorView: bt.view(bt.header.Tensors[idx]),
		}
	}
	return tensors
}

func (bt BinTensors) view(info header.TensorInfo) TensorView {
	tv := TensorView{
		dType: info.DType,
		shape: info.Shape,
	}
	if info.DataOffsets.End > info.DataOffsets.Begin {
		tv.data = bt.data[info.DataOffsets.Begin:info.DataOffsets.End]
	}
	return tv
}

// Metadata returns the free-form key/value string pairs stored in the
// header. It can be nil. The map is the one retained internally: callers
// must not modify it.
func (bt BinTensors) Metadata() map[string]string {
	return bt.header.Metadata
}

// Len returns how many tensors are stored within the container.
func (bt BinTensors) Len() int {
	return len(bt.header.Tensors)
}

// IsEmpty reports whether the container holds any tensor.
func (bt BinTensors) IsEmpty() bool {
	return len(bt.header.Tensors) == 0
}

// Contains reports whether a tensor with the given name is present.
func (bt BinTensors) Contains(name string) bool {
	_, ok := bt.header.Index[name]
	return ok
}
