// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors

import (
	"fmt"
	"io"
	"math"

	"github.com/GnosisFoundation/bintensors/errs"
	"github.com/GnosisFoundation/bintensors/header"
)

// RawTensors is the result of reading the full content of a bintensors
// data stream, loading RawTensor objects in memory.
type RawTensors struct {
	// Tensors holds the tensors sorted ascending by their position in
	// the payload, which is the order they were read in.
	Tensors []RawTensor
	// Metadata is the free-form key/value string pairs from the header.
	// It can be nil.
	Metadata map[string]string
}

// ReadAll reads and interprets the whole content of a bintensors data
// stream. After reading and validating the header, the data of each tensor
// is read sequentially and loaded in memory.
//
// Since r has no known total length, the final bound of the payload cannot
// be checked up front the way Deserialize checks it; a payload shorter
// than the header claims surfaces as an i/o error while reading the
// affected tensor.
func ReadAll(r io.Reader, opts ...Option) (RawTensors, error) {
	limits := newLimits(opts)
	h, _, err := header.Read(r, limits)
	if err != nil {
		return RawTensors{}, err
	}
	if err = header.Validate(h, math.MaxUint64, limits); err != nil {
		return RawTensors{}, err
	}

	byIndex := h.NamesByIndex()
	order := header.IndicesByDataOffsets(h.Tensors)

	tensors := make([]RawTensor, len(order))
	pos := uint64(0)
	for i, idx := range order {
		info := h.Tensors[idx]
		if gap := info.DataOffsets.Begin - pos; gap > 0 {
			if _, err = io.CopyN(io.Discard, r, int64(gap)); err != nil {
				return RawTensors{}, fmt.Errorf("%w: failed to skip %d alignment bytes: %w", errs.ErrIO, gap, err)
			}
		}

		rt := RawTensor{
			name:  byIndex[idx],
			dType: info.DType,
			shape: info.Shape,
		}
		if n := info.DataOffsets.ByteLen(); n > 0 {
			rt.data = make([]byte, n)
			if _, err = io.ReadFull(r, rt.data); err != nil {
				return RawTensors{}, fmt.Errorf("%w: failed to read data of tensor %q: %w", errs.ErrIO, rt.name, err)
			}
		}
		tensors[i] = rt
		pos = info.DataOffsets.End
	}

	return RawTensors{
		Tensors:  tensors,
		Metadata: h.Metadata,
	}, nil
}
