// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package header

import (
	"fmt"
	"sort"

	"github.com/GnosisFoundation/bintensors/errs"
	"github.com/GnosisFoundation/bintensors/varint"
)

// Encode assembles the header bytes for h: format version, descriptor
// table, name map, metadata map, and trailing space padding such that the
// length prefix plus header is a multiple of 8 bytes. The returned slice
// does not include the 8-byte length prefix.
//
// Metadata entries are written in ascending key order, so encoding is
// deterministic: equal headers produce equal bytes.
func Encode(h Header) ([]byte, error) {
	buf := make([]byte, 0, encodedSizeHint(h))
	buf = append(buf, FormatVersion)

	buf = varint.Append(buf, uint64(len(h.Tensors)))
	for i, t := range h.Tensors {
		if err := t.DType.Validate(); err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", i, err)
		}
		buf = append(buf, t.DType.Code())
		buf = varint.Append(buf, uint64(len(t.Shape)))
		for _, dim := range t.Shape {
			buf = varint.Append(buf, dim)
		}
		buf = varint.Append(buf, t.DataOffsets.Begin)
		buf = varint.Append(buf, t.DataOffsets.End)
	}

	if len(h.Names) != len(h.Index) {
		return nil, fmt.Errorf("%w: %d names, %d index entries", errs.ErrDuplicateName, len(h.Names), len(h.Index))
	}
	buf = varint.Append(buf, uint64(len(h.Names)))
	for _, name := range h.Names {
		idx, ok := h.Index[name]
		if !ok {
			return nil, fmt.Errorf("%w: name %q has no descriptor index", errs.ErrMissingDescriptor, name)
		}
		buf = varint.Append(buf, uint64(len(name)))
		buf = append(buf, name...)
		buf = varint.Append(buf, uint64(idx))
	}

	buf = varint.Append(buf, uint64(len(h.Metadata)))
	for _, key := range sortedKeys(h.Metadata) {
		buf = varint.Append(buf, uint64(len(key)))
		buf = append(buf, key...)
		val := h.Metadata[key]
		buf = varint.Append(buf, uint64(len(val)))
		buf = append(buf, val...)
	}

	// Force alignment to 8 bytes, counting the length prefix.
	for (8+len(buf))%8 != 0 {
		buf = append(buf, ' ')
	}
	return buf, nil
}

func encodedSizeHint(h Header) int {
	n := 16
	for _, t := range h.Tensors {
		n += minDescriptorBytes + 9*(len(t.Shape)+2)
	}
	for _, name := range h.Names {
		n += len(name) + 10
	}
	for k, v := range h.Metadata {
		n += len(k) + len(v) + 10
	}
	return n
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
