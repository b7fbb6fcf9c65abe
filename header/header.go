// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package header implements the binary header codec and validator of the
// bintensors format.
//
// A bintensors stream starts with an 8-byte little-endian length prefix,
// followed by that many header bytes, followed by the raw tensor payload.
// The header bytes hold a format version byte, the descriptor table, the
// name→index map, an optional metadata map, and trailing padding that keeps
// the payload 8-byte aligned relative to the start of the stream.
package header

// FormatVersion is the only format version byte currently understood.
const FormatVersion = 0

// Header provides tensor descriptors, the name→descriptor index map and
// free-form metadata, as defined by the bintensors format.
type Header struct {
	// Names holds the tensor names in the order they appear in the
	// name map, which is the serializer's declaration order.
	Names []string
	// Tensors holds one descriptor per tensor, in wire order.
	Tensors []TensorInfo
	// Index maps each name to its descriptor index in Tensors.
	// After validation it is a bijection onto [0, len(Tensors)).
	Index map[string]int
	// Metadata is a set of free-form key/value string pairs. It can be nil.
	Metadata map[string]string
}

// TensorByName returns the descriptor mapped to the given name and whether
// the name is present.
func (h Header) TensorByName(name string) (TensorInfo, bool) {
	i, ok := h.Index[name]
	if !ok || i < 0 || i >= len(h.Tensors) {
		return TensorInfo{}, false
	}
	return h.Tensors[i], true
}

// NamesByIndex returns the tensor names reordered so that position i holds
// the name mapped to descriptor i. It must only be called on a validated
// Header, where the name map is a bijection.
func (h Header) NamesByIndex() []string {
	if len(h.Names) == 0 {
		return nil
	}
	names := make([]string, len(h.Tensors))
	for _, name := range h.Names {
		names[h.Index[name]] = name
	}
	return names
}
