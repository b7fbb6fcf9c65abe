// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package header

// Limits bound the resources a header is allowed to claim before it is
// fully parsed. They guard against crafted inputs that declare huge
// headers, descriptor floods, or absurd shapes to exhaust memory.
type Limits struct {
	// MaxHeaderBytes caps the declared header length.
	MaxHeaderBytes uint64
	// MaxDescriptors caps the descriptor and name counts.
	MaxDescriptors uint64
	// MaxRank caps the number of dimensions of a single tensor.
	MaxRank uint64
	// MaxDim caps the size of a single dimension.
	MaxDim uint64
	// MaxMetadataEntries caps the number of metadata key/value pairs.
	MaxMetadataEntries uint64
}

// DefaultLimits returns the limits applied when the caller does not
// override them.
func DefaultLimits() Limits {
	return Limits{
		MaxHeaderBytes:     100 << 20,
		MaxDescriptors:     1 << 20,
		MaxRank:            8,
		MaxDim:             1 << 62,
		MaxMetadataEntries: 1 << 16,
	}
}
