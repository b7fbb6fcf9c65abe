// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors

import "github.com/GnosisFoundation/bintensors/header"

// Option overrides one of the validator limits applied by Deserialize,
// SafeOpen, and ReadAll.
type Option func(*header.Limits)

// WithMaxHeaderBytes caps the declared header length.
func WithMaxHeaderBytes(n uint64) Option {
	return func(l *header.Limits) { l.MaxHeaderBytes = n }
}

// WithMaxDescriptors caps the descriptor and name counts.
func WithMaxDescriptors(n uint64) Option {
	return func(l *header.Limits) { l.MaxDescriptors = n }
}

// WithMaxRank caps the number of dimensions of a single tensor.
func WithMaxRank(n uint64) Option {
	return func(l *header.Limits) { l.MaxRank = n }
}

// WithMaxDim caps the size of a single dimension.
func WithMaxDim(n uint64) Option {
	return func(l *header.Limits) { l.MaxDim = n }
}

// WithMaxMetadataEntries caps the number of metadata key/value pairs.
func WithMaxMetadataEntries(n uint64) Option {
	return func(l *header.Limits) { l.MaxMetadataEntries = n }
}

func newLimits(opts []Option) header.Limits {
	limits := header.DefaultLimits()
	for _, opt := range opts {
		opt(&limits)
	}
	return limits
}
