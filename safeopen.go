// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/GnosisFoundation/bintensors/errs"
)

// File is a bintensors container backed by a memory-mapped file.
//
// Opening parses and validates the header atomically; once a *File is
// returned, reads never fail for validation reasons. The handle is safe
// for concurrent readers. All views borrow from the mapping and become
// invalid after Close.
//
// The mapping is read-only from this package's perspective; mutating the
// underlying file from outside while the handle is open yields undefined
// behavior.
type File struct {
	BinTensors
	f  *os.File
	mm mmap.MMap
}

// SafeOpen opens the bintensors file at path, memory-maps it, and parses
// and validates its header.
//
// On any failure the mapping and the file descriptor are released and no
// handle is returned. The caller owns the returned handle and must Close
// it to release the mapping and the file.
func SafeOpen(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %q: %w", errs.ErrIO, path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: failed to stat %q: %w", errs.ErrIO, path, err)
	}
	if fi.Size() < 8 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: file %q is %d bytes, shorter than the length prefix",
			errs.ErrInvalidHeaderLength, path, fi.Size())
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: failed to mmap %q: %w", errs.ErrIO, path, err)
	}

	bt, err := Deserialize(mm, opts...)
	if err != nil {
		_ = mm.Unmap()
		_ = f.Close()
		return nil, err
	}

	return &File{BinTensors: bt, f: f, mm: mm}, nil
}

// Close releases the memory mapping and the underlying file descriptor.
// The handle and every view obtained from it must not be used afterwards.
// Close is idempotent.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := errors.Join(f.mm.Unmap(), f.f.Close())
	f.mm = nil
	f.f = nil
	f.BinTensors = BinTensors{}
	if err != nil {
		return fmt.Errorf("%w: failed to close: %w", errs.ErrIO, err)
	}
	return nil
}
