// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package header

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/GnosisFoundation/bintensors/dtype"
	"github.com/GnosisFoundation/bintensors/errs"
	"github.com/GnosisFoundation/bintensors/varint"
)

// A descriptor is at least 4 bytes on the wire (dtype code, zero rank,
// two offsets), a name-map entry at least 2 (empty name, index), and a
// metadata entry at least 2 (empty key, empty value). These floors bound
// the claimed element counts against the actual header size before any
// table is allocated.
const (
	minDescriptorBytes = 4
	minNameEntryBytes  = 2
	minMetaEntryBytes  = 2
)

// Read reads the 8-byte length prefix and the header bytes from r and
// parses them, returning the Header and the header length (the value of
// the prefix, excluding the prefix itself).
//
// Reading stops right before the first payload byte. No validation beyond
// structural parsing is performed; call Validate on the result.
//
// The length prefix is checked against limits before the header buffer is
// allocated, so a prefix above MaxHeaderBytes fails in O(1). A prefix within
// the limit but longer than the available data is detected while reading
// the header bytes, after the buffer is allocated. Descriptor, name and
// metadata counts are checked against limits and against the actual header
// length before their tables are allocated.
func Read(r io.Reader, limits Limits) (Header, uint64, error) {
	n, err := readPrefix(r, limits)
	if err != nil {
		return Header{}, 0, err
	}

	buf := make([]byte, n)
	if _, err = io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, 0, fmt.Errorf("%w: declared header length %d exceeds data", errs.ErrInvalidHeaderLength, n)
		}
		return Header{}, 0, fmt.Errorf("%w: failed to read header: %w", errs.ErrIO, err)
	}

	h, err := decode(buf, limits)
	if err != nil {
		return Header{}, 0, err
	}
	return h, n, nil
}

func readPrefix(r io.Reader, limits Limits) (uint64, error) {
	var arr [8]byte
	if _, err := io.ReadFull(r, arr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: data shorter than length prefix", errs.ErrInvalidHeaderLength)
		}
		return 0, fmt.Errorf("%w: failed to read length prefix: %w", errs.ErrIO, err)
	}

	n := binary.LittleEndian.Uint64(arr[:])
	switch {
	case n == 0:
		return 0, fmt.Errorf("%w: header length is zero", errs.ErrInvalidHeaderLength)
	case n > limits.MaxHeaderBytes:
		return 0, fmt.Errorf("%w: header length %d exceeds limit %d", errs.ErrInvalidHeaderLength, n, limits.MaxHeaderBytes)
	case n > math.MaxInt-8:
		return 0, fmt.Errorf("%w: header length %d does not fit in memory", errs.ErrInvalidHeaderLength, n)
	case (n+8)%8 != 0:
		return 0, fmt.Errorf("%w: header length %d breaks 8-byte alignment", errs.ErrInvalidHeaderLength, n)
	}
	return n, nil
}

// decoder is a byte cursor over the header region.
type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.pos
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, fmt.Errorf("%w: truncated header", errs.ErrInvalidHeaderLength)
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readUvarint() (uint64, error) {
	v, n, err := varint.Uint(d.buf[d.pos:])
	if err != nil {
		return 0, err
	}
	d.pos += n
	return v, nil
}

func (d *decoder) readString(n uint64) (string, error) {
	if n > uint64(d.remaining()) {
		return "", fmt.Errorf("%w: string length %d exceeds header", errs.ErrInvalidHeaderLength, n)
	}
	b := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidUTF8, b)
	}
	return string(b), nil
}

func decode(buf []byte, limits Limits) (Header, error) {
	d := &decoder{buf: buf}

	version, err := d.readByte()
	if err != nil {
		return Header{}, err
	}
	if version != FormatVersion {
		return Header{}, fmt.Errorf("%w: %d", errs.ErrInvalidFormatVersion, version)
	}

	var h Header
	if h.Tensors, err = decodeTensors(d, limits); err != nil {
		return Header{}, err
	}
	if h.Names, h.Index, err = decodeNameMap(d, limits); err != nil {
		return Header{}, err
	}
	if h.Metadata, err = decodeMetadata(d, limits); err != nil {
		return Header{}, err
	}
	return h, nil
}

func decodeTensors(d *decoder, limits Limits) ([]TensorInfo, error) {
	count, err := d.readUvarint()
	if err != nil {
		return nil, fmt.Errorf("descriptor count: %w", err)
	}
	if count > limits.MaxDescriptors {
		return nil, fmt.Errorf("%w: descriptor count %d exceeds limit %d", errs.ErrInvalidHeaderLength, count, limits.MaxDescriptors)
	}
	if count > uint64(d.remaining())/minDescriptorBytes {
		return nil, fmt.Errorf("%w: descriptor count %d exceeds header size", errs.ErrInvalidHeaderLength, count)
	}
	if count == 0 {
		return nil, nil
	}

	tensors := make([]TensorInfo, count)
	for i := range tensors {
		if tensors[i], err = decodeTensorInfo(d, limits); err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", i, err)
		}
	}
	return tensors, nil
}

func decodeTensorInfo(d *decoder, limits Limits) (TensorInfo, error) {
	code, err := d.readByte()
	if err != nil {
		return TensorInfo{}, err
	}
	dt, err := dtype.FromCode(code)
	if err != nil {
		return TensorInfo{}, err
	}

	rank, err := d.readUvarint()
	if err != nil {
		return TensorInfo{}, fmt.Errorf("rank: %w", err)
	}
	if rank > limits.MaxRank {
		return TensorInfo{}, fmt.Errorf("%w: rank %d exceeds limit %d", errs.ErrInvalidShape, rank, limits.MaxRank)
	}
	if rank > uint64(d.remaining()) {
		return TensorInfo{}, fmt.Errorf("%w: rank %d exceeds header size", errs.ErrInvalidHeaderLength, rank)
	}

	var shape []uint64
	if rank > 0 {
		shape = make([]uint64, rank)
		for i := range shape {
			if shape[i], err = d.readUvarint(); err != nil {
				return TensorInfo{}, fmt.Errorf("shape dim %d: %w", i, err)
			}
			if shape[i] > limits.MaxDim {
				return TensorInfo{}, fmt.Errorf("%w: dim %d exceeds limit %d", errs.ErrInvalidShape, shape[i], limits.MaxDim)
			}
		}
	}

	var offsets DataOffsets
	if offsets.Begin, err = d.readUvarint(); err != nil {
		return TensorInfo{}, fmt.Errorf("offset begin: %w", err)
	}
	if offsets.End, err = d.readUvarint(); err != nil {
		return TensorInfo{}, fmt.Errorf("offset end: %w", err)
	}

	return TensorInfo{DType: dt, Shape: shape, DataOffsets: offsets}, nil
}

func decodeNameMap(d *decoder, limits Limits) ([]string, map[string]int, error) {
	count, err := d.readUvarint()
	if err != nil {
		return nil, nil, fmt.Errorf("name count: %w", err)
	}
	if count > limits.MaxDescriptors {
		return nil, nil, fmt.Errorf("%w: name count %d exceeds limit %d", errs.ErrInvalidHeaderLength, count, limits.MaxDescriptors)
	}
	if count > uint64(d.remaining())/minNameEntryBytes {
		return nil, nil, fmt.Errorf("%w: name count %d exceeds header size", errs.ErrInvalidHeaderLength, count)
	}

	names := make([]string, 0, count)
	index := make(map[string]int, count)
	for i := uint64(0); i < count; i++ {
		nameLen, err := d.readUvarint()
		if err != nil {
			return nil, nil, fmt.Errorf("name %d length: %w", i, err)
		}
		name, err := d.readString(nameLen)
		if err != nil {
			return nil, nil, fmt.Errorf("name %d: %w", i, err)
		}
		idx, err := d.readUvarint()
		if err != nil {
			return nil, nil, fmt.Errorf("name %q index: %w", name, err)
		}
		if idx > math.MaxInt {
			return nil, nil, fmt.Errorf("%w: name %q maps to index %d", errs.ErrIndexOutOfRange, name, idx)
		}
		if _, dup := index[name]; dup {
			return nil, nil, fmt.Errorf("%w: %q", errs.ErrDuplicateName, name)
		}
		names = append(names, name)
		index[name] = int(idx)
	}
	return names, index, nil
}

func decodeMetadata(d *decoder, limits Limits) (map[string]string, error) {
	// The serializer always emits an explicit entry count, but a count of
	// zero is a NUL byte, indistinguishable from padding. A remainder made
	// of padding alone therefore reads as "no metadata".
	if isPadding(d.buf[d.pos:]) {
		return nil, nil
	}

	count, err := d.readUvarint()
	if err != nil {
		return nil, fmt.Errorf("metadata count: %w", err)
	}
	if count > limits.MaxMetadataEntries {
		return nil, fmt.Errorf("%w: metadata count %d exceeds limit %d", errs.ErrInvalidHeaderLength, count, limits.MaxMetadataEntries)
	}
	if count > uint64(d.remaining())/minMetaEntryBytes {
		return nil, fmt.Errorf("%w: metadata count %d exceeds header size", errs.ErrInvalidHeaderLength, count)
	}

	metadata := make(map[string]string, count)
	for i := uint64(0); i < count; i++ {
		keyLen, err := d.readUvarint()
		if err != nil {
			return nil, fmt.Errorf("metadata key %d length: %w", i, err)
		}
		key, err := d.readString(keyLen)
		if err != nil {
			return nil, fmt.Errorf("metadata key %d: %w", i, err)
		}
		valLen, err := d.readUvarint()
		if err != nil {
			return nil, fmt.Errorf("metadata %q value length: %w", key, err)
		}
		val, err := d.readString(valLen)
		if err != nil {
			return nil, fmt.Errorf("metadata %q value: %w", key, err)
		}
		if _, dup := metadata[key]; dup {
			return nil, fmt.Errorf("%w: metadata key %q", errs.ErrDuplicateName, key)
		}
		metadata[key] = val
	}

	if !isPadding(d.buf[d.pos:]) {
		return nil, fmt.Errorf("%w: trailing bytes after metadata", errs.ErrInvalidHeaderLength)
	}
	return metadata, nil
}

// isPadding reports whether b contains only padding bytes. The serializer
// pads with spaces; NUL is accepted for compatibility with writers that
// zero-fill.
func isPadding(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != 0 {
			return false
		}
	}
	return true
}
