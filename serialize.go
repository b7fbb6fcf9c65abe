// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/GnosisFoundation/bintensors/errs"
	"github.com/GnosisFoundation/bintensors/header"
)

// Serialize packs the named tensors and optional metadata into a complete
// bintensors byte-buffer.
//
// Descriptor order, name-map order, and payload order all equal the order
// of entries, so serialization of a fixed entry sequence is deterministic.
// Each entry's data length must equal the element count implied by its
// shape times the dtype element size, and names must be unique.
func Serialize[V View](entries []NamedView[V], metadata map[string]string) ([]byte, error) {
	pd, err := prepare(entries, metadata)
	if err != nil {
		return nil, err
	}
	buffer := make([]byte, 0, 8+pd.n+pd.payloadLen)
	buffer = binary.LittleEndian.AppendUint64(buffer, pd.n)
	buffer = append(buffer, pd.headerBytes...)
	for _, entry := range entries {
		buffer = append(buffer, entry.View.Data()...)
	}
	return buffer, nil
}

// SerializeToWriter writes the named tensors and optional metadata to w
// as a complete bintensors stream.
//
// Compared to Serialize, this procedure reduces the need to allocate the
// whole amount of memory.
func SerializeToWriter[V View](entries []NamedView[V], metadata map[string]string, w io.Writer) error {
	pd, err := prepare(entries, metadata)
	if err != nil {
		return err
	}

	var nbArr [8]byte
	nb := nbArr[:]
	binary.LittleEndian.PutUint64(nb, pd.n)

	if _, err = w.Write(nb); err != nil {
		return fmt.Errorf("%w: failed to write length prefix: %w", errs.ErrIO, err)
	}
	if _, err = w.Write(pd.headerBytes); err != nil {
		return fmt.Errorf("%w: failed to write header: %w", errs.ErrIO, err)
	}
	for _, entry := range entries {
		if _, err = w.Write(entry.View.Data()); err != nil {
			return fmt.Errorf("%w: failed to write tensor %q: %w", errs.ErrIO, entry.Name, err)
		}
	}
	return nil
}

// SerializeFile writes the named tensors and optional metadata to a new
// file at path, replacing any existing file.
//
// The stream is written in a single pass without fsync; callers needing
// crash safety should write to a temporary path and rename.
func SerializeFile[V View](entries []NamedView[V], metadata map[string]string, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create %q: %w", errs.ErrIO, path, err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("%w: failed to close %q: %w", errs.ErrIO, path, e)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = SerializeToWriter(entries, metadata, bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("%w: failed to flush %q: %w", errs.ErrIO, path, err)
	}
	return nil
}

type preparedData struct {
	n           uint64
	headerBytes []byte
	payloadLen  uint64
}

func prepare[V View](entries []NamedView[V], metadata map[string]string) (preparedData, error) {
	names := make([]string, len(entries))
	infos := make([]header.TensorInfo, len(entries))
	index := make(map[string]int, len(entries))

	offset := uint64(0)
	for i, entry := range entries {
		if _, dup := index[entry.Name]; dup {
			return preparedData{}, fmt.Errorf("%w: %q", errs.ErrDuplicateName, entry.Name)
		}

		dt := entry.View.DType()
		if err := dt.Validate(); err != nil {
			return preparedData{}, fmt.Errorf("tensor %q: %w", entry.Name, err)
		}
		shape := entry.View.Shape()
		numBytes, err := byteSize(dt, shape)
		if err != nil {
			return preparedData{}, fmt.Errorf("tensor %q: %w", entry.Name, err)
		}
		if n := entry.View.DataLen(); n != numBytes {
			return preparedData{}, fmt.Errorf("%w: tensor %q: dtype %s and shape %v want %d bytes, have %d",
				errs.ErrInvalidTensorData, entry.Name, dt, shape, numBytes, n)
		}

		names[i] = entry.Name
		index[entry.Name] = i
		infos[i] = header.TensorInfo{
			DType:       dt,
			Shape:       shape,
			DataOffsets: header.DataOffsets{Begin: offset, End: offset + numBytes},
		}
		offset += numBytes
	}

	headerBytes, err := header.Encode(header.Header{
		Names:    names,
		Tensors:  infos,
		Index:    index,
		Metadata: metadata,
	})
	if err != nil {
		return preparedData{}, err
	}

	return preparedData{
		n:           uint64(len(headerBytes)),
		headerBytes: headerBytes,
		payloadLen:  offset,
	}, nil
}
