// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GnosisFoundation/bintensors/dtype"
	"github.com/GnosisFoundation/bintensors/errs"
)

func TestReadAll_RoundTrip(t *testing.T) {
	entries := commonEntries(t)
	metadata := map[string]string{"origin": "stream"}

	buf, err := Serialize(entries, metadata)
	require.NoError(t, err)

	rts, err := ReadAll(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, metadata, rts.Metadata)
	require.Len(t, rts.Tensors, len(entries))

	// The serializer lays tensors out in declaration order, so the
	// streaming read returns them in the same order.
	for i, entry := range entries {
		rt := rts.Tensors[i]
		assert.Equal(t, entry.Name, rt.Name())
		assert.Equal(t, entry.View.DType(), rt.DType())
		assert.Equal(t, entry.View.Shape(), rt.Shape())
		assert.Equal(t, entry.View.Data(), rt.Data())
	}
}

func TestReadAll_DataIsIndependentOfStream(t *testing.T) {
	entries := []NamedView[TensorView]{
		{Name: "x", View: mustView(t, dtype.U8, []uint64{4}, []byte{1, 2, 3, 4})},
	}
	buf, err := Serialize(entries, nil)
	require.NoError(t, err)

	rts, err := ReadAll(bytes.NewReader(buf))
	require.NoError(t, err)

	// Unlike Deserialize, ReadAll copies the data out of the stream.
	for i := range buf {
		buf[i] = 0xFF
	}
	assert.Equal(t, []byte{1, 2, 3, 4}, rts.Tensors[0].Data())
}

func TestReadAll_TruncatedPayload(t *testing.T) {
	entries := []NamedView[TensorView]{
		{Name: "w", View: mustView(t, dtype.F32, []uint64{4, 4}, make([]byte, 64))},
	}
	buf, err := Serialize(entries, nil)
	require.NoError(t, err)

	_, err = ReadAll(bytes.NewReader(buf[:len(buf)-10]))
	require.ErrorIs(t, err, errs.ErrIO)
}

func TestReadAll_InvalidHeader(t *testing.T) {
	_, err := ReadAll(bytes.NewReader([]byte{1, 2, 3}))
	require.ErrorIs(t, err, errs.ErrInvalidHeaderLength)
}

func TestRawTensor_ImplementsView(t *testing.T) {
	// A RawTensor read from one stream can be fed straight back into the
	// serializer.
	entries := commonEntries(t)
	buf, err := Serialize(entries, nil)
	require.NoError(t, err)

	rts, err := ReadAll(bytes.NewReader(buf))
	require.NoError(t, err)

	reEntries := make([]NamedView[RawTensor], len(rts.Tensors))
	for i, rt := range rts.Tensors {
		reEntries[i] = NamedView[RawTensor]{Name: rt.Name(), View: rt}
	}
	again, err := Serialize(reEntries, nil)
	require.NoError(t, err)
	assert.Equal(t, buf, again)
}
