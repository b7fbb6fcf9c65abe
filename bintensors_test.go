// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GnosisFoundation/bintensors/dtype"
	"github.com/GnosisFoundation/bintensors/errs"
	"github.com/GnosisFoundation/bintensors/varint"
)

// mustView builds a TensorView for test input, failing the test on error.
func mustView(t *testing.T, dt dtype.DType, shape []uint64, data []byte) TensorView {
	t.Helper()
	tv, err := NewTensorView(dt, shape, data)
	require.NoError(t, err)
	return tv
}

// streamBuilder hand-assembles wire bytes the way the attack scripts do,
// bypassing the serializer entirely.
type streamBuilder struct {
	content []byte
	payload []byte
}

func newStreamBuilder() *streamBuilder {
	return &streamBuilder{content: []byte{0}} // format version
}

func (b *streamBuilder) descriptorCount(n uint64) *streamBuilder {
	b.content = varint.Append(b.content, n)
	return b
}

func (b *streamBuilder) descriptor(dt dtype.DType, shape []uint64, begin, end uint64) *streamBuilder {
	b.content = append(b.content, dt.Code())
	b.content = varint.Append(b.content, uint64(len(shape)))
	for _, dim := range shape {
		b.content = varint.Append(b.content, dim)
	}
	b.content = varint.Append(b.content, begin)
	b.content = varint.Append(b.content, end)
	return b
}

func (b *streamBuilder) nameCount(n uint64) *streamBuilder {
	b.content = varint.Append(b.content, n)
	return b
}

func (b *streamBuilder) name(name string, index uint64) *streamBuilder {
	b.content = varint.Append(b.content, uint64(len(name)))
	b.content = append(b.content, name...)
	b.content = varint.Append(b.content, index)
	return b
}

func (b *streamBuilder) payloadBytes(n int) *streamBuilder {
	b.payload = make([]byte, n)
	return b
}

func (b *streamBuilder) build() []byte {
	content := b.content
	for (8+len(content))%8 != 0 {
		content = append(content, ' ')
	}
	buf := binary.LittleEndian.AppendUint64(nil, uint64(len(content)))
	buf = append(buf, content...)
	return append(buf, b.payload...)
}

func TestDeserialize_SingleTensor(t *testing.T) {
	entries := []NamedView[TensorView]{
		{Name: "w", View: mustView(t, dtype.F32, []uint64{2, 2}, make([]byte, 16))},
	}
	buf, err := Serialize(entries, nil)
	require.NoError(t, err)

	// 8-byte length prefix, header, then exactly the 16 payload bytes.
	headerLen := binary.LittleEndian.Uint64(buf[:8])
	assert.Equal(t, int(8+headerLen+16), len(buf))

	bt, err := Deserialize(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, bt.Len())
	assert.False(t, bt.IsEmpty())
	assert.True(t, bt.Contains("w"))
	assert.Equal(t, []string{"w"}, bt.Keys())

	tv, err := bt.Tensor("w")
	require.NoError(t, err)
	assert.Equal(t, dtype.F32, tv.DType())
	assert.Equal(t, []uint64{2, 2}, tv.Shape())
	assert.Equal(t, make([]byte, 16), tv.Data())
}

func TestDeserialize_RejectsTamperedHeaderLength(t *testing.T) {
	entries := []NamedView[TensorView]{
		{Name: "weight", View: mustView(t, dtype.F32, []uint64{2, 2}, make([]byte, 16))},
	}
	buf, err := Serialize(entries, nil)
	require.NoError(t, err)

	// The header now claims more bytes than the file holds.
	binary.LittleEndian.PutUint64(buf[:8], 1000)

	_, err = Deserialize(buf)
	require.ErrorIs(t, err, errs.ErrInvalidHeaderLength)
}

func TestDeserialize_RejectsOverlappingDescriptors(t *testing.T) {
	// Several descriptors all claiming the same payload range.
	b := newStreamBuilder().descriptorCount(5)
	for i := 0; i < 5; i++ {
		b.descriptor(dtype.F32, []uint64{2, 2}, 0, 16)
	}
	b.nameCount(5)
	for i := 0; i < 5; i++ {
		b.name(string(rune('a'+i)), uint64(i))
	}
	b.payloadBytes(16)

	_, err := Deserialize(b.build())
	require.ErrorIs(t, err, errs.ErrInvalidOffset)
}

func TestDeserialize_RejectsDuplicateIndexMapping(t *testing.T) {
	// Two names both mapping to descriptor 0 leaves descriptor 1 uncovered.
	buf := newStreamBuilder().
		descriptorCount(2).
		descriptor(dtype.F32, []uint64{1, 1}, 0, 4).
		descriptor(dtype.F32, []uint64{2, 2}, 4, 20).
		nameCount(2).
		name("weight_0", 0).
		name("weight_1", 0).
		payloadBytes(20).
		build()

	_, err := Deserialize(buf)
	require.ErrorIs(t, err, errs.ErrMissingDescriptor)
}

func TestDeserialize_RejectsSizeMismatch(t *testing.T) {
	// Descriptor claims a (2,2) F32 tensor but only 8 bytes of data.
	buf := newStreamBuilder().
		descriptorCount(1).
		descriptor(dtype.F32, []uint64{2, 2}, 0, 8).
		nameCount(1).
		name("w", 0).
		payloadBytes(8).
		build()

	_, err := Deserialize(buf)
	require.ErrorIs(t, err, errs.ErrInvalidOffset)
}

func TestDeserialize_RejectsIndexOutOfRange(t *testing.T) {
	buf := newStreamBuilder().
		descriptorCount(1).
		descriptor(dtype.U8, []uint64{4}, 0, 4).
		nameCount(1).
		name("w", 9).
		payloadBytes(4).
		build()

	_, err := Deserialize(buf)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}

func TestDeserialize_EmptyContainer(t *testing.T) {
	buf, err := Serialize[TensorView](nil, nil)
	require.NoError(t, err)

	bt, err := Deserialize(buf)
	require.NoError(t, err)
	assert.True(t, bt.IsEmpty())
	assert.Equal(t, 0, bt.Len())
	assert.Nil(t, bt.Keys())
	assert.Nil(t, bt.Tensors())
}

func TestBinTensors_TensorNotFound(t *testing.T) {
	entries := []NamedView[TensorView]{
		{Name: "w", View: mustView(t, dtype.U8, []uint64{4}, []byte{1, 2, 3, 4})},
	}
	buf, err := Serialize(entries, nil)
	require.NoError(t, err)
	bt, err := Deserialize(buf)
	require.NoError(t, err)

	_, err = bt.Tensor("nope")
	require.ErrorIs(t, err, errs.ErrNotFound)
	assert.False(t, bt.Contains("nope"))
}

func TestBinTensors_KeyOrders(t *testing.T) {
	// Declaration order differs from payload order: descriptor 0 sits
	// after descriptor 1 in the payload.
	buf := newStreamBuilder().
		descriptorCount(2).
		descriptor(dtype.U8, []uint64{4}, 4, 8).
		descriptor(dtype.U8, []uint64{4}, 0, 4).
		nameCount(2).
		name("late", 0).
		name("early", 1).
		payloadBytes(8).
		build()

	bt, err := Deserialize(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"late", "early"}, bt.Keys())
	assert.Equal(t, []string{"early", "late"}, bt.OffsetKeys())

	tensors := bt.Tensors()
	require.Len(t, tensors, 2)
	assert.Equal(t, "early", tensors[0].Name)
	assert.Equal(t, "late", tensors[1].Name)
}

func TestDeserialize_ZeroCopyViews(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	entries := []NamedView[TensorView]{
		{Name: "x", View: mustView(t, dtype.U8, []uint64{8}, data)},
	}
	buf, err := Serialize(entries, nil)
	require.NoError(t, err)

	bt, err := Deserialize(buf)
	require.NoError(t, err)
	tv, err := bt.Tensor("x")
	require.NoError(t, err)

	// The view aliases the deserialized buffer rather than copying it.
	assert.Same(t, &buf[len(buf)-8], &tv.Data()[0])
}

func TestDeserialize_CustomLimits(t *testing.T) {
	entries := []NamedView[TensorView]{
		{Name: "a", View: mustView(t, dtype.U8, []uint64{2}, []byte{1, 2})},
		{Name: "b", View: mustView(t, dtype.U8, []uint64{2}, []byte{3, 4})},
	}
	buf, err := Serialize(entries, nil)
	require.NoError(t, err)

	_, err = Deserialize(buf, WithMaxDescriptors(1))
	require.ErrorIs(t, err, errs.ErrInvalidHeaderLength)

	_, err = Deserialize(buf, WithMaxHeaderBytes(8))
	require.ErrorIs(t, err, errs.ErrInvalidHeaderLength)

	bt, err := Deserialize(buf, WithMaxRank(1))
	require.NoError(t, err)
	assert.Equal(t, 2, bt.Len())
}
