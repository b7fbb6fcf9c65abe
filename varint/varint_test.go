// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package varint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GnosisFoundation/bintensors/errs"
)

func TestAppendAndUint_RoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 0x7F, 0xFA,
		0xFB, 0xFF, 0x100, 0xFFFF,
		0x10000, 0xFFFFFFFF,
		0x100000000, math.MaxUint64,
	}
	for _, v := range values {
		buf := Append(nil, v)
		assert.Equal(t, Len(v), len(buf), "value %d", v)

		got, n, err := Uint(buf)
		require.NoError(t, err, "value %d", v)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf), n)
	}
}

func TestAppend_WireForm(t *testing.T) {
	testCases := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{0xFA, []byte{0xFA}},
		{0xFB, []byte{0xFB, 0xFB, 0x00}},
		{0xFFFF, []byte{0xFB, 0xFF, 0xFF}},
		{0x10000, []byte{0xFC, 0x00, 0x00, 0x01, 0x00}},
		{0x100000000, []byte{0xFD, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Append(nil, tc.value), "value %d", tc.value)
	}
}

func TestUint_RejectsReservedTags(t *testing.T) {
	for _, tag := range []byte{0xFE, 0xFF} {
		_, _, err := Uint([]byte{tag, 0, 0, 0, 0, 0, 0, 0, 0})
		require.ErrorIs(t, err, errs.ErrInvalidVarint, "tag 0x%X", tag)
	}
}

func TestUint_RejectsNonMinimalForms(t *testing.T) {
	testCases := []struct {
		name string
		buf  []byte
	}{
		{"2-byte form of small value", []byte{0xFB, 0x05, 0x00}},
		{"2-byte form of 0xFA", []byte{0xFB, 0xFA, 0x00}},
		{"4-byte form of 16-bit value", []byte{0xFC, 0xFF, 0xFF, 0x00, 0x00}},
		{"8-byte form of 32-bit value", []byte{0xFD, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Uint(tc.buf)
			require.ErrorIs(t, err, errs.ErrInvalidVarint)
		})
	}
}

func TestUint_RejectsTruncation(t *testing.T) {
	testCases := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"2-byte form short", []byte{0xFB, 0x01}},
		{"4-byte form short", []byte{0xFC, 0x01, 0x02, 0x03}},
		{"8-byte form short", []byte{0xFD, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Uint(tc.buf)
			require.ErrorIs(t, err, errs.ErrInvalidVarint)
		})
	}
}

func TestUint_ConsumesOnlyOneValue(t *testing.T) {
	buf := Append(Append(nil, 0x1234), 7)
	v, n, err := Uint(buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1234), v)

	v, m, err := Uint(buf[n:])
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
	assert.Equal(t, len(buf), n+m)
}
