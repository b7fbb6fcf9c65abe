// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors

import (
	"crypto/sha256"

	"github.com/cespare/xxhash/v2"
)

// ChecksumSize is the byte length of the digest produced by
// SerializeWithChecksum.
const ChecksumSize = sha256.Size

// SerializeWithChecksum serializes the named tensors and optional metadata
// like Serialize, and additionally returns the SHA-256 digest of the whole
// output: length prefix, header bytes, and payload.
//
// The digest is recomputable by any independent SHA-256 implementation
// over the returned buffer.
func SerializeWithChecksum[V View](entries []NamedView[V], metadata map[string]string) ([ChecksumSize]byte, []byte, error) {
	buffer, err := Serialize(entries, metadata)
	if err != nil {
		return [ChecksumSize]byte{}, nil, err
	}
	return sha256.Sum256(buffer), buffer, nil
}

// Fingerprint returns the xxHash64 of a serialized buffer.
//
// It is a fast, non-cryptographic content fingerprint for cheap equality
// probes, such as deduplicating identical serialized containers. It is no
// substitute for the checksum digest when integrity matters.
func Fingerprint(buffer []byte) uint64 {
	return xxhash.Sum64(buffer)
}
