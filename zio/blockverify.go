// Copyright (C) 2024 rzfs contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package zio wires the fletcher4 and sha256 CORE packages into a
// small external-collaborator layer: verifying and recomputing the
// stored checksum of a data block, optionally after decompressing it,
// and fronting repeated verification with an in-memory dedup cache.
// Nothing in this package reaches into fletcher4/sha256 internals; it
// only uses their public New/Update/Finalize surface.
package zio

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/cybojanek/rzfs/fletcher4"
	"github.com/cybojanek/rzfs/sha256"
)

// Algorithm names the checksum family a block is verified against.
type Algorithm int

const (
	AlgorithmFletcher4 Algorithm = iota
	AlgorithmSHA256
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmFletcher4:
		return "fletcher4"
	case AlgorithmSHA256:
		return "sha256"
	default:
		return "unknown"
	}
}

// ErrChecksumMismatch is returned by Verify when the recomputed
// checksum does not match the stored one.
var ErrChecksumMismatch = errors.New("zio: stored checksum does not match recomputed checksum")

// MismatchError carries the two digests that disagreed, rendered as
// byte slices so callers can log either algorithm's value without a
// type switch.
type MismatchError struct {
	Algorithm Algorithm
	Stored    []byte
	Computed  []byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("zio: %s checksum mismatch: stored %x, computed %x", e.Algorithm, e.Stored, e.Computed)
}

func (e *MismatchError) Unwrap() error { return ErrChecksumMismatch }

// Block is a single on-disk block as a verifier would encounter it: the
// raw bytes read from storage, whether those bytes are s2-compressed,
// and the checksum algorithm the block's metadata says was used.
type Block struct {
	Data       []byte
	Compressed bool
	// UncompressedSize is required when Compressed is true; s2 needs
	// an exact destination length to verify it decoded the whole block.
	UncompressedSize int
	Algorithm        Algorithm
}

// payload returns the bytes the checksum was computed over: the
// decompressed block contents when Compressed is set, else Data
// itself.
func (b *Block) payload() ([]byte, error) {
	if !b.Compressed {
		return b.Data, nil
	}
	dst := make([]byte, b.UncompressedSize)
	got, err := s2.Decode(dst[:0:len(dst)], b.Data)
	if err != nil {
		return nil, fmt.Errorf("zio: s2 decode: %w", err)
	}
	if len(got) != b.UncompressedSize {
		return nil, fmt.Errorf("zio: s2 decode produced %d bytes, want %d", len(got), b.UncompressedSize)
	}
	return got, nil
}

// Recompute runs the block's declared checksum algorithm over its
// payload (decompressing first if Compressed is set) and returns the
// digest as raw big-endian bytes, ready for byte-wise comparison
// against a stored checksum of the same algorithm.
func Recompute(b *Block) ([]byte, error) {
	payload, err := b.payload()
	if err != nil {
		return nil, err
	}
	switch b.Algorithm {
	case AlgorithmFletcher4:
		d, err := fletcher4.Sum(payload)
		if err != nil {
			return nil, fmt.Errorf("zio: fletcher4: %w", err)
		}
		return fletcher4DigestBytes(d), nil
	case AlgorithmSHA256:
		d, err := sha256.Sum(payload)
		if err != nil {
			return nil, fmt.Errorf("zio: sha256: %w", err)
		}
		return d[:], nil
	default:
		return nil, fmt.Errorf("zio: unknown algorithm %v", b.Algorithm)
	}
}

// fletcher4DigestBytes serialises a fletcher4.Digest's four words as
// big-endian bytes, matching the on-disk layout of a ZFS dva_t
// checksum quadruple.
func fletcher4DigestBytes(d fletcher4.Digest) []byte {
	out := make([]byte, 32)
	putUint64BE(out[0:8], d.A)
	putUint64BE(out[8:16], d.B)
	putUint64BE(out[16:24], d.C)
	putUint64BE(out[24:32], d.D)
	return out
}

func putUint64BE(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> uint(56-8*i))
	}
}

// Verify recomputes b's checksum and compares it against stored,
// returning a *MismatchError (wrapping ErrChecksumMismatch) on
// disagreement.
func Verify(b *Block, stored []byte) error {
	computed, err := Recompute(b)
	if err != nil {
		return err
	}
	if !bytesEqual(computed, stored) {
		return &MismatchError{Algorithm: b.Algorithm, Stored: stored, Computed: computed}
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
