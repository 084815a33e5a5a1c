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

package zio

import (
	"encoding/binary"
	"sync"

	"github.com/dchest/siphash"
)

// fingerprint is a non-cryptographic siphash-2-4 digest of a block's
// raw (possibly still-compressed) bytes together with its algorithm
// and declared checksum, used only to key the in-memory verification
// cache below; it is never compared against on-disk data the way
// Verify's recomputed checksum is.
type fingerprint uint64

// fingerprintOf mirrors ion/zion's sym2bucket: a small fixed-size
// buffer holds everything that is hashed, avoiding an allocation per
// lookup.
func fingerprintOf(b *Block, stored []byte) fingerprint {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], siphash.Hash(0, uint64(b.Algorithm), b.Data))
	binary.LittleEndian.PutUint64(buf[8:16], siphash.Hash(uint64(len(stored)), uint64(b.Compressed2Int()), stored))
	return fingerprint(siphash.Hash(0, 0, buf[:]))
}

// Compressed2Int folds the Compressed flag into the small integer
// siphash wants as its second key half; exported so callers
// constructing Blocks by hand can reuse the same convention if they
// build their own cache.
func (b *Block) Compressed2Int() uint64 {
	if b.Compressed {
		return 1
	}
	return 0
}

// VerifyCache fronts Verify with a bounded, siphash-keyed dedup cache:
// repeated verification requests for a block whose fingerprint is
// already known to have passed (or failed, with the same error) skip
// recomputation entirely. This plays the same role for `zio` that
// ion/zion's symbol-to-bucket hash plays for its block dictionaries:
// a fast, non-cryptographic hash used purely as an index, never as a
// security boundary.
type VerifyCache struct {
	mu       sync.Mutex
	capacity int
	order    []fingerprint
	results  map[fingerprint]error
}

// NewVerifyCache returns a cache holding up to capacity entries,
// evicting the oldest insertion once full. A non-positive capacity
// disables eviction (the cache grows without bound).
func NewVerifyCache(capacity int) *VerifyCache {
	return &VerifyCache{
		capacity: capacity,
		results:  make(map[fingerprint]error),
	}
}

// Verify behaves like the package-level Verify, but returns a cached
// result when b and stored have been seen before under this cache.
func (c *VerifyCache) Verify(b *Block, stored []byte) error {
	fp := fingerprintOf(b, stored)

	c.mu.Lock()
	if err, ok := c.results[fp]; ok {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	err := Verify(b, stored)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.results[fp]; !ok {
		if c.capacity > 0 && len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.results, oldest)
		}
		c.order = append(c.order, fp)
		c.results[fp] = err
	}
	return err
}

// Len reports the number of entries currently cached.
func (c *VerifyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
