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

package fletcher4

import (
	"math/rand"
	"testing"
)

// TestCombineMatchesContinuousRun checks Combine against the scalar
// oracle run continuously over the concatenation of both chunks, for a
// spread of chunk-length pairs including zero-length chunks.
func TestCombineMatchesContinuousRun(t *testing.T) {
	rng := rand.New(rand.NewSource(40))
	lengths := []int{0, 1, 2, 3, 7, 64, 513}

	for _, na := range lengths {
		for _, nb := range lengths {
			wordsA := randomWords(rng, na)
			wordsB := randomWords(rng, nb)

			digestA := scalarDigest(wordsA)
			digestB := scalarDigest(wordsB)

			got := Combine(digestA, digestB, uint64(nb))

			whole := append(append([]uint32{}, wordsA...), wordsB...)
			want := scalarDigest(whole)

			if got != want {
				t.Fatalf("na=%d nb=%d: Combine = %+v, want %+v", na, nb, got, want)
			}
		}
	}
}

func TestCombineWithEmptyFirstChunkIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	words := randomWords(rng, 200)
	b := scalarDigest(words)

	got := Combine(Digest{}, b, uint64(len(words)))
	if got != b {
		t.Fatalf("Combine(zero, b, n) = %+v, want %+v", got, b)
	}
}
