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

// Package fuzzsupport holds property-test helpers shared by the
// fletcher4 and sha256 test suites: a stand-in for spec.md §8's
// repeating 125-byte literal-vector pattern, and a random input
// partitioner for the update-splitting property (spec.md §8
// "Universal properties").
package fuzzsupport

import "math/rand"

// patternBase is a deterministic 0..124 ramp standing in for the
// upstream reference generator's 125-byte pattern, which was not
// recoverable from the filtered original source (see SPEC_FULL.md
// §0). What spec.md §9's "Open question" makes load-bearing is not
// the byte values themselves but the wrap-around rule implemented by
// Pattern below.
var patternBase = func() [125]byte {
	var p [125]byte
	for i := range p {
		p[i] = byte(i)
	}
	return p
}()

// wholeWordPrefix is the largest multiple of 4 not exceeding
// len(patternBase); spec.md §9 requires restarting the pattern here,
// not at byte 125, so that word boundaries never drift across a
// wrap-around.
const wholeWordPrefix = 124

// Pattern returns an n-byte buffer built by repeating the whole-word
// prefix of the 125-byte base pattern. n need not be a multiple of 4;
// only the repetition boundary (every wholeWordPrefix bytes) is
// guaranteed to land on a word boundary.
func Pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = patternBase[i%wholeWordPrefix]
	}
	return out
}

// WholeWordPrefixLen exposes the repetition period used by Pattern,
// for tests that want to assert the wrap-around boundary directly.
func WholeWordPrefixLen() int { return wholeWordPrefix }

// RandomPartition splits data into a random sequence of contiguous,
// possibly-empty pieces that concatenate back to data, for exercising
// the update-splitting property against an incremental Update/Finalize
// API.
func RandomPartition(rng *rand.Rand, data []byte) [][]byte {
	var parts [][]byte
	rest := data
	for len(rest) > 0 {
		take := rng.Intn(len(rest) + 1)
		parts = append(parts, rest[:take])
		rest = rest[take:]
	}
	return parts
}
