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

// This file generalizes the §4.1 lane-combine identities from K fixed
// strides of one run to two arbitrary-length adjacent runs, the
// operation ZFS metaslab space maps use to checksum large regions in
// independently-computed parallel chunks and then merge the results
// (SPEC_FULL.md §4.1, supplemental).
package fletcher4

// Combine merges a, the digest of the first bLenA words of a stream,
// with b, the digest computed independently (i.e. starting fresh) over
// the following bLenB words, into the digest that processing the whole
// stream continuously would have produced. bLenB is the word count b
// was computed over.
//
// Combine assumes bLenB is a realistic in-memory chunk size (well
// under 2^20 words, i.e. under 4 MiB) as used by scrub/resilver
// parallel-chunk checksumming; it does not guard against the
// intermediate polynomial terms overflowing a uint64 for pathologically
// large bLenB values.
func Combine(a, b Digest, bLenB uint64) Digest {
	n := bLenB

	combinedA := a.A + b.A
	combinedB := a.B + n*a.A + b.B
	combinedC := a.C + n*a.B + a.A*triangular(n) + b.C
	combinedD := a.D + n*a.C + a.B*triangular(n) + a.A*tetrahedral(n) + b.D

	return Digest{A: combinedA, B: combinedB, C: combinedC, D: combinedD}
}

// triangular returns n*(n+1)/2, the closed form for sum_{k=1}^{n} k.
func triangular(n uint64) uint64 {
	return n * (n + 1) / 2
}

// tetrahedral returns n*(n+1)*(n+2)/6, the closed form for
// sum_{k=1}^{n} k*(k+1)/2 (used by Combine's D term).
func tetrahedral(n uint64) uint64 {
	return n * (n + 1) * (n + 2) / 6
}
