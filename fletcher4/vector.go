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

// This file implements the algebraic reformulation of §4.1: K
// independent accumulator lanes, reduced to the canonical single-stream
// quadruple via the fixed coefficient tables for K in {2, 4, 8}. None
// of this repository's kernels are backed by real vector instructions
// (there is no assembler in this exercise — see DESIGN.md); each
// "kernel" runs the same lane-parallel Go loop below, so what varies
// between kernel IDs is only the lane count K that dispatch selects,
// never the arithmetic. The identities below are the specification,
// not an optimisation, and are exercised exhaustively by
// vector_test.go against the scalar kernel.

package fletcher4

// maxLanes bounds the lane-accumulator arrays; the widest catalogued
// kernel (simd512-8lane) uses 8 lanes.
const maxLanes = 8

// laneAccum holds K independent running quadruples, one per lane.
// Lane l (0-indexed) accumulates the words at stream positions
// l, l+K, l+2K, ... in increasing order, using the same recurrence
// as the scalar kernel applied to that strided subsequence alone.
type laneAccum struct {
	a, b, c, d [maxLanes]uint64
}

// absorbLanes advances acc by exactly one stride: K words, lane l
// receiving words[l].
func absorbLanes(acc *laneAccum, k int, words []uint32) {
	for l := 0; l < k; l++ {
		acc.a[l] += uint64(words[l])
		acc.b[l] += acc.a[l]
		acc.c[l] += acc.b[l]
		acc.d[l] += acc.c[l]
	}
}

// combine reduces K lane quadruples to the canonical (A, B, C, D)
// that the scalar kernel would have produced over the same words, per
// the §4.1 identity tables. All arithmetic wraps modulo 2^64.
func combine(acc *laneAccum, k int) Digest {
	switch k {
	case 1:
		return Digest{A: acc.a[0], B: acc.b[0], C: acc.c[0], D: acc.d[0]}
	case 2:
		return combine2(acc)
	case 4:
		return combine4(acc)
	case 8:
		return combine8(acc)
	default:
		panic("fletcher4: unsupported lane count")
	}
}

func sum(v [maxLanes]uint64, k int) uint64 {
	var s uint64
	for l := 0; l < k; l++ {
		s += v[l]
	}
	return s
}

func combine2(acc *laneAccum) Digest {
	a := acc.a[0] + acc.a[1]
	b := 2*(acc.b[0]+acc.b[1]) - acc.a[1]
	c := 4*(acc.c[0]+acc.c[1]) - (acc.b[0] + 3*acc.b[1])
	d := 8*(acc.d[0]+acc.d[1]) - (4*acc.c[0] + 8*acc.c[1]) + acc.b[1]
	return Digest{A: a, B: b, C: c, D: d}
}

func combine4(acc *laneAccum) Digest {
	a := sum(acc.a, 4)
	b := 4*sum(acc.b, 4) - (acc.a[1] + 2*acc.a[2] + 3*acc.a[3])
	c := 16*sum(acc.c, 4) -
		(6*acc.b[0] + 10*acc.b[1] + 14*acc.b[2] + 18*acc.b[3]) +
		(acc.a[2] + 3*acc.a[3])
	d := 64*sum(acc.d, 4) -
		(48*acc.c[0] + 64*acc.c[1] + 80*acc.c[2] + 96*acc.c[3]) +
		(4*acc.b[0] + 10*acc.b[1] + 20*acc.b[2] + 34*acc.b[3]) -
		acc.a[3]
	return Digest{A: a, B: b, C: c, D: d}
}

var (
	combine8WC = [8]uint64{28, 36, 44, 52, 60, 68, 76, 84}
	combine8WA = [8]uint64{0, 0, 1, 3, 6, 10, 15, 21}
	combine8WD = [8]uint64{448, 512, 576, 640, 704, 768, 832, 896}
	combine8WB = [8]uint64{56, 84, 120, 164, 216, 276, 344, 420}
	combine8WA8 = [8]uint64{0, 0, 0, 1, 4, 10, 20, 35}
)

func combine8(acc *laneAccum) Digest {
	a := sum(acc.a, 8)

	var bSub uint64
	for j := 1; j < 8; j++ {
		bSub += uint64(j) * acc.a[j]
	}
	b := 8*sum(acc.b, 8) - bSub

	var cSubB, cSubA uint64
	for j := 0; j < 8; j++ {
		cSubB += combine8WC[j] * acc.b[j]
		cSubA += combine8WA[j] * acc.a[j]
	}
	c := 64*sum(acc.c, 8) - cSubB + cSubA

	var dSubC, dSubB, dSubA uint64
	for j := 0; j < 8; j++ {
		dSubC += combine8WD[j] * acc.c[j]
		dSubB += combine8WB[j] * acc.b[j]
		dSubA += combine8WA8[j] * acc.a[j]
	}
	d := 512*sum(acc.d, 8) - dSubC + dSubB - dSubA

	return Digest{A: a, B: b, C: c, D: d}
}
