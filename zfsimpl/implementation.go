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

// Package zfsimpl names the kernel implementations that fletcher4 and
// sha256 can select between (spec §4.3) and parses the "implementation"
// configuration option shared by both.
package zfsimpl

// ID names one concrete kernel implementation.
type ID int

const (
	// Auto lets the dispatch layer pick the widest validated kernel
	// for the host. It is never a context's resolved implementation_id;
	// contexts always resolve Auto to a concrete ID at construction.
	Auto ID = iota
	Scalar
	SIMD128x2Lane
	SIMD128x4Lane
	SIMD256x4Lane
	SIMD256x8Lane
	SIMD512x8Lane
	SHANative
)

var names = map[ID]string{
	Auto:          "auto",
	Scalar:        "scalar",
	SIMD128x2Lane: "simd128-2lane",
	SIMD128x4Lane: "simd128-4lane",
	SIMD256x4Lane: "simd256-4lane",
	SIMD256x8Lane: "simd256-8lane",
	SIMD512x8Lane: "simd512-8lane",
	SHANative:     "sha-native",
}

func (id ID) String() string {
	if s, ok := names[id]; ok {
		return s
	}
	return "unknown"
}

// Parse resolves a configuration string (spec §4.3, §6) to an ID. It
// returns ok=false for any string that is not one of the recognised
// values; the caller (fletcher4/sha256 dispatch) is responsible for
// degrading to Scalar and reporting the downgrade, per spec §4.3/§7 —
// Parse itself never guesses or substitutes.
func Parse(s string) (id ID, ok bool) {
	for k, v := range names {
		if v == s {
			return k, true
		}
	}
	return Auto, false
}

// Lanes returns the number of parallel accumulator lanes a Fletcher4
// kernel of this ID operates on. Scalar and SHA-native both report 1;
// Auto is not a resolved kernel and reports 0.
func (id ID) Lanes() int {
	switch id {
	case SIMD128x2Lane:
		return 2
	case SIMD128x4Lane, SIMD256x4Lane:
		return 4
	case SIMD256x8Lane, SIMD512x8Lane:
		return 8
	case Scalar, SHANative:
		return 1
	default:
		return 0
	}
}

// RequiresFPU reports whether this kernel needs the SIMD/FPU register
// file (spec §5): in a kernel-module environment the caller must wrap
// update/finalize calls in kernel-FPU acquisition around any kernel for
// which this returns true. Scalar is pure integer arithmetic and needs
// no such acquisition; every SIMD lane kernel and the SHA-NI kernel use
// the vector/SSE register file and do. Auto is not a resolved kernel;
// it reports false since it is never the value a Context carries after
// construction.
func (id ID) RequiresFPU() bool {
	switch id {
	case Scalar, Auto:
		return false
	default:
		return true
	}
}
