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

//go:build amd64

package fletcher4

import (
	"github.com/cybojanek/rzfs/cpuid"
	"github.com/cybojanek/rzfs/zfsimpl"
)

// catalogue lists the amd64 kernels this package ships, widest first.
// Each entry's feature predicate mirrors the ISA the kernel catalogue
// (spec §4.1 "Kernel catalogue") names it after; none of these run
// real vector instructions in this build (no assembler is used in
// this repository, see DESIGN.md) but the gating itself reflects what
// a real implementation would require.
var catalogue = []struct {
	id    zfsimpl.ID
	avail func(cpuid.Features) bool
}{
	{zfsimpl.SIMD512x8Lane, func(f cpuid.Features) bool { return f.AVX512F && f.AVX512BW }},
	{zfsimpl.SIMD256x8Lane, func(f cpuid.Features) bool { return f.AVX2 && f.BMI2 }},
	{zfsimpl.SIMD256x4Lane, func(f cpuid.Features) bool { return f.AVX2 }},
	{zfsimpl.SIMD128x4Lane, func(f cpuid.Features) bool { return f.SSSE3 }},
	{zfsimpl.SIMD128x2Lane, func(f cpuid.Features) bool { return f.SSE2 }},
	{zfsimpl.Scalar, func(cpuid.Features) bool { return true }},
}

// selectKernel resolves requested to a concrete, available id. If
// requested is zfsimpl.Auto it returns the widest available kernel. If
// requested names an id this host cannot run (or an unrecognised one,
// already mapped to unrecognisedID by WithImplementation), it downgrades to
// Scalar and reports the downgrade.
func selectKernel(requested zfsimpl.ID) (resolved zfsimpl.ID, downgraded bool) {
	feats := cpuid.Query()

	if requested == zfsimpl.Auto {
		for _, k := range catalogue {
			if k.avail(feats) {
				return k.id, false
			}
		}
		return zfsimpl.Scalar, false
	}

	for _, k := range catalogue {
		if k.id == requested {
			if k.avail(feats) {
				return requested, false
			}
			return zfsimpl.Scalar, true
		}
	}
	return zfsimpl.Scalar, true
}
