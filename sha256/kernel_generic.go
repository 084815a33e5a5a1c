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

//go:build !amd64

package sha256

import "github.com/cybojanek/rzfs/zfsimpl"

// selectKernel on non-amd64 hosts only ever resolves to the scalar
// kernel (spec §2: "only the scalar kernels are mandatory").
func selectKernel(requested zfsimpl.ID) (resolved zfsimpl.ID, downgraded bool) {
	if requested == zfsimpl.Auto || requested == zfsimpl.Scalar {
		return zfsimpl.Scalar, false
	}
	return zfsimpl.Scalar, true
}

func absorbBlocks(impl zfsimpl.ID, state *[8]uint32, data []byte) {
	absorbScalarBlocks(state, data)
}
