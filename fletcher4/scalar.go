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

// absorbScalar runs the reference K=1 kernel (spec §4.1) over a
// byte run whose length is a positive multiple of 4. It is always
// available and defines ground truth for every other kernel.
func absorbScalar(state *Digest, data []byte, order ByteOrder) {
	for len(data) >= 4 {
		f := uint64(order.word(data[:4]))
		state.A += f
		state.B += state.A
		state.C += state.B
		state.D += state.C
		data = data[4:]
	}
}
