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

package zfsimpl

import "golang.org/x/exp/constraints"

// Number is the same narrow integer constraint internal/aes uses for
// its generic Hash helpers in the teacher repo, reused here for the
// small numeric helpers the fletcher4 and sha256 contexts share when
// computing how much of a buffer to fill.
type Number interface {
	constraints.Integer
}

// Min returns the smaller of a and b. Both Context.Update
// implementations call this when the carry-over buffer is non-empty,
// to bound how many bytes of the caller's slice go into it.
func Min[T Number](a, b T) T {
	if a < b {
		return a
	}
	return b
}
