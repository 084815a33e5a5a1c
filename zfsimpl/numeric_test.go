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

import "testing"

func TestMinInt(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{3, 5, 3},
		{5, 3, 3},
		{4, 4, 4},
		{0, 7, 0},
		{-2, 7, -2},
	}
	for _, c := range cases {
		if got := Min(c.a, c.b); got != c.want {
			t.Fatalf("Min(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestMinUint64(t *testing.T) {
	if got := Min(uint64(9), uint64(2)); got != 2 {
		t.Fatalf("Min(9, 2) = %d, want 2", got)
	}
}
