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

package cpuid

import "testing"

func TestQueryIsCached(t *testing.T) {
	a := Query()
	b := Query()
	if a != b {
		t.Fatalf("Query returned different results on successive calls: %+v vs %+v", a, b)
	}
}

// A feature set that advertises AVX512F but not AVX512BW (or vice versa)
// is physically possible on real hardware, so Query must not assume any
// particular correlation between fields; this just checks that the
// zero value of the type reports no capabilities.
func TestFeaturesZeroValue(t *testing.T) {
	var f Features
	if f.SSE2 || f.AVX2 || f.AVX512F || f.SHANI {
		t.Fatalf("zero Features should report no capabilities, got %+v", f)
	}
}
