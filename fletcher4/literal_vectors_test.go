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

import (
	"testing"

	"github.com/cybojanek/rzfs/internal/fuzzsupport"
)

func TestLiteralVectorSizes(t *testing.T) {
	sizes := []int{4, 8, 16, 32, 64, 128, 8192, 16384, 32768, 65536, 131072}
	ids := []string{"scalar", "simd128-2lane", "simd128-4lane", "simd256-4lane", "simd256-8lane", "simd512-8lane"}

	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		for _, n := range sizes {
			data := fuzzsupport.Pattern(n)
			want := sumAll(t, data, WithImplementation("scalar"), WithByteOrder(order))
			for _, id := range ids {
				got := sumAll(t, data, WithImplementation(id), WithByteOrder(order))
				if got != want {
					t.Fatalf("order=%v n=%d impl=%s: digest = %+v, want %+v", order, n, id, got, want)
				}
			}
		}
	}
}

// TestLiteralVectorSizeFour directly checks the size=4 case: a single
// word, so every digest component equals that word's decoded value
// (spec §3's formula collapses to A=B=C=D=f_0 for n=1).
func TestLiteralVectorSizeFour(t *testing.T) {
	data := fuzzsupport.Pattern(4)
	d := sumAll(t, data, WithImplementation("scalar"), WithByteOrder(LittleEndian))
	word := uint64(LittleEndian.word(data))
	want := Digest{A: word, B: word, C: word, D: word}
	if d != want {
		t.Fatalf("digest = %+v, want %+v", d, want)
	}
}

// TestLiteralVectorSizeEight checks the size=8 case directly against
// the closed form spec §8 gives for it: A = f0+f1 (mod 2^64), with B,
// C, D computed per §3's general formula.
func TestLiteralVectorSizeEight(t *testing.T) {
	data := fuzzsupport.Pattern(8)
	order := LittleEndian
	f0 := uint64(order.word(data[0:4]))
	f1 := uint64(order.word(data[4:8]))

	d := sumAll(t, data, WithImplementation("scalar"), WithByteOrder(order))

	wantA := f0 + f1
	wantB := 2*f0 + f1
	wantC := 3*f0 + f1
	wantD := 4*f0 + f1

	if d.A != wantA || d.B != wantB || d.C != wantC || d.D != wantD {
		t.Fatalf("digest = %+v, want {A:%d B:%d C:%d D:%d}", d, wantA, wantB, wantC, wantD)
	}
}

// TestWrapAroundDoesNotShiftWordAlignment locks in the §9 open
// question: restarting the pattern mid-cycle must always land on a
// word boundary, never inside a word.
func TestWrapAroundDoesNotShiftWordAlignment(t *testing.T) {
	period := fuzzsupport.WholeWordPrefixLen()
	if period%4 != 0 {
		t.Fatalf("pattern period %d is not a whole number of 4-byte words", period)
	}
	data := fuzzsupport.Pattern(period * 3)
	first := data[:period]
	second := data[period : 2*period]
	third := data[2*period : 3*period]
	if string(first) != string(second) || string(second) != string(third) {
		t.Fatalf("pattern should repeat identically every %d bytes", period)
	}
}
