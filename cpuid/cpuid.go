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

// Package cpuid exposes the one environment-specific interface the
// checksum core depends on: a host capability query. The query is
// computed once per process and cached; every subsequent Query call
// reads the cached value.
package cpuid

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// Features is the capability set consumed by the dispatch layer of
// fletcher4 and sha256 (spec §6).
type Features struct {
	SSE2     bool
	SSSE3    bool
	AVX2     bool
	AVX512F  bool
	AVX512BW bool
	BMI      bool
	BMI2     bool
	SHANI    bool
}

var (
	once   sync.Once
	cached Features
)

// Query returns the host's capability set. The underlying probe runs
// at most once per process; every call after the first returns the
// cached result, satisfying the single-writer/many-readers model
// required of process-wide state.
func Query() Features {
	once.Do(func() {
		cached = probe()
	})
	return cached
}

func probe() Features {
	return Features{
		SSE2:     cpu.X86.HasSSE2,
		SSSE3:    cpu.X86.HasSSSE3,
		AVX2:     cpu.X86.HasAVX2,
		AVX512F:  cpu.X86.HasAVX512F,
		AVX512BW: cpu.X86.HasAVX512BW,
		BMI:      cpu.X86.HasBMI1,
		BMI2:     cpu.X86.HasBMI2,
		SHANI:    cpu.X86.HasSHA,
	}
}
