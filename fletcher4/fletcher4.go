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

// Package fletcher4 implements the ZFS Fletcher4 checksum: four 64-bit
// running sums over 32-bit words, computed either by the scalar
// reference kernel or by a multi-lane reformulation reduced back to
// the canonical single-stream result (see vector.go). It does not
// allocate and never blocks.
package fletcher4

import (
	"errors"
	"fmt"

	"github.com/cybojanek/rzfs/zfsimpl"
)

// Digest is the four-word Fletcher4 checksum (spec §3).
type Digest struct {
	A, B, C, D uint64
}

var (
	// ErrInvalidLength is returned by Finalize when the total number
	// of bytes absorbed by the context is not a multiple of 4.
	ErrInvalidLength = errors.New("fletcher4: total length is not a multiple of 4 bytes")
	// ErrAlreadyFinalised is returned by any operation performed on a
	// context after Finalize has already consumed it.
	ErrAlreadyFinalised = errors.New("fletcher4: context already finalised")
	// ErrUnsupportedImplementation is wrapped into the non-fatal
	// warning returned by New when an explicit implementation
	// override names a kernel unavailable on the host; the context
	// is still usable, downgraded to the scalar kernel.
	ErrUnsupportedImplementation = errors.New("fletcher4: requested implementation unavailable, downgraded to scalar")
)

// UnsupportedImplementationError carries the detail behind
// ErrUnsupportedImplementation: which implementation was requested and
// which one the dispatch layer substituted.
type UnsupportedImplementationError struct {
	Requested string
	Used      zfsimpl.ID
}

func (e *UnsupportedImplementationError) Error() string {
	return fmt.Sprintf("fletcher4: implementation %q unavailable, using %s", e.Requested, e.Used)
}

func (e *UnsupportedImplementationError) Unwrap() error {
	return ErrUnsupportedImplementation
}

type state int

const (
	stateFresh state = iota
	stateAbsorbing
	stateFinalised
)

// config collects the options accepted by New.
type config struct {
	order        ByteOrder
	requestedRaw string
	requested    zfsimpl.ID
	requestedSet bool
}

// Option configures a Context at construction (spec §6).
type Option func(*config)

// WithByteOrder selects the 32-bit word decode order. The default is
// LittleEndian.
func WithByteOrder(order ByteOrder) Option {
	return func(c *config) { c.order = order }
}

// WithImplementation forces kernel selection to the named
// implementation (one of the ids in zfsimpl, or "auto"). An
// unrecognised or host-unsupported name downgrades to Scalar; New
// reports the downgrade as a non-fatal error.
func WithImplementation(name string) Option {
	return func(c *config) {
		c.requestedRaw = name
		if id, ok := zfsimpl.Parse(name); ok {
			c.requested = id
		} else {
			// unrecognisedID matches no catalogue entry on any
			// architecture, so selectKernel always falls through to
			// its downgraded-to-scalar path for it.
			c.requested = unrecognisedID
		}
		c.requestedSet = true
	}
}

// unrecognisedID is never a valid catalogue entry; it stands in for a
// configuration string that WithImplementation could not parse at all
// (as opposed to one that parsed but named a kernel absent on this
// host), so that both cases degrade to Scalar through the same path.
const unrecognisedID = zfsimpl.ID(-1)

// Context is an incremental Fletcher4 streaming digest (spec §3, §4.3).
// A Context is exclusively owned by one goroutine; concurrent Update
// calls on the same Context are undefined. It allocates nothing beyond
// its own fields.
type Context struct {
	order      ByteOrder
	impl       zfsimpl.ID
	lanes      int
	acc        laneAccum
	buf        [maxLanes * 4]byte
	bufLen     int
	totalBytes uint64
	st         state
}

// New constructs a Context, probing host capabilities once and
// selecting the widest validated kernel (spec §4.3). If an explicit
// WithImplementation override cannot be honoured on this host, New
// still returns a usable Context (downgraded to the scalar kernel)
// together with a non-fatal error satisfying
// errors.Is(err, ErrUnsupportedImplementation).
func New(opts ...Option) (*Context, error) {
	cfg := config{order: LittleEndian}
	for _, opt := range opts {
		opt(&cfg)
	}

	requested := zfsimpl.Auto
	if cfg.requestedSet {
		requested = cfg.requested
	}

	resolved, downgraded := selectKernel(requested)

	ctx := &Context{
		order: cfg.order,
		impl:  resolved,
		lanes: resolved.Lanes(),
		st:    stateFresh,
	}

	if downgraded && cfg.requestedSet && cfg.requestedRaw != "auto" {
		return ctx, &UnsupportedImplementationError{Requested: cfg.requestedRaw, Used: resolved}
	}
	return ctx, nil
}

// Implementation reports the kernel this context resolved to.
func (c *Context) Implementation() zfsimpl.ID { return c.impl }

// ByteOrder reports the word decode order this context uses.
func (c *Context) ByteOrder() ByteOrder { return c.order }

// RequiresFPU reports whether this context's resolved kernel needs the
// SIMD/FPU register file around Update/Finalize (spec §5). The
// checksum engine itself performs no FPU acquisition; a kernel-module
// caller is responsible for wrapping calls accordingly when this
// returns true.
func (c *Context) RequiresFPU() bool { return c.impl.RequiresFPU() }

// Sum computes the one-shot Fletcher4 digest of data (the teacher's
// tdx-whirlpool package-level convenience-constructor shape; purely a
// thin wrapper, no new semantics; mirrors sha256.Sum).
func Sum(data []byte, opts ...Option) (Digest, error) {
	// New's error, if any, is the non-fatal downgrade diagnostic; the
	// returned context is always usable, so a one-shot helper has no
	// need to surface it.
	ctx, _ := New(opts...)
	if err := ctx.Update(data); err != nil {
		return Digest{}, err
	}
	return ctx.Finalize()
}

// Update absorbs more input bytes (spec §4.3 "Update"). It is legal in
// the Fresh and Absorbing states and transitions to Absorbing. Update
// never allocates or blocks.
func (c *Context) Update(data []byte) error {
	if c.st == stateFinalised {
		return ErrAlreadyFinalised
	}
	c.st = stateAbsorbing
	c.totalBytes += uint64(len(data))

	stride := 4 * c.lanes

	if c.bufLen > 0 {
		need := stride - c.bufLen
		take := zfsimpl.Min(need, len(data))
		copy(c.buf[c.bufLen:], data[:take])
		c.bufLen += take
		data = data[take:]
		if c.bufLen == stride {
			absorbStride(&c.acc, c.lanes, c.order, c.buf[:stride])
			c.bufLen = 0
		}
	}

	for len(data) >= stride {
		absorbStride(&c.acc, c.lanes, c.order, data[:stride])
		data = data[stride:]
	}

	if len(data) > 0 {
		copy(c.buf[c.bufLen:], data)
		c.bufLen += len(data)
	}
	return nil
}

// Finalize produces the digest and consumes the context (spec §4.3
// "Finalize", §4 state machine). It is legal from either Fresh or
// Absorbing and transitions to Finalised; any later call to Update or
// Finalize returns ErrAlreadyFinalised.
func (c *Context) Finalize() (Digest, error) {
	if c.st == stateFinalised {
		return Digest{}, ErrAlreadyFinalised
	}
	if c.bufLen%4 != 0 {
		c.st = stateFinalised
		return Digest{}, ErrInvalidLength
	}

	digest := combine(&c.acc, c.lanes)
	absorbScalar(&digest, c.buf[:c.bufLen], c.order)
	c.st = stateFinalised
	return digest, nil
}

// absorbStride decodes exactly one stride (lanes*4 bytes) of words and
// advances the lane accumulator by one block.
func absorbStride(acc *laneAccum, lanes int, order ByteOrder, data []byte) {
	var words [maxLanes]uint32
	for l := 0; l < lanes; l++ {
		words[l] = order.word(data[l*4 : l*4+4])
	}
	absorbLanes(acc, lanes, words[:lanes])
}
