// SPDX-License-Identifier: MIT

package store

// ByteSpan is an opaque (offset, length) reference into a single append-only
// Arena. Arena may grow; references to its raw bytes obtained before a later
// allocation may become invalid (spec.md §3.1, §5 "Arena reallocation
// hazard"). Decoders that need stable pointers across an AddEntry call copy
// into a small local buffer first.
type ByteSpan struct {
	off uint32
	len uint32
}

// Len returns the span's length in bytes.
func (s ByteSpan) Len() int { return int(s.len) }

// IsZero reports whether s is the zero span (used for "no value").
func (s ByteSpan) IsZero() bool { return s.len == 0 && s.off == 0 }

// maxArenaBytes is the hard cap on arena growth. It exists only so that a
// pathological input (e.g. a bogus count field requesting gigabytes) can't
// run the process out of memory; hitting it surfaces as AddBlock returning
// an invalid BlockId (spec.md §4.1 "Failure").
const maxArenaBytes = 256 << 20 // 256 MiB

// Arena is a growable byte buffer returning ByteSpan handles with
// caller-specified alignment. Grow strategy is amortised doubling.
type Arena struct {
	buf []byte
}

// NewArena returns an empty Arena with a small initial capacity.
func NewArena() *Arena {
	return &Arena{buf: make([]byte, 0, 256)}
}

// Allocate reserves aligned space and returns a span whose bytes are
// initially zero. align must be a power of two (0 and 1 both mean
// unaligned). Returns the zero span and false if the arena would exceed its
// hard cap.
func (a *Arena) Allocate(size int, align int) (ByteSpan, bool) {
	if size < 0 {
		return ByteSpan{}, false
	}
	if size == 0 {
		return ByteSpan{}, true
	}
	off := len(a.buf)
	if align > 1 {
		pad := (-off) & (align - 1)
		off += pad
	}
	end := off + size
	if end > maxArenaBytes {
		return ByteSpan{}, false
	}
	if end > cap(a.buf) {
		newCap := cap(a.buf) * 2
		if newCap < end {
			newCap = end
		}
		grown := make([]byte, len(a.buf), newCap)
		copy(grown, a.buf)
		a.buf = grown
	}
	a.buf = a.buf[:end]
	return ByteSpan{off: uint32(off), len: uint32(size)}, true
}

// Append copies b into the arena (unaligned) and returns its span.
func (a *Arena) Append(b []byte) (ByteSpan, bool) {
	span, ok := a.Allocate(len(b), 1)
	if !ok {
		return span, false
	}
	copy(a.Span(span), b)
	return span, true
}

// AppendString is Append for a string, avoiding a caller-side []byte copy.
func (a *Arena) AppendString(s string) (ByteSpan, bool) {
	span, ok := a.Allocate(len(s), 1)
	if !ok {
		return span, false
	}
	copy(a.Span(span), s)
	return span, true
}

// Span returns the bytes for s. The returned slice is only valid until the
// next Allocate/Append call (spec.md §3.2 invariant 5).
func (a *Arena) Span(s ByteSpan) []byte {
	if s.len == 0 {
		return nil
	}
	return a.buf[s.off : s.off+s.len]
}

// SpanMut is Span, documented separately to mark write intent at call sites.
func (a *Arena) SpanMut(s ByteSpan) []byte {
	return a.Span(s)
}

// Len returns the number of bytes committed to the arena so far.
func (a *Arena) Len() int { return len(a.buf) }
