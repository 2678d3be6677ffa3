// SPDX-License-Identifier: MIT

package tiffwalk

import (
	"bytes"
	"encoding/binary"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

// decodeValue reads count elements of TIFF type typ from raw (already
// resolved to the inline field or the out-of-line value window) and returns
// the MetaValue the store should carry, normalising numeric payloads to
// little-endian in the arena regardless of cfg's source endianness so
// MetaValue.Rational and array readers never need to know cfg (spec.md
// §4.4's value decoding, §3.1's MetaValue shape).
func decodeValue(raw []byte, cfg binread.TiffConfig, typ uint16, count uint32, arena *store.Arena) (store.MetaValue, bool) {
	elem := elemTypeFor(typ)
	if elem == store.ElemInvalid {
		return store.MetaValue{}, false
	}

	if typ == TypeASCII {
		text := bytes.TrimRight(raw, "\x00")
		span, ok := arena.Append(text)
		if !ok {
			return store.MetaValue{}, false
		}
		return store.MetaValue{Kind: store.KindText, ElemType: store.ElemASCII, Count: count, Data: span}, true
	}
	if typ == TypeUndefined {
		span, ok := arena.Append(raw)
		if !ok {
			return store.MetaValue{}, false
		}
		return store.MetaValue{Kind: store.KindBytes, ElemType: store.ElemU8, Count: count, Data: span}, true
	}

	size := typeSize(typ)
	if size == 0 || int(count)*size > len(raw) {
		return store.MetaValue{}, false
	}

	if typ == TypeRational || typ == TypeSRational {
		out := make([]byte, 0, int(count)*8)
		for i := uint32(0); i < count; i++ {
			off := int64(i) * 8
			num, ok1 := binread.U32(raw, off, cfg.LE)
			den, ok2 := binread.U32(raw, off+4, cfg.LE)
			if !ok1 || !ok2 {
				return store.MetaValue{}, false
			}
			var b8 [8]byte
			binary.LittleEndian.PutUint32(b8[0:4], num)
			binary.LittleEndian.PutUint32(b8[4:8], den)
			out = append(out, b8[:]...)
		}
		span, ok := arena.Append(out)
		if !ok {
			return store.MetaValue{}, false
		}
		return store.MetaValue{Kind: store.KindRational, ElemType: elem, Count: count, Data: span}, true
	}

	out := make([]byte, 0, int(count)*elem.Size())
	for i := uint32(0); i < count; i++ {
		off := int64(i) * int64(size)
		v, ok := readScalar(raw, off, size, cfg.LE)
		if !ok {
			return store.MetaValue{}, false
		}
		out = appendLE(out, v, elem.Size())
	}

	if count == 1 {
		v, _ := readScalar(raw, 0, size, cfg.LE)
		return store.MetaValue{Kind: store.KindScalar, ElemType: elem, Count: 1, Scalar: v}, true
	}
	span, ok := arena.Append(out)
	if !ok {
		return store.MetaValue{}, false
	}
	return store.MetaValue{Kind: store.KindArray, ElemType: elem, Count: count, Data: span}, true
}

// readScalar reads one size-byte element at off in raw honoring le,
// zero-extending it to a uint64; signed types keep their size-byte
// two's-complement bit pattern.
func readScalar(raw []byte, off int64, size int, le bool) (uint64, bool) {
	switch size {
	case 1:
		v, ok := binread.U8(raw, off)
		return uint64(v), ok
	case 2:
		v, ok := binread.U16(raw, off, le)
		return uint64(v), ok
	case 4:
		v, ok := binread.U32(raw, off, le)
		return uint64(v), ok
	case 8:
		v, ok := binread.U64(raw, off, le)
		return v, ok
	default:
		return 0, false
	}
}

func appendLE(out []byte, v uint64, width int) []byte {
	var b8 [8]byte
	binary.LittleEndian.PutUint64(b8[:], v)
	return append(out, b8[:width]...)
}
