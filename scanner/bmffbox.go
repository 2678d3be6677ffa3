// SPDX-License-Identifier: MIT

package scanner

import "github.com/openmeta-go/openmeta/binread"

// bmffBox is one ISO Base Media File Format box header, resolved to the
// file-relative offset/size of its payload (after the header, excluding any
// trailing bytes beyond its declared size).
type bmffBox struct {
	fourcc        [4]byte
	payloadOffset int64
	payloadSize   int64
	// version and flags are left 0 by bmffWalkBoxes; callers read a full
	// box's version/flags with bmffFullBoxHeader.
	version uint8
	flags   uint32
}

// bmffWalkBoxes calls visit for every top-level box in b[start:end), in
// encounter order. visit returns false to stop the walk early. Returns false
// if a box header is malformed (truncated size/fourcc).
func bmffWalkBoxes(b []byte, start, end int64, visit func(bmffBox) bool) bool {
	pos := start
	for pos < end {
		if !binread.InBounds(b, pos, 8) {
			return false
		}
		size32, ok := binread.U32BE(b, pos)
		if !ok {
			return false
		}
		fourccBytes, ok := binread.Bytes(b, pos+4, 4)
		if !ok {
			return false
		}
		var fourcc [4]byte
		copy(fourcc[:], fourccBytes)

		headerSize := int64(8)
		var boxSize int64
		switch size32 {
		case 0:
			boxSize = end - pos
		case 1:
			size64, ok := binread.U64BE(b, pos+8)
			if !ok {
				return false
			}
			headerSize = 16
			boxSize = int64(size64)
		default:
			boxSize = int64(size32)
		}
		if boxSize < headerSize || pos+boxSize > end {
			return false
		}

		payloadOff := pos + headerSize
		payloadSize := boxSize - headerSize

		box := bmffBox{fourcc: fourcc, payloadOffset: payloadOff, payloadSize: payloadSize}
		if !visit(box) {
			return true
		}
		pos += boxSize
	}
	return true
}

// bmffFullBoxHeader reads the 4-byte version+flags prefix a "full box"
// (meta, iinf, infe, iloc, ipma...) carries at the start of its payload,
// returning the offset just past it.
func bmffFullBoxHeader(b []byte, payloadOffset int64) (version uint8, flags uint32, contentOffset int64, ok bool) {
	v, ok := binread.U32BE(b, payloadOffset)
	if !ok {
		return 0, 0, 0, false
	}
	return uint8(v >> 24), v & 0x00ffffff, payloadOffset + 4, true
}
