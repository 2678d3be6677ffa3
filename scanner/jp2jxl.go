// SPDX-License-Identifier: MIT

package scanner

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

var (
	bmffBoxFtyp = [4]byte{'f', 't', 'y', 'p'}
	bmffBoxJp2h = [4]byte{'j', 'p', '2', 'h'}
	bmffBoxColr = [4]byte{'c', 'o', 'l', 'r'}
	bmffBoxUUID = [4]byte{'u', 'u', 'i', 'd'}
	bmffBoxExif = [4]byte{'E', 'x', 'i', 'f'}
	bmffBoxXML  = [4]byte{'x', 'm', 'l', ' '}
	bmffBoxBrob = [4]byte{'b', 'r', 'o', 'b'}

	jp2BrandJp2 = [4]byte{'j', 'p', '2', ' '}
	jxlBrandJxl = [4]byte{'j', 'x', 'l', ' '}

	// uuidXMP is the JP2/JPX UUID identifying an embedded XMP packet
	// (ISO/IEC 16684-1 Annex B, the same GUID JPEG/TIFF XMP-in-UUID uses).
	uuidXMP = [16]byte{
		0xbe, 0x7a, 0xcf, 0xcb, 0x97, 0xa9, 0x42, 0xe8,
		0x9c, 0x71, 0x99, 0x94, 0x91, 0xe3, 0xaf, 0xac,
	}
)

// ScanJP2 walks a JP2 file's top-level boxes, emitting an Icc block for a
// `jp2h/colr` box using ICC method (2) and an Xmp block for a `uuid` box
// carrying the XMP UUID (spec.md §4.3).
func ScanJP2(b []byte, out []BlockRef) Result {
	return scanJP2OrJXL(b, out, FormatJP2, jp2BrandJp2)
}

// ScanJXL walks a JPEG XL container's top-level boxes, recognising `Exif`,
// `xml ` and brotli-compressed `brob` boxes (spec.md §4.3). A `brob` box's
// payload opens with the fourcc of the box type it wraps; the scanner
// reports that inner fourcc via AuxU32 and Compression=Brotli so a
// decompressor collaborator can recover the real payload.
func ScanJXL(b []byte, out []BlockRef) Result {
	return scanJP2OrJXL(b, out, FormatJXL, jxlBrandJxl)
}

func scanJP2OrJXL(b []byte, out []BlockRef, format Format, wantBrand [4]byte) Result {
	s := newSink(out)
	status := store.Ok

	if !binread.InBounds(b, 0, 8) {
		return Result{Status: store.Unsupported}
	}
	var sawFtyp bool
	ok := bmffWalkBoxes(b, 0, int64(len(b)), func(box bmffBox) bool {
		if box.fourcc == bmffBoxFtyp {
			brand, ok := binread.Bytes(b, box.payloadOffset, 4)
			if !ok || [4]byte(brand) != wantBrand {
				status = store.Merge(status, store.Unsupported)
				return false
			}
			sawFtyp = true
			return true
		}
		if !sawFtyp {
			// Non-conformant stream ordering; keep scanning rather than bail.
			status = store.Merge(status, store.Malformed)
		}

		switch format {
		case FormatJP2:
			scanJP2Box(s, b, box)
		case FormatJXL:
			scanJXLBox(s, b, box)
		}
		return true
	})
	if !ok {
		status = store.Merge(status, store.Malformed)
	}
	if !sawFtyp {
		return Result{Status: store.Unsupported}
	}

	if s.truncated() {
		return Result{Status: store.OutputTruncated, Written: s.written, Needed: s.needed}
	}
	return Result{Status: status, Written: s.written, Needed: s.needed}
}

func scanJP2Box(s *sink, b []byte, box bmffBox) {
	switch box.fourcc {
	case bmffBoxJp2h:
		bmffWalkBoxes(b, box.payloadOffset, box.payloadOffset+box.payloadSize, func(inner bmffBox) bool {
			if inner.fourcc == bmffBoxColr {
				emitJP2Colr(s, b, inner)
			}
			return true
		})
	case bmffBoxUUID:
		emitBmffUUID(s, b, box, FormatJP2)
	}
}

func emitJP2Colr(s *sink, b []byte, box bmffBox) {
	method, ok := binread.U8(b, box.payloadOffset)
	if !ok || method != 2 {
		return
	}
	// method(1) + precedence(1) + approx(1), profile follows.
	profOff := box.payloadOffset + 3
	profLen := box.payloadSize - 3
	if profLen <= 0 {
		return
	}
	s.emit(BlockRef{
		Format:     FormatJP2,
		Kind:       KindIcc,
		DataOffset: uint64(profOff),
		DataSize:   uint64(profLen),
	})
}

func emitBmffUUID(s *sink, b []byte, box bmffBox, format Format) {
	if box.payloadSize < 16 {
		return
	}
	guid, ok := binread.Bytes(b, box.payloadOffset, 16)
	if !ok {
		return
	}
	if [16]byte(guid) != uuidXMP {
		return
	}
	s.emit(BlockRef{
		Format:     format,
		Kind:       KindXmp,
		DataOffset: uint64(box.payloadOffset + 16),
		DataSize:   uint64(box.payloadSize - 16),
	})
}

func scanJXLBox(s *sink, b []byte, box bmffBox) {
	switch box.fourcc {
	case bmffBoxExif:
		// The Exif box payload is prefixed by a 4-byte big-endian offset to
		// the start of the TIFF header within the box (usually 0).
		tiffOff, ok := binread.U32BE(b, box.payloadOffset)
		if !ok {
			return
		}
		dataOff := box.payloadOffset + 4 + int64(tiffOff)
		dataLen := box.payloadSize - 4 - int64(tiffOff)
		if dataLen <= 0 {
			return
		}
		s.emit(BlockRef{
			Format:     FormatJXL,
			Kind:       KindExif,
			DataOffset: uint64(dataOff),
			DataSize:   uint64(dataLen),
			Chunking:   ChunkingBmffExifTiffOffsetU32Be,
			AuxU32:     tiffOff,
		})
	case bmffBoxXML:
		s.emit(BlockRef{
			Format:     FormatJXL,
			Kind:       KindXmp,
			DataOffset: uint64(box.payloadOffset),
			DataSize:   uint64(box.payloadSize),
		})
	case bmffBoxBrob:
		if box.payloadSize < 4 {
			return
		}
		inner, ok := binread.Bytes(b, box.payloadOffset, 4)
		if !ok {
			return
		}
		var innerFourcc [4]byte
		copy(innerFourcc[:], inner)
		var kind Kind
		switch innerFourcc {
		case bmffBoxExif:
			kind = KindExif
		case bmffBoxXML:
			kind = KindXmp
		default:
			kind = KindCompressedMetadata
		}
		s.emit(BlockRef{
			Format:      FormatJXL,
			Kind:        kind,
			DataOffset:  uint64(box.payloadOffset + 4),
			DataSize:    uint64(box.payloadSize - 4),
			Compression: CompressionBrotli,
			AuxU32:      u32FromFourcc(innerFourcc),
		})
	}
}

func u32FromFourcc(f [4]byte) uint32 {
	return uint32(f[0])<<24 | uint32(f[1])<<16 | uint32(f[2])<<8 | uint32(f[3])
}
