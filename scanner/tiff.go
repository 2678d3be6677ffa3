// SPDX-License-Identifier: MIT

package scanner

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

// ScanTIFF treats the whole byte slice as one Exif/TIFF block, additionally
// surfacing tag 0x8773 (InterColorProfile) and tag 0x02BC
// (XMLPacket/XMP) from IFD0 as separate Icc/Xmp blocks when present
// (spec.md §4.3: "TIFF: the whole stream is one Exif block; also checks
// for GDAL-style embedded ICC/XMP tags in IFD0").
func ScanTIFF(b []byte, out []BlockRef) Result {
	s := newSink(out)
	status := store.Ok

	cfg, ifd0Offset, ok := tiffHeader(b)
	if !ok {
		return Result{Status: store.Unsupported}
	}

	s.emit(BlockRef{
		Format:     FormatTIFF,
		Kind:       KindExif,
		DataOffset: 0,
		DataSize:   uint64(len(b)),
	})

	if ref, ok := tiffIFD0Tag(b, cfg, ifd0Offset, tiffTagXMLPacket); ok {
		s.emit(BlockRef{Format: FormatTIFF, Kind: KindXmp, DataOffset: ref.off, DataSize: ref.size, ID: tiffTagXMLPacket})
	}
	if ref, ok := tiffIFD0Tag(b, cfg, ifd0Offset, tiffTagICCProfile); ok {
		s.emit(BlockRef{Format: FormatTIFF, Kind: KindIcc, DataOffset: ref.off, DataSize: ref.size, ID: tiffTagICCProfile})
	}

	if s.truncated() {
		return Result{Status: store.OutputTruncated, Written: s.written, Needed: s.needed}
	}
	return Result{Status: status, Written: s.written, Needed: s.needed}
}

const (
	tiffTagXMLPacket  = 0x02BC
	tiffTagICCProfile = 0x8773
)

// tiffHeader parses the TIFF header (byte order mark, magic, IFD0 offset):
// classic magic 42 with a u32 IFD0 offset at 4, or BigTIFF magic 43 with a
// u64 IFD0 offset at 8, which also sets cfg.BigTIFF. This scanner only
// needs IFD0 to check for two well-known tags; the shared tiffwalk package
// does the real IFD walk.
func tiffHeader(b []byte) (binread.TiffConfig, int64, bool) {
	bom, ok := binread.Bytes(b, 0, 2)
	if !ok {
		return binread.TiffConfig{}, 0, false
	}
	var le bool
	switch {
	case bom[0] == 'I' && bom[1] == 'I':
		le = true
	case bom[0] == 'M' && bom[1] == 'M':
		le = false
	default:
		return binread.TiffConfig{}, 0, false
	}
	cfg := binread.TiffConfig{LE: le}
	magic, ok := binread.U16(b, 2, le)
	if !ok {
		return cfg, 0, false
	}
	if magic != 42 && magic != 43 {
		return cfg, 0, false
	}
	if magic == 43 {
		cfg.BigTIFF = true
		ifd0, ok := binread.U64(b, 8, le)
		if !ok {
			return cfg, 0, false
		}
		return cfg, int64(ifd0), true
	}
	ifd0, ok := binread.U32(b, 4, le)
	if !ok {
		return cfg, 0, false
	}
	return cfg, int64(ifd0), true
}

type tiffRef struct {
	off, size uint64
}

// tiffIFD0Tag does a minimal, bounded scan of IFD0's entry table (classic
// 12-byte entries here, BigTIFF 20-byte entries in tiffIFD0TagBig) for one
// tag with an ASCII/BYTE/UNDEFINED type, returning the file-relative byte
// range of its value, whether inline or out-of-line. It never recurses
// into SubIFDs: IFD0-only is sufficient for the two tags this scanner cares
// about.
func tiffIFD0Tag(b []byte, cfg binread.TiffConfig, ifdOffset int64, wantTag uint16) (tiffRef, bool) {
	if cfg.BigTIFF {
		return tiffIFD0TagBig(b, cfg, ifdOffset, wantTag)
	}
	count, ok := binread.U16(b, ifdOffset, cfg.LE)
	if !ok {
		return tiffRef{}, false
	}
	for i := uint16(0); i < count; i++ {
		entryOff := ifdOffset + 2 + int64(i)*12
		tag, ok := binread.U16(b, entryOff, cfg.LE)
		if !ok {
			return tiffRef{}, false
		}
		if tag != wantTag {
			continue
		}
		typ, ok := binread.U16(b, entryOff+2, cfg.LE)
		if !ok || (typ != 1 && typ != 2 && typ != 7) {
			return tiffRef{}, false
		}
		cnt, ok := binread.U32(b, entryOff+4, cfg.LE)
		if !ok {
			return tiffRef{}, false
		}
		if cnt <= 4 {
			return tiffRef{off: uint64(entryOff + 8), size: uint64(cnt)}, true
		}
		valOff, ok := binread.U32(b, entryOff+8, cfg.LE)
		if !ok {
			return tiffRef{}, false
		}
		return tiffRef{off: uint64(valOff), size: uint64(cnt)}, true
	}
	return tiffRef{}, false
}

func tiffIFD0TagBig(b []byte, cfg binread.TiffConfig, ifdOffset int64, wantTag uint16) (tiffRef, bool) {
	count, ok := binread.U64(b, ifdOffset, cfg.LE)
	if !ok {
		return tiffRef{}, false
	}
	for i := uint64(0); i < count; i++ {
		entryOff := ifdOffset + 8 + int64(i)*20
		tag, ok := binread.U16(b, entryOff, cfg.LE)
		if !ok {
			return tiffRef{}, false
		}
		if tag != wantTag {
			continue
		}
		typ, ok := binread.U16(b, entryOff+2, cfg.LE)
		if !ok || (typ != 1 && typ != 2 && typ != 7) {
			return tiffRef{}, false
		}
		cnt, ok := binread.U64(b, entryOff+4, cfg.LE)
		if !ok {
			return tiffRef{}, false
		}
		if cnt <= 8 {
			return tiffRef{off: uint64(entryOff + 12), size: cnt}, true
		}
		valOff, ok := binread.U64(b, entryOff+12, cfg.LE)
		if !ok {
			return tiffRef{}, false
		}
		return tiffRef{off: valOff, size: cnt}, true
	}
	return tiffRef{}, false
}
