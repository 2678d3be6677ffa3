// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

// JPEG segment markers, named the way the teacher's metadecoder_exif.go
// names its marker constants.
const (
	jpegSOI   = 0xffd8
	jpegSOS   = 0xffda
	jpegAPP1  = 0xffe1
	jpegAPP2  = 0xffe2
	jpegAPP13 = 0xffed
)

var (
	exifHeader6 = []byte("Exif\x00\x00")
	xmpHeader   = []byte("http://ns.adobe.com/xap/1.0/\x00")
	iccHeader   = []byte("ICC_PROFILE\x00")
	psHeader    = []byte("Photoshop 3.0\x00")
	ps8bim      = []byte("8BIM")
)

// ScanJPEG walks JPEG segments after SOI, emitting one BlockRef per
// APP1/Exif, APP1/XMP, APP2/ICC_PROFILE (possibly multi-part) and
// APP13/Photoshop IRB segment, in encounter order (spec.md §4.3).
func ScanJPEG(b []byte, out []BlockRef) Result {
	s := newSink(out)
	status := store.Ok

	if len(b) < 2 {
		return Result{Status: store.Malformed}
	}
	soi, ok := binread.U16BE(b, 0)
	if !ok || soi != jpegSOI {
		return Result{Status: store.Unsupported}
	}

	pos := int64(2)
	for {
		marker, ok := binread.U16BE(b, pos)
		if !ok {
			break
		}
		pos += 2
		if marker == 0 || (marker&0xff00) != 0xff00 {
			continue
		}
		if marker == jpegSOS {
			break
		}
		length, ok := binread.U16BE(b, pos)
		if !ok || length < 2 {
			status = store.Merge(status, store.Malformed)
			break
		}
		segStart := pos + 2
		segLen := int64(length) - 2
		if !binread.InBounds(b, segStart, segLen) {
			status = store.Merge(status, store.Malformed)
			break
		}
		seg := b[segStart : segStart+segLen]

		switch marker {
		case jpegAPP1:
			if bytes.HasPrefix(seg, exifHeader6) {
				s.emit(BlockRef{
					Format:     FormatJPEG,
					Kind:       KindExif,
					DataOffset: uint64(segStart + int64(len(exifHeader6))),
					DataSize:   uint64(segLen) - uint64(len(exifHeader6)),
					ID:         marker,
				})
			} else if bytes.HasPrefix(seg, xmpHeader) {
				s.emit(BlockRef{
					Format:     FormatJPEG,
					Kind:       KindXmp,
					DataOffset: uint64(segStart + int64(len(xmpHeader))),
					DataSize:   uint64(segLen) - uint64(len(xmpHeader)),
					ID:         marker,
				})
			}
		case jpegAPP2:
			if bytes.HasPrefix(seg, iccHeader) && len(seg) >= len(iccHeader)+2 {
				seq := seg[len(iccHeader)]
				total := seg[len(iccHeader)+1]
				payloadOff := segStart + int64(len(iccHeader)) + 2
				payloadLen := segLen - int64(len(iccHeader)) - 2
				if payloadLen >= 0 {
					s.emit(BlockRef{
						Format:      FormatJPEG,
						Kind:        KindIcc,
						DataOffset:  uint64(payloadOff),
						DataSize:    uint64(payloadLen),
						Chunking:    ChunkingJpegApp2SeqTotal,
						ID:          marker,
						AuxU32:      uint32(total),
						PartIndex:   uint32(seq),
						PartCount:   uint32(total),
					})
				}
			}
		case jpegAPP13:
			if bytes.HasPrefix(seg, psHeader) {
				rest := seg[len(psHeader):]
				restOff := segStart + int64(len(psHeader))
				emitPhotoshopIRBs(s, rest, restOff, marker)
			}
		}

		pos = segStart + segLen
	}

	if s.truncated() {
		return Result{Status: store.OutputTruncated, Written: s.written, Needed: s.needed}
	}
	return Result{Status: status, Written: s.written, Needed: s.needed}
}

// emitPhotoshopIRBs walks a Photoshop 3.0 Image Resource Block stream,
// emitting one KindPhotoshopIrB BlockRef per 8BIM resource. Layout:
// "8BIM" + id(u16) + pascal-string name (padded to even) + size(u32) +
// data (padded to even).
func emitPhotoshopIRBs(s *sink, b []byte, baseOff int64, marker uint16) {
	pos := int64(0)
	for {
		if !binread.InBounds(b, pos, 4) || !bytes.Equal(b[pos:pos+4], ps8bim) {
			return
		}
		pos += 4
		id, ok := binread.U16BE(b, pos)
		if !ok {
			return
		}
		pos += 2
		nameLen, ok := binread.U8(b, pos)
		if !ok {
			return
		}
		nameStart := pos + 1
		nameEnd := nameStart + int64(nameLen)
		pos = nameEnd
		if nameLen%2 == 0 {
			pos++ // pad to even including the length byte
		}
		size, ok := binread.U32BE(b, pos)
		if !ok {
			return
		}
		pos += 4
		dataStart := pos
		if !binread.InBounds(b, dataStart, int64(size)) {
			return
		}
		s.emit(BlockRef{
			Format:     FormatJPEG,
			Kind:       KindPhotoshopIrB,
			DataOffset: uint64(baseOff + dataStart),
			DataSize:   uint64(size),
			Chunking:   ChunkingPsIrB8Bim,
			ID:         marker,
			AuxU32:     uint32(id),
		})
		pos = dataStart + int64(size)
		if size%2 != 0 {
			pos++
		}
	}
}
