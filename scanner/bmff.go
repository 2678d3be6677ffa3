// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

var (
	bmffBoxMeta = [4]byte{'m', 'e', 't', 'a'}
	bmffBoxIinf = [4]byte{'i', 'i', 'n', 'f'}
	bmffBoxInfe = [4]byte{'i', 'n', 'f', 'e'}
	bmffBoxIloc = [4]byte{'i', 'l', 'o', 'c'}
	bmffBoxIdat = [4]byte{'i', 'd', 'a', 't'}
	bmffBoxMime = [4]byte{'m', 'i', 'm', 'e'}
	bmffBoxMoov = [4]byte{'m', 'o', 'o', 'v'}
	bmffBoxCmt1 = [4]byte{'C', 'M', 'T', '1'}
	bmffBoxCmt2 = [4]byte{'C', 'M', 'T', '2'}
	bmffBoxCmt3 = [4]byte{'C', 'M', 'T', '3'}
	bmffBoxCmt4 = [4]byte{'C', 'M', 'T', '4'}

	heifBrandHeic = [4]byte{'h', 'e', 'i', 'c'}
	heifBrandHeix = [4]byte{'h', 'e', 'i', 'x'}
	heifBrandMif1 = [4]byte{'m', 'i', 'f', '1'}
	avifBrandAvif = [4]byte{'a', 'v', 'i', 'f'}
	cr3BrandCrx   = [4]byte{'c', 'r', 'x', ' '}

	mimeRdfXML = []byte("application/rdf+xml")

	// uuidCanonCR3 identifies the CRX/Canon UUID box in a CR3 moov tree
	// that embeds the CMT1-4 TIFF blocks (no public registry name; value
	// taken from observed CR3 streams).
	uuidCanonCR3 = [16]byte{
		0x85, 0xc0, 0xb6, 0x87, 0x82, 0x0f, 0x11, 0xe0,
		0x81, 0x11, 0xf4, 0xce, 0x46, 0x2b, 0x6a, 0x48,
	}
)

// ilocEntry is a resolved item-location: either a file-relative extent or
// one relative to an `idat` box's payload.
type ilocEntry struct {
	offset, length   uint64
	constructionIdat bool
}

// ScanBMFF walks an ISOBMFF container's `meta` box (HEIF/AVIF) or `moov`
// box (Canon CR3), resolving item construction methods and recognising
// item type `Exif` and MIME `application/rdf+xml` as XMP, plus CR3's
// `moov/uuid(Canon)/CMT[1-4]` TIFF blocks (spec.md §4.3).
func ScanBMFF(b []byte, out []BlockRef) Result {
	s := newSink(out)
	status := store.Ok

	if !binread.InBounds(b, 4, 4) {
		return Result{Status: store.Unsupported}
	}
	ftypTag, ok := binread.Bytes(b, 4, 4)
	if !ok || !bytes.Equal(ftypTag, bmffBoxFtyp[:]) {
		return Result{Status: store.Unsupported}
	}
	brandBytes, ok := binread.Bytes(b, 8, 4)
	if !ok {
		return Result{Status: store.Malformed}
	}
	var brand [4]byte
	copy(brand[:], brandBytes)

	format := bmffFormatForBrand(brand)
	if format == FormatUnknown {
		return Result{Status: store.Unsupported}
	}

	var idatOffset, idatSize int64 = -1, 0
	itemExif := make(map[uint32]bool)
	itemXMP := make(map[uint32]bool)
	ilocEntries := make(map[uint32]ilocEntry)

	bmffWalkBoxes(b, 0, int64(len(b)), func(box bmffBox) bool {
		switch box.fourcc {
		case bmffBoxMeta:
			_, _, content, ok := bmffFullBoxHeader(b, box.payloadOffset)
			if !ok {
				status = store.Merge(status, store.Malformed)
				return true
			}
			bmffWalkBoxes(b, content, box.payloadOffset+box.payloadSize, func(inner bmffBox) bool {
				switch inner.fourcc {
				case bmffBoxIinf:
					bmffScanIinf(b, inner, itemExif, itemXMP)
				case bmffBoxIloc:
					bmffScanIloc(b, inner, ilocEntries)
				case bmffBoxIdat:
					idatOffset, idatSize = inner.payloadOffset, inner.payloadSize
				}
				return true
			})
		case bmffBoxMoov:
			if format == FormatCR3 {
				bmffScanCR3Moov(s, b, box)
			}
		}
		return true
	})

	for itemID, loc := range ilocEntries {
		var kind Kind
		switch {
		case itemExif[itemID]:
			kind = KindExif
		case itemXMP[itemID]:
			kind = KindXmp
		default:
			continue
		}
		if loc.constructionIdat {
			if idatOffset < 0 || int64(loc.offset+loc.length) > idatSize {
				status = store.Merge(status, store.Malformed)
				continue
			}
			dataOff := idatOffset + int64(loc.offset)
			if kind == KindExif {
				emitBmffExifWithOffset(s, b, format, dataOff, int64(loc.length))
			} else {
				s.emit(BlockRef{Format: format, Kind: kind, DataOffset: uint64(dataOff), DataSize: loc.length})
			}
			continue
		}
		if !binread.InBounds(b, int64(loc.offset), int64(loc.length)) {
			status = store.Merge(status, store.Malformed)
			continue
		}
		if kind == KindExif {
			emitBmffExifWithOffset(s, b, format, int64(loc.offset), int64(loc.length))
		} else {
			s.emit(BlockRef{Format: format, Kind: kind, DataOffset: loc.offset, DataSize: loc.length})
		}
	}

	if s.truncated() {
		return Result{Status: store.OutputTruncated, Written: s.written, Needed: s.needed}
	}
	return Result{Status: status, Written: s.written, Needed: s.needed}
}

func bmffFormatForBrand(brand [4]byte) Format {
	switch brand {
	case heifBrandHeic, heifBrandHeix, heifBrandMif1:
		return FormatHEIF
	case avifBrandAvif:
		return FormatAVIF
	case cr3BrandCrx:
		return FormatCR3
	default:
		return FormatUnknown
	}
}

// emitBmffExifWithOffset peels off the 4-byte TIFF-header-offset prefix an
// Exif item carries ahead of its TIFF bytes.
func emitBmffExifWithOffset(s *sink, b []byte, format Format, off, size int64) {
	tiffOff, ok := binread.U32BE(b, off)
	if !ok {
		return
	}
	dataOff := off + 4 + int64(tiffOff)
	dataLen := size - 4 - int64(tiffOff)
	if dataLen <= 0 {
		return
	}
	s.emit(BlockRef{
		Format:     format,
		Kind:       KindExif,
		DataOffset: uint64(dataOff),
		DataSize:   uint64(dataLen),
		Chunking:   ChunkingBmffExifTiffOffsetU32Be,
		AuxU32:     tiffOff,
	})
}

func bmffScanIinf(b []byte, box bmffBox, itemExif, itemXMP map[uint32]bool) {
	version, _, pos, ok := bmffFullBoxHeader(b, box.payloadOffset)
	if !ok {
		return
	}
	var count uint32
	if version == 0 {
		v, ok := binread.U16BE(b, pos)
		if !ok {
			return
		}
		count = uint32(v)
		pos += 2
	} else {
		v, ok := binread.U32BE(b, pos)
		if !ok {
			return
		}
		count = v
		pos += 4
	}
	end := box.payloadOffset + box.payloadSize
	for i := uint32(0); i < count && pos < end; i++ {
		bmffWalkBoxes(b, pos, end, func(infe bmffBox) bool {
			pos = infe.payloadOffset + infe.payloadSize
			if infe.fourcc != bmffBoxInfe {
				return false
			}
			infeVersion, _, p, ok := bmffFullBoxHeader(b, infe.payloadOffset)
			if !ok || infeVersion < 2 {
				return false
			}
			var itemID uint32
			if infeVersion == 2 {
				v, ok := binread.U16BE(b, p)
				if !ok {
					return false
				}
				itemID = uint32(v)
				p += 2
			} else {
				v, ok := binread.U32BE(b, p)
				if !ok {
					return false
				}
				itemID = v
				p += 4
			}
			p += 2 // protection index
			itemType, ok := binread.Bytes(b, p, 4)
			if !ok {
				return false
			}
			p += 4
			switch {
			case bytes.Equal(itemType, bmffBoxExif[:]):
				itemExif[itemID] = true
			case bytes.Equal(itemType, bmffBoxMime[:]):
				// MIME item: the MIME type string follows as a NUL-terminated
				// UTF-8 string (item_name already consumed before it in the
				// wire format; treat conservatively by scanning for the rdf+xml
				// marker within the remainder of the infe payload instead of
				// reproducing the full name/content_type/content_encoding
				// triple, since only the MIME string content matters here).
				rest, ok := binread.Bytes(b, p, infe.payloadOffset+infe.payloadSize-p)
				if ok && bytes.Contains(rest, mimeRdfXML) {
					itemXMP[itemID] = true
				}
			}
			return false
		})
	}
}

func bmffScanIloc(b []byte, box bmffBox, out map[uint32]ilocEntry) {
	version, _, pos, ok := bmffFullBoxHeader(b, box.payloadOffset)
	if !ok {
		return
	}
	sizesByte, ok := binread.U8(b, pos)
	if !ok {
		return
	}
	offsetSize := int(sizesByte >> 4)
	lengthSize := int(sizesByte & 0x0f)
	pos++
	baseSizesByte, ok := binread.U8(b, pos)
	if !ok {
		return
	}
	baseOffsetSize := int(baseSizesByte >> 4)
	indexSize := int(baseSizesByte & 0x0f)
	pos++

	readVar := func(n int) (uint64, bool) {
		switch n {
		case 0:
			return 0, true
		case 2:
			v, ok := binread.U16BE(b, pos)
			pos += 2
			return uint64(v), ok
		case 4:
			v, ok := binread.U32BE(b, pos)
			pos += 4
			return uint64(v), ok
		case 8:
			v, ok := binread.U64BE(b, pos)
			pos += 8
			return v, ok
		default:
			return 0, false
		}
	}

	var count uint32
	if version < 2 {
		v, ok := binread.U16BE(b, pos)
		if !ok {
			return
		}
		count = uint32(v)
		pos += 2
	} else {
		v, ok := binread.U32BE(b, pos)
		if !ok {
			return
		}
		count = v
		pos += 4
	}

	for i := uint32(0); i < count; i++ {
		var itemID uint32
		if version < 2 {
			v, ok := binread.U16BE(b, pos)
			if !ok {
				return
			}
			itemID = uint32(v)
			pos += 2
		} else {
			v, ok := binread.U32BE(b, pos)
			if !ok {
				return
			}
			itemID = v
			pos += 4
		}
		var constructionMethod uint16
		if version >= 1 {
			v, ok := binread.U16BE(b, pos)
			if !ok {
				return
			}
			constructionMethod = v
			pos += 2
		}
		pos += 2 // data_reference_index
		baseOffset, ok := readVar(baseOffsetSize)
		if !ok {
			return
		}
		extentCount, ok := binread.U16BE(b, pos)
		if !ok {
			return
		}
		pos += 2

		var firstOffset, firstLength uint64
		for j := uint16(0); j < extentCount; j++ {
			if version >= 1 && indexSize > 0 {
				if _, ok := readVar(indexSize); !ok {
					return
				}
			}
			off, ok := readVar(offsetSize)
			if !ok {
				return
			}
			length, ok := readVar(lengthSize)
			if !ok {
				return
			}
			if j == 0 {
				firstOffset = baseOffset + off
				firstLength = length
			}
		}
		out[itemID] = ilocEntry{
			offset:           firstOffset,
			length:           firstLength,
			constructionIdat: constructionMethod == 1,
		}
	}
}

// bmffScanCR3Moov descends a CR3 `moov` box for `uuid(Canon)` boxes
// carrying CMT1-4 TIFF blocks, emitting each as an Exif block.
func bmffScanCR3Moov(s *sink, b []byte, moov bmffBox) {
	bmffWalkBoxes(b, moov.payloadOffset, moov.payloadOffset+moov.payloadSize, func(box bmffBox) bool {
		if box.fourcc != bmffBoxUUID || box.payloadSize < 16 {
			return true
		}
		guid, ok := binread.Bytes(b, box.payloadOffset, 16)
		if !ok || [16]byte(guid) != uuidCanonCR3 {
			return true
		}
		bmffWalkBoxes(b, box.payloadOffset+16, box.payloadOffset+box.payloadSize, func(cmt bmffBox) bool {
			switch cmt.fourcc {
			case bmffBoxCmt1, bmffBoxCmt2, bmffBoxCmt3, bmffBoxCmt4:
				s.emit(BlockRef{
					Format:     FormatCR3,
					Kind:       KindExif,
					DataOffset: uint64(cmt.payloadOffset),
					DataSize:   uint64(cmt.payloadSize),
					ID:         u32FromFourcc(cmt.fourcc),
				})
			}
			return true
		})
		return true
	})
}
