// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

var (
	pngChunkIHDR = [4]byte{'I', 'H', 'D', 'R'}
	pngChunkIEND = [4]byte{'I', 'E', 'N', 'D'}
	pngChunkITXt = [4]byte{'i', 'T', 'X', 't'}
	pngChunkICCP = [4]byte{'i', 'C', 'C', 'P'}
	pngChunkEXIf = [4]byte{'e', 'X', 'I', 'f'}
)

var pngXMPNamespace = []byte("XML:com.adobe.xmp")

// ScanPNG walks iTXt (XMP), iCCP, and eXIf chunks (spec.md §4.3).
func ScanPNG(b []byte, out []BlockRef) Result {
	s := newSink(out)
	status := store.Ok

	if !bytes.HasPrefix(b, pngSignature) {
		return Result{Status: store.Unsupported}
	}
	pos := int64(len(pngSignature))

	for {
		length, ok := binread.U32BE(b, pos)
		if !ok {
			break
		}
		var tag [4]byte
		tb, ok := binread.Bytes(b, pos+4, 4)
		if !ok {
			status = store.Merge(status, store.Malformed)
			break
		}
		copy(tag[:], tb)
		dataOff := pos + 8
		if !binread.InBounds(b, dataOff, int64(length)) {
			status = store.Merge(status, store.Malformed)
			break
		}
		data := b[dataOff : dataOff+int64(length)]

		switch tag {
		case pngChunkEXIf:
			s.emit(BlockRef{
				Format:     FormatPNG,
				Kind:       KindExif,
				DataOffset: uint64(dataOff),
				DataSize:   uint64(length),
			})
		case pngChunkICCP:
			// name\0 compressionMethod(1) compressedProfile
			nameEnd := bytes.IndexByte(data, 0)
			if nameEnd >= 0 && nameEnd+1 < len(data) {
				payloadOff := dataOff + int64(nameEnd) + 2
				payloadLen := int64(len(data)) - int64(nameEnd) - 2
				s.emit(BlockRef{
					Format:      FormatPNG,
					Kind:        KindIcc,
					DataOffset:  uint64(payloadOff),
					DataSize:    uint64(payloadLen),
					Compression: CompressionDeflate,
				})
			}
		case pngChunkITXt:
			emitPNGiTXt(s, data, dataOff)
		case pngChunkIEND:
			if s.truncated() {
				return Result{Status: store.OutputTruncated, Written: s.written, Needed: s.needed}
			}
			return Result{Status: status, Written: s.written, Needed: s.needed}
		}

		pos = dataOff + int64(length) + 4 // + CRC
	}

	if s.truncated() {
		return Result{Status: store.OutputTruncated, Written: s.written, Needed: s.needed}
	}
	return Result{Status: status, Written: s.written, Needed: s.needed}
}

// emitPNGiTXt parses an iTXt chunk body:
// keyword\0 compressionFlag(1) compressionMethod(1) languageTag\0 translatedKeyword\0 text
func emitPNGiTXt(s *sink, data []byte, baseOff int64) {
	pos := bytes.IndexByte(data, 0)
	if pos < 0 {
		return
	}
	keyword := data[:pos]
	if !bytes.Equal(keyword, pngXMPNamespace) {
		return
	}
	pos++ // past keyword NUL

	if pos+2 > len(data) {
		return
	}
	compFlag := data[pos]
	pos += 2 // compressionFlag + compressionMethod

	langEnd := bytes.IndexByte(data[pos:], 0)
	if langEnd < 0 {
		return
	}
	pos += langEnd + 1 // past language tag NUL

	trEnd := bytes.IndexByte(data[pos:], 0)
	if trEnd < 0 {
		return
	}
	pos += trEnd + 1 // past translated-keyword NUL

	payloadOff := baseOff + int64(pos)
	payloadLen := int64(len(data) - pos)

	comp := CompressionNone
	if compFlag != 0 {
		comp = CompressionDeflate
	}
	s.emit(BlockRef{
		Format:      FormatPNG,
		Kind:        KindXmp,
		DataOffset:  uint64(payloadOff),
		DataSize:    uint64(payloadLen),
		Compression: comp,
	})
}
