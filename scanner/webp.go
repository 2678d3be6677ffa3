// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

var (
	webpRIFF = [4]byte{'R', 'I', 'F', 'F'}
	webpWEBP = [4]byte{'W', 'E', 'B', 'P'}
	webpEXIF = [4]byte{'E', 'X', 'I', 'F'}
	webpXMP  = [4]byte{'X', 'M', 'P', ' '}
	webpICCP = [4]byte{'I', 'C', 'C', 'P'}
)

// ScanWebP walks a RIFF/WEBP container's top-level chunks, recognising
// EXIF, "XMP " and ICCP (spec.md §4.3). Each chunk is word-aligned; a
// trailing pad byte is skipped when the chunk length is odd.
func ScanWebP(b []byte, out []BlockRef) Result {
	s := newSink(out)
	status := store.Ok

	riff, ok := binread.Bytes(b, 0, 4)
	if !ok || !bytes.Equal(riff, webpRIFF[:]) {
		return Result{Status: store.Unsupported}
	}
	form, ok := binread.Bytes(b, 8, 4)
	if !ok || !bytes.Equal(form, webpWEBP[:]) {
		return Result{Status: store.Unsupported}
	}

	pos := int64(12)
	for {
		tagb, ok := binread.Bytes(b, pos, 4)
		if !ok {
			break
		}
		length, ok := binread.U32LE(b, pos+4)
		if !ok {
			status = store.Merge(status, store.Malformed)
			break
		}
		dataOff := pos + 8
		if !binread.InBounds(b, dataOff, int64(length)) {
			status = store.Merge(status, store.Malformed)
			break
		}

		var kind Kind
		switch {
		case bytes.Equal(tagb, webpEXIF[:]):
			kind = KindExif
		case bytes.Equal(tagb, webpXMP[:]):
			kind = KindXmp
		case bytes.Equal(tagb, webpICCP[:]):
			kind = KindIcc
		}
		if kind != KindUnknown {
			s.emit(BlockRef{
				Format:     FormatWebP,
				Kind:       kind,
				DataOffset: uint64(dataOff),
				DataSize:   uint64(length),
			})
		}

		next := dataOff + int64(length)
		if length%2 != 0 {
			next++ // RIFF word-alignment pad
		}
		pos = next
	}

	if s.truncated() {
		return Result{Status: store.OutputTruncated, Written: s.written, Needed: s.needed}
	}
	return Result{Status: status, Written: s.written, Needed: s.needed}
}
