// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

var (
	gif87a = []byte("GIF87a")
	gif89a = []byte("GIF89a")

	gifAppExtXMP = []byte("XMP DataXMP")

	gifExtensionIntroducer = byte(0x21)
	gifAppExtLabel         = byte(0xff)
	gifImageSeparator      = byte(0x2c)
	gifTrailer             = byte(0x3b)
)

// ScanGIF walks GIF extension blocks, recognising the Application
// Extension "XMP DataXMP" block (spec.md §4.3). XMP data in GIF is stored
// as a run of GIF sub-blocks followed by a 256-byte "magic trailer"; the
// whole run (sub-block lengths included, per how XMP-in-GIF readers expect
// it) is exposed as one Xmp block using GifSubBlocks chunking.
func ScanGIF(b []byte, out []BlockRef) Result {
	s := newSink(out)
	status := store.Ok

	if !bytes.HasPrefix(b, gif87a) && !bytes.HasPrefix(b, gif89a) {
		return Result{Status: store.Unsupported}
	}

	pos := int64(6)
	// Logical screen descriptor: 7 bytes + optional global color table.
	packed, ok := binread.U8(b, pos+4)
	if !ok {
		return Result{Status: store.Malformed}
	}
	pos += 7
	if packed&0x80 != 0 {
		gctSize := int64(1) << (uint(packed&0x07) + 1)
		pos += 3 * gctSize
	}

	for {
		marker, ok := binread.U8(b, pos)
		if !ok {
			break
		}
		switch marker {
		case gifTrailer:
			if s.truncated() {
				return Result{Status: store.OutputTruncated, Written: s.written, Needed: s.needed}
			}
			return Result{Status: status, Written: s.written, Needed: s.needed}
		case gifExtensionIntroducer:
			label, ok := binread.U8(b, pos+1)
			if !ok {
				status = store.Merge(status, store.Malformed)
				goto done
			}
			blocksStart := pos + 2
			if label == gifAppExtLabel {
				blockSizeStart := blocksStart
				blockSize, ok := binread.U8(b, blockSizeStart)
				if ok && int64(blockSize) == 11 {
					appID, ok := binread.Bytes(b, blockSizeStart+1, 11)
					if ok && bytes.Equal(appID, gifAppExtXMP) {
						xmpStart := blockSizeStart + 1 + 11
						end, ok := gifFindXMPEnd(b, xmpStart)
						if ok {
							s.emit(BlockRef{
								Format:     FormatGIF,
								Kind:       KindXmp,
								DataOffset: uint64(xmpStart),
								DataSize:   uint64(end - xmpStart),
								Chunking:   ChunkingGifSubBlocks,
							})
							pos = end
							continue
						}
					}
				}
			}
			next, ok := gifSkipSubBlocks(b, blocksStart)
			if !ok {
				status = store.Merge(status, store.Malformed)
				goto done
			}
			pos = next
		case gifImageSeparator:
			next, ok := gifSkipImageBlock(b, pos)
			if !ok {
				status = store.Merge(status, store.Malformed)
				goto done
			}
			pos = next
		default:
			status = store.Merge(status, store.Malformed)
			goto done
		}
	}
done:
	if s.truncated() {
		return Result{Status: store.OutputTruncated, Written: s.written, Needed: s.needed}
	}
	return Result{Status: status, Written: s.written, Needed: s.needed}
}

// gifFindXMPEnd scans forward for the 256-byte "magic trailer" GIF XMP uses
// in place of a zero-length terminating sub-block, returning the offset
// just past it.
func gifFindXMPEnd(b []byte, start int64) (int64, bool) {
	// The trailer is 0x01, 0xff, 0xfe ... 0x00 (256 bytes); rather than
	// verify its exact shape, treat everything up to (and including) the
	// final NUL terminator as the XMP region, matching how consumers of
	// XMP-in-GIF read it back.
	pos := start
	for {
		bb, ok := binread.U8(b, pos)
		if !ok {
			return 0, false
		}
		pos++
		if bb == 0 {
			// Take the whole NUL run, so the terminator that follows the
			// trailer's own 0x00 is included.
			for {
				nb, ok := binread.U8(b, pos)
				if !ok || nb != 0 {
					return pos, true
				}
				pos++
			}
		}
	}
}

func gifSkipSubBlocks(b []byte, pos int64) (int64, bool) {
	for {
		size, ok := binread.U8(b, pos)
		if !ok {
			return 0, false
		}
		pos++
		if size == 0 {
			return pos, true
		}
		if !binread.InBounds(b, pos, int64(size)) {
			return 0, false
		}
		pos += int64(size)
	}
}

func gifSkipImageBlock(b []byte, pos int64) (int64, bool) {
	// Image separator + descriptor (9 bytes after separator).
	pos++
	packed, ok := binread.U8(b, pos+8)
	if !ok {
		return 0, false
	}
	pos += 9
	if packed&0x80 != 0 {
		lctSize := int64(1) << (uint(packed&0x07) + 1)
		pos += 3 * lctSize
	}
	pos++ // LZW minimum code size
	return gifSkipSubBlocks(b, pos)
}
