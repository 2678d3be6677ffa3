// SPDX-License-Identifier: MIT

package preview

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/scanner"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

const (
	tagJPEGInterchangeFormat       = 0x0201
	tagJPEGInterchangeFormatLength = 0x0202
	tagJpgFromRaw                  = 0x002e
	tagJpgFromRaw2                 = 0x0127
)

// ScanPreviewCandidates runs scanner.ScanAuto to locate EXIF blocks, then
// walks each one's IFD chain looking only for the well-known preview tags
// (spec.md §4.8): it never decodes or validates preview pixel data, just
// records where one starts and how big it claims to be.
func ScanPreviewCandidates(fileBytes []byte, blocksScratch []scanner.BlockRef, previewsOut []Candidate, opts ScanOptions) ScanResult {
	scanRes := scanner.ScanAuto(fileBytes, blocksScratch)
	status := scanRes.Status

	written := 0
	needed := 0
	for blockIdx, blk := range blocksScratch[:min(scanRes.Written, len(blocksScratch))] {
		if blk.Kind != scanner.KindExif {
			continue
		}
		tiffBytes, ok := binread.Bytes(fileBytes, int64(blk.DataOffset), int64(blk.DataSize))
		if !ok {
			status = store.Merge(status, store.Malformed)
			continue
		}

		w := &previewWalker{
			fileBytes:  fileBytes,
			base:       int64(blk.DataOffset),
			tiffBytes:  tiffBytes,
			format:     uint8(blk.Format),
			blockIndex: blockIdx,
			opts:       opts,
		}
		cfg, firstIFDOff, ok := tiffHeader(tiffBytes)
		if !ok {
			status = store.Merge(status, store.Malformed)
			continue
		}
		w.walk(cfg, firstIFDOff)
		status = store.Merge(status, w.status)

		for _, c := range w.found {
			needed++
			if written < len(previewsOut) {
				previewsOut[written] = c
				written++
			}
		}
	}

	if needed > len(previewsOut) {
		return ScanResult{Status: store.OutputTruncated, Written: written, Needed: needed}
	}
	return ScanResult{Status: status, Written: written, Needed: needed}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// tiffHeader parses the 8-byte TIFF header (BOM, magic, IFD0 offset).
func tiffHeader(b []byte) (binread.TiffConfig, int64, bool) {
	bom, ok := binread.Bytes(b, 0, 2)
	if !ok {
		return binread.TiffConfig{}, 0, false
	}
	le := bom[0] == 'I' && bom[1] == 'I'
	magic, ok := binread.U16(b, 2, le)
	if !ok {
		return binread.TiffConfig{}, 0, false
	}
	bigTIFF := magic == 43
	ifdOffPos := int64(4)
	var ifd0Off int64
	if bigTIFF {
		v, ok := binread.U64(b, ifdOffPos, le)
		if !ok {
			return binread.TiffConfig{}, 0, false
		}
		ifd0Off = int64(v)
	} else {
		v, ok := binread.U32(b, ifdOffPos, le)
		if !ok {
			return binread.TiffConfig{}, 0, false
		}
		ifd0Off = int64(v)
	}
	return binread.TiffConfig{LE: le, BigTIFF: bigTIFF}, ifd0Off, true
}

type previewWalker struct {
	fileBytes []byte
	base      int64 // absolute file offset of tiffBytes[0]
	tiffBytes []byte
	format    uint8

	blockIndex int
	opts       ScanOptions

	visited map[int64]bool
	ifds    int
	entries int
	status  store.Status
	found   []Candidate
}

func (w *previewWalker) walk(cfg binread.TiffConfig, firstIFDOff int64) {
	if w.visited == nil {
		w.visited = make(map[int64]bool)
	}
	off := firstIFDOff
	chain := 0
	for off != 0 {
		if w.visited[off] || w.ifds >= w.opts.Limits.MaxIFDs {
			break
		}
		w.visited[off] = true
		w.ifds++
		next := w.walkOne(cfg, off)
		chain++
		off = next
	}
}

func (w *previewWalker) walkOne(cfg binread.TiffConfig, ifdOff int64) int64 {
	scratch := store.New()
	_, entries, status := tiffwalk.DecodeClassicIFD(w.tiffBytes, cfg, ifdOff, 0, "preview_scratch", scratch, store.InvalidBlockID, tiffwalk.DefaultLimits(), 0)
	w.status = store.Merge(w.status, status)
	w.entries += len(entries)
	if w.entries >= w.opts.Limits.MaxTotalEntries {
		w.status = store.Merge(w.status, store.LimitExceeded)
		return 0
	}

	var jpegOff, jpegLen int64
	var haveOff, haveLen bool
	for i := range entries {
		e := &entries[i]
		switch e.Tag {
		case tagJPEGInterchangeFormat:
			if v, ok := scalarValue(e); ok {
				jpegOff, haveOff = v, true
			}
		case tagJPEGInterchangeFormatLength:
			if v, ok := scalarValue(e); ok {
				jpegLen, haveLen = v, true
			}
		case tagJpgFromRaw, tagJpgFromRaw2:
			w.emitCandidate(KindJpgFromRaw, e.Tag, w.base+e.ValueOffset, int64(e.Count))
		case tiffwalk.TagExifIFD, tiffwalk.TagGPSIFD, tiffwalk.TagInteropIFD:
			if v, ok := scalarValue(e); ok {
				w.walkOne(cfg, v)
			}
		case tiffwalk.TagSubIFDs:
			for _, off := range arrayOffsets(scratch, e) {
				w.walkOne(cfg, off)
			}
		}
	}
	if haveOff && haveLen {
		w.emitCandidate(KindExifJpegInterchange, tagJPEGInterchangeFormat, w.base+jpegOff, jpegLen)
	}

	entryCount, ok := readEntryCount(w.tiffBytes, cfg, ifdOff)
	if !ok {
		return 0
	}
	return nextIFD(w.tiffBytes, cfg, ifdOff, entryCount)
}

func (w *previewWalker) emitCandidate(kind Kind, tag uint16, fileOffset, size int64) {
	if size <= 0 || w.opts.Limits.MaxPreviewBytes > 0 && size > w.opts.Limits.MaxPreviewBytes {
		return
	}
	if !binread.InBounds(w.fileBytes, fileOffset, size) {
		return
	}
	soi := false
	if b, ok := binread.Bytes(w.fileBytes, fileOffset, 2); ok {
		soi = b[0] == 0xff && b[1] == 0xd8
	}
	if w.opts.RequireJpegSOI && !soi {
		return
	}
	w.found = append(w.found, Candidate{
		Kind:       kind,
		Format:     w.format,
		BlockIndex: w.blockIndex,
		TagID:      tag,
		FileOffset: fileOffset,
		Size:       size,
		HasJpegSOI: soi,
	})
}

func scalarValue(e *tiffwalk.ClassicEntry) (int64, bool) {
	if e.Value.Kind != store.KindScalar {
		return 0, false
	}
	return int64(e.Value.Scalar), true
}

func arrayOffsets(st *store.Store, e *tiffwalk.ClassicEntry) []int64 {
	if e.Value.Kind == store.KindScalar {
		return []int64{int64(e.Value.Scalar)}
	}
	if e.Value.Kind != store.KindArray {
		return nil
	}
	data := st.Arena().Span(e.Value.Data)
	width := e.Value.ElemType.Size()
	if width == 0 {
		return nil
	}
	var out []int64
	for i := uint32(0); i < e.Value.Count; i++ {
		o := int(i) * width
		if o+width > len(data) {
			break
		}
		var v uint64
		for j := 0; j < width; j++ {
			v |= uint64(data[o+j]) << (8 * j)
		}
		out = append(out, int64(v))
	}
	return out
}

func readEntryCount(b []byte, cfg binread.TiffConfig, ifdOff int64) (uint64, bool) {
	if cfg.BigTIFF {
		v, ok := binread.U64(b, ifdOff, cfg.LE)
		return v, ok
	}
	v, ok := binread.U16(b, ifdOff, cfg.LE)
	return uint64(v), ok
}

func nextIFD(b []byte, cfg binread.TiffConfig, ifdOff int64, entryCount uint64) int64 {
	headerSize, entrySize := int64(2), int64(12)
	if cfg.BigTIFF {
		headerSize, entrySize = 8, 20
		v, ok := binread.U64(b, ifdOff+headerSize+int64(entryCount)*entrySize, cfg.LE)
		if !ok {
			return 0
		}
		return int64(v)
	}
	v, ok := binread.U32(b, ifdOff+headerSize+int64(entryCount)*entrySize, cfg.LE)
	if !ok {
		return 0
	}
	return int64(v)
}
