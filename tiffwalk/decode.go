// SPDX-License-Identifier: MIT

package tiffwalk

import (
	"fmt"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

// Result is DecodeExifTiff's summary (spec.md §4.4).
type Result struct {
	Status         store.Status
	IFDsVisited    int
	EntriesEmitted int
}

// walker carries state threaded through one DecodeExifTiff call: the cycle
// guard, running totals against Limits, and the Make/Model strings IFD0
// hands to the MakerNote dispatcher.
type walker struct {
	b    []byte
	cfg  binread.TiffConfig
	st   *store.Store
	opts Options

	visited map[int64]bool
	ifds    int
	entries int
	status  store.Status

	make, model string
}

// DecodeExifTiff walks the classic or BigTIFF IFD chain starting at
// firstIFDOff, recursing into SubIFD/GPS/Interop/SubIFDs[] pointers,
// dispatching MakerNotes and GeoTIFF keys, and following the IFD0→IFD1
// `next_ifd` chain (spec.md §4.4).
func DecodeExifTiff(b []byte, cfg binread.TiffConfig, firstIFDOff int64, st *store.Store, opts Options) Result {
	w := &walker{b: b, cfg: cfg, st: st, opts: opts, visited: make(map[int64]bool)}

	off := firstIFDOff
	chainIndex := 0
	for off != 0 {
		if w.visited[off] {
			break // cycle guard (spec.md §4.4 step 5)
		}
		if w.ifds >= opts.Limits.MaxIFDs {
			w.status = store.Merge(w.status, store.LimitExceeded)
			break
		}
		w.visited[off] = true

		name := opts.Tokens.Root
		if chainIndex > 0 {
			name = fmt.Sprintf("%s%d", opts.Tokens.Root, chainIndex)
		}
		next := w.walkIFD(off, name, store.InvalidBlockID)
		chainIndex++
		off = next
	}

	return Result{Status: w.status, IFDsVisited: w.ifds, EntriesEmitted: w.entries}
}

// walkIFD decodes one IFD's flat entries via DecodeClassicIFD, then acts on
// well-known tags found in it: SubIFD pointers recurse, a MakerNote tag
// dispatches to opts.MakerNote, and a GeoKeyDirectory tag triggers the
// GeoTIFF key decoder. Returns the IFD's `next_ifd` pointer (0 at leaves).
func (w *walker) walkIFD(ifdOff int64, name string, parent store.BlockID) int64 {
	w.ifds++
	if w.entries >= w.opts.Limits.MaxTotalEntries {
		w.status = store.Merge(w.status, store.LimitExceeded)
		return 0
	}

	blockID, entries, status := DecodeClassicIFD(w.b, w.cfg, ifdOff, 0, name, w.st, parent, w.opts.Limits, 0)
	w.status = store.Merge(w.status, status)
	if blockID == store.InvalidBlockID {
		return 0
	}
	w.entries += len(entries)

	var geoDir, geoDouble, geoAscii *ClassicEntry
	stopRecursing := w.ifds >= w.opts.Limits.MaxIFDs || w.entries >= w.opts.Limits.MaxTotalEntries

	for i := range entries {
		e := &entries[i]
		switch e.Tag {
		case TagMake:
			w.make = textValue(w.st, e.Value)
		case TagModel:
			w.model = textValue(w.st, e.Value)
		case TagGeoKeyDir:
			geoDir = e
		case TagGeoDoubleParams:
			geoDouble = e
		case TagGeoAsciiParams:
			geoAscii = e
		}
	}

	if !stopRecursing {
		for i := range entries {
			e := &entries[i]
			switch e.Tag {
			case TagExifIFD:
				if off, ok := scalarOffset(e.Value); ok {
					w.walkIFD(int64(off), name+"/"+w.opts.Tokens.ExifIFD, blockID)
				}
			case TagGPSIFD:
				if off, ok := scalarOffset(e.Value); ok {
					w.walkIFD(int64(off), name+"/"+w.opts.Tokens.GPSIFD, blockID)
				}
			case TagInteropIFD:
				if off, ok := scalarOffset(e.Value); ok {
					w.walkIFD(int64(off), name+"/"+w.opts.Tokens.Interop, blockID)
				}
			case TagSubIFDs:
				for idx, off := range arrayOffsets(w.st, e.Value) {
					w.walkIFD(off, fmt.Sprintf("%s/%s%d", name, w.opts.Tokens.SubIFD, idx), blockID)
				}
			case TagMakerNote:
				if w.opts.DecodeMakerNote && w.opts.MakerNote != nil {
					mnStatus := w.opts.MakerNote(MakerNoteContext{
						Bytes:       w.b,
						Cfg:         w.cfg,
						Offset:      e.ValueOffset,
						Length:      int64(e.Count),
						IFD0Make:    w.make,
						IFD0Model:   w.model,
						Store:       w.st,
						ParentBlock: blockID,
						Limits:      w.opts.Limits,
					})
					w.status = store.Merge(w.status, mnStatus)
				}
			}
		}
	}

	if w.opts.DecodeGeoTiff && geoDir != nil {
		w.status = store.Merge(w.status, decodeGeoTiffKeys(w.b, w.cfg, w.st, geoDir, geoDouble, geoAscii))
	}

	entryCount, _, _, ok := readIFDHeader(w.b, w.cfg, ifdOff)
	if !ok {
		return 0
	}
	return nextIFDOffset(w.b, w.cfg, ifdOff, entryCount)
}

func textValue(st *store.Store, v store.MetaValue) string {
	if v.Kind != store.KindText {
		return ""
	}
	return string(st.Arena().Span(v.Data))
}

func scalarOffset(v store.MetaValue) (uint64, bool) {
	if v.Kind != store.KindScalar {
		return 0, false
	}
	return v.Scalar, true
}

func arrayOffsets(st *store.Store, v store.MetaValue) []int64 {
	if v.Kind == store.KindScalar {
		return []int64{int64(v.Scalar)}
	}
	if v.Kind != store.KindArray {
		return nil
	}
	data := st.Arena().Span(v.Data)
	width := v.ElemType.Size()
	if width == 0 {
		return nil
	}
	out := make([]int64, 0, v.Count)
	for i := uint32(0); i < v.Count; i++ {
		off := int(i) * width
		if off+width > len(data) {
			break
		}
		var val uint64
		for j := 0; j < width; j++ {
			val |= uint64(data[off+j]) << (8 * j)
		}
		out = append(out, int64(val))
	}
	return out
}
