// SPDX-License-Identifier: MIT

package makernote

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

const nintendoTagCameraInfo = 0x1101

// decodeNintendo decodes a Nintendo MakerNote (3DS/Wii U camera EXIF): a
// bare classic IFD whose out-of-line offsets may be absolute or
// MakerNote-relative. Both policies are tried and the one that keeps every
// out-of-line value in bounds wins; absolute is preferred on a tie since
// it requires no adjustment.
func decodeNintendo(ctx tiffwalk.MakerNoteContext) store.Status {
	valueBase := nintendoPickValueBase(ctx)

	blockID, entries, status := decodeEmbeddedIFD(ctx, ctx.Cfg, ctx.Offset, valueBase, "mk_nintendo_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}

	for i := range entries {
		e := &entries[i]
		if e.Tag != nintendoTagCameraInfo {
			continue
		}
		off, ok := scalarOffsetOf(e)
		if !ok {
			continue
		}
		_, _, sub := decodeEmbeddedIFD(ctx, ctx.Cfg, valueBase+off, valueBase, subtableToken("nintendo", "camerainfo", 0))
		status = store.Merge(status, sub)
	}

	return status
}

func nintendoPickValueBase(ctx tiffwalk.MakerNoteContext) int64 {
	count, ok := binread.U16(ctx.Bytes, ctx.Offset, ctx.Cfg.LE)
	if !ok || count == 0 {
		return 0
	}
	inBoundsCount := func(base int64) int {
		n := 0
		for i := uint16(0); i < count; i++ {
			entryOff := ctx.Offset + 2 + int64(i)*12
			typ, ok1 := binread.U16(ctx.Bytes, entryOff+2, ctx.Cfg.LE)
			cnt, ok2 := binread.U32(ctx.Bytes, entryOff+4, ctx.Cfg.LE)
			valOrOff, ok3 := binread.U32(ctx.Bytes, entryOff+8, ctx.Cfg.LE)
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			valueBytes := int64(cnt) * int64(typeSizeOf(typ))
			if valueBytes <= 4 {
				n++
				continue
			}
			if binread.InBounds(ctx.Bytes, base+int64(valOrOff), valueBytes) {
				n++
			}
		}
		return n
	}

	absScore := inBoundsCount(0)
	mnScore := inBoundsCount(ctx.Offset)
	if mnScore > absScore {
		return ctx.Offset
	}
	return 0
}
