// SPDX-License-Identifier: MIT

package makernote

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// Olympus nested sub-IFD tags in the "new" wire shape (spec.md Olympus
// notes). Each points at a further classic IFD, MakerNote-relative.
var olympusSubIFDTags = map[uint16]string{
	0x2010: "equipment",
	0x2020: "camerasettings",
	0x2030: "rawdevelopment",
	0x2031: "rawdevelopment2",
	0x2040: "imageprocessing",
	0x2050: "focusinfo",
}

// decodeOlympus handles both Olympus wire shapes: the old fixed "OLYMP\0" /
// "CAMER\0" header followed by an outer-TIFF-relative classic IFD at +8, and
// the new "OLYMPUS\0" + BOM header followed by a MakerNote-relative classic
// IFD at +12 whose well-known tags point at further nested sub-IFDs.
func decodeOlympus(ctx tiffwalk.MakerNoteContext) store.Status {
	if h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, 8); ok && (string(h[:6]) == "OLYMP\x00" || string(h[:6]) == "CAMER\x00") {
		return decodeOlympusOld(ctx)
	}
	if h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, 8); ok && string(h[:8]) == "OLYMPUS\x00" {
		return decodeOlympusNew(ctx)
	}
	return store.Unsupported
}

func decodeOlympusOld(ctx tiffwalk.MakerNoteContext) store.Status {
	blockID, _, status := decodeEmbeddedIFD(ctx, ctx.Cfg, ctx.Offset+8, 0, "mk_olympus_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}
	return status
}

func decodeOlympusNew(ctx tiffwalk.MakerNoteContext) store.Status {
	bom, ok := binread.Bytes(ctx.Bytes, ctx.Offset+8, 2)
	if !ok {
		return store.Malformed
	}
	cfg := ctx.Cfg
	cfg.LE = string(bom) == "II"

	blockID, entries, status := decodeEmbeddedIFD(ctx, cfg, ctx.Offset+12, ctx.Offset, "mk_olympus_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}

	for i := range entries {
		e := &entries[i]
		name, known := olympusSubIFDTags[e.Tag]
		if !known {
			continue
		}
		off, ok := scalarOffsetOf(e)
		if !ok {
			continue
		}
		_, _, sub := decodeEmbeddedIFD(ctx, cfg, ctx.Offset+off, ctx.Offset, subtableToken("olympus", name, 0))
		status = store.Merge(status, sub)
	}

	return status
}

func scalarOffsetOf(e *tiffwalk.ClassicEntry) (int64, bool) {
	if e.Value.Kind != store.KindScalar {
		return 0, false
	}
	return int64(e.Value.Scalar), true
}
