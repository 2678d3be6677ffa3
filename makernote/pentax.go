// SPDX-License-Identifier: MIT

package makernote

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

const (
	pentaxTagCameraSettings = 0x0205
	pentaxTagAEInfo         = 0x0206
	pentaxTagLensInfo       = 0x0207
)

// decodePentax handles the three Pentax MakerNote prefix variants, each
// followed by an endianness byte pair and a classic IFD. Several tags
// (CameraSettings, AEInfo, LensInfo) are u8 tables rather than standard
// TIFF values; AEInfo/LensInfo additionally vary their field layout by
// total byte count, which emitBinDirEntries doesn't need to know about
// since it just indexes elements 1..n regardless of which fields a given
// camera populates.
func decodePentax(ctx tiffwalk.MakerNoteContext) store.Status {
	prefixLen := pentaxPrefixLength(ctx.Bytes, ctx.Offset)
	if prefixLen < 0 {
		return store.Unsupported
	}

	bom, ok := binread.Bytes(ctx.Bytes, ctx.Offset+int64(prefixLen), 2)
	if !ok {
		return store.Malformed
	}
	cfg := ctx.Cfg
	cfg.LE = string(bom) == "II"
	ifdOff := ctx.Offset + int64(prefixLen) + 2

	blockID, entries, status := decodeEmbeddedIFD(ctx, cfg, ifdOff, 0, "mk_pentax_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}

	for i := range entries {
		e := &entries[i]
		switch e.Tag {
		case pentaxTagCameraSettings, pentaxTagAEInfo, pentaxTagLensInfo:
			raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*int64(typeSizeOf(e.Type)))
			if !ok {
				continue
			}
			name := subtableToken("pentax", pentaxTableName(e.Tag), 0)
			status = store.Merge(status, emitBinDirEntries(ctx.Store, blockID, name, raw, cfg.LE, 1, store.ElemU8, false))
		}
	}

	return status
}

func pentaxPrefixLength(b []byte, off int64) int {
	for _, magic := range []string{"AOC\x00", "PENTAX \x00"} {
		if h, ok := binread.Bytes(b, off, int64(len(magic))); ok && string(h) == magic {
			return len(magic)
		}
	}
	// Raw variant: no prefix at all, BOM starts immediately.
	if _, ok := binread.Bytes(b, off, 2); ok {
		return 0
	}
	return -1
}

func pentaxTableName(tag uint16) string {
	switch tag {
	case pentaxTagCameraSettings:
		return "camerasettings"
	case pentaxTagAEInfo:
		return "aeinfo"
	case pentaxTagLensInfo:
		return "lensinfo"
	default:
		return "unknown"
	}
}
