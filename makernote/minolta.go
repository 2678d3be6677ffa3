// SPDX-License-Identifier: MIT

package makernote

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

const (
	minoltaTagCameraSettings1 = 0x0001
	minoltaTagCameraSettings3 = 0x0003
	minoltaTagCameraSettings7D = 0x0004
	minoltaTagCameraSettings5D = 0x0114
)

// decodeMinolta decodes a Minolta MakerNote: a classic IFD followed by a
// post-pass that reinterprets several well-known tags as big-endian binary
// tables of varying element width. Derived table bytes are copied into the
// arena via emitBinDirEntries/emitBytesBlock rather than aliasing the
// source buffer, since later arena growth can relocate it.
func decodeMinolta(ctx tiffwalk.MakerNoteContext) store.Status {
	blockID, entries, status := decodeEmbeddedIFD(ctx, ctx.Cfg, ctx.Offset, 0, "mk_minolta_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}

	for i := range entries {
		e := &entries[i]
		switch e.Tag {
		case minoltaTagCameraSettings1, minoltaTagCameraSettings3:
			raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*int64(typeSizeOf(e.Type)))
			if ok {
				status = store.Merge(status, emitBinDirEntries(ctx.Store, blockID, subtableToken("minolta", "camerasettings", 0), raw, false, 4, store.ElemU32, false))
			}
		case minoltaTagCameraSettings7D:
			raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*int64(typeSizeOf(e.Type)))
			if ok {
				status = store.Merge(status, emitBinDirEntries(ctx.Store, blockID, subtableToken("minolta", "camerasettings7d", 0), raw, false, 2, store.ElemU16, false))
			}
		case minoltaTagCameraSettings5D:
			raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*int64(typeSizeOf(e.Type)))
			if ok {
				status = store.Merge(status, emitBinDirEntries(ctx.Store, blockID, subtableToken("minolta", "camerasettings5d", 0), raw, false, 2, store.ElemU16, false))
			}
		}
	}

	return status
}
