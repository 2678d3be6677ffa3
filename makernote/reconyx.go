// SPDX-License-Identifier: MIT

package makernote

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// decodeReconyx decodes a Reconyx trail-camera MakerNote: one of three
// fixed-layout tables identified purely by leading magic, each small enough
// to emit whole as a u16 table (Reconyx's fields are almost entirely
// 16-bit, little-endian).
func decodeReconyx(ctx tiffwalk.MakerNoteContext) store.Status {
	if h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, 2); ok && h[0] == 0x01 && h[1] == 0xf1 {
		return emitReconyxTable(ctx, "hyperfire", ctx.Offset)
	}
	if h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, 10); ok && string(h) == "RECONYXH2\x00" {
		return emitReconyxTable(ctx, "hyperfire2", ctx.Offset+10)
	}
	if h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, 10); ok && string(h) == "RECONYXUF\x00" {
		return emitReconyxTable(ctx, "ultrafire", ctx.Offset+10)
	}
	return store.Unsupported
}

func emitReconyxTable(ctx tiffwalk.MakerNoteContext, name string, dataOff int64) store.Status {
	raw, ok := binread.Bytes(ctx.Bytes, dataOff, ctx.Length-(dataOff-ctx.Offset))
	if !ok {
		return store.Malformed
	}
	status := emitBinDirEntries(ctx.Store, ctx.ParentBlock, subtableToken("reconyx", name, 0), raw, true, 2, store.ElemU16, false)
	if off := reconyxSerialOffset(name); off >= 0 {
		status = store.Merge(status, decodeReconyxSerial(ctx.Store, ctx.ParentBlock, name, raw, off))
	}
	return status
}

// reconyxSerialOffset returns the byte offset of the 30-byte UTF-16LE
// SerialNumber field within the post-header table, or -1 for tables (like
// UltraFire) that don't carry one at a fixed offset.
func reconyxSerialOffset(name string) int64 {
	switch name {
	case "hyperfire":
		return 0x0015 * 2
	case "hyperfire2":
		return 0x007e
	}
	return -1
}

// decodeReconyxSerial decodes the UTF-16LE SerialNumber field that
// emitReconyxTable's sequential u16 dump otherwise splits into 15
// meaningless word-indexed scalars.
func decodeReconyxSerial(st *store.Store, parent store.BlockID, name string, raw []byte, off int64) store.Status {
	if off < 0 || off+30 > int64(len(raw)) {
		return store.Unsupported
	}
	field := raw[off : off+30]
	if !looksUTF16LE(field) {
		return store.Unsupported
	}
	text, ok := decodeUTF16LEText(field)
	if !ok || text == "" {
		return store.Unsupported
	}
	f, ok := textField(st, 0x0015, text)
	if !ok {
		return store.LimitExceeded
	}
	return emitFixedFields(st, parent, subtableToken("reconyx", name+"_serial", 0), []fixedField{f})
}
