// SPDX-License-Identifier: MIT

package makernote

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// decodeCasio decodes a Casio MakerNote: a "QVC\0"-prefixed classic IFD in
// big-endian byte order. A post-pass recognises face-info blobs by their
// leading marker byte and emits them as u8 tables.
func decodeCasio(ctx tiffwalk.MakerNoteContext) store.Status {
	h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, 4)
	if !ok || string(h) != "QVC\x00" {
		return store.Unsupported
	}

	cfg := ctx.Cfg
	cfg.LE = false

	blockID, entries, status := decodeEmbeddedIFD(ctx, cfg, ctx.Offset+4, 0, "mk_casio_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}

	for i := range entries {
		e := &entries[i]
		if e.Type != 1 { // BYTE-typed arrays are the face-info candidates
			continue
		}
		raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count))
		if !ok || len(raw) == 0 {
			continue
		}
		if raw[0] == 0x01 || raw[0] == 0x02 {
			status = store.Merge(status, emitBinDirEntries(ctx.Store, blockID, subtableToken("casio", "faceinfo", int(e.Tag)), raw, false, 1, store.ElemU8, false))
		}
	}

	return status
}
