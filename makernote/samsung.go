// SPDX-License-Identifier: MIT

package makernote

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

const samsungTagPictureWizard = 0x0021

// decodeSamsung handles the "STMN"-magic fixed main block (with an
// optional embedded SamsungIFD at +44, little-endian, whose value offsets
// are relative to the end of that IFD rather than the MakerNote start) and
// the plain classic-LE-IFD fallback used by older Samsung bodies.
func decodeSamsung(ctx tiffwalk.MakerNoteContext) store.Status {
	if h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, 4); ok && string(h) == "STMN" {
		return decodeSamsungSTMN(ctx)
	}

	cfg := ctx.Cfg
	cfg.LE = true
	blockID, entries, status := decodeEmbeddedIFD(ctx, cfg, ctx.Offset, 0, "mk_samsung_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}
	return store.Merge(status, emitSamsungPictureWizard(ctx, entries, blockID))
}

func decodeSamsungSTMN(ctx tiffwalk.MakerNoteContext) store.Status {
	ifdOff := ctx.Offset + 44
	entryCount, ok := binread.U16(ctx.Bytes, ifdOff, true)
	if !ok {
		return store.Malformed
	}
	ifdEnd := ifdOff + 2 + int64(entryCount)*12 + 4

	cfg := binread.TiffConfig{LE: true}
	blockID, entries, status := decodeEmbeddedIFD(ctx, cfg, ifdOff, ifdEnd, "mk_samsung_stmn")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}
	return store.Merge(status, emitSamsungPictureWizard(ctx, entries, blockID))
}

func emitSamsungPictureWizard(ctx tiffwalk.MakerNoteContext, entries []tiffwalk.ClassicEntry, blockID store.BlockID) store.Status {
	for i := range entries {
		e := &entries[i]
		if e.Tag != samsungTagPictureWizard {
			continue
		}
		raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*2)
		if !ok {
			continue
		}
		return emitBinDirEntries(ctx.Store, blockID, subtableToken("samsung", "picturewizard", 0), raw, true, 2, store.ElemU16, false)
	}
	return store.Ok
}
