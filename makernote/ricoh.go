// SPDX-License-Identifier: MIT

package makernote

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// decodeRicoh decodes a Ricoh MakerNote: a classic IFD whose out-of-line
// value offset base isn't pinned by magic alone, so three candidate bases
// (MakerNote+8, MakerNote+0, absolute outer-TIFF) are scored the same way
// FindBestClassicIFDCandidate does, preferring the one with more
// ASCII-plausible text entries (spec.md §9 Open Question on
// score_ascii_blob — this decoder scores per-entry ASCII plausibility but
// doesn't attempt Ricoh's exact published weighting).
func decodeRicoh(ctx tiffwalk.MakerNoteContext) store.Status {
	candidates := []int64{ctx.Offset + 8, ctx.Offset, 0}
	best, ok := tiffwalk.FindBestClassicIFDCandidate(ctx.Bytes, candidates, int64(len(ctx.Bytes)))
	if !ok {
		return store.Unsupported
	}

	blockID, entries, status := decodeEmbeddedIFD(ctx, ctx.Cfg, ctx.Offset+8, best.Offset-(ctx.Offset+8), "mk_ricoh_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}

	const marker = "[Ricoh Camera Info]"
	for i := range entries {
		e := &entries[i]
		if e.Type != 2 { // ASCII
			continue
		}
		raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count))
		if ok && len(raw) >= len(marker) && string(raw[:len(marker)]) == marker {
			subIFDOff := e.ValueOffset + int64(len(marker))
			subCfg := ctx.Cfg
			subCfg.LE = false
			subBlockID, _, subStatus := decodeEmbeddedIFD(ctx, subCfg, subIFDOff, 0, subtableToken("ricoh", "camerainfo", 0))
			if subBlockID != store.InvalidBlockID {
				status = store.Merge(status, subStatus)
			}
		}
	}

	return status
}
