// SPDX-License-Identifier: MIT

package makernote

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// Canon well-known MakerNote tags that carry a packed binary table rather
// than a normal scalar/array value (spec.md §4.7 Canon notes).
const (
	canonTagCameraSettings   = 0x0001
	canonTagShotInfo         = 0x0004
	canonTagCameraInfo       = 0x000d
	canonTagCustomFunctions2 = 0x0099
	canonTagColorData        = 0x4001
)

// canonCameraInfoFields is the fixed-offset fallback used for models whose
// CameraInfo (0x000d) blob isn't itself a nested classic IFD: a handful of
// well-known byte offsets ExifTool exposes directly as tag ids.
var canonCameraInfoFields = []struct {
	tag   uint16
	bytes int
}{
	{0x0041, 1}, // SharpnessFrequency
	{0x0042, 1}, // Sharpness
	{0x0044, 2}, // WhiteBalance
	{0x0048, 2}, // ColorTemperature
	{0x004b, 1}, // PictureStyle
}

// decodeCanon decodes a Canon MakerNote: a bare classic IFD (no header,
// no magic prefix) whose out-of-line value offsets may be absolute,
// MakerNote-relative, or auto-adjusted depending on the camera firmware.
// guessCanonValueBase picks among the three the same way ExifTool's
// "Adjusted MakerNotes base" heuristic does; ties break absolute >
// MakerNote-relative > auto-adjusted (spec.md §9 Open Question).
func decodeCanon(ctx tiffwalk.MakerNoteContext) store.Status {
	count, ok := binread.U16(ctx.Bytes, ctx.Offset, ctx.Cfg.LE)
	if !ok || count == 0 {
		return store.Unsupported
	}
	ifdNeededBytes := int64(2 + int64(count)*12 + 4)

	valueBase := guessCanonValueBase(ctx, count, ifdNeededBytes)

	blockID, entries, status := decodeEmbeddedIFD(ctx, ctx.Cfg, ctx.Offset, valueBase, "mk_canon_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}

	for i := range entries {
		e := &entries[i]
		switch e.Tag {
		case canonTagCameraSettings, canonTagShotInfo, canonTagCustomFunctions2, canonTagColorData:
			raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*int64(typeSizeOf(e.Type)))
			if !ok {
				status = store.Merge(status, store.Malformed)
				continue
			}
			name := subtableToken("canon", tableNameForCanonTag(e.Tag), 0)
			status = store.Merge(status, emitBinDirEntries(ctx.Store, blockID, name, raw, ctx.Cfg.LE, 2, store.ElemU16, false))
		case canonTagCameraInfo:
			raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*int64(typeSizeOf(e.Type)))
			if !ok {
				status = store.Merge(status, store.Malformed)
				continue
			}
			status = store.Merge(status, decodeCanonCameraInfo(ctx.Store, blockID, raw, ctx.Cfg.LE))
		}
	}

	return status
}

// decodeCanonCameraInfo decodes the fixed-offset subset of CanonCameraInfo*
// (0x000d). Many models embed a full nested classic IFD here instead; this
// decoder covers the fixed-layout fallback fields ExifTool documents for
// bodies that don't.
func decodeCanonCameraInfo(st *store.Store, parent store.BlockID, raw []byte, le bool) store.Status {
	var fields []fixedField
	for _, f := range canonCameraInfoFields {
		if int(f.tag)+f.bytes > len(raw) {
			continue
		}
		switch f.bytes {
		case 1:
			fields = append(fields, u8Field(f.tag, raw[f.tag]))
		case 2:
			if v, ok := binread.U16(raw, int64(f.tag), le); ok {
				fields = append(fields, u16Field(f.tag, v))
			}
		}
	}
	if len(fields) == 0 {
		return store.Unsupported
	}
	return emitFixedFields(st, parent, subtableToken("canon", "camerainfo", 0), fields)
}

func tableNameForCanonTag(tag uint16) string {
	switch tag {
	case canonTagCameraSettings:
		return "camerasettings"
	case canonTagShotInfo:
		return "shotinfo"
	case canonTagCustomFunctions2:
		return "customfunctions2"
	case canonTagColorData:
		return "colordata"
	default:
		return "unknown"
	}
}

func typeSizeOf(typ uint16) int {
	switch typ {
	case 1, 2, 6, 7:
		return 1
	case 3, 8:
		return 2
	case 4, 9, 11:
		return 4
	case 5, 10, 12:
		return 8
	default:
		return 1
	}
}

// guessCanonValueBase scores three candidate bases for out-of-line MakerNote
// value offsets: absolute (TIFF-relative), MakerNote-relative, and an
// auto-adjusted base derived from the smallest observed raw offset landing
// exactly at the start of the MakerNote's value area. Each candidate earns a
// point per entry whose resolved offset fits the file, bonus points for
// landing inside the MakerNote's own window, and a further bonus when the
// value looks like printable ASCII (Canon's text fields are a strong tell).
// Ties break in candidate-enumeration order: absolute, then MakerNote-
// relative, then auto-adjusted.
func guessCanonValueBase(ctx tiffwalk.MakerNoteContext, entryCount uint16, ifdNeededBytes int64) int64 {
	if len(ctx.Bytes) == 0 || ctx.Length == 0 || entryCount == 0 {
		return 0
	}
	entriesOff := ctx.Offset + 2

	var minOff32 int64 = -1
	for i := uint16(0); i < entryCount; i++ {
		eoff := entriesOff + int64(i)*12
		typ, ok := binread.U16(ctx.Bytes, eoff+2, ctx.Cfg.LE)
		if !ok {
			break
		}
		count, ok1 := binread.U32(ctx.Bytes, eoff+4, ctx.Cfg.LE)
		valOrOff, ok2 := binread.U32(ctx.Bytes, eoff+8, ctx.Cfg.LE)
		if !ok1 || !ok2 {
			break
		}
		unit := typeSizeOf(typ)
		valueBytes := int64(count) * int64(unit)
		if unit == 0 || count == 0 || valueBytes <= 4 {
			continue
		}
		off := int64(valOrOff)
		if minOff32 < 0 || off < minOff32 {
			minOff32 = off
		}
	}

	baseAbs := int64(0)
	baseMN := ctx.Offset

	baseAuto := int64(-1)
	if minOff32 >= 0 {
		valueAreaOff := ctx.Offset + ifdNeededBytes
		if minOff32 <= valueAreaOff {
			baseAuto = valueAreaOff - minOff32
		}
	}

	type candidate struct {
		base  int64
		score int
		inMN  int
		valid bool
	}
	cands := [3]candidate{
		{base: baseAbs, valid: true},
		{base: baseMN, valid: true},
		{base: baseAuto, valid: baseAuto >= 0},
	}

	for c := range cands {
		cand := &cands[c]
		if !cand.valid {
			continue
		}
		for i := uint16(0); i < entryCount; i++ {
			eoff := entriesOff + int64(i)*12
			typ, ok := binread.U16(ctx.Bytes, eoff+2, ctx.Cfg.LE)
			if !ok {
				break
			}
			count, ok1 := binread.U32(ctx.Bytes, eoff+4, ctx.Cfg.LE)
			valOrOff, ok2 := binread.U32(ctx.Bytes, eoff+8, ctx.Cfg.LE)
			if !ok1 || !ok2 {
				break
			}
			unit := typeSizeOf(typ)
			valueBytes := int64(count) * int64(unit)
			if unit == 0 || count == 0 || valueBytes <= 4 {
				continue
			}
			absOff := cand.base + int64(valOrOff)
			if !binread.InBounds(ctx.Bytes, absOff, valueBytes) {
				continue
			}
			cand.score++
			if absOff >= ctx.Offset && absOff+valueBytes <= ctx.Offset+ctx.Length {
				cand.inMN++
				cand.score++
				if absOff >= ctx.Offset+ifdNeededBytes {
					cand.score++
				}
			}
			if typ == 2 || typ == 129 {
				raw, ok := binread.Bytes(ctx.Bytes, absOff, valueBytes)
				if ok && canonLooksLikeText(raw) {
					cand.score += 3
				}
			}
		}
	}

	best := cands[0]
	for i := 1; i < 3; i++ {
		if !cands[i].valid {
			continue
		}
		if cands[i].score > best.score {
			best = cands[i]
		}
	}
	return best.base
}

func canonLooksLikeText(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	trimmed := len(raw)
	if raw[trimmed-1] == 0 {
		trimmed--
	}
	if trimmed == 0 {
		return false
	}
	for i := 0; i < trimmed; i++ {
		c := raw[i]
		if c == 0 {
			return false
		}
		if !(c >= 0x20 && c <= 0x7e) && c != '\t' && c != '\n' && c != '\r' {
			return false
		}
	}
	return true
}
