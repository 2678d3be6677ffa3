// SPDX-License-Identifier: MIT

package makernote

import (
	"fmt"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// decodeKodak handles Kodak's "KDK"-magic fixed-layout block. Kodak's
// MakerNote zoo includes many Type2/3/.../10 wire shapes discriminated by
// Model string and header magic; this decoder covers the common ~34-field
// "KDK" layout (ExifTool's Kodak IFD table) and falls back to treating the
// whole blob as an embedded classic IFD (the TIFF-header variant) when the
// magic isn't present, leaving the rarer numbered Kodak types unrecognised
// rather than guessing at a layout this decoder can't verify.
func decodeKodak(ctx tiffwalk.MakerNoteContext) store.Status {
	if h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, 3); ok && string(h) == "KDK" {
		return decodeKodakKDK(ctx)
	}

	// TIFF-header variant: a bare classic IFD embedded directly.
	if count, ok := binread.U16(ctx.Bytes, ctx.Offset, ctx.Cfg.LE); ok && count > 0 {
		blockID, _, status := decodeEmbeddedIFD(ctx, ctx.Cfg, ctx.Offset, 0, "mk_kodak_root")
		if blockID == store.InvalidBlockID {
			return store.Merge(status, store.Malformed)
		}
		return status
	}

	return store.Unsupported
}

// Kodak "KDK" fixed-layout field tags, synthesised 0x00.. to index the
// table in table order (the wire format has no tag ids of its own).
const (
	kodakTagModel         = 0x0000
	kodakTagQuality       = 0x0009
	kodakTagBurstMode     = 0x000a
	kodakTagWidth         = 0x000c
	kodakTagHeight        = 0x000e
	kodakTagYear          = 0x0010
	kodakTagMonthDay      = 0x0012
	kodakTagTime          = 0x0014
	kodakTagBurstMode2    = 0x0018
	kodakTagShutterMode   = 0x001b
	kodakTagMeteringMode  = 0x001c
	kodakTagSequence      = 0x001d
	kodakTagFNumber       = 0x001e
	kodakTagExposureTime  = 0x0020
	kodakTagExposureComp  = 0x0024
	kodakTagVarious       = 0x0026
	kodakTagSubjectDist1  = 0x0028
	kodakTagSubjectDist2  = 0x002c
	kodakTagSubjectDist3  = 0x0030
	kodakTagSubjectDist4  = 0x0034
	kodakTagFocusMode     = 0x0038
	kodakTagVarious2      = 0x003a
	kodakTagPanorama      = 0x003c
	kodakTagSubjectDist   = 0x003e
	kodakTagWhiteBalance  = 0x0040
	kodakTagFlashMode     = 0x005c
	kodakTagFlashFired    = 0x005d
	kodakTagISOSetting    = 0x005e
	kodakTagISO           = 0x0060
	kodakTagZoom          = 0x0062
	kodakTagDateTimeStamp = 0x0064
	kodakTagColorMode     = 0x0066
	kodakTagDigitalZoom   = 0x0068
	kodakTagSharpness     = 0x006b
)

// decodeKodakKDK decodes the fixed ~34-field "KDK" table: offsets and
// widths are fixed and values are little-endian unless noted.
func decodeKodakKDK(ctx tiffwalk.MakerNoteContext) store.Status {
	b := ctx.Offset
	if ctx.Length < 0x70 {
		return store.Unsupported
	}
	modelC0, ok := binread.U8(ctx.Bytes, b+0x08)
	if !ok || modelC0 < 0x20 || modelC0 > 0x7e {
		return store.Unsupported
	}

	var fields []fixedField

	if raw, ok := binread.Bytes(ctx.Bytes, b+0x08, 16); ok {
		name := kodakModelString(raw)
		if name != "" {
			if f, ok := textField(ctx.Store, kodakTagModel, name); ok {
				fields = append(fields, f)
			}
		}
	}

	if v, ok := binread.U8(ctx.Bytes, b+0x11); ok {
		fields = append(fields, u8Field(kodakTagQuality, v))
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x12); ok {
		fields = append(fields, u8Field(kodakTagBurstMode, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x14, true); ok {
		fields = append(fields, u16Field(kodakTagWidth, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x16, true); ok {
		fields = append(fields, u16Field(kodakTagHeight, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x18, true); ok {
		fields = append(fields, u16Field(kodakTagYear, v))
	}
	if month, ok1 := binread.U8(ctx.Bytes, b+0x1a); ok1 {
		if day, ok2 := binread.U8(ctx.Bytes, b+0x1b); ok2 {
			if f, ok := textField(ctx.Store, kodakTagMonthDay, fmt.Sprintf("%02d:%02d", month, day)); ok {
				fields = append(fields, f)
			}
		}
	}
	if hh, ok1 := binread.U8(ctx.Bytes, b+0x1c); ok1 {
		mm, ok2 := binread.U8(ctx.Bytes, b+0x1d)
		ss, ok3 := binread.U8(ctx.Bytes, b+0x1e)
		ff, ok4 := binread.U8(ctx.Bytes, b+0x1f)
		if ok2 && ok3 && ok4 {
			if f, ok := textField(ctx.Store, kodakTagTime, fmt.Sprintf("%02d:%02d:%02d.%02d", hh, mm, ss, ff)); ok {
				fields = append(fields, f)
			}
		}
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x20, true); ok {
		fields = append(fields, u16Field(kodakTagBurstMode2, v))
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x23); ok {
		fields = append(fields, u8Field(kodakTagShutterMode, v))
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x21); ok {
		fields = append(fields, u8Field(kodakTagMeteringMode, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x24, true); ok {
		fields = append(fields, u16Field(kodakTagSequence, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x26, true); ok {
		if f, ok := urationalField(ctx.Store, kodakTagFNumber, uint32(v), 100); ok {
			fields = append(fields, f)
		}
	}
	if v, ok := binread.U32(ctx.Bytes, b+0x28, true); ok {
		if f, ok := urationalField(ctx.Store, kodakTagExposureTime, v, 100000); ok {
			fields = append(fields, f)
		}
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x2c, true); ok {
		fields = append(fields, i16Field(kodakTagExposureComp, int16(v)))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x2e, true); ok {
		fields = append(fields, u16Field(kodakTagVarious, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x30, true); ok {
		fields = append(fields, u16Field(kodakTagSubjectDist1, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x34, true); ok {
		fields = append(fields, u16Field(kodakTagSubjectDist2, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x38, true); ok {
		fields = append(fields, u16Field(kodakTagSubjectDist3, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x3c, true); ok {
		fields = append(fields, u16Field(kodakTagSubjectDist4, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x40, true); ok {
		fields = append(fields, u16Field(kodakTagFocusMode, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x42, true); ok {
		fields = append(fields, u16Field(kodakTagVarious2, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x44, true); ok {
		fields = append(fields, u16Field(kodakTagPanorama, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x46, true); ok {
		fields = append(fields, u16Field(kodakTagSubjectDist, v))
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x48); ok {
		fields = append(fields, u8Field(kodakTagWhiteBalance, v))
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x60); ok {
		fields = append(fields, u8Field(kodakTagFlashMode, v))
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x5c); ok {
		fields = append(fields, u8Field(kodakTagFlashFired, v))
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x66); ok {
		fields = append(fields, u8Field(kodakTagISOSetting, v))
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x68); ok {
		fields = append(fields, u8Field(kodakTagISO, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x6a, true); ok {
		if f, ok := urationalField(ctx.Store, kodakTagZoom, uint32(v), 100); ok {
			fields = append(fields, f)
		}
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x65); ok {
		fields = append(fields, u8Field(kodakTagDateTimeStamp, v))
	}
	if v, ok := binread.U16(ctx.Bytes, b+0x12, true); ok {
		fields = append(fields, u16Field(kodakTagColorMode, v))
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x5e); ok {
		fields = append(fields, u8Field(kodakTagDigitalZoom, v))
	}
	if v, ok := binread.U8(ctx.Bytes, b+0x67); ok {
		fields = append(fields, u8Field(kodakTagSharpness, v))
	}

	if len(fields) == 0 {
		return store.Malformed
	}
	return emitFixedFields(ctx.Store, ctx.ParentBlock, "mk_kodak_kdk", fields)
}

// kodakModelString trims the KodakModel field at its first NUL, space, or
// non-printable byte (the field has no length prefix, just a fixed slot).
func kodakModelString(raw []byte) string {
	end := 0
	for end < len(raw) {
		c := raw[end]
		if c == 0 || c == ' ' || c < 0x20 || c > 0x7e {
			break
		}
		end++
	}
	return string(raw[:end])
}
