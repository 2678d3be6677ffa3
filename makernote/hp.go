// SPDX-License-Identifier: MIT

package makernote

import (
	"strings"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// HP Type4/Type6 fixed-layout field tags. The tag doubles as the byte
// offset into the MakerNote for every field except SerialNumber, whose
// offset differs between the two subtypes (spec.md §4.7 HP notes).
const (
	hpTagAperture     = 0x000c // FNumber (Type6) or MaxAperture (Type4), int16u/10
	hpTagExposureTime = 0x0010 // int32u, microseconds
	hpTagDateTime     = 0x0014 // string[20]
	hpTagISO          = 0x0034 // int16u
)

const (
	hpSerialOffType6 = 0x0058
	hpSerialOffType4 = 0x005c
	hpSerialFieldLen = 26
)

// decodeHP decodes an HP Type4/Type6 MakerNote: a fixed-layout binary blob,
// not a TIFF IFD. The "IIII" magic is followed by a kind byte and a zero
// byte, then scalar fields at fixed offsets that the published field list
// (ExifTool's HP MakerNotes tables) indexes directly rather than a
// tag/type/count/offset record per field.
func decodeHP(ctx tiffwalk.MakerNoteContext) store.Status {
	h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, 6)
	if !ok || string(h[:4]) != "IIII" {
		return store.Unsupported
	}
	if h[5] != 0x00 {
		return store.Unsupported
	}
	kind := h[4]
	isType6 := kind == 0x06
	isType4 := kind == 0x04 || kind == 0x05
	if !isType6 && !isType4 {
		return store.Unsupported
	}

	subtable := "type4"
	if isType6 {
		subtable = "type6"
	}
	blockName := subtableToken("hp", subtable, 0)

	var fields []fixedField

	if ap, ok := binread.U16(ctx.Bytes, ctx.Offset+hpTagAperture, true); ok {
		if f, ok := urationalField(ctx.Store, hpTagAperture, uint32(ap), 10); ok {
			fields = append(fields, f)
		}
	}

	if expUs, ok := binread.U32(ctx.Bytes, ctx.Offset+hpTagExposureTime, true); ok {
		if f, ok := urationalField(ctx.Store, hpTagExposureTime, expUs, 1000000); ok {
			fields = append(fields, f)
		}
	}

	if dtRaw, ok := binread.Bytes(ctx.Bytes, ctx.Offset+hpTagDateTime, 20); ok {
		if dt := trimASCIIField(dtRaw); dt != "" {
			if f, ok := textField(ctx.Store, hpTagDateTime, dt); ok {
				fields = append(fields, f)
			}
		}
	}

	if iso, ok := binread.U16(ctx.Bytes, ctx.Offset+hpTagISO, true); ok {
		fields = append(fields, u16Field(hpTagISO, iso))
	}

	serialOff := int64(hpSerialOffType4)
	if isType6 {
		serialOff = hpSerialOffType6
	}
	if raw, ok := binread.Bytes(ctx.Bytes, ctx.Offset+serialOff, hpSerialFieldLen); ok {
		if serial := decodeHPSerial(raw); serial != "" {
			if f, ok := textField(ctx.Store, uint16(serialOff), serial); ok {
				fields = append(fields, f)
			}
		}
	}

	if len(fields) == 0 {
		return store.Malformed
	}

	return emitFixedFields(ctx.Store, ctx.ParentBlock, blockName, fields)
}

// decodeHPSerial trims padding from raw and strips the literal
// "SERIAL NUMBER:" prefix HP prepends to the field, if present.
func decodeHPSerial(raw []byte) string {
	s := trimASCIIField(raw)
	const prefix = "SERIAL NUMBER:"
	if strings.HasPrefix(s, prefix) {
		s = strings.TrimSpace(s[len(prefix):])
	}
	return s
}
