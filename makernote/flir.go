// SPDX-License-Identifier: MIT

package makernote

import (
	"math"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// flirRecordTypeNames names the known FFF/AFF container record types (spec.md
// FLIR notes).
var flirRecordTypeNames = map[uint16]string{
	1: "paletteinfo",
	2: "rawdata",
	3: "embeddedimage",
	4: "pip",
	5: "gpsinfo",
	6: "meterlink",
	7: "camerainfo",
}

// decodeFLIR handles both FLIR shapes: a small classic IFD embedded
// directly in the MakerNote, or a full FFF/AFF container with its own
// directory of typed records. Container endianness is self-detected by
// probing the record-count field under both byte orders and picking
// whichever yields a plausible (non-zero, in-bounds) count.
func decodeFLIR(ctx tiffwalk.MakerNoteContext) store.Status {
	h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, 4)
	if !ok {
		return store.Unsupported
	}
	switch string(h) {
	case "FFF\x00", "AFF\x00":
		return decodeFLIRContainer(ctx)
	}

	if count, ok := binread.U16(ctx.Bytes, ctx.Offset, ctx.Cfg.LE); ok && count > 0 {
		blockID, _, status := decodeEmbeddedIFD(ctx, ctx.Cfg, ctx.Offset, 0, "mk_flir_root")
		if blockID == store.InvalidBlockID {
			return store.Merge(status, store.Malformed)
		}
		return status
	}
	return store.Unsupported
}

func decodeFLIRContainer(ctx tiffwalk.MakerNoteContext) store.Status {
	const dirHeaderLen = 32 // magic + version + offsets, conservative fixed skip
	le := flirProbeEndian(ctx.Bytes, ctx.Offset+dirHeaderLen)
	recordCount, ok := binread.U32(ctx.Bytes, ctx.Offset+dirHeaderLen, le)
	if !ok || recordCount == 0 || recordCount > 4096 {
		return store.Malformed
	}

	status := store.Ok
	recOff := ctx.Offset + dirHeaderLen + 4
	idx := map[uint16]int{}
	for i := uint32(0); i < recordCount; i++ {
		entryOff := recOff + int64(i)*16
		recType, ok1 := binread.U16(ctx.Bytes, entryOff, le)
		recDataOff, ok2 := binread.U32(ctx.Bytes, entryOff+4, le)
		recLen, ok3 := binread.U32(ctx.Bytes, entryOff+8, le)
		if !ok1 || !ok2 || !ok3 {
			status = store.Merge(status, store.Malformed)
			continue
		}
		raw, ok := binread.Bytes(ctx.Bytes, ctx.Offset+int64(recDataOff), int64(recLen))
		if !ok {
			status = store.Merge(status, store.Malformed)
			continue
		}
		recIdx := idx[recType]
		idx[recType] = recIdx + 1

		switch recType {
		case 1:
			status = store.Merge(status, decodeFLIRPaletteInfo(ctx.Store, ctx.ParentBlock, raw, le, recIdx))
		case 5:
			status = store.Merge(status, decodeFLIRGPSInfo(ctx.Store, ctx.ParentBlock, raw, recIdx))
		case 6:
			status = store.Merge(status, decodeFLIRMeterLink(ctx.Store, ctx.ParentBlock, raw, recIdx))
		case 7:
			status = store.Merge(status, decodeFLIRCameraInfo(ctx.Store, ctx.ParentBlock, raw, le, recIdx))
		default:
			name, known := flirRecordTypeNames[recType]
			if !known {
				name = "unknown"
			}
			status = store.Merge(status, emitBytesBlock(ctx.Store, ctx.ParentBlock, subtableToken("flir", name, int(recType)), raw))
		}
	}
	return status
}

func flirProbeEndian(b []byte, off int64) bool {
	le, okLE := binread.U32(b, off, true)
	be, okBE := binread.U32(b, off, false)
	if okLE && le > 0 && le <= 4096 {
		return true
	}
	_ = okBE
	_ = be
	return false
}

func flirF32(rec []byte, off int64, le bool) (float32, bool) {
	bits, ok := binread.U32(rec, off, le)
	if !ok {
		return 0, false
	}
	return math.Float32frombits(bits), true
}

func flirF64(rec []byte, off int64, le bool) (float64, bool) {
	bits, ok := binread.U64(rec, off, le)
	if !ok {
		return 0, false
	}
	return math.Float64frombits(bits), true
}

func flirASCIIField(st *store.Store, rec []byte, tag uint16, off, n int64) (fixedField, bool) {
	raw, ok := binread.Bytes(rec, off, n)
	if !ok {
		return fixedField{}, false
	}
	return fixedASCIIField(st, tag, raw)
}

// decodeFLIRGPSInfo decodes the FLIR GPSInfo record's documented fixed
// fields (version, ref letters, lat/long as f64, altitude as f32, speed
// and track/image heading as f32, UTC/map datum text).
func decodeFLIRGPSInfo(st *store.Store, parent store.BlockID, rec []byte, idx int) store.Status {
	const le = true
	var fields []fixedField

	if v, ok := binread.U32(rec, 0x00, le); ok {
		fields = append(fields, u32Field(0x0000, v))
	}
	if f, ok := flirASCIIField(st, rec, 0x0008, 0x08, 2); ok {
		fields = append(fields, f)
	}
	if f, ok := flirASCIIField(st, rec, 0x000a, 0x0a, 2); ok {
		fields = append(fields, f)
	}
	if v, ok := flirF64(rec, 0x10, le); ok {
		fields = append(fields, f64Field(0x0010, v))
	}
	if v, ok := flirF64(rec, 0x18, le); ok {
		fields = append(fields, f64Field(0x0018, v))
	}
	if v, ok := flirF32(rec, 0x20, le); ok {
		fields = append(fields, f32Field(0x0020, v))
	}
	if v, ok := flirF32(rec, 0x40, le); ok {
		fields = append(fields, f32Field(0x0040, v))
	}
	if f, ok := flirASCIIField(st, rec, 0x0044, 0x44, 2); ok {
		fields = append(fields, f)
	}
	if f, ok := flirASCIIField(st, rec, 0x0046, 0x46, 2); ok {
		fields = append(fields, f)
	}
	if f, ok := flirASCIIField(st, rec, 0x0048, 0x48, 2); ok {
		fields = append(fields, f)
	}
	if v, ok := flirF32(rec, 0x4c, le); ok {
		fields = append(fields, f32Field(0x004c, v))
	}
	if v, ok := flirF32(rec, 0x50, le); ok {
		fields = append(fields, f32Field(0x0050, v))
	}
	if v, ok := flirF32(rec, 0x54, le); ok {
		fields = append(fields, f32Field(0x0054, v))
	}
	if f, ok := flirASCIIField(st, rec, 0x0058, 0x58, 16); ok {
		fields = append(fields, f)
	}

	if len(fields) == 0 {
		return store.Unsupported
	}
	return emitFixedFields(st, parent, subtableToken("flir", "fff_gpsinfo", idx), fields)
}

// decodeFLIRMeterLink decodes the FLIR MeterLink record: two u16 fields,
// one 16-byte ASCII label and one f64 measurement value per probe
// (primary at 0x1a.., secondary at 0x7e..).
func decodeFLIRMeterLink(st *store.Store, parent store.BlockID, rec []byte, idx int) store.Status {
	const le = true
	var fields []fixedField

	if v, ok := binread.U16(rec, 0x1a, le); ok {
		fields = append(fields, u16Field(0x001a, v))
	}
	if v, ok := binread.U16(rec, 0x1c, le); ok {
		fields = append(fields, u16Field(0x001c, v))
	}
	if f, ok := flirASCIIField(st, rec, 0x0020, 0x20, 16); ok {
		fields = append(fields, f)
	}
	if v, ok := flirF64(rec, 0x60, le); ok {
		fields = append(fields, f64Field(0x0060, v))
	}
	if v, ok := binread.U16(rec, 0x7e, le); ok {
		fields = append(fields, u16Field(0x007e, v))
	}
	if v, ok := binread.U16(rec, 0x80, le); ok {
		fields = append(fields, u16Field(0x0080, v))
	}
	if f, ok := flirASCIIField(st, rec, 0x0084, 0x84, 16); ok {
		fields = append(fields, f)
	}
	if v, ok := flirF64(rec, 0xc4, le); ok {
		fields = append(fields, f64Field(0x00c4, v))
	}

	if len(fields) == 0 {
		return store.Unsupported
	}
	return emitFixedFields(st, parent, subtableToken("flir", "fff_meterlink", idx), fields)
}

// decodeFLIRCameraInfo decodes the documented subset of the FLIR CameraInfo
// record: the optics/focus f32 fields, serial/model/lens ASCII fields, and
// the emissivity/distance/reflected-temperature f32 fields. CameraInfo's
// full published table runs past 0x460 with many more firmware-gated
// slots; this covers the commonly-populated ones rather than the full set.
func decodeFLIRCameraInfo(st *store.Store, parent store.BlockID, rec []byte, fileLE bool, idx int) store.Status {
	le := fileLE
	if magic, ok := binread.U16(rec, 0, true); ok && magic == 0x0002 {
		le = true
	} else if magic, ok := binread.U16(rec, 0, false); ok && magic == 0x0002 {
		le = false
	}

	var fields []fixedField
	pushF32 := func(tag uint16, off int64) {
		if v, ok := flirF32(rec, off, le); ok {
			fields = append(fields, f32Field(tag, v))
		}
	}
	pushASCII := func(tag uint16, off, n int64) {
		if f, ok := flirASCIIField(st, rec, tag, off, n); ok {
			fields = append(fields, f)
		}
	}

	pushF32(0x0020, 0x20)
	pushF32(0x0024, 0x24)
	pushF32(0x0028, 0x28)
	pushF32(0x002c, 0x2c)
	pushF32(0x0030, 0x30)
	pushF32(0x0034, 0x34)
	pushF32(0x003c, 0x3c)
	pushF32(0x0058, 0x58)
	pushF32(0x005c, 0x5c)
	pushF32(0x0060, 0x60)
	pushF32(0x0070, 0x70)
	pushF32(0x0074, 0x74)
	pushF32(0x0078, 0x78)
	pushF32(0x007c, 0x7c)
	pushF32(0x0080, 0x80)

	pushASCII(0x00d4, 0xd4, 32)  // camera serial
	pushASCII(0x00f4, 0xf4, 16)  // camera model
	pushASCII(0x0104, 0x104, 16) // lens model
	pushASCII(0x0114, 0x114, 16) // lens serial

	if v, ok := binread.U16(rec, 0x310, le); ok {
		fields = append(fields, u16Field(0x0310, v))
	}
	if v, ok := binread.U16(rec, 0x312, le); ok {
		fields = append(fields, u16Field(0x0312, v))
	}

	if len(fields) == 0 {
		return store.Unsupported
	}
	return emitFixedFields(st, parent, subtableToken("flir", "fff_camerainfo", idx), fields)
}

// decodeFLIRPaletteInfo decodes the FLIR PaletteInfo record: above/below/
// over/under/iso-alarm color triples, palette name fields and the raw
// color-lookup-table bytes sized from the color count.
func decodeFLIRPaletteInfo(st *store.Store, parent store.BlockID, rec []byte, le bool, idx int) store.Status {
	var fields []fixedField
	colors, haveColors := binread.U16(rec, 0x00, le)
	if haveColors {
		fields = append(fields, u16Field(0x0000, colors))
	}

	pushTriple := func(tag uint16, off int64) {
		if raw, ok := binread.Bytes(rec, off, 3); ok {
			if f, ok := u8ArrayField(st, tag, raw); ok {
				fields = append(fields, f)
			}
		}
	}
	pushTriple(0x0006, 0x06)
	pushTriple(0x0009, 0x09)
	pushTriple(0x000c, 0x0c)
	pushTriple(0x000f, 0x0f)
	pushTriple(0x0012, 0x12)
	pushTriple(0x0015, 0x15)

	if v, ok := binread.U8(rec, 0x1a); ok {
		fields = append(fields, u8Field(0x001a, v))
	}
	if v, ok := binread.U8(rec, 0x1b); ok {
		fields = append(fields, u8Field(0x001b, v))
	}
	if f, ok := flirASCIIField(st, rec, 0x0030, 0x30, 32); ok {
		fields = append(fields, f)
	}
	if f, ok := flirASCIIField(st, rec, 0x0050, 0x50, 32); ok {
		fields = append(fields, f)
	}

	if haveColors && colors > 0 {
		paletteBytes := int64(colors) * 3
		if raw, ok := binread.Bytes(rec, 0x70, paletteBytes); ok {
			if f, ok := bytesField(st, 0x0070, raw); ok {
				fields = append(fields, f)
			}
		}
	}

	if len(fields) == 0 {
		return store.Unsupported
	}
	return emitFixedFields(st, parent, subtableToken("flir", "fff_paletteinfo", idx), fields)
}
