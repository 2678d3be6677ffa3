// SPDX-License-Identifier: MIT

package makernote

import (
	"fmt"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

const (
	panasonicTagFaceDetInfo = 0x004e
	panasonicTagFaceRecInfo = 0x0061
	panasonicTagTimeInfo    = 0x2003
)

// panasonicFaceDetTagOffsets are the tag ids of FaceDetInfo's five
// face-position fields, one per detected face, indexed 0-4; each field is
// four u16 values starting at byte offset tag id * 2 (ExifTool's Panasonic
// FaceDetInfo table).
var panasonicFaceDetTagOffsets = [5]uint16{0x0001, 0x0005, 0x0009, 0x000d, 0x0011}

// decodePanasonic decodes a Panasonic MakerNote: a classic IFD (no magic
// header needed, it's embedded directly at the MakerNote offset), with a
// handful of tags reinterpreted as fixed-layout blobs rather than plain
// TIFF values after the main scan.
func decodePanasonic(ctx tiffwalk.MakerNoteContext) store.Status {
	blockID, entries, status := decodeEmbeddedIFD(ctx, ctx.Cfg, ctx.Offset, 0, "mk_panasonic_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}

	for i := range entries {
		e := &entries[i]
		switch e.Tag {
		case panasonicTagFaceDetInfo:
			raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*int64(typeSizeOf(e.Type)))
			if ok {
				status = store.Merge(status, decodePanasonicFaceDetInfo(ctx.Store, blockID, raw, ctx.Cfg.LE))
			}
		case panasonicTagFaceRecInfo:
			raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*int64(typeSizeOf(e.Type)))
			if ok {
				status = store.Merge(status, decodePanasonicFaceRecInfo(ctx.Store, blockID, raw, ctx.Cfg.LE))
			}
		case panasonicTagTimeInfo:
			raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*int64(typeSizeOf(e.Type)))
			if ok {
				status = store.Merge(status, decodePanasonicTimeInfo(ctx.Store, blockID, raw))
			}
		}
	}

	return status
}

// decodePanasonicFaceDetInfo unpacks the face count plus up to 5 position
// quads (left, top, right, bottom as u16) FaceDetInfo stores at
// byte offset tag*2 for each detected face.
func decodePanasonicFaceDetInfo(st *store.Store, parent store.BlockID, raw []byte, le bool) store.Status {
	if len(raw) < 2 {
		return store.Malformed
	}
	faces, ok := binread.U16(raw, 0, le)
	if !ok {
		return store.Malformed
	}

	var fields []fixedField
	fields = append(fields, u16Field(0x0000, faces))

	n := int(faces)
	if n > len(panasonicFaceDetTagOffsets) {
		n = len(panasonicFaceDetTagOffsets)
	}
	for i := 0; i < n; i++ {
		tag := panasonicFaceDetTagOffsets[i]
		byteOff := int64(tag) * 2
		if byteOff+8 > int64(len(raw)) {
			continue
		}
		var pos [4]uint16
		ok := true
		for j := 0; j < 4; j++ {
			v, o := binread.U16(raw, byteOff+int64(j)*2, le)
			if !o {
				ok = false
				break
			}
			pos[j] = v
		}
		if !ok {
			continue
		}
		if f, ok := u16ArrayField(st, tag, pos[:]); ok {
			fields = append(fields, f)
		}
	}

	return emitFixedFields(st, parent, subtableToken("panasonic", "facedetinfo", 0), fields)
}

// decodePanasonicFaceRecInfo unpacks up to 3 recognised-face records, each
// a 48-byte slot holding a name (20 bytes ASCII), a position quad (8 bytes,
// u16 each) and an age string (20 bytes ASCII).
func decodePanasonicFaceRecInfo(st *store.Store, parent store.BlockID, raw []byte, le bool) store.Status {
	if len(raw) < 2 {
		return store.Malformed
	}
	faces, ok := binread.U16(raw, 0, le)
	if !ok {
		return store.Malformed
	}

	var fields []fixedField
	fields = append(fields, u16Field(0x0000, faces))

	n := int(faces)
	if n > 3 {
		n = 3
	}
	for i := 0; i < n; i++ {
		nameOff := int64(4 + i*48)
		posOff := int64(24 + i*48)
		ageOff := int64(32 + i*48)

		if nameOff+20 <= int64(len(raw)) {
			if f, ok := fixedASCIIField(st, uint16(nameOff), raw[nameOff:nameOff+20]); ok {
				fields = append(fields, f)
			}
		}
		if posOff+8 <= int64(len(raw)) {
			var pos [4]uint16
			ok := true
			for j := 0; j < 4; j++ {
				v, o := binread.U16(raw, posOff+int64(j)*2, le)
				if !o {
					ok = false
					break
				}
				pos[j] = v
			}
			if ok {
				if f, ok := u16ArrayField(st, uint16(posOff), pos[:]); ok {
					fields = append(fields, f)
				}
			}
		}
		if ageOff+20 <= int64(len(raw)) {
			if f, ok := fixedASCIIField(st, uint16(ageOff), raw[ageOff:ageOff+20]); ok {
				fields = append(fields, f)
			}
		}
	}

	return emitFixedFields(st, parent, subtableToken("panasonic", "facerecinfo", 0), fields)
}

// decodePanasonicTimeInfo reinterprets TimeInfo's first 8 bytes as BCD
// nibbles encoding YYYY:MM:DD HH:MM:SS.xx, falling back to a raw bytes field
// if any nibble isn't a valid decimal digit.
func decodePanasonicTimeInfo(st *store.Store, parent store.BlockID, raw []byte) store.Status {
	if len(raw) < 8 || raw[0] == 0 {
		return store.Unsupported
	}

	var digits [16]byte
	for i := 0; i < 8; i++ {
		hi := raw[i] >> 4
		lo := raw[i] & 0x0f
		if hi > 9 || lo > 9 {
			span, ok := st.Arena().Append(raw[:8])
			if !ok {
				return store.LimitExceeded
			}
			f := fixedField{tag: 0x0000, val: store.MetaValue{Kind: store.KindBytes, ElemType: store.ElemU8, Count: 8, Data: span}}
			return emitFixedFields(st, parent, subtableToken("panasonic", "timeinfo", 0), []fixedField{f})
		}
		digits[i*2] = '0' + hi
		digits[i*2+1] = '0' + lo
	}

	dt := fmt.Sprintf("%s:%s:%s %s:%s:%s.%s",
		digits[0:4], digits[4:6], digits[6:8],
		digits[8:10], digits[10:12], digits[12:14], digits[14:16])

	f, ok := textField(st, 0x0000, dt)
	if !ok {
		return store.LimitExceeded
	}
	return emitFixedFields(st, parent, subtableToken("panasonic", "timeinfo", 0), []fixedField{f})
}
