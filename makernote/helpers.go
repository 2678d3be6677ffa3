// SPDX-License-Identifier: MIT

package makernote

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding/unicode"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// decodeUTF16LEText transcodes a fixed-width UTF-16LE field (Reconyx's
// SerialNumber is the caller) to UTF-8, trimming every trailing NUL.
// Returns ok=false if raw isn't valid UTF-16LE.
func decodeUTF16LEText(raw []byte) (string, bool) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", false
	}
	for len(out) >= 1 && out[len(out)-1] == 0 {
		out = out[:len(out)-1]
	}
	return string(out), true
}

// looksUTF16LE is a cheap heuristic for "every odd-indexed byte is 0x00";
// inputs shorter than 4 bytes or of odd length report false. Reconyx's
// SerialNumber field carries no type tag saying whether it is ASCII or
// UTF-16LE, so its caller sniffs before transcoding.
func looksUTF16LE(b []byte) bool {
	if len(b) < 4 || len(b)%2 != 0 {
		return false
	}
	zeros := 0
	for i := 1; i < len(b); i += 2 {
		if b[i] == 0 {
			zeros++
		}
	}
	return zeros*2 >= len(b)-1
}

// subtableToken builds the "mk_<vendor>_<table>_<index>" IFD token convention
// used for every synthetic sub-block a vendor decoder creates (spec.md §4.7
// make_mk_subtable_ifd_token).
func subtableToken(vendorName, table string, index int) string {
	return fmt.Sprintf("mk_%s_%s_%d", vendorName, table, index)
}

// emitBinDirEntries decodes a flat binary directory — a packed array of
// same-width, same-type values indexed from 1 — into a new named block, one
// entry per index (spec.md §4.7 emit_bin_dir_entries). It's the shape Canon's
// CameraSettings/ShotInfo, Pentax's 0x0205-family tags, and several other
// vendors' tables all share: no TIFF-style tag/type/count header, just a
// scalar array the vendor's published field list indexes into.
func emitBinDirEntries(st *store.Store, parent store.BlockID, blockName string, b []byte, le bool, elemSize int, elemType store.ElemType, signed bool) store.Status {
	if elemSize <= 0 || len(b) < elemSize {
		return store.Unsupported
	}
	blockID := st.AddBlockNamed(blockName, parent)
	if blockID == store.InvalidBlockID {
		return store.LimitExceeded
	}
	ifdSpan, ok := st.Arena().AppendString(blockName)
	if !ok {
		return store.LimitExceeded
	}

	n := len(b) / elemSize
	status := store.Ok
	for i := 0; i < n; i++ {
		off := int64(i * elemSize)
		var scalar uint64
		var ok bool
		switch elemSize {
		case 1:
			v, o := binread.U8(b, off)
			scalar, ok = uint64(v), o
		case 2:
			v, o := binread.U16(b, off, le)
			scalar, ok = uint64(v), o
		case 4:
			v, o := binread.U32(b, off, le)
			scalar, ok = uint64(v), o
		case 8:
			v, o := binread.U64(b, off, le)
			scalar, ok = v, o
		}
		if !ok {
			status = store.Merge(status, store.Malformed)
			continue
		}
		if signed {
			switch elemSize {
			case 1:
				scalar = uint64(int64(int8(scalar)))
			case 2:
				scalar = uint64(int64(int16(scalar)))
			case 4:
				scalar = uint64(int64(int32(scalar)))
			}
		}
		st.AddEntry(store.Entry{
			Key:   store.ExifTagKey(ifdSpan, uint16(i+1)),
			Value: store.MetaValue{Kind: store.KindScalar, ElemType: elemType, Count: 1, Scalar: scalar},
			Origin: store.Origin{
				Block: blockID,
				Wire:  store.WireType{Family: store.WireFamilyMakerNote},
			},
			Flags: store.FlagDerived,
		})
	}
	return status
}

// fixedField pairs a synthetic tag id with an already-decoded value for
// emitFixedFields, the shape a fixed-layout vendor binary table (HP, Kodak)
// needs: unlike emitBinDirEntries's uniform scalar array, each field can
// have its own offset, width and kind (scalar, rational, fixed-width text).
type fixedField struct {
	tag uint16
	val store.MetaValue
}

func u8Field(tag uint16, v uint8) fixedField {
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindScalar, ElemType: store.ElemU8, Count: 1, Scalar: uint64(v)}}
}

func u16Field(tag uint16, v uint16) fixedField {
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindScalar, ElemType: store.ElemU16, Count: 1, Scalar: uint64(v)}}
}

func u32Field(tag uint16, v uint32) fixedField {
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindScalar, ElemType: store.ElemU32, Count: 1, Scalar: uint64(v)}}
}

func i16Field(tag uint16, v int16) fixedField {
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindScalar, ElemType: store.ElemI16, Count: 1, Scalar: uint64(int64(v))}}
}

func i32Field(tag uint16, v int32) fixedField {
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindScalar, ElemType: store.ElemI32, Count: 1, Scalar: uint64(uint32(v))}}
}

func f32Field(tag uint16, v float32) fixedField {
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindScalar, ElemType: store.ElemF32, Count: 1, Scalar: uint64(math.Float32bits(v))}}
}

func f64Field(tag uint16, v float64) fixedField {
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindScalar, ElemType: store.ElemF64, Count: 1, Scalar: math.Float64bits(v)}}
}

// bytesField stores raw as a KindBytes field at tag, for sub-fields whose
// shape this decoder recognises (length, location) but doesn't further
// interpret (e.g. FLIR's embedded palette data).
func bytesField(st *store.Store, tag uint16, raw []byte) (fixedField, bool) {
	span, ok := st.Arena().Append(raw)
	if !ok {
		return fixedField{}, false
	}
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindBytes, ElemType: store.ElemU8, Count: uint32(len(raw)), Data: span}}, true
}

// u8ArrayField packs vals as a KindArray of single bytes.
func u8ArrayField(st *store.Store, tag uint16, vals []byte) (fixedField, bool) {
	span, ok := st.Arena().Append(vals)
	if !ok {
		return fixedField{}, false
	}
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindArray, ElemType: store.ElemU8, Count: uint32(len(vals)), Data: span}}, true
}

// urationalField appends an unsigned-rational value to st's arena and
// returns the field, or ok=false if the arena is exhausted.
func urationalField(st *store.Store, tag uint16, num, den uint32) (fixedField, bool) {
	var b8 [8]byte
	binary.LittleEndian.PutUint32(b8[0:4], num)
	binary.LittleEndian.PutUint32(b8[4:8], den)
	span, ok := st.Arena().Append(b8[:])
	if !ok {
		return fixedField{}, false
	}
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindRational, ElemType: store.ElemURational, Count: 1, Data: span}}, true
}

// textField appends s to st's arena as a KindText field, or ok=false if the
// arena is exhausted. Empty strings are skipped by the caller, not here.
func textField(st *store.Store, tag uint16, s string) (fixedField, bool) {
	span, ok := st.Arena().AppendString(s)
	if !ok {
		return fixedField{}, false
	}
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindText, ElemType: store.ElemASCII, Count: uint32(len(s)), Data: span}}, true
}

// u16ArrayField packs vals as a little-endian KindArray field (spec.md §4.7
// Panasonic FaceDetInfo/FaceRecInfo position quads).
func u16ArrayField(st *store.Store, tag uint16, vals []uint16) (fixedField, bool) {
	out := make([]byte, 0, len(vals)*2)
	for _, v := range vals {
		var b2 [2]byte
		binary.LittleEndian.PutUint16(b2[:], v)
		out = append(out, b2[:]...)
	}
	span, ok := st.Arena().Append(out)
	if !ok {
		return fixedField{}, false
	}
	return fixedField{tag: tag, val: store.MetaValue{Kind: store.KindArray, ElemType: store.ElemU16, Count: uint32(len(vals)), Data: span}}, true
}

// fixedASCIIField trims and stores a fixed-width ASCII slot (Panasonic
// FaceRecInfo name/age fields), skipping it entirely if empty after trim.
func fixedASCIIField(st *store.Store, tag uint16, raw []byte) (fixedField, bool) {
	s := trimASCIIField(raw)
	if s == "" {
		return fixedField{}, false
	}
	return textField(st, tag, s)
}

// emitFixedFields writes each field in fields as its own entry under a new
// named block, using the field's own tag rather than a sequential index
// (spec.md §4.7 fixed-layout binary tables: HP Type4/Type6, Kodak "KDK").
func emitFixedFields(st *store.Store, parent store.BlockID, blockName string, fields []fixedField) store.Status {
	if len(fields) == 0 {
		return store.Unsupported
	}
	blockID := st.AddBlockNamed(blockName, parent)
	if blockID == store.InvalidBlockID {
		return store.LimitExceeded
	}
	ifdSpan, ok := st.Arena().AppendString(blockName)
	if !ok {
		return store.LimitExceeded
	}
	for _, f := range fields {
		st.AddEntry(store.Entry{
			Key:   store.ExifTagKey(ifdSpan, f.tag),
			Value: f.val,
			Origin: store.Origin{
				Block: blockID,
				Wire:  store.WireType{Family: store.WireFamilyMakerNote},
			},
			Flags: store.FlagDerived,
		})
	}
	return store.Ok
}

// trimASCIIField trims trailing/leading NUL, space, and control whitespace
// from a fixed-width ASCII text field the way vendor binary tables pad
// their string slots (spec.md §4.7 fixed-width text fields).
func trimASCIIField(b []byte) string {
	isPad := func(c byte) bool {
		return c == 0 || c == ' ' || c == '\t' || c == '\r' || c == '\n'
	}
	start := 0
	for start < len(b) && isPad(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isPad(b[end-1]) {
		end--
	}
	return string(b[start:end])
}

// decodeEmbeddedIFD runs DecodeClassicIFD against ctx's byte slice at
// ifdOff, tagging entries with FlagDerived since they come from a vendor
// MakerNote rather than the top-level TIFF structure.
func decodeEmbeddedIFD(ctx tiffwalk.MakerNoteContext, cfg binread.TiffConfig, ifdOff, valueBase int64, name string) (store.BlockID, []tiffwalk.ClassicEntry, store.Status) {
	return tiffwalk.DecodeClassicIFD(ctx.Bytes, cfg, ifdOff, valueBase, name, ctx.Store, ctx.ParentBlock, ctx.Limits, store.FlagDerived)
}

// emitBytesBlock stores raw bytes as a single KindBytes entry tagged 0,
// useful for vendor sections this decoder recognises the shape of but
// doesn't yet break into individual fields.
func emitBytesBlock(st *store.Store, parent store.BlockID, blockName string, b []byte) store.Status {
	span, ok := st.Arena().Append(b)
	if !ok {
		return store.LimitExceeded
	}
	blockID := st.AddBlockNamed(blockName, parent)
	if blockID == store.InvalidBlockID {
		return store.LimitExceeded
	}
	ifdSpan, ok := st.Arena().AppendString(blockName)
	if !ok {
		return store.LimitExceeded
	}
	st.AddEntry(store.Entry{
		Key:   store.ExifTagKey(ifdSpan, 0),
		Value: store.MetaValue{Kind: store.KindBytes, Data: span, Count: uint32(len(b))},
		Origin: store.Origin{
			Block: blockID,
			Wire:  store.WireType{Family: store.WireFamilyMakerNote},
		},
		Flags: store.FlagDerived,
	})
	return store.Ok
}
