// SPDX-License-Identifier: MIT

package makernote

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

var nikonXlat0 = [256]byte{
	0xc1, 0xbf, 0x6d, 0x0d, 0x59, 0xc5, 0x13, 0x9d, 0x83, 0x61, 0x6b, 0x4f, 0xc7, 0x7f, 0x3d, 0x3d,
	0x53, 0x59, 0xe3, 0xc7, 0xe9, 0x2f, 0x95, 0xa7, 0x95, 0x1f, 0xdf, 0x7f, 0x2b, 0x29, 0xc7, 0x0d,
	0xdf, 0x07, 0xef, 0x71, 0x89, 0x3d, 0x13, 0x3d, 0x3b, 0x13, 0xfb, 0x0d, 0x89, 0xc1, 0x65, 0x1f,
	0xb3, 0x0d, 0x6b, 0x29, 0xe3, 0xfb, 0xef, 0xa3, 0x6b, 0x47, 0x7f, 0x95, 0x35, 0xa7, 0x47, 0x4f,
	0xc7, 0xf1, 0x59, 0x95, 0x35, 0x11, 0x29, 0x61, 0xf1, 0x3d, 0xb3, 0x2b, 0x0d, 0x43, 0x89, 0xc1,
	0x9d, 0x9d, 0x89, 0x65, 0xf1, 0xe9, 0xdf, 0xbf, 0x3d, 0x7f, 0x53, 0x97, 0xe5, 0xe9, 0x95, 0x17,
	0x1d, 0x3d, 0x8b, 0xfb, 0xc7, 0xe3, 0x67, 0xa7, 0x07, 0xf1, 0x71, 0xa7, 0x53, 0xb5, 0x29, 0x89,
	0xe5, 0x2b, 0xa7, 0x17, 0x29, 0xe9, 0x4f, 0xc5, 0x65, 0x6d, 0x6b, 0xef, 0x0d, 0x89, 0x49, 0x2f,
	0xb3, 0x43, 0x53, 0x65, 0x1d, 0x49, 0xa3, 0x13, 0x89, 0x59, 0xef, 0x6b, 0xef, 0x65, 0x1d, 0x0b,
	0x59, 0x13, 0xe3, 0x4f, 0x9d, 0xb3, 0x29, 0x43, 0x2b, 0x07, 0x1d, 0x95, 0x59, 0x59, 0x47, 0xfb,
	0xe5, 0xe9, 0x61, 0x47, 0x2f, 0x35, 0x7f, 0x17, 0x7f, 0xef, 0x7f, 0x95, 0x95, 0x71, 0xd3, 0xa3,
	0x0b, 0x71, 0xa3, 0xad, 0x0b, 0x3b, 0xb5, 0xfb, 0xa3, 0xbf, 0x4f, 0x83, 0x1d, 0xad, 0xe9, 0x2f,
	0x71, 0x65, 0xa3, 0xe5, 0x07, 0x35, 0x3d, 0x0d, 0xb5, 0xe9, 0xe5, 0x47, 0x3b, 0x9d, 0xef, 0x35,
	0xa3, 0xbf, 0xb3, 0xdf, 0x53, 0xd3, 0x97, 0x53, 0x49, 0x71, 0x07, 0x35, 0x61, 0x71, 0x2f, 0x43,
	0x2f, 0x11, 0xdf, 0x17, 0x97, 0xfb, 0x95, 0x3b, 0x7f, 0x6b, 0xd3, 0x25, 0xbf, 0xad, 0xc7, 0xc5,
	0xc5, 0xb5, 0x8b, 0xef, 0x2f, 0xd3, 0x07, 0x6b, 0x25, 0x49, 0x95, 0x25, 0x49, 0x6d, 0x71, 0xc7,
}

var nikonXlat1 = [256]byte{
	0xa7, 0xbc, 0xc9, 0xad, 0x91, 0xdf, 0x85, 0xe5, 0xd4, 0x78, 0xd5, 0x17, 0x46, 0x7c, 0x29, 0x4c,
	0x4d, 0x03, 0xe9, 0x25, 0x68, 0x11, 0x86, 0xb3, 0xbd, 0xf7, 0x6f, 0x61, 0x22, 0xa2, 0x26, 0x34,
	0x2a, 0xbe, 0x1e, 0x46, 0x14, 0x68, 0x9d, 0x44, 0x18, 0xc2, 0x40, 0xf4, 0x7e, 0x5f, 0x1b, 0xad,
	0x0b, 0x94, 0xb6, 0x67, 0xb4, 0x0b, 0xe1, 0xea, 0x95, 0x9c, 0x66, 0xdc, 0xe7, 0x5d, 0x6c, 0x05,
	0xda, 0xd5, 0xdf, 0x7a, 0xef, 0xf6, 0xdb, 0x1f, 0x82, 0x4c, 0xc0, 0x68, 0x47, 0xa1, 0xbd, 0xee,
	0x39, 0x50, 0x56, 0x4a, 0xdd, 0xdf, 0xa5, 0xf8, 0xc6, 0xda, 0xca, 0x90, 0xca, 0x01, 0x42, 0x9d,
	0x8b, 0x0c, 0x73, 0x43, 0x75, 0x05, 0x94, 0xde, 0x24, 0xb3, 0x80, 0x34, 0xe5, 0x2c, 0xdc, 0x9b,
	0x3f, 0xca, 0x33, 0x45, 0xd0, 0xdb, 0x5f, 0xf5, 0x52, 0xc3, 0x21, 0xda, 0xe2, 0x22, 0x72, 0x6b,
	0x3e, 0xd0, 0x5b, 0xa8, 0x87, 0x8c, 0x06, 0x5d, 0x0f, 0xdd, 0x09, 0x19, 0x93, 0xd0, 0xb9, 0xfc,
	0x8b, 0x0f, 0x84, 0x60, 0x33, 0x1c, 0x9b, 0x45, 0xf1, 0xf0, 0xa3, 0x94, 0x3a, 0x12, 0x77, 0x33,
	0x4d, 0x44, 0x78, 0x28, 0x3c, 0x9e, 0xfd, 0x65, 0x57, 0x16, 0x94, 0x6b, 0xfb, 0x59, 0xd0, 0xc8,
	0x22, 0x36, 0xdb, 0xd2, 0x63, 0x98, 0x43, 0xa1, 0x04, 0x87, 0x86, 0xf7, 0xa6, 0x26, 0xbb, 0xd6,
	0x59, 0x4d, 0xbf, 0x6a, 0x2e, 0xaa, 0x2b, 0xef, 0xe6, 0x78, 0xb6, 0x4e, 0xe0, 0x2f, 0xdc, 0x7c,
	0xbe, 0x57, 0x19, 0x32, 0x7e, 0x2a, 0xd0, 0xb8, 0xba, 0x29, 0x00, 0x3c, 0x52, 0x7d, 0xa8, 0x49,
	0x3b, 0x2d, 0xeb, 0x25, 0x49, 0xfa, 0xa3, 0xaa, 0x39, 0xa7, 0xc5, 0xa7, 0x50, 0x11, 0x36, 0xfb,
	0xc6, 0x67, 0x4a, 0xf5, 0xa5, 0x12, 0x65, 0x7e, 0xb0, 0xdf, 0xaf, 0x4e, 0xb3, 0x61, 0x7f, 0x2f,
}

const (
	nikonTagSerialNumber = 0x001d
	nikonTagShutterCount = 0x00a7
)

// nikonDescramble reverses Nikon's serial/shutter-count keyed stream
// cipher used on the ColorBalance and LensData subdirectories.
func nikonDescramble(data []byte, serial, count uint32) []byte {
	sKey := byte(serial & 0xff)
	var cKey byte
	for i := 0; i < 4; i++ {
		cKey ^= byte(count >> (i * 8))
	}
	ci := nikonXlat0[sKey]
	cj := nikonXlat1[cKey]
	ck := byte(0x60)

	out := make([]byte, len(data))
	for i := range data {
		cj = cj + ci*ck
		ck++
		out[i] = data[i] ^ cj
	}
	return out
}

// decodeNikon decodes a Nikon MakerNote: "Nikon\x00" + format byte + BOM'd
// TIFF-style sub-header whose IFD offsets are relative to the sub-header's
// own start, followed by a classic IFD. ColorBalance/LensData tags are
// further enciphered with nikonDescramble, keyed by the serial number and
// shutter count tags found in the same IFD.
func decodeNikon(ctx tiffwalk.MakerNoteContext) store.Status {
	const headerMagic = "Nikon\x00"
	h, ok := binread.Bytes(ctx.Bytes, ctx.Offset, int64(len(headerMagic))+4)
	if !ok || string(h[:len(headerMagic)]) != headerMagic {
		return store.Unsupported
	}

	subHeaderOff := ctx.Offset + int64(len(headerMagic)) + 2
	bom, ok := binread.Bytes(ctx.Bytes, subHeaderOff, 2)
	if !ok {
		return store.Unsupported
	}
	le := string(bom) == "II"
	cfg := ctx.Cfg
	cfg.LE = le

	ifdOff, ok := binread.U32(ctx.Bytes, subHeaderOff+4, le)
	if !ok {
		return store.Malformed
	}

	blockID, entries, status := decodeEmbeddedIFD(ctx, cfg, subHeaderOff+int64(ifdOff), subHeaderOff, "mk_nikon_root")
	if blockID == store.InvalidBlockID {
		return store.Merge(status, store.Malformed)
	}

	var serial, shutterCount uint32
	var haveSerial, haveCount bool
	for i := range entries {
		e := &entries[i]
		switch e.Tag {
		case nikonTagSerialNumber:
			if e.Value.Kind == store.KindText {
				serial = parseDecimalUint32(string(ctx.Store.Arena().Span(e.Value.Data)))
				haveSerial = true
			}
		case nikonTagShutterCount:
			if e.Value.Kind == store.KindScalar {
				shutterCount = uint32(e.Value.Scalar)
				haveCount = true
			}
		}
	}
	if !haveSerial || !haveCount {
		return status
	}

	idx := 0
	for i := range entries {
		e := &entries[i]
		raw, ok := binread.Bytes(ctx.Bytes, e.ValueOffset, int64(e.Count)*int64(typeSizeOf(e.Type)))
		if !ok || len(raw) < 4 {
			continue
		}
		switch e.Tag {
		case nikonTagColorBalance:
			status = store.Merge(status, decodeNikonColorBalance(ctx.Store, blockID, raw, cfg.LE, serial, shutterCount, idx))
			idx++
		case nikonTagLensData:
			status = store.Merge(status, decodeNikonLensData(ctx.Store, blockID, raw, cfg.LE, serial, shutterCount, idx))
			idx++
		}
	}

	return status
}

const (
	nikonTagColorBalance = 0x0097
	nikonTagLensData     = 0x0098
)

// decodeNikonColorBalance decodes the ColorBalance subdirectory: a 4-byte
// ASCII version string followed, for the versions that carry WB_*Levels
// (0102/0205/0213/0219/0209/0211/0215/0217), by 8 enciphered bytes holding
// four u16 white-balance level coefficients. Unknown versions surface just
// the version string rather than a raw dump.
func decodeNikonColorBalance(st *store.Store, parent store.BlockID, raw []byte, le bool, serial, shutterCount uint32, idx int) store.Status {
	ver := string(raw[:4])
	subtable := "colorbalanceunknown"
	switch ver {
	case "0102", "0205", "0213", "0219", "0209", "0211", "0215", "0217":
		subtable = "colorbalance"
	}
	name := subtableToken("nikon", subtable, idx)

	var fields []fixedField
	if f, ok := textField(st, 0x0000, ver); ok {
		fields = append(fields, f)
	}

	if subtable == "colorbalance" && len(raw) >= 12 {
		dec := nikonDescramble(raw[4:12], serial, shutterCount)
		var levels []uint16
		for k := 0; k < 4; k++ {
			v, ok := binread.U16(dec, int64(k)*2, le)
			if !ok {
				levels = nil
				break
			}
			levels = append(levels, v)
		}
		if len(levels) == 4 {
			if f, ok := u16ArrayField(st, 0x0001, levels); ok {
				fields = append(fields, f)
			}
		}
	}

	return emitFixedFields(st, parent, name, fields)
}

// nikonLensData0204Tags lists the 13 u8 fields LensData version "0204"
// packs into its enciphered 16-byte body, at offset tag-4 within it.
var nikonLensData0204Tags = [...]uint16{0x0004, 0x0005, 0x0008, 0x000a, 0x000b, 0x000c, 0x000d, 0x000e, 0x000f, 0x0010, 0x0011, 0x0012, 0x0013}

// decodeNikonLensData decodes the LensData subdirectory's version string
// and, for version "0204", its enciphered per-field byte table. Other
// versions (0400/0402/0403, which carry a plaintext lens-model string
// further in) and unrecognised versions surface just the version string.
func decodeNikonLensData(st *store.Store, parent store.BlockID, raw []byte, le bool, serial, shutterCount uint32, idx int) store.Status {
	ver := string(raw[:4])
	subtable := "lensdataunknown"
	switch ver {
	case "0204":
		subtable = "lensdata0204"
	case "0400":
		subtable = "lensdata0400"
	case "0402":
		subtable = "lensdata0402"
	case "0403":
		subtable = "lensdata0403"
	}
	name := subtableToken("nikon", subtable, idx)

	var fields []fixedField
	if f, ok := textField(st, 0x0000, ver); ok {
		fields = append(fields, f)
	}

	if subtable == "lensdata0204" && len(raw) >= 20 {
		dec := nikonDescramble(raw[4:20], serial, shutterCount)
		for _, tag := range nikonLensData0204Tags {
			off := int(tag) - 4
			if off < 0 || off >= len(dec) {
				continue
			}
			fields = append(fields, u8Field(tag, dec[off]))
		}
	}

	return emitFixedFields(st, parent, name, fields)
}

func parseDecimalUint32(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		v = v*10 + uint32(c-'0')
	}
	return v
}
