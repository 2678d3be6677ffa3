// SPDX-License-Identifier: MIT

package tiffwalk

import (
	"bytes"
	"encoding/binary"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

// decodeGeoTiffKeys derives one KeyGeoTiffKey entry per key described by
// geoDir's GeoKeyDirectory table, resolving each key's value against
// geoDouble/geoAscii as needed (spec.md §4.5). Entries land in a new
// "geotiff" block, parented at InvalidBlockID like other derived top-level
// tables: GeoTIFF keys describe the whole image, not one IFD.
func decodeGeoTiffKeys(b []byte, cfg binread.TiffConfig, st *store.Store, geoDir, geoDouble, geoAscii *ClassicEntry) store.Status {
	dirBytes, ok := geoKeyDirBytes(b, cfg, geoDir)
	if !ok || len(dirBytes) < 8 {
		return store.Malformed
	}

	// Header: keyDirectoryVersion, keyRevision, minorRevision, numberOfKeys
	// (each u16, always little-endian per the GeoTIFF spec regardless of
	// the enclosing TIFF's byte order for the directory structure itself —
	// in practice readers honor cfg.LE since GeoTIFF writers emit the
	// directory in the TIFF's own endianness; this walker does the same).
	numKeys, ok := binread.U16(dirBytes, 6, cfg.LE)
	if !ok {
		return store.Malformed
	}

	blockID := st.AddBlockNamed("geotiff", store.InvalidBlockID)
	if blockID == store.InvalidBlockID {
		return store.LimitExceeded
	}

	status := store.Ok
	for i := uint16(0); i < numKeys; i++ {
		entryOff := int64(8 + int(i)*8)
		keyID, ok1 := binread.U16(dirBytes, entryOff, cfg.LE)
		location, ok2 := binread.U16(dirBytes, entryOff+2, cfg.LE)
		count, ok3 := binread.U16(dirBytes, entryOff+4, cfg.LE)
		valueOffset, ok4 := binread.U16(dirBytes, entryOff+6, cfg.LE)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			status = store.Merge(status, store.Malformed)
			break
		}

		val, ok := resolveGeoKeyValue(b, cfg, st.Arena(), location, count, valueOffset, geoDouble, geoAscii)
		if !ok {
			status = store.Merge(status, store.Unsupported)
			continue
		}
		st.AddEntry(store.Entry{
			Key:   store.GeoTiffKeyOf(keyID),
			Value: val,
			Origin: store.Origin{
				Block:        blockID,
				OrderInBlock: uint32(i),
				Wire:         store.WireType{Family: store.WireFamilyTIFF, Code: location},
				WireCount:    uint32(count),
			},
			Flags: store.FlagDerived,
		})
	}
	return status
}

func geoKeyDirBytes(b []byte, cfg binread.TiffConfig, e *ClassicEntry) ([]byte, bool) {
	if e.Value.Kind == store.KindScalar {
		var b8 [2]byte
		binary.LittleEndian.PutUint16(b8[:], uint16(e.Value.Scalar))
		return b8[:], true
	}
	n := int64(e.Count) * 2
	return binread.Bytes(b, e.ValueOffset, n)
}

func resolveGeoKeyValue(b []byte, cfg binread.TiffConfig, arena *store.Arena, location, count, valueOffset uint16, geoDouble, geoAscii *ClassicEntry) (store.MetaValue, bool) {
	switch location {
	case 0:
		return store.MetaValue{Kind: store.KindScalar, ElemType: store.ElemU16, Count: 1, Scalar: uint64(valueOffset)}, true
	case TagGeoDoubleParams:
		if geoDouble == nil {
			return store.MetaValue{}, false
		}
		raw, ok := geoParamBytes(b, geoDouble, int64(valueOffset)*8, int64(count)*8)
		if !ok {
			return store.MetaValue{}, false
		}
		out := make([]byte, 0, int(count)*8)
		for i := uint16(0); i < count; i++ {
			v, ok := binread.U64(raw, int64(i)*8, cfg.LE)
			if !ok {
				return store.MetaValue{}, false
			}
			var b8 [8]byte
			binary.LittleEndian.PutUint64(b8[:], v)
			out = append(out, b8[:]...)
		}
		span, ok := arena.Append(out)
		if !ok {
			return store.MetaValue{}, false
		}
		return store.MetaValue{Kind: store.KindArray, ElemType: store.ElemF64, Count: uint32(count), Data: span}, true
	case TagGeoAsciiParams:
		if geoAscii == nil {
			return store.MetaValue{}, false
		}
		raw, ok := geoParamBytes(b, geoAscii, int64(valueOffset), int64(count))
		if !ok {
			return store.MetaValue{}, false
		}
		trimmed := bytes.Trim(raw, "|\x00")
		span, ok := arena.Append(trimmed)
		if !ok {
			return store.MetaValue{}, false
		}
		return store.MetaValue{Kind: store.KindText, ElemType: store.ElemASCII, Count: uint32(len(trimmed)), Data: span}, true
	default:
		return store.MetaValue{}, false
	}
}

// geoParamBytes slices [start, start+length) out of the already-decoded
// GeoDoubleParams/GeoAsciiParams entry, whether it was stored inline
// (scalar/small array) or out-of-line in the original stream.
func geoParamBytes(b []byte, e *ClassicEntry, start, length int64) ([]byte, bool) {
	return binread.Bytes(b, e.ValueOffset+start, length)
}
