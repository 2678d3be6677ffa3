// SPDX-License-Identifier: MIT

package tiffwalk

import "github.com/openmeta-go/openmeta/store"

// TIFF type codes (spec.md §4.4): 1..12 classic, 16..18 BigTIFF.
const (
	TypeByte      = 1
	TypeASCII     = 2
	TypeShort     = 3
	TypeLong      = 4
	TypeRational  = 5
	TypeSByte     = 6
	TypeUndefined = 7
	TypeSShort    = 8
	TypeSLong     = 9
	TypeSRational = 10
	TypeFloat     = 11
	TypeDouble    = 12
	TypeLong8     = 16
	TypeSLong8    = 17
	TypeIFD8      = 18
)

// Well-known SubIFD pointer tags and MakerNote/Make/Model tags (spec.md §4.4,
// §4.6).
const (
	TagExifIFD      = 0x8769
	TagGPSIFD       = 0x8825
	TagInteropIFD   = 0xA005
	TagSubIFDs      = 0x014A
	TagMakerNote    = 0x927C
	TagMake         = 0x010F
	TagModel        = 0x0110
	TagGeoKeyDir    = 0x87AF
	TagGeoDoubleParams = 0x87B0
	TagGeoAsciiParams  = 0x87B1
)

// typeSize returns the on-wire byte width of one element of TIFF type typ,
// or 0 if typ is unrecognised (spec.md §4.4 "skip on unknown type").
func typeSize(typ uint16) int {
	switch typ {
	case TypeByte, TypeASCII, TypeSByte, TypeUndefined:
		return 1
	case TypeShort, TypeSShort:
		return 2
	case TypeLong, TypeSLong, TypeFloat:
		return 4
	case TypeRational, TypeSRational, TypeDouble, TypeLong8, TypeSLong8, TypeIFD8:
		return 8
	default:
		return 0
	}
}

// elemTypeFor maps a wire type code to the store.ElemType a decoded entry's
// MetaValue carries.
func elemTypeFor(typ uint16) store.ElemType {
	switch typ {
	case TypeByte:
		return store.ElemU8
	case TypeASCII:
		return store.ElemASCII
	case TypeShort:
		return store.ElemU16
	case TypeLong, TypeIFD8:
		return store.ElemU32
	case TypeRational:
		return store.ElemURational
	case TypeSByte:
		return store.ElemI8
	case TypeUndefined:
		return store.ElemU8
	case TypeSShort:
		return store.ElemI16
	case TypeSLong:
		return store.ElemI32
	case TypeSRational:
		return store.ElemSRational
	case TypeFloat:
		return store.ElemF32
	case TypeDouble:
		return store.ElemF64
	case TypeLong8, TypeSLong8:
		// BigTIFF 8-byte integers; SLONG8's sign is recoverable from the
		// stored bit pattern since Scalar/array bytes are the raw two's
		// complement representation.
		return store.ElemU64
	default:
		return store.ElemInvalid
	}
}
