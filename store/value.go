// SPDX-License-Identifier: MIT

package store

import "fmt"

// ElemType is the decoded element type of a MetaValue (spec.md §3.1).
type ElemType uint8

const (
	ElemInvalid ElemType = iota
	ElemU8
	ElemU16
	ElemU32
	ElemU64
	ElemI8
	ElemI16
	ElemI32
	ElemF32
	ElemF64
	ElemURational
	ElemSRational
	ElemASCII // raw bytes, trimmed of trailing NULs, UTF-8 once decoded
)

// Size returns the on-wire byte width of one element, or 0 if unknown.
func (t ElemType) Size() int {
	switch t {
	case ElemU8, ElemI8, ElemASCII:
		return 1
	case ElemU16, ElemI16:
		return 2
	case ElemU32, ElemI32, ElemF32:
		return 4
	case ElemU64, ElemF64, ElemURational, ElemSRational:
		return 8
	default:
		return 0
	}
}

// WireFamily groups WireType.Code into the families a decoder must
// distinguish (classic TIFF vs BigTIFF vs vendor MakerNote codes).
type WireFamily uint8

const (
	WireFamilyTIFF WireFamily = iota
	WireFamilyBigTIFF
	WireFamilyMakerNote
)

// WireType records the original on-wire type code, kept for faithful
// debugging/re-serialisation even though OpenMeta never writes files
// (spec.md §3.1).
type WireType struct {
	Family WireFamily
	Code   uint16
}

// ValueKind is MetaValue.Kind (spec.md §3.1).
type ValueKind uint8

const (
	KindEmpty ValueKind = iota
	KindScalar
	KindArray
	KindBytes
	KindText
	KindRational
)

// MetaValue is the uniform decoded value shape every Entry carries.
// Scalars are stored inline in Scalar to avoid an arena round-trip; arrays,
// byte blobs and text live in the arena as Data.
type MetaValue struct {
	Kind     ValueKind
	ElemType ElemType
	Count    uint32

	// Scalar holds an inline value for Kind == KindScalar (bit pattern of
	// the element, sign/float-extended to 64 bits as needed).
	Scalar uint64

	// Data holds the arena span for Kind in {KindArray, KindBytes, KindText,
	// KindRational}. For KindText it's UTF-8 bytes. For KindRational it's a
	// packed sequence of int32/uint32 pairs (numerator, denominator),
	// 8 bytes per element regardless of signedness.
	Data ByteSpan

	// TextEncoding names the source encoding when Kind == KindText and the
	// value required transcoding (e.g. "utf-16le"); empty for plain ASCII.
	TextEncoding string
}

// Rational returns the numerator/denominator pair at index i for a
// KindRational value. Callers must copy out before the arena can grow
// further underneath them (spec.md §5 "Arena reallocation hazard").
func (v MetaValue) Rational(a *Arena, i int) (num, den int64, ok bool) {
	if v.Kind != KindRational {
		return 0, 0, false
	}
	b := a.Span(v.Data)
	off := i * 8
	if off+8 > len(b) {
		return 0, 0, false
	}
	n := uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
	d := uint32(b[off+4]) | uint32(b[off+5])<<8 | uint32(b[off+6])<<16 | uint32(b[off+7])<<24
	if v.ElemType == ElemSRational {
		return int64(int32(n)), int64(int32(d)), true
	}
	return int64(n), int64(d), true
}

// String renders a best-effort human form, used by tests and the CLI smoke
// tool; it never panics regardless of Kind/ElemType combination.
func (v MetaValue) String(a *Arena) string {
	switch v.Kind {
	case KindEmpty:
		return ""
	case KindScalar:
		return fmt.Sprintf("%d", v.Scalar)
	case KindText:
		return string(a.Span(v.Data))
	case KindBytes:
		return fmt.Sprintf("(%d bytes)", v.Data.Len())
	case KindArray, KindRational:
		return fmt.Sprintf("(%d elems)", v.Count)
	default:
		return ""
	}
}
