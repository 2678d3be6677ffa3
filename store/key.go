// SPDX-License-Identifier: MIT

package store

// KeyKind discriminates the MetaKey tagged union (spec.md §3.1).
type KeyKind uint8

const (
	// KeyExifTag identifies an EXIF/TIFF tag within a named IFD.
	KeyExifTag KeyKind = iota
	// KeyXmpProperty identifies an XMP property; OpenMeta never parses XMP
	// itself (spec.md §1 Out of scope) but reserves the key shape for the
	// injected XMP decoder to use against the same Store.
	KeyXmpProperty
	// KeyGeoTiffKey identifies a derived GeoTIFF key (spec.md §4.5).
	KeyGeoTiffKey
)

// MetaKey is a tagged union over the ways OpenMeta names a decoded value.
// IFD and Namespace are arena spans so they can be synthesised per the
// make_mk_subtable_ifd_token convention (spec.md §4.7) without extra
// allocation bookkeeping.
type MetaKey struct {
	Kind KeyKind

	// ExifTag
	IFD ByteSpan // e.g. "IFD0", "IFD0/ExifIFDP", "mk_canon_camerasettings_0"
	Tag uint16

	// XmpProperty
	Namespace ByteSpan
	Name      ByteSpan

	// GeoTiffKey
	GeoID uint16
}

// ExifTagKey builds a KeyExifTag MetaKey. ifd must already be arena-owned.
func ExifTagKey(ifd ByteSpan, tag uint16) MetaKey {
	return MetaKey{Kind: KeyExifTag, IFD: ifd, Tag: tag}
}

// GeoTiffKeyOf builds a KeyGeoTiffKey MetaKey.
func GeoTiffKeyOf(id uint16) MetaKey {
	return MetaKey{Kind: KeyGeoTiffKey, GeoID: id}
}
