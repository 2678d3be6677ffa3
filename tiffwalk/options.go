// SPDX-License-Identifier: MIT

package tiffwalk

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

// MakerNoteContext is everything a MakerNote dispatcher needs to decode the
// blob referenced by an EXIF tag 0x927C entry. Defined here (rather than in
// package makernote) so tiffwalk has no import-time dependency on it: the
// facade wires a concrete MakerNoteFunc into Options at call time.
type MakerNoteContext struct {
	Bytes  []byte
	Cfg    binread.TiffConfig
	Offset int64
	Length int64

	IFD0Make  string
	IFD0Model string

	Store       *store.Store
	ParentBlock store.BlockID
	Limits      Limits
}

// MakerNoteFunc decodes one MakerNote blob into sub-blocks of ctx.Store,
// returning the merged status. It must never fail the surrounding IFD walk:
// declining to recognise the vendor is reported as store.Unsupported, not
// an error return (spec.md §4.6 "does not fail if a vendor decoder
// declines").
type MakerNoteFunc func(ctx MakerNoteContext) store.Status

// TokenPrefixes names the IFD tokens the walker assigns to well-known
// SubIFD pointer tags, so callers can match the teacher corpus's naming
// convention without hard-coding string literals throughout this package.
type TokenPrefixes struct {
	Root     string
	ExifIFD  string
	GPSIFD   string
	Interop  string
	SubIFD   string // formatted as fmt.Sprintf(SubIFD+"%d", index)
}

// DefaultTokenPrefixes matches spec.md §4.4's example names.
func DefaultTokenPrefixes() TokenPrefixes {
	return TokenPrefixes{
		Root:    "ifd0",
		ExifIFD: "exif",
		GPSIFD:  "gps",
		Interop: "interop",
		SubIFD:  "subifd",
	}
}

// Options configures one DecodeExifTiff call.
type Options struct {
	Limits Limits
	Tokens TokenPrefixes

	DecodeMakerNote bool
	MakerNote       MakerNoteFunc

	DecodeGeoTiff bool
}

// DefaultOptions is DecodeMakerNote=false, DecodeGeoTiff=true, generous
// limits — safe defaults for a first decode pass.
func DefaultOptions() Options {
	return Options{
		Limits:        DefaultLimits(),
		Tokens:        DefaultTokenPrefixes(),
		DecodeGeoTiff: true,
	}
}
