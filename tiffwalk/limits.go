// SPDX-License-Identifier: MIT

// Package tiffwalk implements the EXIF/TIFF IFD walker and GeoTIFF key
// decoder (spec.md §4.4, §4.5): classic and BigTIFF directory structures,
// SubIFD/GPS/Interop recursion with a cycle guard, and the shared
// classic-IFD primitives the MakerNote vendor decoders build on.
package tiffwalk

// Limits bounds how much an IFD walk will do before degrading to
// LimitExceeded instead of continuing to recurse (spec.md §4.4).
type Limits struct {
	MaxEntriesPerIFD int
	MaxTotalEntries  int
	MaxValueBytes    int
	MaxIFDs          int
}

// DefaultLimits are generous bounds suitable for well-formed camera files;
// callers decoding untrusted input should tighten these.
func DefaultLimits() Limits {
	return Limits{
		MaxEntriesPerIFD: 4096,
		MaxTotalEntries:  65536,
		MaxValueBytes:    64 << 20,
		MaxIFDs:          256,
	}
}
