// SPDX-License-Identifier: MIT

package scanner

import (
	"bytes"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

// ScanAuto detects a container format by magic bytes and dispatches to the
// matching per-format scanner, in the order spec.md §6.1 specifies:
// JPEG, PNG, RIFF/WebP, GIF, BMFF (ftyp), then TIFF.
func ScanAuto(b []byte, out []BlockRef) Result {
	switch {
	case len(b) >= 2 && b[0] == 0xff && b[1] == 0xd8:
		return ScanJPEG(b, out)
	case bytes.HasPrefix(b, pngSignature):
		return ScanPNG(b, out)
	case binread.InBounds(b, 0, 12) && bytes.Equal(b[0:4], webpRIFF[:]) && bytes.Equal(b[8:12], webpWEBP[:]):
		return ScanWebP(b, out)
	case bytes.HasPrefix(b, gif87a) || bytes.HasPrefix(b, gif89a):
		return ScanGIF(b, out)
	case binread.InBounds(b, 4, 8) && bytes.Equal(b[4:8], bmffBoxFtyp[:]):
		return scanBMFFByBrand(b, out)
	case isTIFFMagic(b):
		return ScanTIFF(b, out)
	default:
		return Result{Status: store.Unsupported}
	}
}

// scanBMFFByBrand reads the major brand out of an already-detected `ftyp`
// box and routes to the JP2/JXL box walker or the shared HEIF/AVIF/CR3
// walker, since those two families use different item-resolution schemes.
func scanBMFFByBrand(b []byte, out []BlockRef) Result {
	brand, ok := binread.Bytes(b, 8, 4)
	if !ok {
		return Result{Status: store.Malformed}
	}
	switch [4]byte(brand) {
	case jp2BrandJp2:
		return ScanJP2(b, out)
	case jxlBrandJxl:
		return ScanJXL(b, out)
	default:
		return ScanBMFF(b, out)
	}
}

func isTIFFMagic(b []byte) bool {
	bom, ok := binread.Bytes(b, 0, 2)
	if !ok {
		return false
	}
	le := bom[0] == 'I' && bom[1] == 'I'
	be := bom[0] == 'M' && bom[1] == 'M'
	if !le && !be {
		return false
	}
	magic, ok := binread.U16(b, 2, le)
	if !ok {
		return false
	}
	return magic == 42 || magic == 43
}
