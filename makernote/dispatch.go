// SPDX-License-Identifier: MIT

// Package makernote implements the MakerNote dispatcher and its vendor
// decoders (spec.md §4.6, §4.7): the highly irregular, vendor-specific
// subdirectories EXIF tag 0x927C can point at. Each vendor decoder is
// self-contained and shares a small set of primitives with the core
// tiffwalk IFD walker (DecodeClassicIFD, FindBestClassicIFDCandidate).
package makernote

import (
	"bytes"

	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// vendor identifies which decoder Dispatch picked.
type vendor int

const (
	vendorNone vendor = iota
	vendorCanon
	vendorSony
	vendorNikon
	vendorOlympus
	vendorPentax
	vendorKodak
	vendorRicoh
	vendorPanasonic
	vendorMinolta
	vendorCasio
	vendorFLIR
	vendorHP
	vendorNintendo
	vendorReconyx
	vendorSamsung
)

// Dispatch implements tiffwalk.MakerNoteFunc: it identifies the vendor from
// Make/Model and the MakerNote header bytes, then invokes that vendor's
// decoder. It never reports failure for an unrecognised vendor — the raw
// MakerNote entry is left untouched by the caller regardless (spec.md
// §4.6).
func Dispatch(ctx tiffwalk.MakerNoteContext) store.Status {
	header, ok := binread.Bytes(ctx.Bytes, ctx.Offset, min64(ctx.Length, 32))
	if !ok {
		return store.Unsupported
	}

	v := detectVendor(ctx.IFD0Make, ctx.IFD0Model, header)
	switch v {
	case vendorCanon:
		return decodeCanon(ctx)
	case vendorSony:
		return decodeSony(ctx)
	case vendorNikon:
		return decodeNikon(ctx)
	case vendorOlympus:
		return decodeOlympus(ctx)
	case vendorPentax:
		return decodePentax(ctx)
	case vendorKodak:
		return decodeKodak(ctx)
	case vendorRicoh:
		return decodeRicoh(ctx)
	case vendorPanasonic:
		return decodePanasonic(ctx)
	case vendorMinolta:
		return decodeMinolta(ctx)
	case vendorCasio:
		return decodeCasio(ctx)
	case vendorFLIR:
		return decodeFLIR(ctx)
	case vendorHP:
		return decodeHP(ctx)
	case vendorNintendo:
		return decodeNintendo(ctx)
	case vendorReconyx:
		return decodeReconyx(ctx)
	case vendorSamsung:
		return decodeSamsung(ctx)
	default:
		return store.Unsupported
	}
}

func detectVendor(make_, model string, header []byte) vendor {
	switch {
	case bytes.HasPrefix(header, []byte("SONY")), bytes.HasPrefix(header, []byte("VHAB")):
		return vendorSony
	case bytes.HasPrefix(header, []byte("Nikon\x00")), containsFold(make_, "NIKON"):
		return vendorNikon
	case bytes.HasPrefix(header, []byte("OLYMP\x00")), bytes.HasPrefix(header, []byte("CAMER\x00")), bytes.HasPrefix(header, []byte("OLYMPUS\x00")):
		return vendorOlympus
	case bytes.HasPrefix(header, []byte("AOC\x00")), bytes.HasPrefix(header, []byte("PENTAX ")):
		return vendorPentax
	case bytes.HasPrefix(header, []byte("QVC\x00")):
		return vendorCasio
	case bytes.HasPrefix(header, []byte("FLIR\x00")), bytes.HasPrefix(header, []byte("FFF\x00")), bytes.HasPrefix(header, []byte("AFF\x00")):
		return vendorFLIR
	case bytes.HasPrefix(header, []byte("IIII")):
		return vendorHP
	case bytes.HasPrefix(header, []byte{0x01, 0xf1}), bytes.HasPrefix(header, []byte("RECONYXH2\x00")), bytes.HasPrefix(header, []byte("RECONYXUF\x00")):
		return vendorReconyx
	case bytes.HasPrefix(header, []byte("STMN")):
		return vendorSamsung
	case containsFold(make_, "CANON"):
		return vendorCanon
	case containsFold(make_, "KODAK"):
		return vendorKodak
	case containsFold(make_, "RICOH"):
		return vendorRicoh
	case containsFold(make_, "PANASONIC"):
		return vendorPanasonic
	case containsFold(make_, "MINOLTA"):
		return vendorMinolta
	case containsFold(make_, "NINTENDO"):
		return vendorNintendo
	case containsFold(make_, "SAMSUNG"):
		return vendorSamsung
	default:
		return vendorNone
	}
}

func containsFold(s, substr string) bool {
	return bytes.Contains(bytes.ToUpper([]byte(s)), []byte(substr))
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
