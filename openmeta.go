// SPDX-License-Identifier: MIT

// Package openmeta extracts structured metadata — EXIF/TIFF, GeoTIFF, XMP
// and ICC blocks, MakerNote subdirectories, and embedded preview/thumbnail
// candidates — from image and raw-camera files, without decoding pixel
// data. SimpleMetaRead is the one-call facade; the scanner, tiffwalk,
// makernote, and preview packages are usable standalone for callers that
// want finer control.
package openmeta

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/makernote"
	"github.com/openmeta-go/openmeta/preview"
	"github.com/openmeta-go/openmeta/scanner"
	"github.com/openmeta-go/openmeta/store"
	"github.com/openmeta-go/openmeta/tiffwalk"
)

// XMPDecoder is the optional collaborator SimpleMetaRead hands raw XMP
// blocks to; OpenMeta never parses XMP itself (spec.md §6.2).
type XMPDecoder func(raw []byte, st *store.Store) store.Status

// PayloadDecompressor is the optional collaborator invoked for blocks whose
// Compression is Deflate or Brotli (spec.md §6.2).
type PayloadDecompressor func(compressed []byte, format scanner.Compression) ([]byte, bool)

// ExifOptions configures the EXIF/TIFF/MakerNote/GeoTIFF decode phase.
type ExifOptions struct {
	Limits        tiffwalk.Limits
	Tokens        tiffwalk.TokenPrefixes
	DecodeMakerNote bool
	DecodeGeoTiff   bool
}

// DefaultExifOptions enables MakerNote and GeoTIFF decoding with generous
// limits — the facade's whole reason for existing is to not make callers
// assemble this themselves.
func DefaultExifOptions() ExifOptions {
	return ExifOptions{
		Limits:          tiffwalk.DefaultLimits(),
		Tokens:          tiffwalk.DefaultTokenPrefixes(),
		DecodeMakerNote: true,
		DecodeGeoTiff:   true,
	}
}

func (o ExifOptions) toTiffwalk() tiffwalk.Options {
	return tiffwalk.Options{
		Limits:          o.Limits,
		Tokens:          o.Tokens,
		DecodeMakerNote: o.DecodeMakerNote,
		MakerNote:       makernote.Dispatch,
		DecodeGeoTiff:   o.DecodeGeoTiff,
	}
}

// PayloadOptions configures XMP decoding, payload decompression, and
// preview candidate scanning.
type PayloadOptions struct {
	XMP              XMPDecoder
	Decompress       PayloadDecompressor
	ScanPreviews     bool
	PreviewScan      preview.ScanOptions
}

// DefaultPayloadOptions scans for previews but decodes neither XMP nor
// compressed payloads (both require an injected collaborator).
func DefaultPayloadOptions() PayloadOptions {
	return PayloadOptions{ScanPreviews: true, PreviewScan: preview.DefaultScanOptions()}
}

// SimpleMetaResult is SimpleMetaRead's summary across every phase it ran.
type SimpleMetaResult struct {
	Status          store.Status
	BlocksWritten   int
	BlocksNeeded    int
	PreviewsWritten int
	PreviewsNeeded  int
}

// SimpleMetaRead is the one-call facade (spec.md §6.3 simple_meta_read):
// scan the container for metadata-bearing blocks, decode every EXIF/TIFF
// block (with MakerNote and GeoTIFF sub-decoding), hand XMP blocks to the
// caller's injected XMP collaborator (decompressed first through the
// injected decompressor when compressed), and optionally scan for embedded
// preview candidates — all into one Store. ICC and other block kinds are
// not handed to any collaborator.
func SimpleMetaRead(fileBytes []byte, st *store.Store, blocksScratch []scanner.BlockRef, previewsOut []preview.Candidate, exifOpts ExifOptions, payloadOpts PayloadOptions) SimpleMetaResult {
	scanRes := scanner.ScanAuto(fileBytes, blocksScratch)
	status := scanRes.Status

	opts := exifOpts.toTiffwalk()
	blocks := blocksScratch[:min(scanRes.Written, len(blocksScratch))]
	for _, blk := range blocks {
		switch blk.Kind {
		case scanner.KindExif:
			tiffBytes, ok := binread.Bytes(fileBytes, int64(blk.DataOffset), int64(blk.DataSize))
			if !ok {
				status = store.Merge(status, store.Malformed)
				continue
			}
			cfg, firstIFDOff, ok := parseTiffHeader(tiffBytes)
			if !ok {
				status = store.Merge(status, store.Malformed)
				continue
			}
			res := tiffwalk.DecodeExifTiff(tiffBytes, cfg, firstIFDOff, st, opts)
			status = store.Merge(status, res.Status)

		case scanner.KindXmp:
			if payloadOpts.XMP == nil {
				continue
			}
			raw, ok := binread.Bytes(fileBytes, int64(blk.DataOffset), int64(blk.DataSize))
			if !ok {
				status = store.Merge(status, store.Malformed)
				continue
			}
			if blk.Compression != scanner.CompressionNone {
				if payloadOpts.Decompress == nil {
					status = store.Merge(status, store.Unsupported)
					continue
				}
				decompressed, ok := payloadOpts.Decompress(raw, blk.Compression)
				if !ok {
					status = store.Merge(status, store.Malformed)
					continue
				}
				raw = decompressed
			}
			status = store.Merge(status, payloadOpts.XMP(raw, st))
		}
	}

	result := SimpleMetaResult{Status: status, BlocksWritten: scanRes.Written, BlocksNeeded: scanRes.Needed}

	if payloadOpts.ScanPreviews {
		pr := preview.ScanPreviewCandidates(fileBytes, blocksScratch, previewsOut, payloadOpts.PreviewScan)
		result.PreviewsWritten = pr.Written
		result.PreviewsNeeded = pr.Needed
		result.Status = store.Merge(result.Status, pr.Status)
	}

	return result
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func parseTiffHeader(b []byte) (binread.TiffConfig, int64, bool) {
	bom, ok := binread.Bytes(b, 0, 2)
	if !ok {
		return binread.TiffConfig{}, 0, false
	}
	le := bom[0] == 'I' && bom[1] == 'I'
	magic, ok := binread.U16(b, 2, le)
	if !ok {
		return binread.TiffConfig{}, 0, false
	}
	bigTIFF := magic == 43
	var ifd0Off int64
	if bigTIFF {
		v, ok := binread.U64(b, 8, le)
		if !ok {
			return binread.TiffConfig{}, 0, false
		}
		ifd0Off = int64(v)
	} else {
		v, ok := binread.U32(b, 4, le)
		if !ok {
			return binread.TiffConfig{}, 0, false
		}
		ifd0Off = int64(v)
	}
	return binread.TiffConfig{LE: le, BigTIFF: bigTIFF}, ifd0Off, true
}
