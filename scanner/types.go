// SPDX-License-Identifier: MIT

// Package scanner implements the container scanner: a per-format walk that
// locates metadata-bearing regions in a file and emits BlockRefs pointing at
// them, without copying any bytes (spec.md §4.3).
package scanner

import "github.com/openmeta-go/openmeta/store"

// Format is the container format a BlockRef was found in.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatJPEG
	FormatPNG
	FormatWebP
	FormatGIF
	FormatJP2
	FormatJXL
	FormatHEIF
	FormatAVIF
	FormatCR3
	FormatTIFF
)

// Kind is the kind of metadata payload a BlockRef points at.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindExif
	KindXmp
	KindIcc
	KindPhotoshopIrB
	KindCompressedMetadata
)

// Chunking describes how a multi-part block's payload is framed, so a caller
// (or the decompressor collaborator) knows how to reassemble it.
type Chunking uint8

const (
	ChunkingNone Chunking = iota
	ChunkingJpegApp2SeqTotal
	ChunkingPsIrB8Bim
	ChunkingGifSubBlocks
	ChunkingBmffExifTiffOffsetU32Be
)

// Compression names the payload compression, if any (handled by an
// injected decompressor collaborator, never by the scanner itself).
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionDeflate
	CompressionBrotli
)

// BlockRef is a file-relative reference to one metadata-bearing region.
// It carries no copied bytes: DataOffset/DataSize index into the caller's
// original byte slice.
type BlockRef struct {
	Format Format
	Kind   Kind

	DataOffset uint64
	DataSize   uint64

	Chunking    Chunking
	Compression Compression

	// ID is format-specific: a JPEG marker, a PNG/WebP/BMFF fourcc packed
	// into a uint32, or a TIFF tag id.
	ID uint32

	// AuxU32 carries per-chunking auxiliary data, e.g. the BMFF
	// Exif-TIFF-offset prefix or the inner fourcc of a JXL `brob` box.
	AuxU32 uint32

	PartIndex, PartCount uint32
}

// Result is the uniform (status, written, needed) triple every scanner
// entry point returns (spec.md §6.3).
type Result struct {
	Status  store.Status
	Written int
	Needed  int
}
