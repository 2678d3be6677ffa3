// SPDX-License-Identifier: MIT

// Package preview implements the preview/thumbnail candidate scanner and
// extractor (spec.md §4.8): a tag-filtered IFD walk that locates embedded
// JPEG previews without decoding or validating their pixel data.
package preview

import "github.com/openmeta-go/openmeta/store"

// Kind is the shape of preview a Candidate was found as.
type Kind uint8

const (
	// KindExifJpegInterchange is a JPEGInterchangeFormat/Length pair found
	// in the same IFD (the classic EXIF thumbnail convention).
	KindExifJpegInterchange Kind = iota
	// KindJpgFromRaw is a JpgFromRaw or JpgFromRaw2 byte blob (RAW-format
	// embedded full-size preview).
	KindJpgFromRaw
)

// Candidate is one located preview, not yet copied out of the file.
type Candidate struct {
	Kind       Kind
	Format     uint8 // mirrors scanner.Format without importing it, to keep preview decoupled
	BlockIndex int
	TagID      uint16

	FileOffset int64
	Size       int64

	HasJpegSOI bool
}

// ScanLimits bounds the IFD walk a preview scan performs.
type ScanLimits struct {
	MaxIFDs          int
	MaxTotalEntries  int
	MaxPreviewBytes  int64
}

// DefaultScanLimits mirrors tiffwalk.DefaultLimits' generosity.
func DefaultScanLimits() ScanLimits {
	return ScanLimits{MaxIFDs: 256, MaxTotalEntries: 65536, MaxPreviewBytes: 64 << 20}
}

// ScanOptions configures ScanPreviewCandidates.
type ScanOptions struct {
	Limits          ScanLimits
	RequireJpegSOI bool
}

// DefaultScanOptions is DefaultScanLimits with RequireJpegSOI off.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{Limits: DefaultScanLimits()}
}

// ScanResult is ScanPreviewCandidates' (status, written, needed) triple.
type ScanResult struct {
	Status  store.Status
	Written int
	Needed  int
}

// ExtractOptions configures ExtractPreviewCandidate.
type ExtractOptions struct {
	MaxOutputBytes int64
	RequireJpegSOI bool
}

// ExtractResult is ExtractPreviewCandidate's (status, written, needed) triple.
type ExtractResult struct {
	Status  store.Status
	Written int
	Needed  int
}
