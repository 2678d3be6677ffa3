// SPDX-License-Identifier: MIT

package preview

import (
	"github.com/openmeta-go/openmeta/binread"
	"github.com/openmeta-go/openmeta/store"
)

// ExtractPreviewCandidate copies candidate's bytes out of fileBytes into
// out. It validates candidate.Size against both options.MaxOutputBytes and
// len(out), optionally re-checks the JPEG SOI marker, then performs a
// single bounds-checked copy — it never follows offsets beyond the file
// span (spec.md §4.8).
func ExtractPreviewCandidate(fileBytes []byte, candidate Candidate, out []byte, opts ExtractOptions) ExtractResult {
	if candidate.Size <= 0 {
		return ExtractResult{Status: store.Malformed}
	}
	if opts.MaxOutputBytes > 0 && candidate.Size > opts.MaxOutputBytes {
		return ExtractResult{Status: store.LimitExceeded, Needed: int(candidate.Size)}
	}
	if int64(len(out)) < candidate.Size {
		return ExtractResult{Status: store.OutputTruncated, Needed: int(candidate.Size)}
	}

	raw, ok := binread.Bytes(fileBytes, candidate.FileOffset, candidate.Size)
	if !ok {
		return ExtractResult{Status: store.Malformed}
	}
	if opts.RequireJpegSOI && !(len(raw) >= 2 && raw[0] == 0xff && raw[1] == 0xd8) {
		return ExtractResult{Status: store.Unsupported}
	}

	n := copy(out, raw)
	return ExtractResult{Status: store.Ok, Written: n, Needed: n}
}
