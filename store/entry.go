// SPDX-License-Identifier: MIT

package store

// BlockID is a dense index into the store's block table.
type BlockID uint32

// InvalidBlockID is returned by AddBlock only on arena exhaustion, and used
// as Entry.Origin.Block for synthetic entries that have no owning block
// (spec.md §3.2 invariant 2).
const InvalidBlockID BlockID = 0xFFFFFFFF

// EntryID is a dense index into the store's entry table.
type EntryID uint32

// BlockInfo is the provenance record for a group of entries emitted
// together: one EXIF IFD, one MakerNote subdirectory, or one derived table
// (spec.md §3.1).
type BlockInfo struct {
	// Name is a human-readable path, e.g. "IFD0/ExifIFDP" or
	// "mk_canon_camerasettings_0".
	Name ByteSpan
	// Parent is the enclosing block, or InvalidBlockID for a top-level IFD.
	Parent BlockID
}

// EntryFlags is a bitset carried on each Entry.
type EntryFlags uint8

const (
	// FlagDerived marks an entry synthesised from the bytes of an existing
	// wire entry rather than parsed directly off the wire.
	FlagDerived EntryFlags = 1 << iota
	// FlagTruncated marks an entry whose value bytes exceeded
	// ExifDecodeLimits.MaxValueBytes.
	FlagTruncated
	// FlagUnreadable marks an entry whose value window was clipped by the
	// input bounds.
	FlagUnreadable
	// FlagDeleted marks an entry collapsed by Store.Finalize's dedupe pass;
	// iteration skips it but it is never physically removed (spec.md §3.2
	// invariant 6).
	FlagDeleted
)

// Has reports whether f has all bits of other set.
func (f EntryFlags) Has(other EntryFlags) bool { return f&other == other }

// Origin records where in the wire format an Entry came from.
type Origin struct {
	Block       BlockID
	OrderInBlock uint32
	Wire        WireType
	WireCount   uint32
}

// Entry is (key, value, origin, flags) — the store's unit of decoded data.
type Entry struct {
	Key    MetaKey
	Value  MetaValue
	Origin Origin
	Flags  EntryFlags
}
