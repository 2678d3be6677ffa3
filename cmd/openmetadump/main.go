// SPDX-License-Identifier: MIT

// Command openmetadump reads a file and prints the blocks and entries
// SimpleMetaRead found in it. It exists to exercise the facade end to end,
// not as a general-purpose metadata tool.
package main

import (
	"fmt"
	"os"

	"github.com/openmeta-go/openmeta"
	"github.com/openmeta-go/openmeta/preview"
	"github.com/openmeta-go/openmeta/scanner"
	"github.com/openmeta-go/openmeta/store"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file>\n", os.Args[0])
		os.Exit(2)
	}

	if err := dump(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, "openmetadump:", err)
		os.Exit(1)
	}
}

func dump(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	st := store.New()
	blocks := make([]scanner.BlockRef, 64)
	previews := make([]preview.Candidate, 16)

	res := openmeta.SimpleMetaRead(b, st, blocks, previews, openmeta.DefaultExifOptions(), openmeta.DefaultPayloadOptions())

	fmt.Printf("status=%s blocks=%d/%d previews=%d/%d\n",
		res.Status, res.BlocksWritten, res.BlocksNeeded, res.PreviewsWritten, res.PreviewsNeeded)

	for i := 0; i < st.NumBlocks(); i++ {
		blk, ok := st.Block(store.BlockID(i))
		if !ok {
			continue
		}
		fmt.Printf("  block %q (parent=%v)\n", st.Arena().Span(blk.Name), blk.Parent)
	}

	fmt.Printf("entries=%d\n", len(st.Entries()))

	return nil
}
