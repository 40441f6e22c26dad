// corpusdump prints the canonical text of every top-level value in a
// corpus file, one per line with its ordinal. Handy when a digest file
// disagreement needs to be traced back to the value at that position.
package main

import (
	"fmt"
	"os"

	"github.com/amazon-ion/ion-go/ion"

	"xdao.co/ionhash/ioncodec"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: corpusdump <corpus-file>")
		os.Exit(2)
	}
	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// NewReader sniffs the binary version marker, so text and binary
	// corpus files both work here.
	r := ion.NewReader(f)
	ordinal := 0
	for r.Next() {
		text, err := ioncodec.TextForValue(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "value %d: %v\n", ordinal, err)
			os.Exit(1)
		}
		fmt.Printf("%d\t%s\n", ordinal, text)
		ordinal++
	}
	if err := r.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}
}
