// Package corpus builds the paired text/binary corpus files every
// implementation under test digests.
//
// Corpus files are append-only while a Builder runs and strictly read-only
// afterwards. Values are emitted in a fixed, reproducible order; ordinal
// position is the only identity a test value has.
package corpus

// Kind distinguishes the two corpus encodings. It is carried alongside
// every path; nothing in the driver infers the encoding from a file
// suffix.
type Kind int

const (
	Text Kind = iota
	Binary
)

func (k Kind) String() string {
	if k == Binary {
		return "binary"
	}
	return "text"
}

// File is one emitted corpus stream.
type File struct {
	Path string
	Kind Kind
}

// DigestPath is the conventional location of one implementation's digest
// stream for a corpus file: one digest (or sentinel) line per value, in
// corpus order. The runner writes it; the classifier reads it.
func DigestPath(f File, implementation string) string {
	return f.Path + "." + implementation + ".hashes"
}

// Seed source names accepted by Builder.Build's filter.
const (
	SourceHashTests      = "ion_hash_tests.ion"
	SourceNaughtyStrings = "big_list_of_naughty_strings.txt"
)

// sentinel is the literal two-character spelling of symbol-id zero. A
// variant or rendered value containing it is dropped before it reaches
// either stream; implementations disagree on whether it is even readable.
const sentinel = "$0"
