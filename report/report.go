// Package report classifies cross-implementation digest agreement and
// assembles the nested consistency report.
//
// The classifier re-reads a corpus in lockstep with every implementation's
// digest stream: ordinal position is the only key that ties a corpus value
// to its digests. Reports are built once and never mutated after encoding.
package report

import "errors"

// Result classifies one corpus value's cross-implementation agreement.
type Result string

const (
	// NoComparison: no implementations were present for this value.
	NoComparison Result = "no_comparison"
	// Consistent: every implementation reported the same digest.
	Consistent Result = "consistent"
	// Inconsistent: at least two implementations disagreed.
	Inconsistent Result = "inconsistent"
)

// UnableToDigest is the normalized sentinel an implementation reports when
// it cannot hash a value. It is a first-class digest value: it
// participates in the distinct-value count like any other digest.
const UnableToDigest = "[unable to digest]"

// Alignment violations between a corpus and a digest stream. Both are
// fatal; the classifier never pads, truncates, or guesses a recovery.
var (
	ErrDigestFileShort = errors.New("digest file has fewer lines than corpus values")
	ErrDigestFileLong  = errors.New("digest file has more lines than corpus values")
)

// Record is the classified outcome for one corpus value.
type Record struct {
	Result Result
	// Digest holds the single shared digest when Result is Consistent.
	Digest string
	// Digests holds the full implementation mapping when Result is
	// Inconsistent.
	Digests map[string]string
	// Value is the canonical text rendering of the corpus value.
	Value string
}

// Summary counts records per classification.
type Summary map[Result]int

// Total returns the number of classified values.
func (s Summary) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

func (s Summary) add(other Summary) {
	for r, c := range other {
		s[r] += c
	}
}

// FileReport is the classification of one corpus file.
type FileReport struct {
	// CorpusCID pins the exact corpus bytes every implementation digested.
	CorpusCID string
	Records   []Record
	Summary   Summary
}

// FileEntry pairs a corpus path with its report, preserving corpus order.
type FileEntry struct {
	Path   string
	Report *FileReport
}

// Report is the full nested consistency report for one driver run.
type Report struct {
	Files   []FileEntry
	Summary Summary
}
