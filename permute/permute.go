// Package permute expands raw seed strings into fixed-order sets of
// syntactically distinct Ion encodings of the same logical value.
//
// The emission order is the alignment key between the text corpus, the
// binary corpus, and every implementation's digest stream. It must be
// reproduced bit-for-bit on every call; changing it invalidates every
// recorded digest stream.
package permute

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Validity classifies whether a seed's content is legal standalone Ion
// text. It is fixed at construction from the seed's prefix marker and never
// re-derived from the content.
type Validity int

const (
	ValidityUnknown Validity = iota
	KnownValid
	KnownInvalid
)

func (v Validity) String() string {
	switch v {
	case KnownValid:
		return "valid"
	case KnownInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

const (
	validPrefix   = "ion::"
	invalidPrefix = "invalid_ion::"
)

// Seed is one raw test string with its validity classification. Immutable
// once built.
type Seed struct {
	content  string
	validity Validity
}

// NewSeed strips a recognized validity marker from line and records the
// resulting classification.
func NewSeed(line string) Seed {
	switch {
	case strings.HasPrefix(line, validPrefix):
		return Seed{content: line[len(validPrefix):], validity: KnownValid}
	case strings.HasPrefix(line, invalidPrefix):
		return Seed{content: line[len(invalidPrefix):], validity: KnownInvalid}
	default:
		return Seed{content: line, validity: ValidityUnknown}
	}
}

// Content returns the seed text with any validity marker removed.
func (s Seed) Content() string { return s.content }

// Validity returns the classification recorded at construction.
func (s Seed) Validity() Validity { return s.validity }

// Symbol renders the seed as a single-quoted symbol.
func (s Seed) Symbol() string {
	return "'" + escape(s.content, '\'') + "'"
}

// String renders the seed as a double-quoted string.
func (s Seed) String() string {
	return `"` + escape(s.content, '"') + `"`
}

// LongString renders the seed as a triple-quoted long string.
func (s Seed) LongString() string {
	return "'''" + escape(s.content, '\'') + "'''"
}

// Clob renders the seed as a clob, using the quoted-string form as the byte
// source and byte-escaping everything outside ASCII.
func (s Seed) Clob() string {
	quoted := s.String()
	var b strings.Builder
	b.WriteString("{{")
	for i := 0; i < len(quoted); i++ {
		c := quoted[i]
		if c >= 0x80 {
			fmt.Fprintf(&b, `\x%x`, c)
		} else {
			b.WriteByte(c)
		}
	}
	b.WriteString("}}")
	return b.String()
}

// Blob renders the seed as a blob of its UTF-8 bytes.
func (s Seed) Blob() string {
	return "{{" + base64.StdEncoding.EncodeToString([]byte(s.content)) + "}}"
}

// escape backslash-escapes the backslash itself and the delimiter.
// Escaping is total: every seed is representable in every base encoding.
func escape(s string, delim byte) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == delim {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Variants returns every encoding of s in the fixed emission order:
//
//  1. the five base encodings (symbol, string, long string, clob, blob)
//  2. each base encoding under a symbol annotation
//  3. each base encoding as the sole field of an annotated struct
//  4. for seeds known to be valid Ion: the raw content itself, annotated,
//     struct-embedded, and struct-embedded with an inner annotation
//  5. a list and a sexp combining the base encodings (plus the raw content
//     when valid)
//  6. the string encoding under three stacked annotations
//
// Generation never fails.
func Variants(s Seed) []string {
	sym := s.Symbol()
	base := []string{sym, s.String(), s.LongString(), s.Clob(), s.Blob()}

	out := make([]string, 0, 22)
	out = append(out, base...)
	for _, enc := range base {
		out = append(out, sym+"::"+enc)
	}
	for _, enc := range base {
		out = append(out, sym+"::{"+sym+":"+enc+"}")
	}

	if s.validity == KnownValid {
		out = append(out,
			s.content,
			sym+"::"+s.content,
			sym+"::{"+sym+":"+s.content+"}",
			sym+"::{"+sym+":"+sym+"::"+s.content+"}",
		)
	}

	elems := base
	if s.validity == KnownValid {
		elems = append(append([]string(nil), base...), s.content)
	}
	out = append(out, sym+"::["+strings.Join(elems, ", ")+"]")
	out = append(out, sym+"::("+strings.Join(elems, " ")+")")

	out = append(out, sym+"::"+sym+"::"+sym+"::"+s.String())
	return out
}
