package corpus

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/amazon-ion/ion-go/ion"

	"xdao.co/ionhash/ioncodec"
	"xdao.co/ionhash/permute"
)

// Builder emits corpus files from the seed sources in BaseDir into OutDir.
type Builder struct {
	BaseDir string
	OutDir  string
}

// Build runs the pipelines selected by filter and returns the emitted
// files in pipeline-then-text/binary order. An empty filter runs every
// pipeline. Filter entries are seed source names (SourceHashTests,
// SourceNaughtyStrings); unknown names select nothing.
func (b Builder) Build(filter []string) ([]File, error) {
	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return nil, err
	}
	want := func(name string) bool {
		return len(filter) == 0 || slices.Contains(filter, name)
	}

	var files []File
	if want(SourceHashTests) {
		out, err := b.buildHashTests()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", SourceHashTests, err)
		}
		files = append(files, out...)
	}
	if want(SourceNaughtyStrings) {
		out, err := b.buildNaughtyStrings()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", SourceNaughtyStrings, err)
		}
		files = append(files, out...)
	}
	return files, nil
}

// emitter pairs the two output streams of one pipeline.
type emitter struct {
	text    File
	binary  File
	textF   *os.File
	binaryF *os.File
	textW   *bufio.Writer
	binaryW *bufio.Writer
}

func (b Builder) newEmitter(textName, binaryName string) (*emitter, error) {
	e := &emitter{
		text:   File{Path: filepath.Join(b.OutDir, textName), Kind: Text},
		binary: File{Path: filepath.Join(b.OutDir, binaryName), Kind: Binary},
	}
	var err error
	if e.textF, err = os.Create(e.text.Path); err != nil {
		return nil, err
	}
	if e.binaryF, err = os.Create(e.binary.Path); err != nil {
		e.textF.Close()
		return nil, err
	}
	e.textW = bufio.NewWriter(e.textF)
	e.binaryW = bufio.NewWriter(e.binaryF)
	return e, nil
}

func (e *emitter) writeText(line string) error {
	if _, err := e.textW.WriteString(line); err != nil {
		return err
	}
	return e.textW.WriteByte('\n')
}

func (e *emitter) writeBinary(data []byte) error {
	_, err := e.binaryW.Write(data)
	return err
}

func (e *emitter) finish() ([]File, error) {
	if err := e.textW.Flush(); err != nil {
		e.close()
		return nil, err
	}
	if err := e.binaryW.Flush(); err != nil {
		e.close()
		return nil, err
	}
	if err := e.close(); err != nil {
		return nil, err
	}
	return []File{e.text, e.binary}, nil
}

func (e *emitter) close() error {
	err := e.textF.Close()
	if berr := e.binaryF.Close(); err == nil {
		err = berr
	}
	return err
}

// buildHashTests is the structured pipeline: it walks the predefined test
// definitions and re-renders each inline value canonically into both
// streams. A definition's literal byte sequence is appended to the binary
// stream only; that one-sided entry is an accepted corpus asymmetry.
func (b Builder) buildHashTests() ([]File, error) {
	src, err := os.ReadFile(filepath.Join(b.BaseDir, SourceHashTests))
	if err != nil {
		return nil, err
	}
	e, err := b.newEmitter("ion_hash_tests.ion", "ion_hash_tests.10n")
	if err != nil {
		return nil, err
	}

	r := ion.NewReader(bytes.NewReader(src))
	for r.Next() {
		if r.Type() != ion.StructType || r.IsNull() {
			continue
		}
		if err := b.emitDefinition(r, e); err != nil {
			e.close()
			return nil, err
		}
	}
	if err := r.Err(); err != nil {
		e.close()
		return nil, err
	}
	return e.finish()
}

func (b Builder) emitDefinition(r ion.Reader, e *emitter) error {
	if err := r.StepIn(); err != nil {
		return err
	}
	for r.Next() {
		name, err := r.FieldName()
		if err != nil {
			return err
		}
		if name == nil || name.Text == nil {
			continue
		}
		switch *name.Text {
		case "ion":
			text, err := ioncodec.TextForValue(r)
			if err != nil {
				return err
			}
			if strings.Contains(text, sentinel) {
				continue
			}
			if err := e.writeText(text); err != nil {
				return err
			}
			bin, err := ioncodec.BinaryFromText(text)
			if err != nil {
				return err
			}
			if err := e.writeBinary(bin); err != nil {
				return err
			}
		case "10n":
			raw, err := bytesFromSequence(r)
			if err != nil {
				return err
			}
			if err := e.writeBinary(raw); err != nil {
				return err
			}
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	return r.StepOut()
}

// bytesFromSequence decodes a sexp (or list) of small ints into raw bytes.
func bytesFromSequence(r ion.Reader) ([]byte, error) {
	if t := r.Type(); t != ion.SexpType && t != ion.ListType {
		return nil, fmt.Errorf("literal byte sequence must be a sexp or list, got %v", t)
	}
	if err := r.StepIn(); err != nil {
		return nil, err
	}
	var out []byte
	for r.Next() {
		v, err := r.Int64Value()
		if err != nil {
			return nil, err
		}
		if v == nil || *v < 0 || *v > 0xff {
			return nil, fmt.Errorf("byte sequence element out of range")
		}
		out = append(out, byte(*v))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := r.StepOut(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildNaughtyStrings is the raw-string pipeline: every retained seed line
// expands through the permutation generator. The text stream carries each
// variant as Ion syntax; the binary stream carries the variant wrapped as
// an Ion string value, matching the reference driver.
func (b Builder) buildNaughtyStrings() ([]File, error) {
	f, err := os.Open(filepath.Join(b.BaseDir, SourceNaughtyStrings))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	e, err := b.newEmitter("big_list_of_naughty_strings.ion", "big_list_of_naughty_strings.10n")
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seed := permute.NewSeed(line)
		if seed.Validity() == permute.KnownInvalid {
			continue
		}
		for _, variant := range permute.Variants(seed) {
			if strings.Contains(variant, sentinel) {
				continue
			}
			if err := e.writeText(variant); err != nil {
				e.close()
				return nil, err
			}
			bin, err := ioncodec.BinaryString(variant)
			if err != nil {
				e.close()
				return nil, err
			}
			if err := e.writeBinary(bin); err != nil {
				e.close()
				return nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		e.close()
		return nil, err
	}
	return e.finish()
}
