package report

import (
	"io"
	"sort"

	"github.com/amazon-ion/ion-go/ion"
)

// EncodeText serializes the report as one Ion struct:
//
//	{
//	  files: {
//	    "<path>": {
//	      corpus_cid: "...",
//	      tests: [{result, digest | digests, value}, ...],
//	      file_summary: {digest_<result>: count, ..., test_count: n},
//	    },
//	    ...
//	  },
//	  summary: {digest_<result>: count, ..., test_count: n},
//	}
//
// Field order is deterministic: files in corpus order, summary keys and
// per-implementation digest keys sorted. Encoding the same report twice
// yields identical bytes.
func (rep *Report) EncodeText(out io.Writer) error {
	e := &encoder{w: ion.NewTextWriter(out)}

	e.beginStruct()
	e.fieldName("files")
	e.beginStruct()
	for _, fe := range rep.Files {
		e.fieldName(fe.Path)
		e.encodeFile(fe.Report)
	}
	e.endStruct()
	e.fieldName("summary")
	e.encodeSummary(rep.Summary)
	e.endStruct()

	if e.err != nil {
		return e.err
	}
	return e.w.Finish()
}

func (e *encoder) encodeFile(fr *FileReport) {
	e.beginStruct()
	e.fieldName("corpus_cid")
	e.writeString(fr.CorpusCID)
	e.fieldName("tests")
	if e.err == nil {
		e.err = e.w.BeginList()
	}
	for _, rec := range fr.Records {
		e.encodeRecord(rec)
	}
	if e.err == nil {
		e.err = e.w.EndList()
	}
	e.fieldName("file_summary")
	e.encodeSummary(fr.Summary)
	e.endStruct()
}

func (e *encoder) encodeRecord(rec Record) {
	e.beginStruct()
	e.fieldName("result")
	e.writeSymbol(string(rec.Result))
	switch rec.Result {
	case Consistent:
		e.fieldName("digest")
		e.writeString(rec.Digest)
	case Inconsistent:
		e.fieldName("digests")
		e.beginStruct()
		names := make([]string, 0, len(rec.Digests))
		for name := range rec.Digests {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			e.fieldName(name)
			e.writeString(rec.Digests[name])
		}
		e.endStruct()
	}
	e.fieldName("value")
	e.writeString(rec.Value)
	e.endStruct()
}

func (e *encoder) encodeSummary(s Summary) {
	results := make([]string, 0, len(s))
	for r := range s {
		results = append(results, string(r))
	}
	sort.Strings(results)

	e.beginStruct()
	for _, r := range results {
		e.fieldName("digest_" + r)
		e.writeInt(int64(s[Result(r)]))
	}
	e.fieldName("test_count")
	e.writeInt(int64(s.Total()))
	e.endStruct()
}

// encoder wraps an ion.Writer and sticks on the first error.
type encoder struct {
	w   ion.Writer
	err error
}

func (e *encoder) fieldName(name string) {
	if e.err != nil {
		return
	}
	e.err = e.w.FieldName(ion.SymbolToken{Text: &name, LocalSID: ion.SymbolIDUnknown})
}

func (e *encoder) writeSymbol(text string) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteSymbolFromString(text)
}

func (e *encoder) writeString(s string) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteString(s)
}

func (e *encoder) writeInt(v int64) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteInt(v)
}

func (e *encoder) beginStruct() {
	if e.err != nil {
		return
	}
	e.err = e.w.BeginStruct()
}

func (e *encoder) endStruct() {
	if e.err != nil {
		return
	}
	e.err = e.w.EndStruct()
}
