package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amazon-ion/ion-go/ion"

	"xdao.co/ionhash/cidutil"
	"xdao.co/ionhash/corpus"
	"xdao.co/ionhash/ioncodec"
)

// Generate classifies every corpus file against each named implementation's
// digest stream and assembles the nested report. Implementations are
// compared in the order given; the order also fixes the serialized report.
func Generate(files []corpus.File, implementations []string) (*Report, error) {
	rep := &Report{Summary: Summary{}}
	for _, f := range files {
		fr, err := classifyFile(f, implementations)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		rep.Files = append(rep.Files, FileEntry{Path: f.Path, Report: fr})
		rep.Summary.add(fr.Summary)
	}
	return rep, nil
}

func classifyFile(file corpus.File, implementations []string) (*FileReport, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}
	cid, err := cidutil.CIDForFile(file.Path)
	if err != nil {
		return nil, err
	}

	var r ion.Reader
	switch file.Kind {
	case corpus.Binary:
		r = ion.NewReader(bytes.NewReader(data))
	default:
		r = ion.NewReaderString(string(data))
	}

	streams, closeAll, err := openDigestStreams(file, implementations)
	if err != nil {
		return nil, err
	}
	defer closeAll()

	fr := &FileReport{CorpusCID: cid, Summary: Summary{}}
	for r.Next() {
		value, err := ioncodec.TextForValue(r)
		if err != nil {
			return nil, fmt.Errorf("re-decode corpus value %d: %w", len(fr.Records), err)
		}
		rec, err := compareValue(value, implementations, streams)
		if err != nil {
			return nil, err
		}
		fr.Records = append(fr.Records, rec)
		fr.Summary[rec.Result]++
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("re-decode corpus: %w", err)
	}

	// Lockstep postcondition: every digest stream must be exhausted
	// exactly when the corpus is.
	for _, name := range implementations {
		sc := streams[name]
		if sc.Scan() {
			return nil, fmt.Errorf("%s: %w", name, ErrDigestFileLong)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return fr, nil
}

// compareValue reads one digest line from every implementation and
// classifies the agreement. The unable-to-digest sentinel is an ordinary,
// distinguishable value here, not an error.
func compareValue(value string, implementations []string, streams map[string]*bufio.Scanner) (Record, error) {
	digests := make(map[string]string, len(implementations))
	for _, name := range implementations {
		sc := streams[name]
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return Record{}, fmt.Errorf("%s: %w", name, err)
			}
			return Record{}, fmt.Errorf("%s: %w", name, ErrDigestFileShort)
		}
		line := strings.TrimRight(sc.Text(), " \t\r\n")
		if strings.HasPrefix(line, "[unable to digest") {
			line = UnableToDigest
		}
		digests[name] = line
	}

	distinct := make(map[string]struct{}, len(digests))
	for _, d := range digests {
		distinct[d] = struct{}{}
	}

	rec := Record{Value: value}
	switch len(distinct) {
	case 0:
		rec.Result = NoComparison
	case 1:
		rec.Result = Consistent
		for d := range distinct {
			rec.Digest = d
		}
	default:
		rec.Result = Inconsistent
		rec.Digests = digests
	}
	return rec, nil
}

func openDigestStreams(file corpus.File, implementations []string) (map[string]*bufio.Scanner, func(), error) {
	streams := make(map[string]*bufio.Scanner, len(implementations))
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}
	for _, name := range implementations {
		f, err := os.Open(corpus.DigestPath(file, name))
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, f)
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		streams[name] = sc
	}
	return streams, closeAll, nil
}
