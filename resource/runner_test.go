package resource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"xdao.co/ionhash/corpus"
)

// fakeImplementation builds an installed resource whose executable is the
// given shell script.
func fakeImplementation(t *testing.T, name, script string) *Implementation {
	t.Helper()
	dir := t.TempDir()
	writeExecutable(t, filepath.Join(dir, "ion-hash"), script)

	res := New(Descriptor{Name: name}, Build{Executable: "ion-hash"})
	res.state = Installed
	res.buildDir = dir

	im, err := NewImplementation(res)
	if err != nil {
		t.Fatalf("NewImplementation: %v", err)
	}
	return im
}

func writeCorpusFile(t *testing.T, name, content string) corpus.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write corpus file: %v", err)
	}
	return corpus.File{Path: path, Kind: corpus.Text}
}

func TestImplementationRun_WritesDigestFile(t *testing.T) {
	// Echoes its arguments so the digest file records the contract:
	// algorithm first, corpus path second.
	im := fakeImplementation(t, "ion-hash-fake", "#!/bin/sh\necho \"$1\"\necho \"$2\"\n")
	f := writeCorpusFile(t, "corpus.ion", "1\n2\n")
	log := zaptest.NewLogger(t)

	if err := im.Run(context.Background(), "md5", []corpus.File{f}, log); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(corpus.DigestPath(f, "ion-hash-fake"))
	if err != nil {
		t.Fatalf("read digest file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "md5" || lines[1] != f.Path {
		t.Fatalf("unexpected digest file contents: %q", data)
	}
}

func TestImplementationRun_NonZeroExitIsFatal(t *testing.T) {
	im := fakeImplementation(t, "ion-hash-broken", "#!/bin/sh\nexit 3\n")
	f := writeCorpusFile(t, "corpus.ion", "1\n")
	log := zaptest.NewLogger(t)

	if err := im.Run(context.Background(), "md5", []corpus.File{f}, log); err == nil {
		t.Fatal("expected error for non-zero exit")
	}
}

func TestImplementationRun_StderrAloneNotFatal(t *testing.T) {
	im := fakeImplementation(t, "ion-hash-chatty", "#!/bin/sh\necho deadbeef\necho warning >&2\nexit 0\n")
	f := writeCorpusFile(t, "corpus.ion", "1\n")
	log := zaptest.NewLogger(t)

	if err := im.Run(context.Background(), "md5", []corpus.File{f}, log); err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := os.ReadFile(corpus.DigestPath(f, "ion-hash-chatty"))
	if err != nil {
		t.Fatalf("read digest file: %v", err)
	}
	if strings.TrimSpace(string(data)) != "deadbeef" {
		t.Fatalf("digest file = %q, want stdout only", data)
	}
}

func TestRunAll_EveryImplementationDigestsEveryFile(t *testing.T) {
	a := fakeImplementation(t, "impl-a", "#!/bin/sh\necho aa\n")
	b := fakeImplementation(t, "impl-b", "#!/bin/sh\necho bb\n")
	files := []corpus.File{
		writeCorpusFile(t, "one.ion", "1\n"),
		writeCorpusFile(t, "two.ion", "2\n"),
	}
	log := zaptest.NewLogger(t)

	if err := RunAll(context.Background(), []*Implementation{a, b}, "md5", files, log); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	for _, f := range files {
		for _, impl := range []string{"impl-a", "impl-b"} {
			if _, err := os.Stat(corpus.DigestPath(f, impl)); err != nil {
				t.Errorf("missing digest file for %s on %s: %v", impl, f.Path, err)
			}
		}
	}
}

func TestRunAll_FailurePropagates(t *testing.T) {
	ok := fakeImplementation(t, "impl-ok", "#!/bin/sh\necho aa\n")
	bad := fakeImplementation(t, "impl-bad", "#!/bin/sh\nexit 1\n")
	files := []corpus.File{writeCorpusFile(t, "one.ion", "1\n")}
	log := zaptest.NewLogger(t)

	if err := RunAll(context.Background(), []*Implementation{ok, bad}, "md5", files, log); err == nil {
		t.Fatal("expected error when one implementation fails")
	}
}
