package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Algorithm != "md5" {
		t.Fatalf("Algorithm = %q, want md5", cfg.Algorithm)
	}
	if cfg.CorpusSource != CorpusSourceDefault {
		t.Fatalf("CorpusSource = %q", cfg.CorpusSource)
	}
	if cfg.ResultsFile != ResultsFileDefault {
		t.Fatalf("ResultsFile = %q", cfg.ResultsFile)
	}
	if len(cfg.Implementations) != 3 {
		t.Fatalf("Implementations = %v, want three defaults", cfg.Implementations)
	}
	for _, name := range []string{"ion-hash-java", "ion-hash-js", "ion-hash-python"} {
		build, ok := cfg.Builds[name]
		if !ok {
			t.Fatalf("no build recipe for %s", name)
		}
		if build.Executable == "" {
			t.Fatalf("build recipe for %s has no executable", name)
		}
	}
	if cfg.Builds["ion-hash-python"].Steps != nil {
		t.Fatal("ion-hash-python needs no build steps")
	}
	if cfg.Tools.Git() != "git" {
		t.Fatalf("Tools.Git = %q, want git", cfg.Tools.Git())
	}
}

func TestLoad_OverlayKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := `
algorithm: sha2-256
tools:
  git: /opt/git/bin/git
builds:
  ion-hash-dotnet:
    steps:
      - [dotnet, build]
    executable: tools/ion-hash
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Algorithm != "sha2-256" {
		t.Fatalf("Algorithm = %q, want overlay value", cfg.Algorithm)
	}
	if cfg.Tools.Git() != "/opt/git/bin/git" {
		t.Fatalf("Tools.Git = %q, want overlay value", cfg.Tools.Git())
	}

	// Overlay maps merge per-key: the new recipe lands next to the stock ones.
	if _, ok := cfg.Builds["ion-hash-dotnet"]; !ok {
		t.Fatal("overlay build recipe missing")
	}
	if _, ok := cfg.Builds["ion-hash-java"]; !ok {
		t.Fatal("stock build recipe dropped by overlay")
	}
	if diff := cmp.Diff(Default().Implementations, cfg.Implementations); diff != "" {
		t.Fatalf("Implementations changed without overlay (-want +got):\n%s", diff)
	}
	if cfg.ResultsFile != ResultsFileDefault {
		t.Fatalf("ResultsFile = %q, want default", cfg.ResultsFile)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("algorithm: [unclosed"), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
