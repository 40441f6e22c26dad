package resource

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestResource_GuardsBeforeInstall(t *testing.T) {
	res := New(Descriptor{Name: "ion-hash-java"}, Build{})

	if res.State() != Uninstalled {
		t.Fatalf("State = %v, want %v", res.State(), Uninstalled)
	}
	if _, err := res.Identifier(); !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("Identifier error = %v, want ErrNotInstalled", err)
	}
	if _, err := res.BuildDir(); !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("BuildDir error = %v, want ErrNotInstalled", err)
	}
	if _, err := res.ResolveExecutable(); !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("ResolveExecutable error = %v, want ErrNotInstalled", err)
	}
}

func TestResolveExecutable_NoExecutableConfigured(t *testing.T) {
	res := New(Descriptor{Name: "ion-hash-test"}, Build{})
	res.state = Installed
	res.buildDir = t.TempDir()

	if _, err := res.ResolveExecutable(); !errors.Is(err, ErrNotExecutable) {
		t.Fatalf("ResolveExecutable error = %v, want ErrNotExecutable", err)
	}
}

func TestResolveExecutable_MissingFile(t *testing.T) {
	res := New(Descriptor{Name: "ion-hash-java"}, Build{Executable: "tools/cli/ion-hash"})
	res.state = Installed
	res.buildDir = t.TempDir()

	if _, err := res.ResolveExecutable(); err == nil {
		t.Fatal("expected error for missing executable file")
	}
}

func TestResolveExecutable_Idempotent(t *testing.T) {
	dir := t.TempDir()
	res := New(Descriptor{Name: "ion-hash-java"}, Build{Executable: "ion-hash"})
	res.state = Installed
	res.buildDir = dir
	writeExecutable(t, filepath.Join(dir, "ion-hash"), "#!/bin/sh\nexit 0\n")

	first, err := res.ResolveExecutable()
	if err != nil {
		t.Fatalf("ResolveExecutable: %v", err)
	}
	if res.State() != ExecutableResolved {
		t.Fatalf("State = %v, want %v", res.State(), ExecutableResolved)
	}
	second, err := res.ResolveExecutable()
	if err != nil {
		t.Fatalf("ResolveExecutable (second): %v", err)
	}
	if first != second {
		t.Fatalf("executable path changed: %q vs %q", first, second)
	}
}

func TestInstall_FromLocalRepository(t *testing.T) {
	requireGit(t)

	origin := newGitRepo(t, map[string]string{
		"README.md": "seed repo\n",
	})
	outputRoot := t.TempDir()
	log := zaptest.NewLogger(t)

	res := New(
		Descriptor{Name: "seed", Location: origin, Revision: defaultBranch(t, origin)},
		Build{Steps: [][]string{{"touch", "built.marker"}}},
	)
	if err := res.Install(context.Background(), outputRoot, DefaultTools(), log); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if res.State() != Installed {
		t.Fatalf("State = %v, want %v", res.State(), Installed)
	}

	id, err := res.Identifier()
	if err != nil {
		t.Fatalf("Identifier: %v", err)
	}
	if !strings.HasPrefix(id, "seed_") {
		t.Fatalf("Identifier = %q, want seed_<commit>", id)
	}
	dir, err := res.BuildDir()
	if err != nil {
		t.Fatalf("BuildDir: %v", err)
	}
	if dir != filepath.Join(outputRoot, "build", id) {
		t.Fatalf("BuildDir = %q, want build/%s under output root", dir, id)
	}
	if _, err := os.Stat(filepath.Join(dir, "built.marker")); err != nil {
		t.Fatalf("build step did not run: %v", err)
	}
	logData, err := os.ReadFile(filepath.Join(outputRoot, "build", "logs", id+".txt"))
	if err != nil {
		t.Fatalf("read build log: %v", err)
	}
	if !strings.Contains(string(logData), "clone") {
		t.Fatalf("build log missing clone invocation:\n%s", logData)
	}

	if err := res.Install(context.Background(), outputRoot, DefaultTools(), log); !errors.Is(err, ErrAlreadyInstalled) {
		t.Fatalf("second Install error = %v, want ErrAlreadyInstalled", err)
	}
}

func TestInstall_ReusesExistingBuildDir(t *testing.T) {
	requireGit(t)

	origin := newGitRepo(t, map[string]string{"data.ion": "1\n"})
	branch := defaultBranch(t, origin)
	outputRoot := t.TempDir()
	log := zaptest.NewLogger(t)

	first := New(Descriptor{Name: "seed", Location: origin, Revision: branch}, Build{})
	if err := first.Install(context.Background(), outputRoot, DefaultTools(), log); err != nil {
		t.Fatalf("first Install: %v", err)
	}
	dir, _ := first.BuildDir()
	marker := filepath.Join(dir, "reused.marker")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	second := New(Descriptor{Name: "seed", Location: origin, Revision: branch}, Build{})
	if err := second.Install(context.Background(), outputRoot, DefaultTools(), log); err != nil {
		t.Fatalf("second Install: %v", err)
	}
	secondDir, _ := second.BuildDir()
	if secondDir != dir {
		t.Fatalf("second install used %q, want reuse of %q", secondDir, dir)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("existing build directory was replaced: %v", err)
	}
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// newGitRepo creates a local repository with one commit and returns its path.
func newGitRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	gitIn(t, dir, "init")
	gitIn(t, dir, "config", "user.email", "test@example.invalid")
	gitIn(t, dir, "config", "user.name", "test")
	gitIn(t, dir, "add", ".")
	gitIn(t, dir, "commit", "-m", "seed")
	return dir
}

func defaultBranch(t *testing.T, repo string) string {
	t.Helper()
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = repo
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git rev-parse: %v", err)
	}
	return strings.TrimSpace(string(out))
}

func gitIn(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
}

func writeExecutable(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
