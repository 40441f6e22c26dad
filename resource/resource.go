package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// State tracks a resource's lifecycle. Transitions are guarded: asking for
// a build directory or an executable before the resource has reached the
// required state is a coded error, never a nil dereference.
type State int

const (
	Uninstalled State = iota
	Installed
	ExecutableResolved
)

func (s State) String() string {
	switch s {
	case Installed:
		return "installed"
	case ExecutableResolved:
		return "executable-resolved"
	default:
		return "uninstalled"
	}
}

var (
	ErrNotInstalled     = errors.New("resource is not installed")
	ErrAlreadyInstalled = errors.New("resource is already installed")
	ErrNotExecutable    = errors.New("resource has no executable")
)

// Build describes how to turn a cloned resource into a runnable tool.
type Build struct {
	// Steps are commands run in the build directory after a fresh clone.
	Steps [][]string `yaml:"steps"`
	// Executable is the tool path relative to the build directory; empty
	// for resources that are data only.
	Executable string `yaml:"executable"`
}

// Resource is one version-controlled input to a test run.
type Resource struct {
	Desc  Descriptor
	Build Build

	state      State
	identifier string
	buildDir   string
	executable string
}

// New returns an Uninstalled resource.
func New(desc Descriptor, build Build) *Resource {
	return &Resource{Desc: desc, Build: build}
}

// State returns the current lifecycle state.
func (r *Resource) State() State { return r.state }

// Identifier returns "<name>_<shortcommit>"; it exists only once the
// resource is installed.
func (r *Resource) Identifier() (string, error) {
	if r.state < Installed {
		return "", fmt.Errorf("%s: %w", r.Desc.Name, ErrNotInstalled)
	}
	return r.identifier, nil
}

// BuildDir returns the installed checkout directory.
func (r *Resource) BuildDir() (string, error) {
	if r.state < Installed {
		return "", fmt.Errorf("%s: %w", r.Desc.Name, ErrNotInstalled)
	}
	return r.buildDir, nil
}

// Install transitions Uninstalled -> Installed: clone the resource at its
// revision under outputRoot/build, reusing an existing build directory for
// the same commit. Clone, checkout, and build-step output is captured in
// build/logs/<identifier>.txt for fresh checkouts.
//
// The commit is not known before cloning, so the clone lands in a
// temporary directory first; if that commit was installed by an earlier
// run, the existing checkout (and its build) is used as-is.
func (r *Resource) Install(ctx context.Context, outputRoot string, tools Tools, log *zap.Logger) error {
	if r.state != Uninstalled {
		return fmt.Errorf("%s: %w", r.Desc.Name, ErrAlreadyInstalled)
	}
	log.Info("installing resource",
		zap.String("name", r.Desc.Name),
		zap.String("location", r.Desc.Location),
		zap.String("revision", r.Desc.Revision))

	tmpRoot := filepath.Join(outputRoot, "build", "tmp")
	if err := os.MkdirAll(tmpRoot, 0o755); err != nil {
		return err
	}
	defer os.RemoveAll(tmpRoot)
	tmpDir := filepath.Join(tmpRoot, r.Desc.Name)

	git := tools.Git()
	var buildLog bytes.Buffer
	if err := runLogged(ctx, &buildLog, "", git, "clone", "--recurse-submodules", r.Desc.Location, tmpDir); err != nil {
		return fmt.Errorf("clone %s: %w", r.Desc.Name, err)
	}
	if r.Desc.Revision != "" {
		if err := runLogged(ctx, &buildLog, tmpDir, git, "checkout", r.Desc.Revision); err != nil {
			return fmt.Errorf("checkout %s@%s: %w", r.Desc.Name, r.Desc.Revision, err)
		}
		if err := runLogged(ctx, &buildLog, tmpDir, git, "submodule", "update", "--init"); err != nil {
			return fmt.Errorf("submodules %s: %w", r.Desc.Name, err)
		}
	}
	commit, err := capture(ctx, tmpDir, git, "rev-parse", "--short", "HEAD")
	if err != nil {
		return fmt.Errorf("rev-parse %s: %w", r.Desc.Name, err)
	}

	r.identifier = r.Desc.Name + "_" + commit
	buildDir := filepath.Join(outputRoot, "build", r.identifier)
	logsDir := filepath.Join(outputRoot, "build", "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return err
	}

	if _, statErr := os.Stat(buildDir); statErr == nil {
		log.Info("build directory already present, using existing source",
			zap.String("dir", buildDir))
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	} else {
		if err := os.Rename(tmpDir, buildDir); err != nil {
			return err
		}
		for _, step := range r.Build.Steps {
			if err := runLogged(ctx, &buildLog, buildDir, step...); err != nil {
				// Keep the log around for a failed build; it is the only
				// record of what went wrong.
				_ = os.WriteFile(filepath.Join(logsDir, r.identifier+".txt"), buildLog.Bytes(), 0o644)
				return fmt.Errorf("build step %q for %s: %w", strings.Join(step, " "), r.Desc.Name, err)
			}
		}
		if err := os.WriteFile(filepath.Join(logsDir, r.identifier+".txt"), buildLog.Bytes(), 0o644); err != nil {
			return err
		}
	}

	r.buildDir = buildDir
	r.state = Installed
	log.Info("installed resource", zap.String("identifier", r.identifier))
	return nil
}

// ResolveExecutable transitions Installed -> ExecutableResolved and
// returns the absolute executable path. Idempotent once resolved.
func (r *Resource) ResolveExecutable() (string, error) {
	switch r.state {
	case Uninstalled:
		return "", fmt.Errorf("%s: %w", r.Desc.Name, ErrNotInstalled)
	case ExecutableResolved:
		return r.executable, nil
	}
	if r.Build.Executable == "" {
		return "", fmt.Errorf("%s: %w", r.Desc.Name, ErrNotExecutable)
	}
	path := filepath.Join(r.buildDir, r.Build.Executable)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("executable for %s: %w", r.Desc.Name, err)
	}
	r.executable = path
	r.state = ExecutableResolved
	return path, nil
}

// runLogged executes one command, appending the invocation and its
// combined output to log.
func runLogged(ctx context.Context, log *bytes.Buffer, dir string, argv ...string) error {
	fmt.Fprintf(log, "$ %s\n", strings.Join(argv, " "))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = log
	cmd.Stderr = log
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(log, "error: %v\n", err)
		return err
	}
	return nil
}

// capture executes one command and returns its trimmed stdout.
func capture(ctx context.Context, dir string, argv ...string) (string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
