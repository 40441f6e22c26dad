package resource

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
)

// Tools maps tool names to executable paths. The registry travels as an
// explicit value through installer and probe calls; there is no
// process-wide mutable state to override.
type Tools map[string]string

// DefaultTools returns the tools the driver requires on PATH.
func DefaultTools() Tools {
	return Tools{"git": "git"}
}

// Git returns the configured git executable path.
func (t Tools) Git() string {
	if path, ok := t["git"]; ok && path != "" {
		return path
	}
	return "git"
}

// Check probes every registered tool and reports the first one that is
// not executable. It runs before any corpus or install work; a missing
// tool is a fatal configuration error, not something to discover halfway
// through a run.
//
// Every tool currently registered accepts --help and exits zero; if one
// is added that does not, the probe command needs to become per-tool.
func (t Tools) Check(ctx context.Context) error {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := exec.CommandContext(ctx, t[name], "--help")
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s not found at %q (override its path in configuration): %w", name, t[name], err)
		}
	}
	return nil
}
