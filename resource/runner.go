package resource

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"xdao.co/ionhash/corpus"
)

// Implementation is an installed hash implementation whose executable has
// been resolved.
type Implementation struct {
	res *Resource
	exe string
}

// NewImplementation resolves the resource's executable and wraps it for
// running. The resource must be installed first.
func NewImplementation(res *Resource) (*Implementation, error) {
	exe, err := res.ResolveExecutable()
	if err != nil {
		return nil, err
	}
	return &Implementation{res: res, exe: exe}, nil
}

// Name returns the implementation's descriptor name.
func (im *Implementation) Name() string { return im.res.Desc.Name }

// Run digests every corpus file with the implementation's executable,
// writing one digest file next to each corpus file. The executable is
// invoked as "<exe> <algorithm> <file>" and must print one hex digest line
// per top-level value, "[unable to digest ...]" for values it cannot hash.
//
// A non-zero exit is fatal for the run; stderr chatter alone is surfaced
// as a warning, some implementations log there even on success.
func (im *Implementation) Run(ctx context.Context, algorithm string, files []corpus.File, log *zap.Logger) error {
	for _, f := range files {
		digestPath := corpus.DigestPath(f, im.Name())
		out, err := os.Create(digestPath)
		if err != nil {
			return err
		}

		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, im.exe, algorithm, f.Path)
		cmd.Stdout = out
		cmd.Stderr = &stderr
		runErr := cmd.Run()
		if closeErr := out.Close(); runErr == nil {
			runErr = closeErr
		}
		if stderr.Len() > 0 {
			log.Warn("implementation wrote to stderr",
				zap.String("implementation", im.Name()),
				zap.String("file", f.Path),
				zap.String("stderr", stderr.String()))
		}
		if runErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%s on %s: %w", im.Name(), f.Path, runErr)
		}
		log.Debug("digested corpus file",
			zap.String("implementation", im.Name()),
			zap.String("file", f.Path),
			zap.String("digests", digestPath))
	}
	return nil
}

// RunAll runs every implementation over the corpus concurrently. Each
// implementation writes only its own digest files, so the runs are
// independent; the first failure cancels the rest.
func RunAll(ctx context.Context, impls []*Implementation, algorithm string, files []corpus.File, log *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, im := range impls {
		im := im
		g.Go(func() error {
			return im.Run(ctx, algorithm, files, log)
		})
	}
	return g.Wait()
}
