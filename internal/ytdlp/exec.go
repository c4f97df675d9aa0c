package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"
)

const waitDelay = 5 * time.Second

// Runner executes a command, hands its merged stdout/stderr to consume and
// returns the process exit code. A non-nil error means the process could not
// be run to completion (not found, failed to start, cancelled); a non-zero
// exit code on its own is not an error.
type Runner interface {
	Run(ctx context.Context, cmd Command, consume func(io.Reader)) (int, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// Run starts the command and blocks until it exits and its output is drained.
func (ExecRunner) Run(ctx context.Context, cmd Command, consume func(io.Reader)) (int, error) {
	c := exec.CommandContext(ctx, cmd.Executable, cmd.Args...)
	// Post-processors spawned by the downloader can outlive it and hold the
	// pipe open.
	c.WaitDelay = waitDelay

	reader, writer := io.Pipe()
	c.Stdout = writer
	c.Stderr = writer

	if err := c.Start(); err != nil {
		writer.Close()
		return -1, fmt.Errorf("starting %s: %w", cmd.Executable, err)
	}

	var g errgroup.Group
	g.Go(func() error {
		defer writer.Close()
		return c.Wait()
	})

	consume(reader)
	// Keep the child from blocking on a full pipe if consume stopped early.
	io.Copy(io.Discard, reader)

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("running %s: %w", cmd.Executable, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("running %s: %w", cmd.Executable, err)
	}
	return 0, nil
}
