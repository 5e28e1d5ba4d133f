package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/logger"
)

// Runner executes commands with os/exec.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner streams non-captured output to the process's stdout and stderr.
func NewRunner() *Runner {
	return &Runner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *Runner) Run(ctx context.Context, c domain.Command) (domain.CommandResult, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	switch {
	case c.Capture:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	default:
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
		if c.Interactive {
			cmd.Stdin = r.Stdin
		}
	}

	logger.L().Debug("command.start", "name", c.Name, "args", c.Args, "dir", c.Dir)
	err := cmd.Run()

	res := domain.CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		logger.L().Debug("command.exit", "name", c.Name, "code", res.ExitCode)
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, nil
	}

	return res, &domain.OpError{
		Op:   "shell.run",
		Kind: domain.KindExecution,
		Path: c.Name,
		Err:  err,
	}
}
