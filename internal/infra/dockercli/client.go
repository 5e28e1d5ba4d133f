package dockercli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// Client drives the docker CLI through a CommandRunner.
type Client struct {
	runner ports.CommandRunner
	binary string
	dir    string
}

var _ ports.ContainerEngine = (*Client)(nil)

type Option func(*Client)

// WithBinary overrides the docker executable.
func WithBinary(b string) Option {
	return func(c *Client) { c.binary = b }
}

// NewClient runs docker from dir, the project root.
func NewClient(runner ports.CommandRunner, dir string, opts ...Option) *Client {
	c := &Client{runner: runner, binary: "docker", dir: dir}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Build(ctx context.Context, image domain.ImageRef, contextDir string, noCache bool) (domain.CommandResult, error) {
	args := []string{"build", "-t", image.String()}
	if noCache {
		args = append(args, "--no-cache")
	}
	if contextDir == "" {
		contextDir = "."
	}
	args = append(args, contextDir)
	return c.run(ctx, args, false, false)
}

func (c *Client) Run(ctx context.Context, r domain.ContainerRun) (domain.CommandResult, error) {
	return c.run(ctx, RunArgs(r), r.Interactive, r.Detach || r.Capture)
}

// RunArgs renders a ContainerRun as `docker run` arguments.
func RunArgs(r domain.ContainerRun) []string {
	args := []string{"run"}
	if r.Detach {
		args = append(args, "-d")
	}
	if r.Remove {
		args = append(args, "--rm")
	}
	if r.Name != "" {
		args = append(args, "--name", r.Name)
	}
	if r.Runtime != "" {
		args = append(args, "--runtime="+r.Runtime)
	}
	if r.GPU {
		args = append(args, "--gpus", "all")
	}
	if r.Interactive {
		args = append(args, "-it")
	}
	for _, m := range r.Mounts {
		args = append(args, "-v", m.Host+":"+m.Container)
	}
	for _, p := range r.Ports {
		args = append(args, "-p", p)
	}
	for _, e := range r.Env {
		args = append(args, "-e", e)
	}
	args = append(args, r.ExtraArgs...)
	args = append(args, r.Image.String())
	return append(args, r.Command...)
}

func (c *Client) ImageExists(ctx context.Context, image domain.ImageRef) (bool, error) {
	res, err := c.run(ctx, []string{"images", "-q", image.String()}, false, true)
	if err != nil {
		return false, err
	}
	if !res.OK() {
		return false, execError("dockercli.images", res)
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

func (c *Client) ListContainers(ctx context.Context, ancestor string, all bool) ([]string, error) {
	args := []string{"ps", "-q"}
	if all {
		args = append(args, "-a")
	}
	args = append(args, "--filter", "ancestor="+ancestor)

	res, err := c.run(ctx, args, false, true)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, execError("dockercli.ps", res)
	}
	return strings.Fields(res.Stdout), nil
}

func (c *Client) Stop(ctx context.Context, containers ...string) (domain.CommandResult, error) {
	return c.run(ctx, append([]string{"stop"}, containers...), false, true)
}

func (c *Client) Remove(ctx context.Context, containers ...string) (domain.CommandResult, error) {
	return c.run(ctx, append([]string{"rm"}, containers...), false, true)
}

func (c *Client) RemoveImages(ctx context.Context, images ...domain.ImageRef) (domain.CommandResult, error) {
	args := []string{"rmi"}
	for _, im := range images {
		args = append(args, im.String())
	}
	return c.run(ctx, args, false, true)
}

func (c *Client) PruneImages(ctx context.Context) (domain.CommandResult, error) {
	return c.run(ctx, []string{"image", "prune", "-f"}, false, true)
}

func (c *Client) run(ctx context.Context, args []string, interactive, capture bool) (domain.CommandResult, error) {
	return c.runner.Run(ctx, domain.Command{
		Name:        c.binary,
		Args:        args,
		Dir:         c.dir,
		Interactive: interactive,
		Capture:     capture,
	})
}

func execError(op string, res domain.CommandResult) error {
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = "docker exited with a non-zero status"
	}
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindExecution,
		Err:  fmt.Errorf("exit %d: %s: %w", res.ExitCode, msg, domain.ErrExecution),
	}
}
