package usecase

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// ContainerWorkdir is where project directories are mounted inside images.
const ContainerWorkdir = "/app"

// DockerImages are the validated image references a project uses.
type DockerImages struct {
	Main     domain.ImageRef
	Dev      domain.ImageRef
	GPUProbe domain.ImageRef
}

// DockerOps manages the project's container images and containers.
type DockerOps struct {
	logged
	engine   ports.ContainerEngine
	root     string
	cfg      domain.DockerConfig
	images   DockerImages
	resolver *domain.VarResolver
}

func NewDockerOps(engine ports.ContainerEngine, root string, cfg domain.DockerConfig, images DockerImages, resolver *domain.VarResolver) *DockerOps {
	if resolver == nil {
		resolver = domain.NewVarResolver()
	}
	return &DockerOps{engine: engine, root: root, cfg: cfg, images: images, resolver: resolver}
}

func (uc *DockerOps) Images() DockerImages { return uc.images }

func (uc *DockerOps) Build(ctx context.Context, image domain.ImageRef, noCache bool) error {
	uc.logger().Info("docker.build", "image", image.String(), "no_cache", noCache)
	res, err := uc.engine.Build(ctx, image, uc.root, noCache)
	return checkExit("docker.build", image.String(), res, err)
}

type RunOptions struct {
	Image       domain.ImageRef
	GPU         bool
	Interactive bool
}

// Run starts the analysis container. The container's own exit status is
// returned, not treated as a failure.
func (uc *DockerOps) Run(ctx context.Context, opts RunOptions) (domain.CommandResult, error) {
	rr, err := uc.resolver.NewRuntime(uc.vars())
	if err != nil {
		return domain.CommandResult{}, err
	}
	mounts, err := uc.mounts(rr, "docker.mounts", uc.cfg.Mounts)
	if err != nil {
		return domain.CommandResult{}, err
	}
	extra, err := rr.ResolveArgs("docker.extra_args", uc.cfg.ExtraArgs)
	if err != nil {
		return domain.CommandResult{}, err
	}

	run := domain.ContainerRun{
		Image:       opts.Image,
		Interactive: opts.Interactive,
		Mounts:      mounts,
		Ports:       uc.cfg.Ports,
		ExtraArgs:   extra,
	}
	if opts.GPU {
		run.Runtime = "nvidia"
		run.GPU = true
	}
	if opts.Interactive {
		run.Command = uc.conda("bash")
	}

	uc.logger().Info("docker.run", "image", opts.Image.String(), "gpu", opts.GPU, "interactive", opts.Interactive)
	return uc.engine.Run(ctx, run)
}

// DevStartResult reports what dev-start did.
type DevStartResult struct {
	Built       bool
	ContainerID string
}

// DevStart builds the dev image when it is missing locally, then starts the
// detached Jupyter Lab container.
func (uc *DockerOps) DevStart(ctx context.Context) (DevStartResult, error) {
	var out DevStartResult

	exists, err := uc.engine.ImageExists(ctx, uc.images.Dev)
	if err != nil {
		return out, err
	}
	if !exists {
		if err := uc.Build(ctx, uc.images.Dev, false); err != nil {
			return out, err
		}
		out.Built = true
	}

	rr, err := uc.resolver.NewRuntime(uc.vars())
	if err != nil {
		return out, err
	}
	mounts, err := uc.mounts(rr, "docker.dev_mounts", uc.cfg.DevMounts)
	if err != nil {
		return out, err
	}
	extra, err := rr.ResolveArgs("docker.extra_args", uc.cfg.ExtraArgs)
	if err != nil {
		return out, err
	}

	run := domain.ContainerRun{
		Image:     uc.images.Dev,
		Name:      uc.cfg.DevContainer,
		Detach:    true,
		Runtime:   "nvidia",
		GPU:       true,
		Mounts:    mounts,
		Ports:     uc.cfg.Ports,
		Env:       []string{"PYTHONPATH=" + path.Join(ContainerWorkdir, "src")},
		ExtraArgs: extra,
		Command:   uc.conda("jupyter", "lab", "--ip=0.0.0.0", "--port=8888", "--no-browser", "--allow-root"),
	}
	res, err := uc.engine.Run(ctx, run)
	if err := checkExit("docker.dev_start", uc.cfg.DevContainer, res, err); err != nil {
		return out, err
	}
	out.ContainerID = strings.TrimSpace(res.Stdout)
	uc.logger().Info("docker.dev_started", "container", uc.cfg.DevContainer, "built", out.Built)
	return out, nil
}

// DevStop stops and removes the dev container. stopped is false when no such
// container was running; that is not an error.
func (uc *DockerOps) DevStop(ctx context.Context) (stopped bool, err error) {
	res, err := uc.engine.Stop(ctx, uc.cfg.DevContainer)
	if err != nil {
		return false, err
	}
	if !res.OK() {
		uc.logger().Info("docker.dev_stop.absent", "container", uc.cfg.DevContainer)
		return false, nil
	}
	res, err = uc.engine.Remove(ctx, uc.cfg.DevContainer)
	if err := checkExit("docker.dev_stop", uc.cfg.DevContainer, res, err); err != nil {
		return true, err
	}
	uc.logger().Info("docker.dev_stopped", "container", uc.cfg.DevContainer)
	return true, nil
}

// GPUStatus is the outcome of probing the host's GPU support.
type GPUStatus struct {
	Available bool
	Output    string
}

// GPUCheck runs nvidia-smi in a throwaway CUDA container.
func (uc *DockerOps) GPUCheck(ctx context.Context) (GPUStatus, error) {
	res, err := uc.engine.Run(ctx, domain.ContainerRun{
		Image:   uc.images.GPUProbe,
		Remove:  true,
		GPU:     true,
		Capture: true,
		Command: []string{"nvidia-smi"},
	})
	if err != nil {
		return GPUStatus{}, err
	}
	st := GPUStatus{Available: res.OK(), Output: res.Stdout}
	if !st.Available {
		st.Output = res.Stderr
	}
	uc.logger().Info("docker.gpu_check", "available", st.Available)
	return st, nil
}

type SnakemakeOptions struct {
	Workflow string
	Cores    int
	DryRun   bool
	NoGPU    bool
}

// Snakemake runs the workflow inside the main image with the NVIDIA runtime
// unless NoGPU is set.
func (uc *DockerOps) Snakemake(ctx context.Context, opts SnakemakeOptions) error {
	if opts.Workflow == "" {
		return &domain.OpError{Op: "docker.snakemake", Kind: domain.KindInvalidInput, Err: fmt.Errorf("workflow is required: %w", domain.ErrInvalidInput)}
	}
	if opts.Cores < 1 {
		return &domain.OpError{Op: "docker.snakemake", Kind: domain.KindInvalidInput, Err: fmt.Errorf("cores must be at least 1: %w", domain.ErrInvalidInput)}
	}

	rr, err := uc.resolver.NewRuntime(uc.vars())
	if err != nil {
		return err
	}
	mounts, err := uc.mounts(rr, "docker.workflow_mounts", uc.cfg.WorkflowMounts)
	if err != nil {
		return err
	}

	args := []string{"snakemake", "-s", filepath.ToSlash(opts.Workflow), "--cores", strconv.Itoa(opts.Cores)}
	if opts.DryRun {
		args = append(args, "--dryrun")
	}

	run := domain.ContainerRun{
		Image:   uc.images.Main,
		Remove:  true,
		Mounts:  mounts,
		Command: uc.conda(args...),
	}
	if !opts.NoGPU {
		run.Runtime = "nvidia"
		run.GPU = true
	}

	uc.logger().Info("docker.snakemake", "workflow", opts.Workflow, "cores", opts.Cores, "dry_run", opts.DryRun, "gpu", run.GPU)
	res, err := uc.engine.Run(ctx, run)
	return checkExit("docker.snakemake", opts.Workflow, res, err)
}

// CleanStep is one best-effort cleanup action.
type CleanStep struct {
	Name string
	Err  error
}

// Clean stops and removes the project's containers, removes its tags and
// prunes dangling images. Every step runs regardless of earlier failures.
func (uc *DockerOps) Clean(ctx context.Context) []CleanStep {
	ancestor := uc.images.Main.Repository
	steps := []CleanStep{}

	step := func(name string, fn func() error) {
		err := fn()
		if err != nil {
			uc.logger().Warn("docker.clean.step_failed", "step", name, "error", err)
		}
		steps = append(steps, CleanStep{Name: name, Err: err})
	}

	step("stop containers", func() error {
		ids, err := uc.engine.ListContainers(ctx, ancestor, false)
		if err != nil || len(ids) == 0 {
			return err
		}
		res, err := uc.engine.Stop(ctx, ids...)
		return checkExit("docker.clean.stop", ancestor, res, err)
	})
	step("remove containers", func() error {
		ids, err := uc.engine.ListContainers(ctx, ancestor, true)
		if err != nil || len(ids) == 0 {
			return err
		}
		res, err := uc.engine.Remove(ctx, ids...)
		return checkExit("docker.clean.rm", ancestor, res, err)
	})
	step("remove images", func() error {
		res, err := uc.engine.RemoveImages(ctx, uc.images.Main, uc.images.Dev)
		return checkExit("docker.clean.rmi", ancestor, res, err)
	})
	step("prune dangling images", func() error {
		res, err := uc.engine.PruneImages(ctx)
		return checkExit("docker.clean.prune", "", res, err)
	})

	return steps
}

func (uc *DockerOps) vars() domain.Vars {
	return domain.ProjectVars(uc.root)
}

func (uc *DockerOps) conda(args ...string) []string {
	return append([]string{"conda", "run", "-n", uc.cfg.CondaEnv}, args...)
}

// mounts turns mount entries into bind mounts. A bare entry such as "data"
// binds <root>/data to /app/data; "host:container" is used as written, with a
// relative host resolved against the project root.
func (uc *DockerOps) mounts(rr *domain.RuntimeResolver, field string, entries []string) ([]domain.Mount, error) {
	resolved, err := rr.ResolveArgs(field, entries)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Mount, 0, len(resolved))
	for i, e := range resolved {
		e = strings.TrimSpace(e)
		host, container, ok := strings.Cut(e, ":")
		if !ok {
			host = e
			container = path.Join(ContainerWorkdir, filepath.ToSlash(e))
		}
		if host == "" || container == "" {
			return nil, &domain.OpError{
				Op:   "docker.mounts",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("%s[%d]: empty mount %q: %w", field, i, e, domain.ErrInvalidConfig),
			}
		}
		if !filepath.IsAbs(host) {
			host = filepath.Join(uc.root, host)
		}
		out = append(out, domain.Mount{Host: host, Container: container})
	}
	return out, nil
}

func checkExit(op, path string, res domain.CommandResult, err error) error {
	if err != nil {
		return err
	}
	if res.OK() {
		return nil
	}
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = "non-zero exit status"
	}
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindExecution,
		Path: path,
		Err:  fmt.Errorf("exit %d: %s: %w", res.ExitCode, msg, domain.ErrExecution),
	}
}
