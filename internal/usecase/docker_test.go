package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

func testImages() DockerImages {
	return DockerImages{
		Main:     domain.ImageRef{Repository: "fragment-fusion", Tag: "latest"},
		Dev:      domain.ImageRef{Repository: "fragment-fusion", Tag: "dev"},
		GPUProbe: domain.ImageRef{Repository: "nvidia/cuda", Tag: "12.1-base-ubuntu22.04"},
	}
}

func newTestDockerOps(engine *fakeEngine, root string, cfg domain.DockerConfig) *DockerOps {
	resolver := domain.NewVarResolver(
		domain.WithNow(func() time.Time { return time.Unix(1700000000, 0) }),
		domain.WithUUID(func() (string, error) { return "u-1", nil }),
	)
	return NewDockerOps(engine, root, cfg, testImages(), resolver)
}

func TestDockerRun_GPUInteractiveWithMounts(t *testing.T) {
	root := filepath.Join("/", "proj")
	cfg := domain.DefaultConfig().Docker
	cfg.Mounts = []string{"data", "cache:/cache", "{{project_root}}/logs:/app/logs"}
	engine := &fakeEngine{runResults: []domain.CommandResult{{ExitCode: 130}}}
	uc := newTestDockerOps(engine, root, cfg)

	res, err := uc.Run(context.Background(), RunOptions{Image: testImages().Main, GPU: true, Interactive: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 130 {
		t.Fatalf("container exit status should be passed through, got %d", res.ExitCode)
	}

	run := engine.runs[0]
	if run.Runtime != "nvidia" || !run.GPU || !run.Interactive {
		t.Fatalf("unexpected run flags: %+v", run)
	}
	wantMounts := []domain.Mount{
		{Host: filepath.Join(root, "data"), Container: "/app/data"},
		{Host: filepath.Join(root, "cache"), Container: "/cache"},
		{Host: root + "/logs", Container: "/app/logs"},
	}
	if !reflect.DeepEqual(run.Mounts, wantMounts) {
		t.Fatalf("mounts:\n got %+v\nwant %+v", run.Mounts, wantMounts)
	}
	if !reflect.DeepEqual(run.Command, []string{"conda", "run", "-n", "fragment-fusion", "bash"}) {
		t.Fatalf("unexpected command: %v", run.Command)
	}
	if !reflect.DeepEqual(run.Ports, []string{"8000:8000", "8888:8888"}) {
		t.Fatalf("unexpected ports: %v", run.Ports)
	}
}

func TestDockerRun_NoGPUNoInteractive(t *testing.T) {
	engine := &fakeEngine{}
	uc := newTestDockerOps(engine, "/proj", domain.DefaultConfig().Docker)

	if _, err := uc.Run(context.Background(), RunOptions{Image: testImages().Main}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	run := engine.runs[0]
	if run.Runtime != "" || run.GPU || run.Interactive || len(run.Command) != 0 {
		t.Fatalf("unexpected run: %+v", run)
	}
}

func TestDockerRun_UnknownTemplateVariable(t *testing.T) {
	cfg := domain.DefaultConfig().Docker
	cfg.ExtraArgs = []string{"--label={{nope}}"}
	engine := &fakeEngine{}
	uc := newTestDockerOps(engine, "/proj", cfg)

	_, err := uc.Run(context.Background(), RunOptions{Image: testImages().Main})
	if !domain.IsKind(err, domain.KindMissingVar) {
		t.Fatalf("expected missing_variable, got %v", err)
	}
	if len(engine.runs) != 0 {
		t.Fatalf("nothing should run after a template error")
	}
}

func TestDevStart_BuildsMissingImage(t *testing.T) {
	engine := &fakeEngine{runResults: []domain.CommandResult{{Stdout: "abc123\n"}}}
	uc := newTestDockerOps(engine, "/proj", domain.DefaultConfig().Docker)

	out, err := uc.DevStart(context.Background())
	if err != nil {
		t.Fatalf("DevStart: %v", err)
	}
	if !out.Built || out.ContainerID != "abc123" {
		t.Fatalf("unexpected result: %+v", out)
	}
	if len(engine.builds) != 1 || engine.builds[0].Tag != "dev" {
		t.Fatalf("expected dev image build, got %+v", engine.builds)
	}

	run := engine.runs[0]
	if run.Name != "fragment-fusion-dev" || !run.Detach || !run.GPU || run.Runtime != "nvidia" {
		t.Fatalf("unexpected dev run: %+v", run)
	}
	if !reflect.DeepEqual(run.Env, []string{"PYTHONPATH=/app/src"}) {
		t.Fatalf("unexpected env: %v", run.Env)
	}
	if len(run.Mounts) != 8 {
		t.Fatalf("expected 8 dev mounts, got %d", len(run.Mounts))
	}
}

func TestDevStart_ReusesExistingImage(t *testing.T) {
	engine := &fakeEngine{imageExists: true}
	uc := newTestDockerOps(engine, "/proj", domain.DefaultConfig().Docker)

	out, err := uc.DevStart(context.Background())
	if err != nil {
		t.Fatalf("DevStart: %v", err)
	}
	if out.Built || len(engine.builds) != 0 {
		t.Fatalf("image should not be rebuilt")
	}
}

func TestDevStop_AbsentIsNotAnError(t *testing.T) {
	engine := &fakeEngine{stopResult: domain.CommandResult{ExitCode: 1, Stderr: "No such container"}}
	uc := newTestDockerOps(engine, "/proj", domain.DefaultConfig().Docker)

	stopped, err := uc.DevStop(context.Background())
	if err != nil || stopped {
		t.Fatalf("stopped=%v err=%v", stopped, err)
	}
	if len(engine.removed) != 0 {
		t.Fatalf("remove should not run for an absent container")
	}
}

func TestDevStop_StopsAndRemoves(t *testing.T) {
	engine := &fakeEngine{}
	uc := newTestDockerOps(engine, "/proj", domain.DefaultConfig().Docker)

	stopped, err := uc.DevStop(context.Background())
	if err != nil || !stopped {
		t.Fatalf("stopped=%v err=%v", stopped, err)
	}
	if !reflect.DeepEqual(engine.removed, [][]string{{"fragment-fusion-dev"}}) {
		t.Fatalf("unexpected removals: %v", engine.removed)
	}
}

func TestGPUCheck(t *testing.T) {
	engine := &fakeEngine{runResults: []domain.CommandResult{
		{Stdout: "NVIDIA-SMI 535"},
		{ExitCode: 125, Stderr: "could not select device driver"},
	}}
	uc := newTestDockerOps(engine, "/proj", domain.DefaultConfig().Docker)

	st, err := uc.GPUCheck(context.Background())
	if err != nil || !st.Available || st.Output != "NVIDIA-SMI 535" {
		t.Fatalf("available: %+v err=%v", st, err)
	}
	st, err = uc.GPUCheck(context.Background())
	if err != nil || st.Available || st.Output != "could not select device driver" {
		t.Fatalf("unavailable: %+v err=%v", st, err)
	}

	probe := engine.runs[0]
	if !probe.Remove || !probe.GPU || !probe.Capture || probe.Image.Repository != "nvidia/cuda" {
		t.Fatalf("unexpected probe run: %+v", probe)
	}
	if !reflect.DeepEqual(probe.Command, []string{"nvidia-smi"}) {
		t.Fatalf("unexpected probe command: %v", probe.Command)
	}
}

func TestSnakemake_CommandAndMounts(t *testing.T) {
	engine := &fakeEngine{}
	uc := newTestDockerOps(engine, "/proj", domain.DefaultConfig().Docker)

	err := uc.Snakemake(context.Background(), SnakemakeOptions{Workflow: "workflows/Snakefile", Cores: 8, DryRun: true})
	if err != nil {
		t.Fatalf("Snakemake: %v", err)
	}
	run := engine.runs[0]
	want := []string{"conda", "run", "-n", "fragment-fusion", "snakemake", "-s", "workflows/Snakefile", "--cores", "8", "--dryrun"}
	if !reflect.DeepEqual(run.Command, want) {
		t.Fatalf("command:\n got %v\nwant %v", run.Command, want)
	}
	if !run.Remove || run.Image.Tag != "latest" || len(run.Mounts) != 4 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Runtime != "nvidia" || !run.GPU {
		t.Fatalf("expected nvidia runtime with GPUs by default, got runtime=%q gpu=%v", run.Runtime, run.GPU)
	}
}

func TestSnakemake_NoGPU(t *testing.T) {
	engine := &fakeEngine{}
	uc := newTestDockerOps(engine, "/proj", domain.DefaultConfig().Docker)

	if err := uc.Snakemake(context.Background(), SnakemakeOptions{Workflow: "workflows/Snakefile", Cores: 1, NoGPU: true}); err != nil {
		t.Fatalf("Snakemake: %v", err)
	}
	if run := engine.runs[0]; run.Runtime != "" || run.GPU {
		t.Fatalf("expected no GPU request, got runtime=%q gpu=%v", run.Runtime, run.GPU)
	}
}

func TestSnakemake_FailureIsExecutionError(t *testing.T) {
	engine := &fakeEngine{runResults: []domain.CommandResult{{ExitCode: 1, Stderr: "MissingInputException"}}}
	uc := newTestDockerOps(engine, "/proj", domain.DefaultConfig().Docker)

	err := uc.Snakemake(context.Background(), SnakemakeOptions{Workflow: "workflows/Snakefile", Cores: 1})
	if !domain.IsKind(err, domain.KindExecution) {
		t.Fatalf("expected execution error, got %v", err)
	}
}

func TestSnakemake_RejectsBadOptions(t *testing.T) {
	uc := newTestDockerOps(&fakeEngine{}, "/proj", domain.DefaultConfig().Docker)

	if err := uc.Snakemake(context.Background(), SnakemakeOptions{Cores: 1}); !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("missing workflow: %v", err)
	}
	if err := uc.Snakemake(context.Background(), SnakemakeOptions{Workflow: "w", Cores: 0}); !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("zero cores: %v", err)
	}
}

func TestClean_RunsEveryStep(t *testing.T) {
	engine := &fakeEngine{
		containers: map[bool][]string{false: {"c1"}, true: {"c1", "c2"}},
		rmiErr:     errors.New("docker: image is in use"),
	}
	uc := newTestDockerOps(engine, "/proj", domain.DefaultConfig().Docker)

	steps := uc.Clean(context.Background())
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}
	if steps[2].Err == nil {
		t.Fatalf("rmi failure should be reported")
	}
	if !engine.pruned {
		t.Fatalf("prune should run after a failed rmi")
	}
	if !reflect.DeepEqual(engine.stopped, [][]string{{"c1"}}) || !reflect.DeepEqual(engine.removed, [][]string{{"c1", "c2"}}) {
		t.Fatalf("stopped=%v removed=%v", engine.stopped, engine.removed)
	}
	if len(engine.rmi) != 1 || len(engine.rmi[0]) != 2 {
		t.Fatalf("unexpected rmi: %v", engine.rmi)
	}
}
