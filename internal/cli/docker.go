package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhruv-ramu/FragmentFusion/internal/infra/dockercli"
	"github.com/dhruv-ramu/FragmentFusion/internal/usecase"
)

func dockerCmd(opts *rootOpts) *cobra.Command {
	c := &cobra.Command{
		Use:   "docker",
		Short: "Build and run the project containers",
	}
	c.AddCommand(
		dockerBuildCmd(opts),
		dockerRunCmd(opts),
		dockerDevStartCmd(opts),
		dockerDevStopCmd(opts),
		dockerGPUCheckCmd(opts),
		dockerSnakemakeCmd(opts),
		dockerCleanCmd(opts),
	)
	return c
}

// withDocker loads the project and hands fn its docker operations.
func withDocker(opts *rootOpts, fn func(p *projectCtx, uc *usecase.DockerOps) error) error {
	p, err := opts.load()
	if err != nil {
		return err
	}
	defer p.close()

	uc, err := p.docker()
	if err != nil {
		return err
	}
	return fn(p, uc)
}

func dockerBuildCmd(opts *rootOpts) *cobra.Command {
	var tag string
	var noCache bool

	c := &cobra.Command{
		Use:   "build",
		Short: "Build the analysis image from the project Dockerfile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDocker(opts, func(_ *projectCtx, uc *usecase.DockerOps) error {
				image := uc.Images().Main
				if tag != "" {
					ref, err := dockercli.ParseImage(tag)
					if err != nil {
						return err
					}
					image = ref
				}
				if err := uc.Build(cmd.Context(), image, noCache); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s built %s\n", mark(true), image)
				return nil
			})
		},
	}

	c.Flags().StringVarP(&tag, "tag", "t", "", "Image tag (default: docker.image)")
	c.Flags().BoolVar(&noCache, "no-cache", false, "Build without the layer cache")
	return c
}

func dockerRunCmd(opts *rootOpts) *cobra.Command {
	var image string
	var noGPU, noInteractive bool

	c := &cobra.Command{
		Use:   "run",
		Short: "Run the analysis container with the project mounted under /app",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDocker(opts, func(_ *projectCtx, uc *usecase.DockerOps) error {
				ref := uc.Images().Main
				if image != "" {
					r, err := dockercli.ParseImage(image)
					if err != nil {
						return err
					}
					ref = r
				}
				res, err := uc.Run(cmd.Context(), usecase.RunOptions{
					Image:       ref,
					GPU:         !noGPU,
					Interactive: !noInteractive,
				})
				if err != nil {
					return err
				}
				if !res.OK() {
					fmt.Fprintln(cmd.ErrOrStderr(), styleFaint.Render(fmt.Sprintf("container exited with status %d", res.ExitCode)))
				}
				return nil
			})
		},
	}

	c.Flags().StringVar(&image, "image", "", "Image to run (default: docker.image)")
	c.Flags().BoolVar(&noGPU, "no-gpu", false, "Do not request GPUs")
	c.Flags().BoolVar(&noInteractive, "no-interactive", false, "Do not attach a terminal")
	return c
}

func dockerDevStartCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "dev-start",
		Short: "Start the Jupyter Lab development container",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDocker(opts, func(p *projectCtx, uc *usecase.DockerOps) error {
				out, err := uc.DevStart(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if out.Built {
					fmt.Fprintf(w, "%s built %s\n", mark(true), uc.Images().Dev)
				}
				fmt.Fprintf(w, "%s started %s %s\n", mark(true), p.cfg.Docker.DevContainer, styleFaint.Render(out.ContainerID))
				fmt.Fprintln(w, "Jupyter Lab: http://localhost:8888")
				return nil
			})
		},
	}
}

func dockerDevStopCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "dev-stop",
		Short: "Stop and remove the development container",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDocker(opts, func(p *projectCtx, uc *usecase.DockerOps) error {
				stopped, err := uc.DevStop(cmd.Context())
				if err != nil {
					return err
				}
				if !stopped {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s is not running\n", styleWarn.Render("!"), p.cfg.Docker.DevContainer)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s stopped %s\n", mark(true), p.cfg.Docker.DevContainer)
				return nil
			})
		},
	}
}

// errNoGPU makes gpu-check exit non-zero after printing guidance.
var errNoGPU = errors.New("GPU support is not available to docker")

func dockerGPUCheckCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "gpu-check",
		Short: "Check that containers can see the host GPUs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDocker(opts, func(_ *projectCtx, uc *usecase.DockerOps) error {
				st, err := uc.GPUCheck(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if st.Available {
					fmt.Fprintf(w, "%s GPU support is available\n\n%s\n", mark(true), st.Output)
					return nil
				}
				fmt.Fprintf(w, "%s GPU support is not available\n", mark(false))
				if st.Output != "" {
					fmt.Fprintln(w, styleFaint.Render(st.Output))
				}
				fmt.Fprintln(w, "Install the NVIDIA driver and the NVIDIA Container Toolkit, then restart docker.")
				return errNoGPU
			})
		},
	}
}

func dockerSnakemakeCmd(opts *rootOpts) *cobra.Command {
	var workflow string
	var cores int
	var dryRun, noGPU bool

	c := &cobra.Command{
		Use:   "snakemake",
		Short: "Run the Snakemake workflow inside the analysis image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDocker(opts, func(p *projectCtx, uc *usecase.DockerOps) error {
				o := usecase.SnakemakeOptions{
					Workflow: p.cfg.Workflow.Snakefile,
					Cores:    p.cfg.Workflow.Cores,
					DryRun:   dryRun,
					NoGPU:    noGPU,
				}
				if workflow != "" {
					o.Workflow = workflow
				}
				if cmd.Flags().Changed("cores") {
					o.Cores = cores
				}
				if err := uc.Snakemake(cmd.Context(), o); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s workflow %s finished\n", mark(true), o.Workflow)
				return nil
			})
		},
	}

	c.Flags().StringVar(&workflow, "workflow", "", "Snakefile path relative to the project root (default: workflow.snakefile)")
	c.Flags().IntVar(&cores, "cores", 4, "Cores given to Snakemake")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Only show what would run")
	c.Flags().BoolVar(&noGPU, "no-gpu", false, "Do not request GPUs for the workflow container")
	return c
}

func dockerCleanCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove project containers and images (best-effort)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDocker(opts, func(_ *projectCtx, uc *usecase.DockerOps) error {
				w := cmd.OutOrStdout()
				for _, s := range uc.Clean(cmd.Context()) {
					if s.Err != nil {
						fmt.Fprintf(w, "%s %s: %v\n", styleWarn.Render("!"), s.Name, s.Err)
						continue
					}
					fmt.Fprintf(w, "%s %s\n", mark(true), s.Name)
				}
				return nil
			})
		},
	}
}

