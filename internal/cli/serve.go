package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhruv-ramu/FragmentFusion/internal/api"
)

const shutdownGrace = 5 * time.Second

func serveCmd(opts *rootOpts) *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve project status over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.load()
			if err != nil {
				return err
			}
			defer p.close()

			downloads, err := p.collector(false)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = p.cfg.Server.Addr
			}

			e := api.New(api.Deps{
				Samples:        p.samples(),
				SamplesRequest: p.samplesRequest(),
				Downloads:      downloads,
				Metrics:        p.metrics.Handler(),
				Logger:         p.log,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", addr)
			return api.Serve(ctx, e, addr, shutdownGrace)
		},
	}

	c.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	return c
}
