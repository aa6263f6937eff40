package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/open-logistics/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(root *rootFlags) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engines and agents over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			opts, err := server.OptionsFromConfig(s.conf.Server)
			if err != nil {
				return err
			}
			manager, err := s.newManager()
			if err != nil {
				return err
			}
			defer manager.Shutdown()

			opts.Optimizer = s.optimizer
			opts.Forecaster = s.forecaster
			opts.Agents = manager
			opts.Labels = s.labels

			addr := s.conf.Server.Address
			if address != "" {
				addr = address
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s.logger.Info("starting server",
				zap.String("op", "main.serve"),
				zap.String("address", addr),
				zap.Int64("max_body_size", opts.MaxBodySize),
				zap.Duration("request_timeout", opts.RequestTimeout),
				zap.Bool("metrics", opts.MetricsEnabled),
			)
			return server.Run(ctx, s.logger, addr, server.NewHandler(s.logger, opts))
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "listen address override, e.g. :8080")

	return cmd
}
