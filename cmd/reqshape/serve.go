package main

import (
	"github.com/spf13/cobra"

	"github.com/reoring/reqshape/internal/server"
	"github.com/reoring/reqshape/middleware"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the procurement API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.logger.Info("starting reqshape",
				"version", Version,
				"config", a.configPath,
				"shapes", len(a.reg.Names()),
			)
			h := server.NewHandler(a.validator(), nil, a.logger, middleware.Options{
				Decode: a.cfg.DecodeOpt(),
				Logger: a.logger,
			})
			srv := server.New(a.cfg.Server.Address(), h, a.cfg.Server.Timeouts())
			return srv.Run(cmd.Context())
		},
	}
}
