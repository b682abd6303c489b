package main

import (
	"github.com/spf13/cobra"

	"github.com/abelbrown/herbal/internal/api"
	"github.com/abelbrown/herbal/internal/logging"
	"github.com/abelbrown/herbal/internal/otel"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over a JSON API",
		Example: `  herbal serve
  herbal serve --addr :9090
  curl -H 'X-Herbal-User: asha' localhost:8080/api/favorites`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if addr == "" {
				addr = e.cfg.API.Addr
			}
			plants := e.loadCatalog(cmd.Context())

			e.events.Emit(otel.Event{
				Level: otel.LevelInfo,
				Kind:  otel.KindStartup,
				Comp:  "api",
				Count: len(plants),
				Msg:   "listening on " + addr,
			})
			defer e.events.Info(otel.KindShutdown, "api", "server stopped")

			logging.Info("serving", "addr", addr, "plants", len(plants))
			srv := api.New(plants, e.kv, e.sessionOptions())
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
