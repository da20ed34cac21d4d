package main

import (
	"github.com/spf13/cobra"

	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/style"
	"github.com/bssong66/PerformanceTracker-sub000/internal/subscribe"
	"github.com/bssong66/PerformanceTracker-sub000/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	var noSync bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the month page and the subscription schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			// CLI --listen overrides config file listen if provided.
			if listen != "" {
				a.cfg.Listen = listen
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			var srv *web.Server
			syncer := a.newSyncer(st, func(r []subscribe.Report) { srv.OnSync(r) })
			srv = web.NewServer(st, web.Options{
				Location:  a.loc,
				Palette:   style.Palette(a.cfg.Palette),
				BasicAuth: a.cfg.BasicAuth,
				Syncer:    syncer,
			})

			if !noSync && len(a.cfg.Subscriptions) > 0 {
				go syncer.SyncAll(ctx)
			}
			stop, err := syncer.Start(ctx, a.cfg.RefreshCron)
			if err != nil {
				return err
			}
			defer stop()

			appLog.Info("lifecal serving", "version", version, "timezone", a.cfg.Timezone, "subscriptions", len(a.cfg.Subscriptions))
			return srv.ListenAndServe(ctx, a.cfg.Listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	cmd.Flags().BoolVar(&noSync, "no-initial-sync", false, "skip the subscription sync at startup")
	return cmd
}
