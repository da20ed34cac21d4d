package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bssong66/PerformanceTracker-sub000/internal/subscribe"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Import every configured ICS subscription once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(a.cfg.Subscriptions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no subscriptions configured")
				return nil
			}
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			reports := a.newSyncer(st, nil).SyncAll(ctx)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SOURCE\tEVENTS\tMATERIALIZED\tTRUNCATED\tCACHED\tERROR")
			for _, r := range reports {
				msg := "-"
				if r.Err != nil {
					msg = r.Err.Error()
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%t\t%s\n", r.Source, r.Events, r.Materialized, r.Truncated, r.FromCache, msg)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if subscribe.Failed(reports) {
				return errors.New("one or more subscriptions failed")
			}
			return nil
		},
	}
}
