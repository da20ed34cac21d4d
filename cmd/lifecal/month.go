package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bssong66/PerformanceTracker-sub000/internal/style"
	"github.com/bssong66/PerformanceTracker-sub000/internal/view"
)

func newMonthCmd(a *app) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Print the month grid to the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			month, err := a.parseMonthArg(args)
			if err != nil {
				return err
			}
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			v := view.New(st, view.Handlers{}, view.Options{
				Location: a.loc,
				Palette:  style.Palette(a.cfg.Palette),
				Now:      a.now,
			})
			if err := v.SetMonth(ctx, month); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, style.RenderMonth(v.Month(), v.Buckets(), v.Styler(), style.RenderOptions{
				CellWidth: width,
				Today:     a.now().In(a.loc),
			}))
			for _, id := range v.Truncated() {
				fmt.Fprintf(out, "note: recurrence of %s was cut off after its first instances\n", id)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 16, "cell width in columns")
	return cmd
}
