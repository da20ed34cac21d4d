package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bssong66/PerformanceTracker-sub000/internal/config"
	"github.com/bssong66/PerformanceTracker-sub000/internal/ics"
	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
	"github.com/bssong66/PerformanceTracker-sub000/internal/store"
	"github.com/bssong66/PerformanceTracker-sub000/internal/subscribe"
)

const version = "0.1.0"

// app carries the loaded configuration between the root command and its
// subcommands.
type app struct {
	configPath string

	cfg *config.Config
	loc *time.Location
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	cmd := &cobra.Command{
		Use:           "lifecal",
		Short:         "Personal calendar with recurring events, a month grid and ICS subscriptions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "lifecal.yaml", "path to the YAML config file")

	cmd.AddCommand(
		newServeCmd(a),
		newMonthCmd(a),
		newSyncCmd(a),
		newSnapshotCmd(a),
	)
	return cmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	a.cfg, a.loc = cfg, loc
	appLog.Debug("effective config",
		"config_path", a.configPath,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"database", cfg.Database,
		"refresh", cfg.RefreshCron,
		"subscriptions", len(cfg.Subscriptions),
		"basic_auth", cfg.BasicAuth != nil,
	)
	return nil
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, a.cfg.Database, a.loc)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", a.cfg.Database, err)
	}
	return st, nil
}

func (a *app) sources() []ics.Source {
	out := make([]ics.Source, 0, len(a.cfg.Subscriptions))
	for _, s := range a.cfg.Subscriptions {
		out = append(out, ics.Source{
			ID:       s.ID,
			Name:     s.Name,
			URL:      s.URL,
			Priority: model.Priority(s.Priority),
		})
	}
	return out
}

func (a *app) newSyncer(st *store.Store, onSync func([]subscribe.Report)) *subscribe.Syncer {
	fetcher := ics.NewFetcher(a.cfg.CacheDir, &http.Client{Timeout: 30 * time.Second})
	return subscribe.New(fetcher, st, a.sources(), subscribe.Options{
		Location: a.loc,
		OnSync:   onSync,
		Now:      a.now,
	})
}

// parseMonthArg reads an optional YYYY-MM argument.
func (a *app) parseMonthArg(args []string) (time.Time, error) {
	if len(args) == 0 || args[0] == "" {
		y, m, _ := a.now().In(a.loc).Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, a.loc), nil
	}
	t, err := time.ParseInLocation("2006-01", args[0], a.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("month %q: want YYYY-MM", args[0])
	}
	return t, nil
}
