package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bssong66/PerformanceTracker-sub000/internal/capture"
	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/style"
	"github.com/bssong66/PerformanceTracker-sub000/internal/web"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var (
		out     string
		baseURL string
		width   int
		height  int
		timeout time.Duration
		ink     bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot [YYYY-MM]",
		Short: "Render the month page with headless Chromium and save it as PNG",
		Long: "Without --url the month page is served from an in-process server on a\n" +
			"loopback port for the duration of the capture.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			month, err := a.parseMonthArg(args)
			if err != nil {
				return err
			}
			opts := capture.Options{
				OutputPath: out,
				Width:      width,
				Height:     height,
				Timeout:    timeout,
				Ink:        ink,
			}

			if baseURL == "" {
				base, shutdown, err := a.serveLoopback(ctx)
				if err != nil {
					return err
				}
				defer shutdown()
				baseURL = base
			} else if a.cfg.BasicAuth != nil {
				opts.Username = a.cfg.BasicAuth.Username
				opts.Password = a.cfg.BasicAuth.Password
			}

			if opts.URL, err = capture.PageURL(baseURL, month); err != nil {
				return err
			}
			if err := capture.Month(ctx, opts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "calendar.png", "output PNG path")
	cmd.Flags().StringVar(&baseURL, "url", "", "base URL of a running lifecal server")
	cmd.Flags().IntVar(&width, "width", capture.DefaultWidth, "viewport width in pixels")
	cmd.Flags().IntVar(&height, "height", capture.DefaultHeight, "viewport height in pixels")
	cmd.Flags().DurationVar(&timeout, "timeout", capture.DefaultTimeout, "capture timeout")
	cmd.Flags().BoolVar(&ink, "ink", false, "reduce the image to white, black and red for e-paper or print")
	return cmd
}

// serveLoopback starts the web server on an ephemeral loopback port.
func (a *app) serveLoopback(ctx context.Context) (string, func(), error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return "", nil, err
	}
	srv := web.NewServer(st, web.Options{
		Location: a.loc,
		Palette:  style.Palette(a.cfg.Palette),
		Now:      a.now,
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		st.Close()
		return "", nil, err
	}
	hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("snapshot server failed", err)
		}
	}()

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(sctx)
		_ = st.Close()
	}
	return "http://" + ln.Addr().String(), shutdown, nil
}
