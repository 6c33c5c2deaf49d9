package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

func logLevelFlag(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString("log-level")
	return v
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := setup(logLevelFlag(cmd))
			if err != nil {
				return err
			}
			defer app.Close()
			if addr != "" {
				app.Config.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Infof("listening on %s", app.Config.Addr)
				errc <- app.Start()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.Echo.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return <-errc
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from ADDR, else :3000)")
	return cmd
}

func newBuildCmd() *cobra.Command {
	var (
		outDir  string
		banners bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the whole site to static files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := setup(logLevelFlag(cmd))
			if err != nil {
				return err
			}
			defer app.Close()
			if outDir != "" {
				app.Config.OutDir = outDir
			}
			if banners {
				app.Config.LocalizeBanners = true
			}
			if err := app.Open(); err != nil {
				return err
			}

			start := time.Now()
			report, err := app.Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"built %d list pages and %d posts into %s: %d files, %s, %d banners localized (%s)\n",
				report.Pages, report.Posts, app.Config.OutDir, report.Files,
				humanize.Bytes(uint64(report.Bytes)), report.Banners,
				time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outDir, "out", "o", "", "output directory (default from OUT_DIR, else dist)")
	flags.BoolVar(&banners, "localize-banners", false, "download and resize banners into the output")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every post as Markdown with YAML front matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := setup(logLevelFlag(cmd))
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.Open(); err != nil {
				return err
			}

			n, err := app.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s posts into %s\n", humanize.Comma(int64(n)), args[0])
			return nil
		},
	}
}
