package app

import (
	"context"
	"net/http"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentstation/waypoint"
	"github.com/agentstation/waypoint/internal/cmd/output"
	"github.com/agentstation/waypoint/internal/server"
	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/message"
)

// NewServeCommand creates the serve command.
func (a *App) NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the application over HTTP",
		Long: `Start the HTTP server. Requests are run through the application;
/health and /ready report liveness, and the monitor endpoints under
/_monitor stream dispatch errors and finished requests over SSE and
WebSocket.`,
		Example: `  # Start on the configured address
  waypoint serve

  # Start on a custom port with the page cache
  waypoint serve --port 3000 --cache`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.ServerConfig()
			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Host, _ = flags.GetString("host")
			}
			if flags.Changed("port") {
				cfg.Port, _ = flags.GetInt("port")
			}
			if flags.Changed("cache") {
				cfg.CacheEnabled, _ = flags.GetBool("cache")
			}
			if flags.Changed("rate-limit") {
				cfg.RateLimit, _ = flags.GetInt("rate-limit")
			}
			return a.serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "Server port")
	cmd.Flags().String("host", "localhost", "Bind address")
	cmd.Flags().Bool("cache", false, "Enable the page cache")
	cmd.Flags().Int("rate-limit", 0, "Requests per minute per IP (0 to disable)")
	return cmd
}

// serve runs the server until ctx is cancelled.
func (a *App) serve(ctx context.Context, cfg server.Config) error {
	srv := server.New(cfg, a.logger)
	app, err := a.NewApplication(srv.Options()...)
	if err != nil {
		return err
	}
	if err := srv.Mount(app); err != nil {
		return err
	}
	a.setServer(srv)
	srv.Start()

	httpServer := srv.HTTPServer()
	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("addr", httpServer.Addr).
			Int("routes", len(app.Router().Routes())).
			Bool("cache", cfg.CacheEnabled).
			Bool("monitor", cfg.MonitorEnabled).
			Msg("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- errors.WrapIO("listen", httpServer.Addr, err)
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.WrapIO("shutdown", httpServer.Addr, err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info().Msg("Server stopped gracefully")
	return nil
}

// NewDispatchCommand creates the dispatch command.
func (a *App) NewDispatchCommand() *cobra.Command {
	var accept string
	cmd := &cobra.Command{
		Use:     "dispatch <path> [-- --name=value ...]",
		GroupID: "core",
		Short:   "Run one console request through the application",
		Long: `Dispatch routes a path through the same pipeline the server uses and
writes the rendered body to stdout. Arguments of the form --name=value
after "--" become query parameters. The exit code is 1 when the response
status is 400 or above.`,
		Example: `  waypoint dispatch /greet/ada
  waypoint dispatch /greet/ada -- --shout=1
  waypoint dispatch / --accept application/json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := a.NewApplication(waypoint.WithConsoleOutput(cmd.OutOrStdout()))
			if err != nil {
				return err
			}

			req := message.NewConsoleRequest(args)
			if accept != "" {
				req.Header().Set("Accept", accept)
			}
			resp := message.NewConsoleResponse()

			ctx := cmd.Context()
			sent, err := app.Run(ctx, req, resp, nil)
			if err != nil {
				return err
			}

			a.logger.Debug().
				Str("path", req.Path()).
				Int("status", sent.StatusCode()).
				Msg("Console request dispatched")
			a.printStatus(cmd, req.Path(), sent.StatusCode())

			if console, ok := sent.(*message.ConsoleResponse); ok && console.ErrorLevel() != 0 {
				return &ExitError{Code: console.ErrorLevel()}
			}
			if sent.StatusCode() >= http.StatusBadRequest {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&accept, "accept", "", "Accept header used to pick the renderer")
	return cmd
}

// printStatus writes a one-line status summary to stderr.
func (a *App) printStatus(cmd *cobra.Command, path string, status int) {
	c := color.New(color.FgGreen)
	switch {
	case status >= http.StatusInternalServerError:
		c = color.New(color.FgRed, color.Bold)
	case status >= http.StatusBadRequest:
		c = color.New(color.FgYellow)
	}
	if a.flags.NoColor {
		c.DisableColor()
	}
	c.Fprintf(cmd.ErrOrStderr(), "%d %s %s\n", status, http.StatusText(status), path)
}

// NewRoutesCommand creates the routes command.
func (a *App) NewRoutesCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "routes",
		GroupID: "core",
		Short:   "List the route table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			app, err := a.NewApplication()
			if err != nil {
				return err
			}
			data := output.RoutesToData(app.Router().Routes())
			return output.NewFormatter(output.DetectFormat(string(f))).Format(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "", "output format: table, json, yaml")
	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("waypoint %s\n", a.version)
			if a.flags.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
