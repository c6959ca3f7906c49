package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentstation/waypoint/pkg/logging"
)

// SignalContext returns a context carrying the application logger that is
// cancelled on SIGINT or SIGTERM. The cancel func also stops signal delivery.
func (a *App) SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(logging.WithLogger(parent, a.Logger()))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go watchSignals(ctx, sigs, cancel)

	return ctx, func() {
		signal.Stop(sigs)
		cancel()
	}
}

// watchSignals cancels ctx on the first signal received.
func watchSignals(ctx context.Context, sigs <-chan os.Signal, cancel context.CancelFunc) {
	select {
	case sig := <-sigs:
		logging.FromContext(ctx).Info().Str("signal", sig.String()).Msg("Shutting down")
		cancel()
	case <-ctx.Done():
	}
}
