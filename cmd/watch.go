package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/rclctl/internal/adapters/metrics"
	"github.com/bnema/rclctl/internal/ports"
)

const metricsShutdownTimeout = 5 * time.Second

type watchLine struct {
	Time    time.Time       `json:"time"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newWatchCmd(app *app) *cobra.Command {
	var metricsAddr string
	var count int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream pushed backend events, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			b, err := app.connect(ctx)
			if err != nil {
				return err
			}

			eventMetrics := metrics.NewEventMetrics()
			channel, err := app.newChannel(b, eventMetrics)
			if err != nil {
				return err
			}

			var mu sync.Mutex
			seen := 0
			handle := func(event ports.Event) {
				mu.Lock()
				defer mu.Unlock()
				if count > 0 && seen >= count {
					return
				}
				seen++

				if err := writeEvent(cmd, app.now(), event, asJSON); err != nil {
					app.logger.Warn("write event", zap.Error(err))
				}
				if count > 0 && seen >= count {
					cancel()
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer cancel()
				return channel.Run(gctx, handle)
			})
			if metricsAddr != "" {
				listener, err := net.Listen("tcp", metricsAddr)
				if err != nil {
					return fmt.Errorf("listen on %s: %w", metricsAddr, err)
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "metrics on http://%s/metrics\n", listener.Addr())
				g.Go(func() error {
					return serveMetrics(gctx, listener, eventMetrics.Handler())
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many events (0: run until interrupted)")
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func writeEvent(cmd *cobra.Command, now time.Time, event ports.Event, asJSON bool) error {
	if asJSON {
		line, err := json.Marshal(watchLine{Time: now.UTC(), Type: event.Type, Payload: event.Payload})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(line))
		return err
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", now.Format(time.TimeOnly), event.Type, string(event.Payload))
	return err
}

func serveMetrics(ctx context.Context, listener net.Listener, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve metrics: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}
