package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/vellum/internal/httpapi"
	"github.com/mesh-intelligence/vellum/internal/objects"
	"github.com/mesh-intelligence/vellum/internal/registry"
)

// HTTP server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the collection, schema, object and form routes under /api, plus
/healthz and /metrics. Requests authenticate with bearer tokens signed
with auth.jwt_secret (see "vellum token issue").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.v.GetString(cfgKeyServerAddr)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}

// serve runs the HTTP server until ctx ends.
func (a *app) serve(ctx context.Context, addr string) error {
	log, err := a.cfg.logger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	authority, err := a.cfg.authority()
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	b, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := httpapi.New(httpapi.Config{
		Registry: registry.New(b, log.Named("registry")),
		Objects:  objects.New(b, log.Named("objects")),
		Auth:     authority,
		Health:   b.Ping,
		Metrics:  reg,
		Logger:   log.Named("http"),
	})

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return sysError(fmt.Errorf("listen %s: %w", addr, err))
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(lis)
	}()
	log.Info("serving", zap.String("addr", lis.Addr().String()), zap.Int("page_size", b.PageSize()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return sysError(fmt.Errorf("shutdown http server: %w", err))
		}
		log.Info("stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return sysError(fmt.Errorf("serve http: %w", err))
	}
}
