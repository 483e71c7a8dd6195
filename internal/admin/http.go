package admin

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

const (
	// Time in-flight requests get to finish once the server is stopping.
	// Live streams are hijacked connections and end when the store closes.
	shutdownTimeout = 5 * time.Second

	readHeaderTimeout = 10 * time.Second
)

// ListenAndServe listens on addr and serves h until ctx is done.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.New("listening failed").
			WithTag("addr", addr).
			Wrap(err)
	}
	return Serve(ctx, ln, h)
}

// Serve serves h on ln until ctx is done, then shuts the server down. It
// returns nil after a clean shutdown. ln is closed when Serve returns.
func Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	addr := ln.Addr().String()
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	served := make(chan error, 1)
	go func() {
		logs.WithTag("addr", addr).Info("starting admin server")
		served <- srv.Serve(ln)
	}()

	select {
	case err := <-served:
		return errors.New("admin server stopped").
			WithTag("addr", addr).
			Wrap(err)

	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return errors.New("shutting down the admin server failed").
			WithTag("addr", addr).
			Wrap(err)
	}

	if err := <-served; err != http.ErrServerClosed {
		return errors.New("admin server stopped").
			WithTag("addr", addr).
			Wrap(err)
	}

	logs.WithTag("addr", addr).Info("admin server stopped")
	return nil
}
