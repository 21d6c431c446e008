package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// Start serves handler on addr until ctx is cancelled, then drains in-flight requests.
// The returned channel receives the final error once the server has stopped.
func Start(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) (net.Addr, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	done := make(chan error, 1)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	go func() {
		var err error
		select {
		case err = <-serveErr:
		case <-ctx.Done():
			log.Info("shutting down http server", zap.String("addr", ln.Addr().String()))
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			err = srv.Shutdown(sctx)
			cancel()
			if serr := <-serveErr; err == nil {
				err = serr
			}
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()

	log.Info("http server started", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), done, nil
}
