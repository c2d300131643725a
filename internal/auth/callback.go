package auth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/brizzai/image-feed/internal/auth/handlers"
	"github.com/brizzai/image-feed/internal/logger"
	"go.uber.org/zap"
)

// CallbackListener is a loopback HTTP server that catches the authorization redirect
type CallbackListener struct {
	addr    string
	handler *handlers.Handler
}

// NewCallbackListener creates a listener for addr that extracts codes with interceptor
func NewCallbackListener(addr string, interceptor Interceptor) *CallbackListener {
	return &CallbackListener{
		addr:    addr,
		handler: handlers.NewHandler(interceptor.CodeFromURL),
	}
}

// Codes delivers the first authorization code received
func (l *CallbackListener) Codes() <-chan string {
	return l.handler.Codes()
}

// Handler returns the HTTP handler serving every path
func (l *CallbackListener) Handler() http.Handler {
	return http.HandlerFunc(l.handler.HandleAuthCallback)
}

// Run serves until ctx is done. It returns once the listener is bound so
// callers can tell the user where to point the browser.
func (l *CallbackListener) Run(ctx context.Context) (net.Addr, <-chan error, error) {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return nil, nil, err
	}

	server := &http.Server{
		Handler:           l.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		logger.Info("Waiting for authorization callback", zap.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- err
		}
		close(done)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Callback listener shutdown failed", zap.Error(err))
		}
	}()

	return ln.Addr(), done, nil
}
