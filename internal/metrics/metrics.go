// Package metrics exposes Prometheus instrumentation for Unsplash API traffic
// and feed activity.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/brizzai/image-feed/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	LabelMethod = "method"
	LabelRoute  = "route"
	LabelStatus = "status"
	LabelAction = "action"
	LabelResult = "result"

	// StatusTransportError labels requests that never produced an HTTP status
	StatusTransportError = "transport_error"
)

var apiLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// API Metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_feed_api_requests_total",
			Help: "Unsplash API requests by method, route template and status",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_feed_api_request_duration_seconds",
			Help:    "Unsplash API request latency",
			Buckets: apiLatencyBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	RateLimitWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_feed_rate_limit_waits_total",
			Help: "Requests delayed by the client-side rate limiter",
		},
	)
)

// Feed Metrics
var (
	PhotosLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_feed_photos_loaded_total",
			Help: "Photos appended to the feed after duplicate filtering",
		},
	)

	DuplicatePhotosDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_feed_duplicate_photos_dropped_total",
			Help: "Photos dropped from a page because their id was already listed",
		},
	)

	LikeToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_feed_like_toggles_total",
			Help: "Like and unlike attempts by outcome",
		},
		[]string{LabelAction, LabelResult},
	)

	TokenExchanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_feed_token_exchanges_total",
			Help: "Authorization code exchanges by outcome",
		},
		[]string{LabelResult},
	)
)

// ObserveRequest records one finished API request
func ObserveRequest(method, route, status string, elapsed time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Result converts an error into a result label
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// Serve exposes the default registry on addr until ctx is done.
// An empty addr disables the endpoint.
func Serve(ctx context.Context, addr, path string) error {
	if addr == "" {
		return nil
	}
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Serving metrics", zap.String("address", addr), zap.String("path", path))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
