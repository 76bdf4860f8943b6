// Package middleware provides HTTP middleware for the devtools server.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware
//
// Both work on any http.Handler and label requests by their chi route
// pattern ("/instances", "/ws") rather than the raw path, so metric
// cardinality stays bounded.
//
// # OpenTelemetry Middleware
//
// OpenTelemetry starts a server span for each request and stores it in the
// request context:
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-tool"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/metrics"
//	    }),
//	))
//
// Handlers reach the span through SpanFromContext(r.Context()).
//
// # Prometheus Metrics
//
// Prometheus collects:
//   - eghact_devtools_requests_total: requests by route and status class
//   - eghact_devtools_request_duration_seconds: request duration by route
//   - eghact_devtools_feed_clients: connected patch feed clients
//
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//
// Collectors already registered on the registry are reused, so several
// servers may share one registry.
package middleware
