package app

import (
	"net/http"

	"github.com/shashiranjanraj/ignite/config"
	"github.com/shashiranjanraj/ignite/pkg/logger"
	"github.com/shashiranjanraj/ignite/pkg/metrics"
	"github.com/shashiranjanraj/ignite/pkg/middleware"
	"github.com/shashiranjanraj/ignite/pkg/reqid"
	"github.com/shashiranjanraj/ignite/pkg/router"
)

// Handler builds the http.Handler: the default middleware stack, /metrics,
// then every registered route callback.
func (a *Application) Handler() http.Handler {
	return a.handler("")
}

// handler tags request logs with the application name and, once bound, the
// port it serves on.
func (a *Application) handler(port string) http.Handler {
	base := logger.L.With("app", config.AppName())
	if port != "" {
		base = base.With("port", port)
	}

	r := router.New()

	// Outermost first: metrics see total latency, recovery sees every panic,
	// the request ID exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.RequestLogger(base))

	r.HandleFunc("/metrics", metrics.Handler())

	for _, fn := range a.routesFns {
		fn(r)
	}

	return r.Handler()
}
