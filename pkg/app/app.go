// Package app provides the HTTP application that ignite binds.
//
// Build one, attach routes, then hand it to the bootstrap:
//
//	a := app.New().Routes(func(r *router.Router) {
//	    r.Get("/hello", "hello", func(w http.ResponseWriter, req *http.Request) {
//	        fmt.Fprintln(w, "Hello!")
//	    })
//	})
//	err := server.Start(a, config.Port())
package app

import (
	"net"
	"net/http"
	"sync"

	"github.com/shashiranjanraj/ignite/pkg/router"
)

// Application is an HTTP handler plus the listener it serves on.
// It satisfies server.Listener.
type Application struct {
	routesFns []func(*router.Router)

	mu     sync.Mutex
	srv    *http.Server
	lis    net.Listener
	closed bool
}

func New() *Application {
	return &Application{}
}

// Routes registers a route callback. Callbacks run in order when the handler
// is built; Routes may be called any number of times.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// RouteList builds a fresh router from the registered callbacks and lists it.
func (a *Application) RouteList() []router.RouteInfo {
	r := router.New()
	for _, fn := range a.routesFns {
		fn(r)
	}
	return r.Routes()
}
