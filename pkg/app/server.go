package app

import (
	"errors"
	"net"
	"net/http"
	"time"
)

// Listen binds ":"+port, calls onListening once the socket is bound, then
// serves until Close. A bind error is returned unchanged and onListening is
// not called. Closing the application makes Listen return nil; if Close won
// the race with the bind, the socket is released without calling onListening.
func (a *Application) Listen(port string, onListening func()) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      a.handler(port),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return lis.Close()
	}
	a.srv, a.lis = srv, lis
	a.mu.Unlock()

	if onListening != nil {
		onListening()
	}

	if err := srv.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr is the bound address, or nil before Listen has bound.
func (a *Application) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.lis == nil {
		return nil
	}
	return a.lis.Addr()
}

// Close stops serving immediately; in-flight requests are not drained.
// It may be called before Listen, which then releases its socket and returns.
func (a *Application) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	if a.srv == nil {
		return nil
	}
	return a.srv.Close()
}
