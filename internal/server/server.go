// Package server binds an application to a port and reports readiness.
//
// The application is opaque; all the bootstrap needs is Listener. On a
// successful bind exactly one line is written to standard output:
//
//	Server is listening on - 8080
package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/shashiranjanraj/ignite/config"
	"github.com/shashiranjanraj/ignite/pkg/metrics"
)

// Listener is implemented by applications that can be bound to a port.
// Listen must call onListening once the endpoint is bound and then block
// serving. An error returned before onListening is a bind failure.
type Listener interface {
	Listen(port string, onListening func()) error
}

// ErrBind matches any *BindError via errors.Is.
var ErrBind = errors.New("bind failure")

// BindError reports that the application could not start listening on Port.
type BindError struct {
	Port string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("server: bind port %q: %v", e.Port, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

func (e *BindError) Is(target error) bool { return target == ErrBind }

type State int32

const (
	NotListening State = iota
	Listening
)

func (s State) String() string {
	if s == Listening {
		return "listening"
	}
	return "not listening"
}

// Bootstrap starts one application and records whether it got as far as
// listening. Use a new Bootstrap per Start.
type Bootstrap struct {
	// Out receives the readiness line. Defaults to os.Stdout.
	Out io.Writer

	state atomic.Int32
}

func New() *Bootstrap {
	return &Bootstrap{Out: os.Stdout}
}

func (b *Bootstrap) State() State {
	return State(b.state.Load())
}

// Start asks app to listen on port and blocks while it serves.
//
// The readiness line is written at most once, however often app invokes the
// callback. If app returns before invoking it, the error is a *BindError and
// nothing is written or logged; reporting it is the caller's job.
func (b *Bootstrap) Start(app Listener, port string) error {
	out := b.Out
	if out == nil {
		out = os.Stdout
	}

	var (
		once  sync.Once
		bound atomic.Bool
	)
	onListening := func() {
		once.Do(func() {
			bound.Store(true)
			metrics.ServerListening.Set(1)
			fmt.Fprintf(out, "Server is listening on - %s\n", port)
			b.state.Store(int32(Listening))
		})
	}

	err := app.Listen(port, onListening)

	if !bound.Load() {
		if err == nil {
			err = errors.New("application returned without listening")
		}
		metrics.BindFailures.Inc()
		return &BindError{Port: port, Err: err}
	}

	metrics.ServerListening.Set(0)
	if err != nil {
		return fmt.Errorf("server: serve: %w", err)
	}
	return nil
}

// Start binds app on port using a fresh Bootstrap writing to stdout.
func Start(app Listener, port string) error {
	return New().Start(app, port)
}

// Run resolves the port from the environment once and starts app on it.
func Run(app Listener) error {
	return Start(app, config.Port())
}
