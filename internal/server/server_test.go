package server_test

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ignite/internal/server"
	"github.com/shashiranjanraj/ignite/pkg/app"
	"github.com/shashiranjanraj/ignite/pkg/logger"
	"github.com/shashiranjanraj/ignite/pkg/metrics"
)

// fakeApp records the port it was asked for and calls back callbacks times.
type fakeApp struct {
	callbacks int
	err       error
	gotPort   string
}

func (f *fakeApp) Listen(port string, onListening func()) error {
	f.gotPort = port
	for i := 0; i < f.callbacks; i++ {
		onListening()
	}
	return f.err
}

// syncBuffer is safe for the serving goroutine and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return strconv.Itoa(port)
}

func TestStart_WritesReadyLineOnce(t *testing.T) {
	var out bytes.Buffer
	b := &server.Bootstrap{Out: &out}
	f := &fakeApp{callbacks: 3}

	require.NoError(t, b.Start(f, "3000"))

	assert.Equal(t, "3000", f.gotPort)
	assert.Equal(t, "Server is listening on - 3000\n", out.String())
	assert.Equal(t, server.Listening, b.State())
}

func TestStart_PortPrintedAsGiven(t *testing.T) {
	var out bytes.Buffer
	b := &server.Bootstrap{Out: &out}

	require.NoError(t, b.Start(&fakeApp{callbacks: 1}, "not-a-port"))
	assert.Equal(t, "Server is listening on - not-a-port\n", out.String())
}

func TestStart_BindFailure(t *testing.T) {
	var out bytes.Buffer
	b := &server.Bootstrap{Out: &out}
	cause := errors.New("address already in use")
	before := testutil.ToFloat64(metrics.BindFailures)

	err := b.Start(&fakeApp{err: cause}, "3000")

	require.Error(t, err)
	assert.ErrorIs(t, err, server.ErrBind)
	assert.ErrorIs(t, err, cause)

	var bindErr *server.BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "3000", bindErr.Port)

	assert.Empty(t, out.String())
	assert.Equal(t, server.NotListening, b.State())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.BindFailures))
}

func TestStart_ReturnWithoutListeningIsBindFailure(t *testing.T) {
	var out bytes.Buffer
	err := (&server.Bootstrap{Out: &out}).Start(&fakeApp{}, "3000")

	assert.ErrorIs(t, err, server.ErrBind)
	assert.Empty(t, out.String())
}

func TestStart_ServeErrorAfterListening(t *testing.T) {
	var out bytes.Buffer
	cause := errors.New("accept: too many open files")

	err := (&server.Bootstrap{Out: &out}).Start(&fakeApp{callbacks: 1, err: cause}, "3000")

	require.Error(t, err)
	assert.NotErrorIs(t, err, server.ErrBind)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Server is listening on - 3000\n", out.String())
}

func TestStart_HTTPApplication(t *testing.T) {
	port := freePort(t)
	out := &syncBuffer{}
	b := &server.Bootstrap{Out: out}
	a := app.New()

	done := make(chan error, 1)
	go func() { done <- b.Start(a, port) }()

	require.Eventually(t, func() bool { return b.State() == server.Listening }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ServerListening))

	conn, err := net.Dial("tcp", "127.0.0.1:"+port)
	require.NoError(t, err)
	conn.Close()

	require.NoError(t, a.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("bootstrap did not return after Close")
	}

	assert.Equal(t, fmt.Sprintf("Server is listening on - %s\n", port), out.String())
}

func TestStart_HTTPApplicationPortInUse(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	port := strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)

	var out bytes.Buffer
	b := &server.Bootstrap{Out: &out}
	err = b.Start(app.New(), port)

	assert.ErrorIs(t, err, server.ErrBind)
	assert.Empty(t, out.String())
	assert.Equal(t, server.NotListening, b.State())
}

func TestStart_BindFailureLogsNothing(t *testing.T) {
	var logs bytes.Buffer
	logger.Setup("local", &logs)
	t.Cleanup(func() { logger.Setup("local", os.Stdout) })

	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	var out bytes.Buffer
	err = (&server.Bootstrap{Out: &out}).Start(app.New(), strconv.Itoa(busy.Addr().(*net.TCPAddr).Port))

	assert.ErrorIs(t, err, server.ErrBind)
	assert.Empty(t, out.String())
	assert.Empty(t, logs.String())
}

func TestRun_UsesDefaultPortWhenUnset(t *testing.T) {
	t.Setenv("PORT", "") // restores the original value on cleanup
	require.NoError(t, os.Unsetenv("PORT"))
	_, set := os.LookupEnv("PORT")
	require.False(t, set)

	f := &fakeApp{callbacks: 1}

	require.NoError(t, server.Run(f))
	assert.Equal(t, "8080", f.gotPort)
}

func TestRun_UsesDefaultPortWhenEmpty(t *testing.T) {
	t.Setenv("PORT", "")
	f := &fakeApp{callbacks: 1}

	// Run writes to stdout; only the port handed to the application is checked.
	require.NoError(t, server.Run(f))
	assert.Equal(t, "8080", f.gotPort)
}

func TestRun_UsesEnvironmentPort(t *testing.T) {
	t.Setenv("PORT", "3000")
	f := &fakeApp{callbacks: 1}

	require.NoError(t, server.Run(f))
	assert.Equal(t, "3000", f.gotPort)
}
