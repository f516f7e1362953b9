package cli

import (
	"bytes"
	"net/http/httptest"
	"sync"
	"testing"

	"salesdesk/internal/demo"
	"salesdesk/internal/logging"
	"salesdesk/internal/records"
)

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a polling
// test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newDemoBackend serves the fixtures over httptest. token may be empty.
func newDemoBackend(t *testing.T, token string) (string, *demo.Store) {
	t.Helper()
	f, err := records.LoadFixtures()
	if err != nil {
		t.Fatalf("LoadFixtures() error = %v", err)
	}
	lm := logging.NewTestLogManager(100)
	t.Cleanup(func() { _ = lm.Close() })

	store := demo.NewStore(f)
	srv := httptest.NewServer(demo.New(demo.Config{Token: token}, store, lm).Handler())
	t.Cleanup(srv.Close)
	return srv.URL, store
}

type testRun struct {
	stdout *syncBuffer
	stderr *syncBuffer
	code   *int
}

// testOptions returns Options over a fresh config dir, pointed at
// backendURL, recording the exit code.
func testOptions(t *testing.T, backendURL string) (Options, testRun) {
	t.Helper()
	run := testRun{stdout: &syncBuffer{}, stderr: &syncBuffer{}, code: new(int)}
	*run.code = -1
	return Options{
		ConfigDir: t.TempDir(),
		Backend:   backendURL,
		Stdout:    run.stdout,
		Stderr:    run.stderr,
		ExitFunc:  func(c int) { *run.code = c },
	}, run
}
