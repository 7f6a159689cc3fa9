package preview

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/build"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

type fakeBuilder struct {
	mu      sync.Mutex
	calls   []string
	failAll error
}

func (f *fakeBuilder) record(kind string) (*build.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, kind)
	return &build.Report{}, f.failAll
}

func (f *fakeBuilder) Build(context.Context) (*build.Report, error)       { return f.record("full") }
func (f *fakeBuilder) BuildStatic(context.Context) (*build.Report, error) { return f.record("static") }
func (f *fakeBuilder) BuildPages(context.Context) (*build.Report, error)  { return f.record("pages") }

func (f *fakeBuilder) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == kind {
			n++
		}
	}
	return n
}

func TestShouldIgnoreEvent(t *testing.T) {
	require.True(t, shouldIgnoreEvent("/tmp/.hidden.md"))
	require.True(t, shouldIgnoreEvent("/tmp/#foo#"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.swp"))
	require.True(t, shouldIgnoreEvent("/tmp/index.html~"))
	require.False(t, shouldIgnoreEvent("/tmp/visible.md"))
}

func TestClassify(t *testing.T) {
	root := t.TempDir()
	set := watchSet{
		static: filepath.Join(root, "static"),
		pages:  []string{filepath.Join(root, "pages"), filepath.Join(root, "templates")},
	}
	require.Equal(t, targetStatic, set.classify(filepath.Join(root, "static", "css", "a.css")))
	require.Equal(t, targetPages, set.classify(filepath.Join(root, "pages", "index.html")))
	require.Equal(t, targetPages, set.classify(filepath.Join(root, "templates", "layouts", "x.html")))
	require.Equal(t, target(0), set.classify(filepath.Join(root, "staticfiles", "x")))
	require.Equal(t, target(0), set.classify(filepath.Join(root, ".build", "index.html")))
}

func TestRebuilderCoalescesRequests(t *testing.T) {
	rb := newRebuilder(20 * time.Millisecond)
	rb.request(targetStatic)
	rb.request(targetPages)
	rb.request(targetPages)

	select {
	case <-rb.wake:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced signal not delivered")
	}
	require.Equal(t, targetAll, rb.take())
	require.Equal(t, target(0), rb.take())

	select {
	case <-rb.wake:
		t.Fatal("unexpected second signal")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestHandlerServesSiteAndMetrics(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("<h1>hi</h1>"), 0o600))

	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.IncPagesWritten("page")

	s := New(&fakeBuilder{}, Options{OutputDir: out, Registry: reg})
	s.status.set(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body := get(t, srv.URL+"/")
	require.Equal(t, "<h1>hi</h1>", body)
	require.Contains(t, get(t, srv.URL+"/metrics"), "pagesmith_pages_written_total")
}

func TestHandlerReportsFailedInitialBuild(t *testing.T) {
	s := New(&fakeBuilder{}, Options{OutputDir: t.TempDir()})
	s.status.set(errors.New("template compile failed"))

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "template compile failed")
}

func TestRunFailsWhenAddressIsTaken(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	s := New(&fakeBuilder{}, Options{Addr: ln.Addr().String(), OutputDir: t.TempDir()})
	err = s.Run(context.Background())
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryRuntime))
	require.Equal(t, 12, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestRunRebuildsOnChanges(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, ".build")
	static := filepath.Join(root, "static")
	pages := filepath.Join(root, "pages")
	for _, d := range []string{out, static, pages} {
		require.NoError(t, os.MkdirAll(d, 0o750))
	}

	fb := &fakeBuilder{}
	s := New(fb, Options{
		Addr:      "127.0.0.1:0",
		OutputDir: out,
		StaticDir: static,
		PageDirs:  []string{pages},
		Watch:     true,
		Debounce:  20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-s.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server not ready")
	}
	require.Equal(t, 1, fb.count("full"))

	require.NoError(t, os.WriteFile(filepath.Join(pages, "index.html"), []byte("x"), 0o600))
	require.Eventually(t, func() bool { return fb.count("pages") >= 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(static, "site.css"), []byte("x"), 0o600))
	require.Eventually(t, func() bool { return fb.count("static") >= 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
