package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagesmith/internal/build"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

// Builder is the build surface the preview server drives.
type Builder interface {
	Build(ctx context.Context) (*build.Report, error)
	BuildStatic(ctx context.Context) (*build.Report, error)
	BuildPages(ctx context.Context) (*build.Report, error)
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string
	// OutputDir is the directory served over HTTP.
	OutputDir string
	// StaticDir is watched for static-only rebuilds.
	StaticDir string
	// PageDirs are watched for page rebuilds.
	PageDirs []string
	// Watch enables the filesystem watcher.
	Watch bool
	// RebuildInterval schedules periodic full rebuilds when positive.
	RebuildInterval time.Duration
	// Registry, when set, is served on /metrics.
	Registry *prom.Registry
	Logger   *slog.Logger
	// Debounce overrides DebounceDelay.
	Debounce time.Duration
}

// buildStatus tracks the outcome of the latest build for error display.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool
}

func (bs *buildStatus) set(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
	if err == nil {
		bs.hasGoodBuild = true
	}
}

func (bs *buildStatus) get() (hasGoodBuild bool, err error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.hasGoodBuild, bs.lastError
}

// Server serves the output directory and keeps it up to date.
type Server struct {
	builder Builder
	opts    Options
	logger  *slog.Logger
	status  buildStatus
	rb      *rebuilder
	ready   chan struct{}
	addr    net.Addr
	builds  sync.WaitGroup
}

// New returns a preview server for b.
func New(b Builder, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := opts.Debounce
	if delay <= 0 {
		delay = DebounceDelay
	}
	return &Server{
		builder: b,
		opts:    opts,
		logger:  logger,
		rb:      newRebuilder(delay),
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the HTTP listener is accepting connections.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr is the bound listen address; valid after Ready is closed.
func (s *Server) Addr() net.Addr { return s.addr }

// Handler returns the HTTP handler serving the site and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.Registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.opts.Registry))
	}
	files := http.FileServer(http.Dir(s.opts.OutputDir))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if good, err := s.status.get(); err != nil && !good {
			http.Error(w, "build failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		files.ServeHTTP(w, r)
	})
	return mux
}

// Run builds the site, serves it and watches for changes until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.runBuild(ctx, targetAll, true)

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return ferrors.RuntimeError("preview server cannot listen").WithCause(err).WithContext("addr", s.opts.Addr).Build()
	}
	s.addr = ln.Addr()
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	s.logger.Info("Preview server listening", logfields.URL("http://"+s.addr.String()))
	close(s.ready)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	s.builds.Add(1)
	go s.worker(workerCtx)

	var scheduler gocron.Scheduler
	if s.opts.RebuildInterval > 0 {
		if scheduler, err = s.startScheduler(); err != nil {
			s.logger.Warn("Periodic rebuilds disabled", logfields.Error(err))
		}
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	var watcher *fsnotify.Watcher
	set := watchSet{static: s.opts.StaticDir, pages: s.opts.PageDirs}
	if s.opts.Watch {
		watcher, err = newWatcher(set, s.logger)
		if err != nil {
			s.logger.Warn("File watching disabled", logfields.Error(err))
		} else {
			events, watchErrs = watcher.Events, watcher.Errors
		}
	}

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err, ok := <-serveErr:
			if ok {
				runErr = fmt.Errorf("serve: %w", err)
			}
			break loop
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleEvent(watcher, set, ev)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			s.logger.Warn("Watcher error", logfields.Error(err))
		}
	}

	s.logger.Info("Shutting down preview server")
	if watcher != nil {
		_ = watcher.Close()
	}
	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			s.logger.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}
	s.rb.stop()
	stopWorker()
	s.builds.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	return runErr
}

func (s *Server) startScheduler() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.opts.RebuildInterval),
		gocron.NewTask(func() { s.rb.requestNow(targetAll) }),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	sched.Start()
	s.logger.Info("Periodic rebuilds scheduled", slog.Duration("interval", s.opts.RebuildInterval))
	return sched, nil
}

func (s *Server) handleEvent(watcher *fsnotify.Watcher, set watchSet, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			addDirsRecursive(watcher, ev.Name, s.logger)
		}
	}
	t := set.classify(ev.Name)
	if t == 0 {
		return
	}
	s.logger.Debug("File change detected", logfields.Path(ev.Name),
		slog.String("op", ev.Op.String()), slog.String("rebuild", t.String()))
	s.rb.request(t)
}

// worker is the only goroutine that runs rebuilds.
func (s *Server) worker(ctx context.Context) {
	defer s.builds.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.rb.wake:
			if t := s.rb.take(); t != 0 {
				s.runBuild(ctx, t, false)
			}
		}
	}
}

func (s *Server) runBuild(ctx context.Context, t target, initial bool) {
	var err error
	switch {
	case initial:
		_, err = s.builder.Build(ctx)
	case t == targetAll:
		if _, err = s.builder.BuildStatic(ctx); err == nil {
			_, err = s.builder.BuildPages(ctx)
		}
	case t == targetStatic:
		_, err = s.builder.BuildStatic(ctx)
	case t == targetPages:
		_, err = s.builder.BuildPages(ctx)
	}
	if err != nil {
		s.logger.Warn("Rebuild failed", slog.String("rebuild", t.String()), logfields.Error(err))
	} else if !initial {
		s.logger.Info("Site rebuilt", slog.String("rebuild", t.String()))
	}
	s.status.set(err)
}
