package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagesmith/internal/build"
	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/gitinfo"
	"git.home.luguber.info/inful/pagesmith/internal/history"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/notify"
	"git.home.luguber.info/inful/pagesmith/internal/version"
)

// Global carries state shared by subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives command output; defaults to stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition and global flags.
type CLI struct {
	Root      string `short:"C" help:"Project root directory" default:"." type:"path"`
	Config    string `short:"c" help:"Configuration file, relative to the project root" default:"pagesmith.yml"`
	Env       string `help:"Environment overlay from the env section; overrides the section's env key"`
	Verbose   bool   `short:"v" help:"Enable verbose logging"`
	LogFormat string `name:"log-format" help:"Log output format (text|json)" default:"text"`

	Build   BuildCmd   `cmd:"" help:"Build the site into .build"`
	Serve   ServeCmd   `cmd:"" help:"Build, serve and rebuild the site on changes"`
	Clean   CleanCmd   `cmd:"" help:"Remove the output directory"`
	History HistoryCmd `cmd:"" help:"List recent builds from build.history_db"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AfterApply runs after flag parsing; it configures logging once.
func (c *CLI) AfterApply(g *Global) error {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}
	var handler slog.Handler
	if config.NormalizeLogFormat(c.LogFormat) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

// parseLogLevel honours -v first, then PAGESMITH_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch config.NormalizeLogLevel(os.Getenv("PAGESMITH_LOG_LEVEL")) {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *CLI) loadConfig(mode config.Mode) (*config.Config, error) {
	return config.Load(c.Root, config.LoadOptions{File: c.Config, Mode: mode, Env: c.Env})
}

func logger(g *Global) *slog.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// session bundles a builder with the side channels it reports to.
type session struct {
	Config   *config.Config
	Builder  *build.Builder
	Registry *prom.Registry
	closers  []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openSession loads configuration and wires the builder, metrics, history
// and notifications. Side channels that fail to start are logged and
// skipped.
func openSession(root *CLI, g *Global, mode config.Mode) (*session, error) {
	log := logger(g)
	cfg, err := root.loadConfig(mode)
	if err != nil {
		return nil, err
	}
	s := &session{Config: cfg, Registry: metrics.NewRegistry(version.Version)}

	var observers []build.Observer
	active := cfg.Active()
	if active.HistoryDB != "" {
		path := resolvePath(cfg.Root, active.HistoryDB)
		store, err := history.Open(path)
		if err != nil {
			log.Warn("Build history disabled", logfields.Path(path), logfields.Error(err))
		} else {
			observers = append(observers, store)
			s.closers = append(s.closers, func() { _ = store.Close() })
		}
	}
	if active.Notify.NATSURL != "" {
		pub, err := notify.Connect(active.Notify.NATSURL, active.Notify.Subject, log)
		if err != nil {
			log.Warn("Build notifications disabled", logfields.Error(err))
		} else {
			observers = append(observers, pub)
			s.closers = append(s.closers, pub.Close)
		}
	}

	revision := gitinfo.Revision(cfg.Root)
	b, err := build.New(cfg, build.Options{
		Logger:    log,
		Recorder:  metrics.NewPrometheusRecorder(s.Registry),
		Observers: observers,
		Revision:  revision,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Builder = b
	s.closers = append(s.closers, func() { _ = b.Close() })
	return s, nil
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
