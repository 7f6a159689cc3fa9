package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Host string `help:"Interface to listen on" default:"127.0.0.1"`
	Port int    `short:"p" help:"Port to listen on; overrides serve.port"`
}

func (c *ServeCmd) Run(g *Global, root *CLI) error {
	if c.Port < 0 || c.Port > 65535 {
		return ferrors.ValidationError(fmt.Sprintf("port %d is out of range", c.Port)).WithContext("flag", "--port").Build()
	}
	s, err := openSession(root, g, config.ModeServe)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.Config
	port := cfg.Serve.Port
	if c.Port > 0 {
		port = c.Port
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	srv := preview.New(s.Builder, preview.Options{
		Addr:            fmt.Sprintf("%s:%d", c.Host, port),
		OutputDir:       cfg.BuildDir(),
		StaticDir:       cfg.StaticDir(),
		PageDirs:        []string{cfg.PagesDir(), cfg.TemplatesDir(), cfg.ContentDir(), cfg.DataDir()},
		Watch:           cfg.LivereloadEnabled(),
		RebuildInterval: cfg.RebuildInterval(),
		Registry:        s.Registry,
		Logger:          logger(g),
	})
	return srv.Run(ctx)
}
