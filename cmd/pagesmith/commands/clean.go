package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (c *CleanCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(config.ModeBuild)
	if err != nil {
		return err
	}
	dir := cfg.BuildDir()
	if err := os.RemoveAll(dir); err != nil {
		return ferrors.FileSystemError("remove output directory").WithCause(err).WithContext("file", dir).Build()
	}
	logger(g).Debug("Removed output directory", logfields.Path(dir))
	_, _ = fmt.Fprintf(g.out(), "Removed %s\n", dir)
	return nil
}
