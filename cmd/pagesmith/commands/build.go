package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	s, err := openSession(root, g, config.ModeBuild)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	report, err := s.Builder.Build(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Built %d pages into %s (%s)\n",
		report.Pages, s.Config.BuildDir(), report.Duration().Round(time.Millisecond))
	return nil
}
