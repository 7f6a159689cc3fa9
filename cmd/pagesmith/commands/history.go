package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of builds to show" default:"10"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	if h.Limit < 1 {
		return ferrors.ValidationError("limit must be at least 1").WithContext("flag", "--limit").Build()
	}
	cfg, err := root.loadConfig(config.ModeBuild)
	if err != nil {
		return err
	}
	if cfg.Build.HistoryDB == "" {
		return ferrors.ConfigError("build.history_db is not configured").WithContext("file", cfg.Path).Build()
	}
	store, err := history.Open(resolvePath(cfg.Root, cfg.Build.HistoryDB))
	if err != nil {
		return ferrors.RuntimeError("open build history").WithCause(err).Build()
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return ferrors.RuntimeError("read build history").WithCause(err).Build()
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tKIND\tOUTCOME\tPAGES\tDURATION\tREVISION")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.ID, e.Start.Format(time.RFC3339), e.Kind, e.Outcome, e.Pages, e.Duration, e.Revision)
	}
	return tw.Flush()
}
