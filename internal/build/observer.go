package build

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

// Observer is notified once a build run has finished, whatever its outcome.
// Observer failures are logged and never fail the build.
type Observer interface {
	OnBuildComplete(ctx context.Context, report *Report) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, report *Report) error

func (f ObserverFunc) OnBuildComplete(ctx context.Context, report *Report) error {
	return f(ctx, report)
}

// RecorderObserver emits build-level metrics.
type RecorderObserver struct {
	Recorder metrics.Recorder
}

func (r RecorderObserver) OnBuildComplete(_ context.Context, report *Report) error {
	if r.Recorder == nil {
		return nil
	}
	r.Recorder.ObserveBuildDuration(report.Duration())
	r.Recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))
	return nil
}

func notifyObservers(ctx context.Context, logger *slog.Logger, observers []Observer, report *Report) {
	// Observers run even when the build was canceled.
	ctx = context.WithoutCancel(ctx)
	for _, o := range observers {
		if o == nil {
			continue
		}
		if err := o.OnBuildComplete(ctx, report); err != nil {
			logger.Warn("Build observer failed", logfields.BuildID(report.ID), logfields.Error(err))
		}
	}
}
