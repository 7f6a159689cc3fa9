package build

import (
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

// Kind names the pipeline a report belongs to.
type Kind string

const (
	KindFull   Kind = "full"
	KindStatic Kind = "static"
	KindPages  Kind = "pages"
)

// Outcome is the final state of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// StageCount aggregates result counts for a stage.
type StageCount struct {
	Success  int
	Fatal    int
	Canceled int
	Skipped  int
}

// Report captures the timing and outcome of one build run.
type Report struct {
	ID             string
	Kind           Kind
	Env            string
	Revision       string
	Start          time.Time
	End            time.Time
	StageDurations map[StageName]time.Duration
	StageCounts    map[StageName]StageCount
	// Pages is the number of pages written; Assets the number of SFC files.
	Pages  int
	Assets int
	// ManifestHash is the manifest.json content hash, empty when no manifest
	// was written. Unchanged is true when it equals the previous build's.
	ManifestHash string
	Unchanged    bool
	Errors       []error
	Outcome      Outcome
}

func newReport(id string, kind Kind, env string, start time.Time) *Report {
	return &Report{
		ID:             id,
		Kind:           kind,
		Env:            env,
		Start:          start,
		StageDurations: make(map[StageName]time.Duration),
		StageCounts:    make(map[StageName]StageCount),
	}
}

// Duration is the wall time between Start and End.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Err returns the first fatal error, if any.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// RecordStageResult updates the stage counters and emits metrics.
func (r *Report) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	sc := r.StageCounts[stage]
	var label metrics.ResultLabel
	switch res {
	case StageResultSuccess:
		sc.Success++
		label = metrics.ResultSuccess
	case StageResultFatal:
		sc.Fatal++
		label = metrics.ResultFatal
	case StageResultCanceled:
		sc.Canceled++
		label = metrics.ResultCanceled
	case StageResultSkipped:
		sc.Skipped++
		label = metrics.ResultSkipped
	}
	r.StageCounts[stage] = sc
	if recorder != nil && label != "" {
		recorder.IncStageResult(string(stage), label)
	}
}

// DeriveOutcome sets Outcome from the recorded errors.
func (r *Report) DeriveOutcome() {
	if len(r.Errors) == 0 {
		r.Outcome = OutcomeSuccess
		return
	}
	for _, e := range r.Errors {
		var se *StageError
		if errors.As(e, &se) && se.Kind == StageErrorCanceled {
			r.Outcome = OutcomeCanceled
			return
		}
	}
	r.Outcome = OutcomeFailed
}

// Finish stamps the end time and derives the outcome.
func (r *Report) Finish(end time.Time) {
	r.End = end
	r.DeriveOutcome()
}

// Summary returns a single-line human readable summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("kind=%s pages=%d assets=%d stages=%d duration=%s outcome=%s",
		r.Kind, r.Pages, r.Assets, len(r.StageDurations), r.Duration().Truncate(time.Millisecond), r.Outcome)
}
