package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// RunStages executes stages in order, recording timing and stopping on the
// first fatal error.
func RunStages(ctx context.Context, st *State, stages []StageDef) error {
	for _, def := range stages {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(def.Name, ctx.Err())
			st.Report.Errors = append(st.Report.Errors, se)
			st.Report.RecordStageResult(def.Name, StageResultCanceled, st.recorder)
			return se
		default:
		}

		t0 := time.Now()
		err := def.Fn(ctx, st)
		dur := time.Since(t0)

		st.Report.StageDurations[def.Name] = dur
		if st.recorder != nil {
			st.recorder.ObserveStageDuration(string(def.Name), dur)
		}

		res, se := classifyStageResult(def.Name, err)
		st.Report.RecordStageResult(def.Name, res, st.recorder)
		st.logger.Debug("Stage finished",
			logfields.BuildID(st.Report.ID),
			logfields.Stage(string(def.Name)),
			logfields.DurationMS(float64(dur.Microseconds())/1000),
			slog.String("result", string(res)))

		if se != nil {
			st.Report.Errors = append(st.Report.Errors, se)
			return se
		}
	}
	return nil
}

func classifyStageResult(stage StageName, err error) (StageResult, *StageError) {
	if err == nil {
		return StageResultSuccess, nil
	}
	var se *StageError
	if errors.As(err, &se) {
		if se.Kind == StageErrorCanceled {
			return StageResultCanceled, se
		}
		return StageResultFatal, se
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return StageResultCanceled, NewCanceledStageError(stage, err)
	}
	if !ferrors.IsClassified(err) {
		err = ferrors.WrapError(err, ferrors.CategoryBuild, fmt.Sprintf("stage %s failed", stage)).Fatal().Build()
	}
	return StageResultFatal, NewFatalStageError(stage, err)
}
