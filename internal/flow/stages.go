package flow

import (
	"context"
	"errors"
	"time"

	apperrors "vortexzz-apply/internal/common/errors"
	"vortexzz-apply/internal/common/metrics"
	"vortexzz-apply/internal/models"
	renderresult "vortexzz-apply/internal/stages/application/render-result"
	validateapplication "vortexzz-apply/internal/stages/application/validate-application"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// tally collects what one store update attempt observed. It is recorded once the
// update has returned, never from inside the transaction.
type tally struct {
	runs      []stageRun
	rejected  []models.FieldError
	completed *completion
}

type stageRun struct {
	taskType  string
	errorCode string
	duration  time.Duration
}

// completion describes a submission finished by advance.
type completion struct {
	sessionID   string
	submittedAt time.Time
	bytes       int
}

// runStage executes one stage under its timeout inside a span and notes the outcome
// in t.
func runStage[O any](ctx context.Context, f *Flow, t *tally, taskType string, exec func(context.Context) (O, error)) (O, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, f.stageTimeout(taskType))
	defer cancel()

	ctx, span := f.obs.StartSpan(ctx, taskType, attribute.String("task_type", taskType))
	defer span.End()

	out, err := exec(ctx)
	run := stageRun{taskType: taskType, duration: time.Since(startTime)}
	if err != nil {
		run.errorCode = extractErrorCode(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, run.errorCode)
	}
	t.runs = append(t.runs, run)
	return out, err
}

// record turns a tally into metrics. A completion only counts when the write
// that carried it committed.
func (f *Flow) record(ctx context.Context, t *tally, committed bool) {
	for _, run := range t.runs {
		if run.errorCode != "" {
			metrics.StageRunsFailed.WithLabelValues(run.taskType, run.errorCode).Inc()
			continue
		}
		metrics.StageRunsCompleted.WithLabelValues(run.taskType).Inc()
		metrics.StageRunDuration.WithLabelValues(run.taskType).Observe(run.duration.Seconds())
	}
	if !committed {
		return
	}
	for _, fe := range t.rejected {
		metrics.ValidationFailures.WithLabelValues(string(fe.Field)).Inc()
	}
	if c := t.completed; c != nil {
		f.obs.RecordSubmission(ctx, "completed")
		f.obs.RecordSubmissionDuration(ctx, f.now().Sub(c.submittedAt), "completed")
		f.logger.Info("submission completed", map[string]interface{}{
			"sessionId": c.sessionID,
			"bytes":     c.bytes,
		})
	}
}

func (f *Flow) stageTimeout(taskType string) time.Duration {
	if d, ok := f.config.StageTimeouts[taskType]; ok && d > 0 {
		return d
	}
	return defaultStageTimeout
}

func extractErrorCode(err error) string {
	if stdErr, ok := apperrors.As(err); ok {
		return string(stdErr.Code)
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	case errors.Is(err, context.Canceled):
		return "CANCELLED"
	case errors.Is(err, validateapplication.ErrApplicationValidationFailed):
		return string(apperrors.ErrCodeApplicationValidationFailed)
	case errors.Is(err, renderresult.ErrEmptyDocument):
		return renderresult.ErrEmptyDocument.Error()
	}
	return "UNKNOWN_ERROR"
}
