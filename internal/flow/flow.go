// Package flow drives the moderator application through validation, the simulated
// submission delay, formatting and result rendering. All state lives in the session
// store; a Flow holds no per-visitor data.
package flow

import (
	"context"
	"errors"
	"time"

	apperrors "vortexzz-apply/internal/common/errors"
	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/common/observability"
	"vortexzz-apply/internal/models"
	"vortexzz-apply/internal/session"
	formatapplication "vortexzz-apply/internal/stages/application/format-application"
	renderresult "vortexzz-apply/internal/stages/application/render-result"
	validateapplication "vortexzz-apply/internal/stages/application/validate-application"

	"go.opentelemetry.io/otel/attribute"
)

const defaultStageTimeout = 10 * time.Second

type Config struct {
	SubmissionDelay time.Duration
	CopyFeedback    time.Duration
	StageTimeouts   map[string]time.Duration
}

type Dependencies struct {
	Store     session.Store
	Validator *validateapplication.Handler
	Formatter *formatapplication.Handler
	Renderer  *renderresult.Handler
	Obs       *observability.Observability
	Now       func() time.Time
	Logger    logger.Logger
}

type Flow struct {
	config    Config
	store     session.Store
	validator *validateapplication.Handler
	formatter *formatapplication.Handler
	renderer  *renderresult.Handler
	obs       *observability.Observability
	now       func() time.Time
	logger    logger.Logger
}

func New(config Config, deps Dependencies) *Flow {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Obs == nil {
		deps.Obs = observability.Nop()
	}
	return &Flow{
		config:    config,
		store:     deps.Store,
		validator: deps.Validator,
		formatter: deps.Formatter,
		renderer:  deps.Renderer,
		obs:       deps.Obs,
		now:       deps.Now,
		logger:    deps.Logger.WithFields(map[string]interface{}{"component": "flow"}),
	}
}

// Submit validates fields and, when they pass, starts the simulated submission.
// On validation failure the returned session carries the inline errors and the error
// is an APPLICATION_VALIDATION_FAILED StandardError.
func (f *Flow) Submit(ctx context.Context, id string, fields models.FormValues) (*models.Session, error) {
	ctx, span := f.obs.StartSpan(ctx, "flow.submit", attribute.String("session_id", id))
	defer span.End()

	var validationErr error
	sess, err := f.update(ctx, id, func(s *models.Session, t *tally) error {
		validationErr = nil
		if err := f.advance(ctx, s, t); err != nil {
			return err
		}
		switch s.State {
		case models.FlowStateSubmitting:
			return apperrors.NewSubmissionInProgressError(s.ID)
		case models.FlowStateDone:
			return apperrors.NewResetRequiredError()
		}

		s.FieldErrors = nil
		s.Form = copyValues(fields)

		now := f.now()
		out, err := runStage(ctx, f, t, validateapplication.TaskType, func(ctx context.Context) (*validateapplication.Output, error) {
			return f.validator.Execute(ctx, &validateapplication.Input{Fields: fields, SubmittedAt: now})
		})
		if errors.Is(err, validateapplication.ErrApplicationValidationFailed) {
			s.FieldErrors = out.ErrorMap()
			t.rejected = out.ValidationErrors
			validationErr = apperrors.NewApplicationValidationFailedError(len(out.ValidationErrors)).
				WithMetadata("fields", out.ValidationErrors)
			return nil
		}
		if err != nil {
			return err
		}

		s.State = models.FlowStateSubmitting
		s.Pending = out.Application
		s.SubmittedAt = now
		s.ReadyAt = now.Add(f.config.SubmissionDelay)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if validationErr != nil {
		f.obs.RecordSubmission(ctx, "rejected")
		return sess, validationErr
	}

	f.obs.RecordSubmission(ctx, "accepted")
	f.logger.Info("submission accepted", map[string]interface{}{
		"sessionId": id,
		"readyAt":   sess.ReadyAt.Format(time.RFC3339Nano),
	})
	return sess, nil
}

// Advance returns the current session, completing a pending submission whose delay
// has elapsed.
func (f *Flow) Advance(ctx context.Context, id string) (*models.Session, error) {
	return f.update(ctx, id, func(s *models.Session, t *tally) error {
		return f.advance(ctx, s, t)
	})
}

// Await blocks until the session's submission has completed or ctx is done. A
// cancelled wait leaves the submission running.
func (f *Flow) Await(ctx context.Context, id string) (*models.Session, error) {
	for {
		sess, err := f.Advance(ctx, id)
		if err != nil {
			return nil, err
		}
		if sess.State != models.FlowStateSubmitting {
			return sess, nil
		}

		wait := sess.ReadyAt.Sub(f.now())
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return sess, apperrors.NewResultNotReadyError(sess.ReadyAt)
		case <-timer.C:
		}
	}
}

// Reset discards the result view and restores an empty, visible form.
func (f *Flow) Reset(ctx context.Context, id string) (*models.Session, error) {
	return f.update(ctx, id, func(s *models.Session, t *tally) error {
		if err := f.advance(ctx, s, t); err != nil {
			return err
		}
		if s.State == models.FlowStateSubmitting {
			return apperrors.NewSubmissionInProgressError(s.ID)
		}
		s.State = models.FlowStateIdle
		s.Form = nil
		s.FieldErrors = nil
		s.Pending = nil
		s.Result = nil
		s.SubmittedAt = time.Time{}
		s.ReadyAt = time.Time{}
		s.CopiedAt = time.Time{}
		return nil
	})
}

// Copy returns the rendered document for the clipboard. The feedback window only
// starts once the client reports the write through ConfirmCopy. Without a result it
// fails with the content's copy alert and changes nothing.
func (f *Flow) Copy(ctx context.Context, id string) (string, error) {
	var text string
	_, err := f.update(ctx, id, func(s *models.Session, t *tally) error {
		if err := f.advance(ctx, s, t); err != nil {
			return err
		}
		if s.Result == nil || s.Result.Text == "" {
			return apperrors.NewCopyFailedError(f.copyFailedAlert(s), "no rendered application in session")
		}
		text = s.Result.Text
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// ConfirmCopy starts the copy feedback window after the client wrote the document
// to its clipboard.
func (f *Flow) ConfirmCopy(ctx context.Context, id string) (*models.Session, error) {
	return f.update(ctx, id, func(s *models.Session, t *tally) error {
		if err := f.advance(ctx, s, t); err != nil {
			return err
		}
		if s.Result == nil {
			return apperrors.NewCopyFailedError(f.copyFailedAlert(s), "no rendered application in session")
		}
		s.CopiedAt = f.now()
		return nil
	})
}

// CopyFailed records a clipboard write the client could not complete. Any running
// feedback window is cleared and the returned alert tells the visitor to copy by hand.
func (f *Flow) CopyFailed(ctx context.Context, id string) (*models.Session, string, error) {
	var alert string
	sess, err := f.update(ctx, id, func(s *models.Session, t *tally) error {
		if err := f.advance(ctx, s, t); err != nil {
			return err
		}
		s.CopiedAt = time.Time{}
		alert = f.copyFailedAlert(s)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	f.logger.Warn("clipboard write failed", map[string]interface{}{
		"sessionId": id,
	})
	return sess, alert, nil
}

// Input records a changed field value and clears only that field's inline error.
func (f *Flow) Input(ctx context.Context, id string, field models.Field, value string) (*models.Session, error) {
	if !models.IsFormField(string(field)) {
		return nil, apperrors.NewInvalidRequestError("unknown field: " + string(field))
	}
	return f.update(ctx, id, func(s *models.Session, t *tally) error {
		if err := f.advance(ctx, s, t); err != nil {
			return err
		}
		if !s.FormVisible() {
			return nil
		}
		if s.Form == nil {
			s.Form = models.FormValues{}
		}
		s.Form[string(field)] = value
		delete(s.FieldErrors, string(field))
		return nil
	})
}

// UpdateUI applies fn to the session's page chrome state.
func (f *Flow) UpdateUI(ctx context.Context, id string, fn func(ui *models.UIState)) (*models.Session, error) {
	return f.update(ctx, id, func(s *models.Session, _ *tally) error {
		fn(&s.UI)
		return nil
	})
}

// CopyLabel is the copy button label for s at the current time.
func (f *Flow) CopyLabel(s *models.Session) string {
	if s.Result == nil {
		return ""
	}
	if f.CopyFeedbackLeft(s) > 0 {
		return s.Result.CopiedLabel
	}
	return s.Result.CopyLabel
}

// CopyFeedbackLeft is how long the copied label still shows for s.
func (f *Flow) CopyFeedbackLeft(s *models.Session) time.Duration {
	if s.Result == nil || s.CopiedAt.IsZero() {
		return 0
	}
	if d := s.CopiedAt.Add(f.config.CopyFeedback).Sub(f.now()); d > 0 {
		return d
	}
	return 0
}

// RetryAfter is how long a busy session still has to wait.
func (f *Flow) RetryAfter(s *models.Session) time.Duration {
	if s.State != models.FlowStateSubmitting {
		return 0
	}
	if d := s.ReadyAt.Sub(f.now()); d > 0 {
		return d
	}
	return 0
}

func (f *Flow) copyFailedAlert(s *models.Session) string {
	if s.Result != nil && s.Result.CopyFailedAlert != "" {
		return s.Result.CopyFailedAlert
	}
	return f.renderer.Content().Result.CopyFailedAlert
}

// advance completes a submitting session once ReadyAt has passed. A failing stage
// leaves the session submitting so the next call retries.
func (f *Flow) advance(ctx context.Context, s *models.Session, t *tally) error {
	if s.State != models.FlowStateSubmitting || s.Pending == nil {
		return nil
	}
	if f.now().Before(s.ReadyAt) {
		return nil
	}

	formatted, err := runStage(ctx, f, t, formatapplication.TaskType, func(ctx context.Context) (*formatapplication.Output, error) {
		return f.formatter.Execute(ctx, &formatapplication.Input{Application: *s.Pending})
	})
	if err != nil {
		return apperrors.NewFormatFailedError(err)
	}

	rendered, err := runStage(ctx, f, t, renderresult.TaskType, func(ctx context.Context) (*renderresult.Output, error) {
		return f.renderer.Execute(ctx, &renderresult.Input{Text: formatted.Text, FormattedAt: formatted.FormattedAt})
	})
	if err != nil {
		return apperrors.NewFormatFailedError(err)
	}

	view := rendered.View
	s.Result = &view
	s.State = models.FlowStateDone
	s.Pending = nil
	s.Form = nil
	s.FieldErrors = nil
	s.CopiedAt = time.Time{}
	t.completed = &completion{sessionID: s.ID, submittedAt: s.SubmittedAt, bytes: len(view.Text)}
	return nil
}

// update runs fn inside a store transaction. The store may call fn more than once,
// so fn reports side effects through a fresh tally per attempt and only the last
// attempt's tally is recorded.
func (f *Flow) update(ctx context.Context, id string, fn func(*models.Session, *tally) error) (*models.Session, error) {
	var t tally
	sess, err := f.store.Update(ctx, id, func(s *models.Session) error {
		t = tally{}
		return fn(s, &t)
	})
	f.record(ctx, &t, err == nil)
	if err == nil {
		return sess, nil
	}
	if _, ok := apperrors.As(err); ok {
		return nil, err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	f.logger.Error("session update failed", map[string]interface{}{
		"sessionId": id,
		"error":     err,
	})
	return nil, apperrors.NewSessionStoreFailedError(err)
}

func copyValues(in models.FormValues) models.FormValues {
	out := make(models.FormValues, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
