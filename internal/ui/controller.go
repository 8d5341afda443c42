// Package ui owns the per-visitor page behaviour: event subscriptions, the
// application form controls and the cosmetic scroll and click effects.
package ui

import (
	"context"
	"sort"

	apperrors "vortexzz-apply/internal/common/errors"
	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/flow"
	"vortexzz-apply/internal/models"
)

const BusyLabel = "Wird gesendet..."

// Element ids the page scrolls to.
const (
	AnchorApply  = "apply"
	AnchorResult = "application-result"
)

// Controller translates page events into flow operations and view patches.
type Controller struct {
	flow       *flow.Flow
	dispatcher *Dispatcher
	logger     logger.Logger
}

func NewController(f *flow.Flow, log logger.Logger) *Controller {
	c := &Controller{
		flow:       f,
		dispatcher: NewDispatcher(),
		logger:     log.WithFields(map[string]interface{}{"component": "ui"}),
	}
	c.dispatcher.On(EventSubmit, c.onSubmit)
	c.dispatcher.On(EventReset, c.onReset)
	c.dispatcher.On(EventCopy, c.onCopy)
	c.dispatcher.On(EventCopied, c.onCopied)
	c.dispatcher.On(EventCopyFailed, c.onCopyFailed)
	c.dispatcher.On(EventInput, c.onInput)
	c.dispatcher.On(EventClick, c.onClick)
	c.dispatcher.On(EventScroll, c.onScroll)
	c.dispatcher.On(EventLoad, c.onLoad)
	c.dispatcher.On(EventRipple, c.onRipple)
	c.dispatcher.On(EventHover, c.onHover)
	return c
}

func (c *Controller) Dispatch(ctx context.Context, ev *Event) (*Patch, error) {
	patch, err := c.dispatcher.Dispatch(ctx, ev)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("event handled", map[string]interface{}{
		"sessionId": ev.SessionID,
		"eventType": string(ev.Type),
	})
	return patch, nil
}

// Dispatcher exposes the subscription table, e.g. to add handlers.
func (c *Controller) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// Flow returns the application flow behind the controller.
func (c *Controller) Flow() *flow.Flow {
	return c.flow
}

// SessionPatch describes the application section for an already loaded session.
func (c *Controller) SessionPatch(s *models.Session) *Patch {
	patch := &Patch{
		State:       s.State,
		FieldErrors: s.FieldErrors,
	}
	switch s.State {
	case models.FlowStateSubmitting:
		patch.Busy = true
		patch.BusyLabel = BusyLabel
		patch.RetryAfterMs = c.flow.RetryAfter(s).Milliseconds()
	case models.FlowStateDone:
		patch.Result = s.Result
		c.copyState(patch, s)
	}
	return patch
}

// copyState fills the copy button fields, including when the copied label reverts.
func (c *Controller) copyState(patch *Patch, s *models.Session) {
	patch.CopyLabel = c.flow.CopyLabel(s)
	if left := c.flow.CopyFeedbackLeft(s); left > 0 {
		patch.Copied = true
		patch.CopyResetLabel = s.Result.CopyLabel
		patch.CopyFeedbackMs = left.Milliseconds()
	}
}

func (c *Controller) onSubmit(ctx context.Context, ev *Event) (*Patch, error) {
	sess, err := c.flow.Submit(ctx, ev.SessionID, ev.Fields)
	if apperrors.HasCode(err, apperrors.ErrCodeApplicationValidationFailed) {
		return c.SessionPatch(sess), nil
	}
	if err != nil {
		return nil, err
	}
	return c.SessionPatch(sess), nil
}

func (c *Controller) onReset(ctx context.Context, ev *Event) (*Patch, error) {
	sess, err := c.flow.Reset(ctx, ev.SessionID)
	if err != nil {
		return nil, err
	}
	patch := c.SessionPatch(sess)
	patch.ScrollTo = AnchorApply
	return patch, nil
}

// onCopy hands the document to the page for its clipboard write. The page answers
// with EventCopied or EventCopyFailed.
func (c *Controller) onCopy(ctx context.Context, ev *Event) (*Patch, error) {
	text, err := c.flow.Copy(ctx, ev.SessionID)
	if stdErr, ok := apperrors.As(err); ok && stdErr.Code == apperrors.ErrCodeCopyFailed {
		return &Patch{Alert: stdErr.Message, SelectText: true}, nil
	}
	if err != nil {
		return nil, err
	}
	sess, err := c.flow.Advance(ctx, ev.SessionID)
	if err != nil {
		return nil, err
	}
	patch := &Patch{State: sess.State, CopyText: text}
	if sess.Result != nil {
		patch.CopyFailedAlert = sess.Result.CopyFailedAlert
	}
	return patch, nil
}

func (c *Controller) onCopied(ctx context.Context, ev *Event) (*Patch, error) {
	sess, err := c.flow.ConfirmCopy(ctx, ev.SessionID)
	if stdErr, ok := apperrors.As(err); ok && stdErr.Code == apperrors.ErrCodeCopyFailed {
		return &Patch{Alert: stdErr.Message, SelectText: true}, nil
	}
	if err != nil {
		return nil, err
	}
	patch := &Patch{State: sess.State}
	c.copyState(patch, sess)
	return patch, nil
}

// onCopyFailed restores the plain copy label. The page has already shown
// CopyFailedAlert and selected the document.
func (c *Controller) onCopyFailed(ctx context.Context, ev *Event) (*Patch, error) {
	sess, alert, err := c.flow.CopyFailed(ctx, ev.SessionID)
	if err != nil {
		return nil, err
	}
	patch := &Patch{State: sess.State, CopyFailedAlert: alert, SelectText: true}
	if sess.Result != nil {
		c.copyState(patch, sess)
	}
	return patch, nil
}

func (c *Controller) onInput(ctx context.Context, ev *Event) (*Patch, error) {
	if _, err := c.flow.Input(ctx, ev.SessionID, models.Field(ev.Field), ev.Value); err != nil {
		return nil, err
	}
	return &Patch{ClearError: ev.Field}, nil
}

func (c *Controller) onClick(ctx context.Context, ev *Event) (*Patch, error) {
	patch := &Patch{}
	switch ev.Target {
	case TargetHamburger:
		sess, err := c.flow.UpdateUI(ctx, ev.SessionID, func(ui *models.UIState) {
			ui.MenuOpen = !ui.MenuOpen
		})
		if err != nil {
			return nil, err
		}
		open := sess.UI.MenuOpen
		patch.MenuOpen = &open
	case TargetNavLink:
		if _, err := c.flow.UpdateUI(ctx, ev.SessionID, func(ui *models.UIState) {
			ui.MenuOpen = false
		}); err != nil {
			return nil, err
		}
		closed := false
		patch.MenuOpen = &closed
	case TargetAnchor:
	default:
		return nil, apperrors.NewInvalidRequestError("unknown click target: " + ev.Target)
	}

	if id, ok := AnchorTarget(ev.Href); ok {
		patch.ScrollTo = id
	}
	return patch, nil
}

func (c *Controller) onScroll(ctx context.Context, ev *Event) (*Patch, error) {
	sess, err := c.flow.UpdateUI(ctx, ev.SessionID, func(ui *models.UIState) {
		ui.NavbarHidden = NavbarHidden(ev.ScrollTop, ui.LastScrollTop)
		ui.LastScrollTop = ev.ScrollTop
	})
	if err != nil {
		return nil, err
	}

	hidden := sess.UI.NavbarHidden
	patch := &Patch{
		NavbarHidden: &hidden,
		Parallax:     ParallaxOffsets(ev.ScrollTop, ev.Orbs),
	}
	for id, rect := range ev.Elements {
		if Revealed(rect, ev.ViewportHeight) {
			patch.Reveal = append(patch.Reveal, id)
		}
	}
	sort.Strings(patch.Reveal)
	return patch, nil
}

// onLoad restores the application section and starts the hero title animation.
func (c *Controller) onLoad(ctx context.Context, ev *Event) (*Patch, error) {
	sess, err := c.flow.Advance(ctx, ev.SessionID)
	if err != nil {
		return nil, err
	}
	patch := c.SessionPatch(sess)
	if ev.Title != "" {
		patch.Typewriter = TypewriterFrames(ev.Title, TypewriterInterval)
	}
	menuOpen := sess.UI.MenuOpen
	hidden := sess.UI.NavbarHidden
	patch.MenuOpen = &menuOpen
	patch.NavbarHidden = &hidden
	if sess.State == models.FlowStateDone {
		patch.ScrollTo = AnchorResult
	}
	return patch, nil
}

func (c *Controller) onRipple(_ context.Context, ev *Event) (*Patch, error) {
	spec := Ripple(ev.Rect, ev.ClientX, ev.ClientY)
	return &Patch{Ripple: &spec}, nil
}

func (c *Controller) onHover(_ context.Context, ev *Event) (*Patch, error) {
	return &Patch{Transform: HoverTransformFor(ev.Entered)}, nil
}
