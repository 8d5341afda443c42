package ui

import (
	"context"
	"testing"
	"time"

	apperrors "vortexzz-apply/internal/common/errors"
	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/flow"
	"vortexzz-apply/internal/models"
	"vortexzz-apply/internal/session"
	formatapplication "vortexzz-apply/internal/stages/application/format-application"
	renderresult "vortexzz-apply/internal/stages/application/render-result"
	validateapplication "vortexzz-apply/internal/stages/application/validate-application"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sid = "ui-session"

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func newTestController(t *testing.T) (*Controller, *stepClock) {
	t.Helper()
	clock := &stepClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	log := logger.NewTestLogger(t)
	f := flow.New(flow.Config{
		SubmissionDelay: 1500 * time.Millisecond,
		CopyFeedback:    2 * time.Second,
	}, flow.Dependencies{
		Store:     session.NewMemoryStore(time.Hour, clock.Now, log),
		Validator: validateapplication.NewHandler(nil, log),
		Formatter: formatapplication.NewHandler(&formatapplication.Config{Location: time.UTC, Now: clock.Now}, log),
		Renderer:  renderresult.NewHandler(nil, log),
		Now:       clock.Now,
		Logger:    log,
	})
	return NewController(f, log), clock
}

func dispatch(t *testing.T, c *Controller, ev Event) *Patch {
	t.Helper()
	ev.SessionID = sid
	patch, err := c.Dispatch(context.Background(), &ev)
	require.NoError(t, err)
	return patch
}

func validFields() models.FormValues {
	return models.FormValues{
		"name":       "Maxi",
		"age":        "25",
		"discord":    "maxi#1234",
		"experience": "yes",
		"motivation": "Ich möchte der Community helfen und aktiv moderieren.",
	}
}

func TestController_SubscribesAllEvents(t *testing.T) {
	c, _ := newTestController(t)

	assert.ElementsMatch(t, []EventType{
		EventSubmit, EventReset, EventCopy, EventCopied, EventCopyFailed, EventInput,
		EventClick, EventScroll, EventLoad, EventRipple, EventHover,
	}, c.Dispatcher().Types())
}

func TestController_UnknownEvent(t *testing.T) {
	c, _ := newTestController(t)

	_, err := c.Dispatch(context.Background(), &Event{Type: "dblclick", SessionID: sid})

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnknownEvent))
}

func TestController_SubmitFlow(t *testing.T) {
	c, clock := newTestController(t)

	patch := dispatch(t, c, Event{Type: EventSubmit, Fields: validFields()})
	assert.Equal(t, models.FlowStateSubmitting, patch.State)
	assert.True(t, patch.Busy)
	assert.Equal(t, "Wird gesendet...", patch.BusyLabel)
	assert.Equal(t, int64(1500), patch.RetryAfterMs)

	clock.now = clock.now.Add(1500 * time.Millisecond)
	patch = dispatch(t, c, Event{Type: EventLoad, Title: "Vortexzz"})
	assert.Equal(t, models.FlowStateDone, patch.State)
	require.NotNil(t, patch.Result)
	assert.Equal(t, "Kopieren", patch.CopyLabel)
	assert.Equal(t, AnchorResult, patch.ScrollTo)
	assert.Len(t, patch.Typewriter, len("Vortexzz"))

	patch = dispatch(t, c, Event{Type: EventCopy})
	assert.Contains(t, patch.CopyText, "MODERATOR-BEWERBUNG")
	assert.Equal(t, "Fehler beim Kopieren. Bitte manuell kopieren.", patch.CopyFailedAlert)
	assert.Empty(t, patch.CopyLabel)

	patch = dispatch(t, c, Event{Type: EventCopied})
	assert.Equal(t, "Kopiert!", patch.CopyLabel)
	assert.True(t, patch.Copied)
	assert.Equal(t, "Kopieren", patch.CopyResetLabel)
	assert.Equal(t, int64(2000), patch.CopyFeedbackMs)

	patch = dispatch(t, c, Event{Type: EventReset})
	assert.Equal(t, models.FlowStateIdle, patch.State)
	assert.Nil(t, patch.Result)
	assert.Equal(t, AnchorApply, patch.ScrollTo)
}

func TestController_SubmitInvalidReturnsFieldErrors(t *testing.T) {
	c, _ := newTestController(t)

	patch := dispatch(t, c, Event{Type: EventSubmit, Fields: models.FormValues{"name": "Al"}})

	assert.Equal(t, models.FlowStateIdle, patch.State)
	assert.False(t, patch.Busy)
	assert.Len(t, patch.FieldErrors, 4)

	patch = dispatch(t, c, Event{Type: EventInput, Field: "age", Value: "30"})
	assert.Equal(t, "age", patch.ClearError)
}

func TestController_SubmitTwiceRejected(t *testing.T) {
	c, _ := newTestController(t)
	dispatch(t, c, Event{Type: EventSubmit, Fields: validFields()})

	_, err := c.Dispatch(context.Background(), &Event{Type: EventSubmit, SessionID: sid, Fields: validFields()})

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSubmissionInProgress))
}

func TestController_CopyWithoutResultAlerts(t *testing.T) {
	c, _ := newTestController(t)

	patch := dispatch(t, c, Event{Type: EventCopy})

	assert.Equal(t, "Fehler beim Kopieren. Bitte manuell kopieren.", patch.Alert)
	assert.True(t, patch.SelectText)
	assert.Empty(t, patch.CopyText)
}

func TestController_CopyFailedRestoresLabel(t *testing.T) {
	c, clock := newTestController(t)
	dispatch(t, c, Event{Type: EventSubmit, Fields: validFields()})
	clock.now = clock.now.Add(1500 * time.Millisecond)
	dispatch(t, c, Event{Type: EventCopy})
	dispatch(t, c, Event{Type: EventCopied})

	patch := dispatch(t, c, Event{Type: EventCopyFailed})

	assert.Equal(t, models.FlowStateDone, patch.State)
	assert.Equal(t, "Kopieren", patch.CopyLabel)
	assert.False(t, patch.Copied)
	assert.Zero(t, patch.CopyFeedbackMs)
	assert.True(t, patch.SelectText)
	assert.Equal(t, "Fehler beim Kopieren. Bitte manuell kopieren.", patch.CopyFailedAlert)
	assert.Empty(t, patch.Alert, "the page alerts before reporting the failure")

	patch = dispatch(t, c, Event{Type: EventLoad})
	assert.Equal(t, "Kopieren", patch.CopyLabel)
}

func TestController_CopyNotConfirmedShowsNoFeedback(t *testing.T) {
	c, clock := newTestController(t)
	dispatch(t, c, Event{Type: EventSubmit, Fields: validFields()})
	clock.now = clock.now.Add(1500 * time.Millisecond)

	dispatch(t, c, Event{Type: EventCopy})
	patch := dispatch(t, c, Event{Type: EventLoad})

	assert.Equal(t, "Kopieren", patch.CopyLabel)
	assert.False(t, patch.Copied)
}

func TestController_CopiedFeedbackCountsDown(t *testing.T) {
	c, clock := newTestController(t)
	dispatch(t, c, Event{Type: EventSubmit, Fields: validFields()})
	clock.now = clock.now.Add(1500 * time.Millisecond)
	dispatch(t, c, Event{Type: EventCopied})

	clock.now = clock.now.Add(500 * time.Millisecond)
	patch := dispatch(t, c, Event{Type: EventLoad})
	assert.Equal(t, "Kopiert!", patch.CopyLabel)
	assert.Equal(t, int64(1500), patch.CopyFeedbackMs)

	clock.now = clock.now.Add(1500 * time.Millisecond)
	patch = dispatch(t, c, Event{Type: EventLoad})
	assert.Equal(t, "Kopieren", patch.CopyLabel)
	assert.False(t, patch.Copied)
}

func TestController_CopiedWithoutResultAlerts(t *testing.T) {
	c, _ := newTestController(t)

	patch := dispatch(t, c, Event{Type: EventCopied})

	assert.Equal(t, "Fehler beim Kopieren. Bitte manuell kopieren.", patch.Alert)
	assert.True(t, patch.SelectText)
}

func TestController_MenuToggle(t *testing.T) {
	c, _ := newTestController(t)

	patch := dispatch(t, c, Event{Type: EventClick, Target: TargetHamburger})
	require.NotNil(t, patch.MenuOpen)
	assert.True(t, *patch.MenuOpen)

	patch = dispatch(t, c, Event{Type: EventClick, Target: TargetHamburger})
	assert.False(t, *patch.MenuOpen)

	dispatch(t, c, Event{Type: EventClick, Target: TargetHamburger})
	patch = dispatch(t, c, Event{Type: EventClick, Target: TargetNavLink, Href: "#features"})
	assert.False(t, *patch.MenuOpen)
	assert.Equal(t, "features", patch.ScrollTo)
}

func TestController_AnchorClick(t *testing.T) {
	c, _ := newTestController(t)

	patch := dispatch(t, c, Event{Type: EventClick, Target: TargetAnchor, Href: "#apply"})
	assert.Equal(t, "apply", patch.ScrollTo)
	assert.Nil(t, patch.MenuOpen)

	patch = dispatch(t, c, Event{Type: EventClick, Target: TargetAnchor, Href: "#"})
	assert.Empty(t, patch.ScrollTo)

	_, err := c.Dispatch(context.Background(), &Event{Type: EventClick, SessionID: sid, Target: "logo"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest))
}

func TestController_ScrollTracksLastPosition(t *testing.T) {
	c, _ := newTestController(t)

	patch := dispatch(t, c, Event{Type: EventScroll, ScrollTop: 50, Orbs: 2})
	assert.False(t, *patch.NavbarHidden)
	assert.InDeltaSlice(t, []float64{25, 30}, patch.Parallax, 1e-9)

	patch = dispatch(t, c, Event{Type: EventScroll, ScrollTop: 250})
	assert.True(t, *patch.NavbarHidden)

	patch = dispatch(t, c, Event{Type: EventScroll, ScrollTop: 200})
	assert.False(t, *patch.NavbarHidden)
}

func TestController_ScrollReveal(t *testing.T) {
	c, _ := newTestController(t)

	patch := dispatch(t, c, Event{
		Type:           EventScroll,
		ScrollTop:      10,
		ViewportHeight: 800,
		Elements: map[string]Rect{
			"feature-2":    {Top: 400, Height: 200},
			"feature-1":    {Top: 100, Height: 200},
			"contact-card": {Top: 1200, Height: 200},
		},
	})

	assert.Equal(t, []string{"feature-1", "feature-2"}, patch.Reveal)
}

func TestController_RippleAndHover(t *testing.T) {
	c, _ := newTestController(t)

	patch := dispatch(t, c, Event{Type: EventRipple, Rect: Rect{Left: 0, Top: 0, Width: 100, Height: 50}, ClientX: 50, ClientY: 25})
	require.NotNil(t, patch.Ripple)
	assert.Equal(t, 100.0, patch.Ripple.Size)
	assert.Equal(t, 0.0, patch.Ripple.X)
	assert.Equal(t, -25.0, patch.Ripple.Y)

	patch = dispatch(t, c, Event{Type: EventHover, Entered: true})
	assert.Equal(t, HoverTransform, patch.Transform)
}
