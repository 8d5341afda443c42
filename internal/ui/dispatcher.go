package ui

import (
	"context"
	"sync"

	apperrors "vortexzz-apply/internal/common/errors"
	"vortexzz-apply/internal/models"
)

type EventType string

const (
	EventSubmit EventType = "submit"
	EventReset  EventType = "reset"
	EventCopy   EventType = "copy"
	EventInput  EventType = "input"
	EventClick  EventType = "click"
	EventScroll EventType = "scroll"
	EventLoad   EventType = "load"
	EventRipple EventType = "ripple"
	EventHover  EventType = "hover"

	// Sent by the page once the clipboard write settled.
	EventCopied     EventType = "copied"
	EventCopyFailed EventType = "copy-failed"
)

// Click targets.
const (
	TargetHamburger = "hamburger"
	TargetNavLink   = "nav-link"
	TargetAnchor    = "anchor"
)

// Event is one page interaction. Only the fields relevant to Type are set.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"-"`

	Target string `json:"target,omitempty"`
	Href   string `json:"href,omitempty"`

	Field  string            `json:"field,omitempty"`
	Value  string            `json:"value,omitempty"`
	Fields models.FormValues `json:"fields,omitempty"`

	ScrollTop      float64         `json:"scrollTop,omitempty"`
	ViewportHeight float64         `json:"viewportHeight,omitempty"`
	Orbs           int             `json:"orbs,omitempty"`
	Elements       map[string]Rect `json:"elements,omitempty"`

	Title string `json:"title,omitempty"`

	Rect    Rect    `json:"rect,omitempty"`
	ClientX float64 `json:"clientX,omitempty"`
	ClientY float64 `json:"clientY,omitempty"`
	Entered bool    `json:"entered,omitempty"`
}

// Patch is the view update the page applies after an event. CopyLabel reverts to
// CopyResetLabel after CopyFeedbackMs; SelectText selects the document for a manual copy.
type Patch struct {
	MenuOpen        *bool              `json:"menuOpen,omitempty"`
	NavbarHidden    *bool              `json:"navbarHidden,omitempty"`
	ScrollTo        string             `json:"scrollTo,omitempty"`
	Parallax        []float64          `json:"parallax,omitempty"`
	Reveal          []string           `json:"reveal,omitempty"`
	Typewriter      []Frame            `json:"typewriter,omitempty"`
	Ripple          *RippleSpec        `json:"ripple,omitempty"`
	Transform       string             `json:"transform,omitempty"`
	State           models.FlowState   `json:"state,omitempty"`
	Busy            bool               `json:"busy,omitempty"`
	BusyLabel       string             `json:"busyLabel,omitempty"`
	RetryAfterMs    int64              `json:"retryAfterMs,omitempty"`
	FieldErrors     map[string]string  `json:"fieldErrors,omitempty"`
	ClearError      string             `json:"clearError,omitempty"`
	Result          *models.ResultView `json:"result,omitempty"`
	CopyText        string             `json:"copyText,omitempty"`
	CopyLabel       string             `json:"copyLabel,omitempty"`
	Copied          bool               `json:"copied,omitempty"`
	CopyResetLabel  string             `json:"copyResetLabel,omitempty"`
	CopyFeedbackMs  int64              `json:"copyFeedbackMs,omitempty"`
	CopyFailedAlert string             `json:"copyFailedAlert,omitempty"`
	SelectText      bool               `json:"selectText,omitempty"`
	Alert           string             `json:"alert,omitempty"`
}

type Handler func(ctx context.Context, ev *Event) (*Patch, error)

// Dispatcher routes events to the handler subscribed for their type.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventType]Handler)}
}

// On subscribes h to t, replacing any previous handler.
func (d *Dispatcher) On(t EventType, h Handler) {
	d.mu.Lock()
	d.handlers[t] = h
	d.mu.Unlock()
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) (*Patch, error) {
	d.mu.RLock()
	h, ok := d.handlers[ev.Type]
	d.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewUnknownEventError(string(ev.Type))
	}
	return h(ctx, ev)
}

// Types lists the subscribed event types.
func (d *Dispatcher) Types() []EventType {
	d.mu.RLock()
	defer d.mu.RUnlock()
	types := make([]EventType, 0, len(d.handlers))
	for t := range d.handlers {
		types = append(types, t)
	}
	return types
}
