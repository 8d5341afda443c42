package models

import "time"

// FlowState is the explicit submission state of a session.
type FlowState string

const (
	FlowStateIdle       FlowState = "idle"
	FlowStateSubmitting FlowState = "submitting"
	FlowStateDone       FlowState = "done"
)

// UIState is the per-visitor state of the page chrome.
type UIState struct {
	MenuOpen      bool    `json:"menuOpen"`
	LastScrollTop float64 `json:"lastScrollTop"`
	NavbarHidden  bool    `json:"navbarHidden"`
}

// Session represents one visitor's page state. It only lives until its TTL elapses.
type Session struct {
	ID          string            `json:"id"`
	State       FlowState         `json:"state"`
	Form        FormValues        `json:"form,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Pending     *Application      `json:"pending,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt,omitempty"`
	ReadyAt     time.Time         `json:"readyAt,omitempty"`
	Result      *ResultView       `json:"result,omitempty"`
	CopiedAt    time.Time         `json:"copiedAt,omitempty"`
	UI          UIState           `json:"ui"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewSession returns an idle session with an empty form.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     FlowStateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FormVisible reports whether the page shows the form rather than the result view.
func (s *Session) FormVisible() bool {
	return s.State != FlowStateDone
}

// Busy reports whether the submit control is disabled.
func (s *Session) Busy() bool {
	return s.State == FlowStateSubmitting
}

// FieldError returns the inline error for a field, if any.
func (s *Session) FieldError(field Field) string {
	if s.FieldErrors == nil {
		return ""
	}
	return s.FieldErrors[string(field)]
}

// UpdateActivity updates the last activity timestamp
func (s *Session) UpdateActivity(now time.Time) {
	s.UpdatedAt = now
}
