package httptransport

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	apperrors "vortexzz-apply/internal/common/errors"
	"vortexzz-apply/internal/models"
	"vortexzz-apply/internal/ui"
)

const (
	pageTitle        = "Vortexzz Community"
	heroTitle        = "Willkommen bei Vortexzz"
	defaultInviteURL = "https://discord.gg/g2SnbQk2Ds"
)

type fieldOption struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	Name    string
	Label   string
	Kind    string
	Value   string
	Error   string
	Options []fieldOption
}

type pageData struct {
	Title          string
	HeroTitle      string
	MenuOpen       bool
	NavbarHidden   bool
	RefreshSeconds int
	Fields         []fieldView
	Busy           bool
	BusyLabel      string
	Result         *models.ResultView
	CopyLabel      string
	Copied         bool
	Alert          string
	InviteURL      string
	InviteLabel    string
}

var formLayout = []struct {
	field models.Field
	label string
	kind  string
}{
	{models.FieldName, "Name", "text"},
	{models.FieldAge, "Alter", "number"},
	{models.FieldDiscord, "Discord-Benutzername", "text"},
	{models.FieldExperience, "Hast du bereits Erfahrung als Moderator?", "select"},
	{models.FieldMotivation, "Warum möchtest du Moderator werden?", "textarea"},
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.flow.Advance(r.Context(), SessionID(r.Context()))
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}
	s.render(w, http.StatusOK, s.pageFor(sess, ""))
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderFailure(w, r, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	fields := models.FormValues{}
	for _, f := range models.FormFields {
		if values, ok := r.PostForm[string(f)]; ok && len(values) > 0 {
			fields[string(f)] = values[0]
		}
	}

	id := SessionID(r.Context())
	sess, err := s.flow.Submit(r.Context(), id, fields)
	switch {
	case err == nil:
		http.Redirect(w, r, "/#apply", http.StatusSeeOther)
	case isCode(err, apperrors.ErrCodeApplicationValidationFailed):
		s.render(w, http.StatusUnprocessableEntity, s.pageFor(sess, ""))
	case isCode(err, apperrors.ErrCodeSubmissionInProgress, apperrors.ErrCodeResetRequired):
		s.renderCurrent(w, r, http.StatusConflict, "")
	default:
		s.renderFailure(w, r, err)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	_, err := s.flow.Reset(r.Context(), SessionID(r.Context()))
	switch {
	case err == nil:
		http.Redirect(w, r, "/#apply", http.StatusSeeOther)
	case isCode(err, apperrors.ErrCodeSubmissionInProgress):
		s.renderCurrent(w, r, http.StatusConflict, "")
	default:
		s.renderFailure(w, r, err)
	}
}

// handleCopy serves the document for the copy action. Without a result it answers with
// the copy alert. Serving the text does not start the copied feedback; only a
// confirmed clipboard write from the page does.
func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	text, err := s.flow.Copy(r.Context(), SessionID(r.Context()))
	if stdErr, ok := apperrors.As(err); ok && stdErr.Code == apperrors.ErrCodeCopyFailed {
		s.logger.Warn("copy failed", map[string]interface{}{
			"sessionId": SessionID(r.Context()),
			"details":   stdErr.Details,
		})
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(stdErr.Message))
		return
	}
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (s *Server) renderCurrent(w http.ResponseWriter, r *http.Request, status int, alert string) {
	sess, err := s.flow.Advance(r.Context(), SessionID(r.Context()))
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}
	s.render(w, status, s.pageFor(sess, alert))
}

func (s *Server) pageFor(sess *models.Session, alert string) pageData {
	inviteURL := s.config.InviteURL
	if inviteURL == "" {
		inviteURL = defaultInviteURL
	}
	data := pageData{
		Title:        pageTitle,
		HeroTitle:    heroTitle,
		MenuOpen:     sess.UI.MenuOpen,
		NavbarHidden: sess.UI.NavbarHidden,
		Busy:         sess.Busy(),
		Alert:        alert,
		InviteURL:    inviteURL,
		InviteLabel:  strings.TrimPrefix(inviteURL, "https://"),
	}

	if sess.Busy() {
		data.BusyLabel = ui.BusyLabel
		data.RefreshSeconds = retryAfterSeconds(s.flow.RetryAfter(sess))
		if data.RefreshSeconds == 0 {
			data.RefreshSeconds = 1
		}
	}

	if !sess.FormVisible() && sess.Result != nil {
		data.Result = sess.Result
		data.CopyLabel = s.flow.CopyLabel(sess)
		data.Copied = data.CopyLabel == sess.Result.CopiedLabel
		return data
	}

	for _, l := range formLayout {
		fv := fieldView{
			Name:  string(l.field),
			Label: l.label,
			Kind:  l.kind,
			Value: sess.Form.Get(l.field),
			Error: sess.FieldError(l.field),
		}
		if l.kind == "select" {
			fv.Options = []fieldOption{
				{Value: models.ExperienceYes, Label: "Ja", Selected: fv.Value == models.ExperienceYes},
				{Value: models.ExperienceNo, Label: "Nein", Selected: fv.Value == models.ExperienceNo},
			}
		}
		data.Fields = append(data.Fields, fv)
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "page", data); err != nil {
		s.logger.Error("page render failed", map[string]interface{}{"error": err})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if data.Busy {
		w.Header().Set("Refresh", strconv.Itoa(data.RefreshSeconds))
	}
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderFailure answers page routes with a plain-text error.
func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.Normalize(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"path":      r.URL.Path,
		"status":    status,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("page request failed", fields)
	} else {
		s.logger.Warn("page request rejected", fields)
	}

	if stdErr.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	http.Error(w, stdErr.Message, status)
}
