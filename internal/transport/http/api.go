package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "vortexzz-apply/internal/common/errors"
	"vortexzz-apply/internal/models"
	formatapplication "vortexzz-apply/internal/stages/application/format-application"
	"vortexzz-apply/internal/ui"

	"github.com/xeipuuv/gojsonschema"
)

const maxBodyBytes = 64 << 10

// applicationRequestSchema only checks the request shape. Field rules are the
// validator's job so API callers get the same inline messages as the form.
const applicationRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "name":       {"type": "string"},
    "age":        {"type": ["string", "integer"]},
    "discord":    {"type": "string"},
    "experience": {"type": "string"},
    "motivation": {"type": "string"}
  }
}`

var applicationRequestLoader = gojsonschema.NewStringLoader(applicationRequestSchema)

type applicationResponse struct {
	Text        string             `json:"text"`
	Application models.Application `json:"application"`
	FormattedAt time.Time          `json:"formattedAt"`
}

// handleCreateApplication submits on the caller's session and waits for the
// simulated delay. A request that gives up early gets 202 and the submission keeps
// running for the page.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.errors.HandleRequestError(w, r, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	fields, err := decodeApplicationRequest(body)
	if err != nil {
		s.errors.HandleRequestError(w, r, err)
		return
	}

	ctx := r.Context()
	id := SessionID(ctx)
	if _, err := s.flow.Submit(ctx, id, fields); err != nil {
		s.errors.HandleRequestError(w, r, err)
		return
	}

	sess, err := s.flow.Await(ctx, id)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeResultNotReady) && sess != nil {
			w.Header().Set("Retry-After", fmt.Sprint(retryAfterSeconds(s.flow.RetryAfter(sess))))
		}
		s.errors.HandleRequestError(w, r, err)
		return
	}
	if sess.Result == nil {
		s.errors.HandleRequestError(w, r, apperrors.NewResultNotFoundError(id))
		return
	}

	app, formattedAt, err := formatapplication.Parse(sess.Result.Text, s.config.Location)
	if err != nil {
		s.errors.HandleRequestError(w, r, apperrors.NewFormatFailedError(err))
		return
	}
	s.writeJSON(w, http.StatusCreated, applicationResponse{
		Text:        sess.Result.Text,
		Application: app,
		FormattedAt: formattedAt,
	})
}

func decodeApplicationRequest(body []byte) (models.FormValues, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apperrors.NewInvalidRequestError("empty request body")
	}
	result, err := gojsonschema.Validate(applicationRequestLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, apperrors.NewInvalidRequestError(err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, apperrors.NewInvalidRequestError(strings.Join(msgs, "; "))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewInvalidRequestError(err.Error())
	}
	fields := models.FormValues{}
	for name, value := range raw {
		var str string
		if err := json.Unmarshal(value, &str); err == nil {
			fields[name] = str
			continue
		}
		// Integer ages are passed through in their JSON spelling.
		fields[name] = string(value)
	}
	return fields, nil
}

// handleEvent dispatches one page event and answers with the patch to apply.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev ui.Event
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&ev); err != nil {
		s.errors.HandleRequestError(w, r, apperrors.NewInvalidRequestError("malformed event: "+err.Error()))
		return
	}
	ev.SessionID = SessionID(r.Context())

	patch, err := s.controller.Dispatch(r.Context(), &ev)
	if err != nil {
		s.errors.HandleRequestError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, patch)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err})
	}
}
