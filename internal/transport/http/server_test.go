package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/flow"
	"vortexzz-apply/internal/models"
	"vortexzz-apply/internal/session"
	formatapplication "vortexzz-apply/internal/stages/application/format-application"
	renderresult "vortexzz-apply/internal/stages/application/render-result"
	validateapplication "vortexzz-apply/internal/stages/application/validate-application"
	"vortexzz-apply/internal/ui"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestServer(t *testing.T, delay time.Duration, now func() time.Time, ready func(context.Context) error) *Server {
	t.Helper()
	log := logger.NewTestLogger(t)
	f := flow.New(flow.Config{
		SubmissionDelay: delay,
		CopyFeedback:    2 * time.Second,
	}, flow.Dependencies{
		Store:     session.NewMemoryStore(time.Hour, now, log),
		Validator: validateapplication.NewHandler(nil, log),
		Formatter: formatapplication.NewHandler(&formatapplication.Config{Location: time.UTC, Now: now}, log),
		Renderer:  renderresult.NewHandler(nil, log),
		Now:       now,
		Logger:    log,
	})
	return NewServer(Config{
		AppName:    "vortexzz-apply",
		Version:    "test",
		SessionTTL: time.Hour,
		Location:   time.UTC,
	}, Dependencies{
		Controller: ui.NewController(f, log),
		Logger:     log,
		Ready:      ready,
	})
}

// ServerSuite drives the page routes with a manual clock and a fixed visitor cookie.
type ServerSuite struct {
	suite.Suite
	clock   *manualClock
	router  http.Handler
	session string
}

func (s *ServerSuite) SetupTest() {
	s.clock = &manualClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	s.router = newTestServer(s.T(), 1500*time.Millisecond, s.clock.Now, nil).Routes()
	s.session = uuid.NewString()
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	req.AddCookie(&http.Cookie{Name: "vortexzz_session", Value: s.session})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *ServerSuite) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *ServerSuite) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *ServerSuite) document(rec *httptest.ResponseRecorder) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(s.T(), err)
	return doc
}

func validForm() url.Values {
	return url.Values{
		"name":       {"Maxi"},
		"age":        {"25"},
		"discord":    {"maxi#1234"},
		"experience": {"yes"},
		"motivation": {"Ich möchte der Community helfen und aktiv moderieren."},
	}
}

func (s *ServerSuite) submitAndComplete() {
	rec := s.postForm("/apply", validForm())
	require.Equal(s.T(), http.StatusSeeOther, rec.Code)
	s.clock.Advance(1500 * time.Millisecond)
}

func (s *ServerSuite) TestIndex_RendersEmptyForm() {
	rec := s.get("/")

	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Header().Get("Content-Type"), "text/html")
	doc := s.document(rec)
	assert.Equal(s.T(), "Willkommen bei Vortexzz", doc.Find("h1.hero-title").Text())
	assert.Equal(s.T(), 1, doc.Find("form#apply-form").Length())
	assert.Equal(s.T(), 0, doc.Find(".error-message").Length())
	assert.Equal(s.T(), 0, doc.Find("#application-result").Length())
	assert.Equal(s.T(), "number", doc.Find("input#age").AttrOr("type", ""))
	assert.Equal(s.T(), 3, doc.Find("select#experience option").Length())
}

func (s *ServerSuite) TestIndex_AssignsSessionCookie() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(s.T(), cookies, 1)
	assert.Equal(s.T(), "vortexzz_session", cookies[0].Name)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(s.T(), err)
	assert.True(s.T(), cookies[0].HttpOnly)
}

func (s *ServerSuite) TestApply_InvalidShowsInlineErrors() {
	rec := s.postForm("/apply", url.Values{
		"name":       {"Al"},
		"age":        {"15"},
		"discord":    {"ab"},
		"experience": {""},
		"motivation": {"short"},
	})

	require.Equal(s.T(), http.StatusUnprocessableEntity, rec.Code)
	doc := s.document(rec)
	assert.Equal(s.T(), 4, doc.Find(".error-message").Length())
	assert.Equal(s.T(), 0, doc.Find("#name ~ .error-message").Length())
	assert.Equal(s.T(), validateapplication.MsgAge, strings.TrimSpace(doc.Find("#age ~ .error-message").Text()))
	assert.True(s.T(), doc.Find("#age").HasClass("field-error"))
	assert.Equal(s.T(), "Al", doc.Find("input#name").AttrOr("value", ""))
	assert.Equal(s.T(), "short", doc.Find("textarea#motivation").Text())
}

func (s *ServerSuite) TestApply_BusyThenResult() {
	rec := s.postForm("/apply", validForm())
	require.Equal(s.T(), http.StatusSeeOther, rec.Code)
	assert.Equal(s.T(), "/#apply", rec.Header().Get("Location"))

	busy := s.document(s.get("/"))
	button := busy.Find("form#apply-form button[type=submit]")
	_, disabled := button.Attr("disabled")
	assert.True(s.T(), disabled)
	assert.Contains(s.T(), button.Text(), ui.BusyLabel)
	assert.Equal(s.T(), "2", busy.Find(`meta[http-equiv="refresh"]`).AttrOr("content", ""))

	s.clock.Advance(1500 * time.Millisecond)
	done := s.document(s.get("/"))

	assert.Equal(s.T(), 0, done.Find("form#apply-form").Length())
	text := done.Find("textarea.application-text").Text()
	assert.True(s.T(), strings.HasPrefix(text, "MODERATOR-BEWERBUNG\n"))
	assert.True(s.T(), strings.HasSuffix(text, "Bewerbung eingereicht: 19.10.2026, 12:00:01"))
	assert.Equal(s.T(), "Bewerbung erfolgreich erstellt!", done.Find(".result-header h3").Text())
	assert.Equal(s.T(), 3, done.Find(".step").Length())
	assert.Equal(s.T(), "https://discord.gg/g2SnbQk2Ds", done.Find(".step").First().Find("a").AttrOr("href", ""))
	assert.Equal(s.T(), 1, done.Find("form.reset-form").Length())
	assert.Equal(s.T(), 0, done.Find(`meta[http-equiv="refresh"]`).Length())
}

func (s *ServerSuite) TestApply_WhileBusyConflicts() {
	require.Equal(s.T(), http.StatusSeeOther, s.postForm("/apply", validForm()).Code)

	rec := s.postForm("/apply", validForm())

	assert.Equal(s.T(), http.StatusConflict, rec.Code)
}

func (s *ServerSuite) TestApply_AfterResultRequiresReset() {
	s.submitAndComplete()

	rec := s.postForm("/apply", validForm())

	assert.Equal(s.T(), http.StatusConflict, rec.Code)
	assert.Equal(s.T(), 1, s.document(rec).Find("#application-result").Length())
}

func (s *ServerSuite) TestCopy_WithoutResult() {
	rec := s.get("/apply/result.txt")

	assert.Equal(s.T(), http.StatusConflict, rec.Code)
	assert.Equal(s.T(), "Fehler beim Kopieren. Bitte manuell kopieren.", rec.Body.String())
}

func (s *ServerSuite) TestCopy_ServesTextAndShowsFeedback() {
	s.submitAndComplete()

	rec := s.get("/apply/result.txt")

	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Equal(s.T(), "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(s.T(), strings.HasPrefix(rec.Body.String(), "MODERATOR-BEWERBUNG"))

	unconfirmed := s.document(s.get("/"))
	assert.False(s.T(), unconfirmed.Find("a.copy-btn").HasClass("copied"))

	require.Equal(s.T(), http.StatusOK, s.postJSON("/api/events", `{"type":"copied"}`).Code)
	copied := s.document(s.get("/"))
	assert.True(s.T(), copied.Find("a.copy-btn").HasClass("copied"))
	assert.Contains(s.T(), copied.Find("a.copy-btn").Text(), "Kopiert!")

	s.clock.Advance(2 * time.Second)
	restored := s.document(s.get("/"))
	assert.False(s.T(), restored.Find("a.copy-btn").HasClass("copied"))
	assert.Contains(s.T(), restored.Find("a.copy-btn").Text(), "Kopieren")
}

func (s *ServerSuite) TestEvents_CopyFailedClearsFeedback() {
	s.submitAndComplete()
	require.Equal(s.T(), http.StatusOK, s.postJSON("/api/events", `{"type":"copied"}`).Code)

	rec := s.postJSON("/api/events", `{"type":"copy-failed"}`)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var patch ui.Patch
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &patch))
	assert.Equal(s.T(), "Kopieren", patch.CopyLabel)
	assert.True(s.T(), patch.SelectText)
	assert.Equal(s.T(), "Fehler beim Kopieren. Bitte manuell kopieren.", patch.CopyFailedAlert)

	doc := s.document(s.get("/"))
	assert.False(s.T(), doc.Find("a.copy-btn").HasClass("copied"))
	assert.Contains(s.T(), doc.Find("a.copy-btn").Text(), "Kopieren")
}

func (s *ServerSuite) TestReset_RestoresForm() {
	s.submitAndComplete()

	rec := s.postForm("/apply/reset", nil)

	require.Equal(s.T(), http.StatusSeeOther, rec.Code)
	doc := s.document(s.get("/"))
	assert.Equal(s.T(), 1, doc.Find("form#apply-form").Length())
	assert.Equal(s.T(), "", doc.Find("input#name").AttrOr("value", "missing"))
}

func (s *ServerSuite) TestReset_WhileBusyConflicts() {
	require.Equal(s.T(), http.StatusSeeOther, s.postForm("/apply", validForm()).Code)

	rec := s.postForm("/apply/reset", nil)

	assert.Equal(s.T(), http.StatusConflict, rec.Code)
}

func (s *ServerSuite) TestEvents_MenuToggleRendersOnPage() {
	rec := s.postJSON("/api/events", `{"type":"click","target":"hamburger"}`)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var patch ui.Patch
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &patch))
	require.NotNil(s.T(), patch.MenuOpen)
	assert.True(s.T(), *patch.MenuOpen)

	doc := s.document(s.get("/"))
	assert.True(s.T(), doc.Find(".nav-menu").HasClass("active"))
}

func (s *ServerSuite) TestEvents_InputClearsInlineError() {
	require.Equal(s.T(), http.StatusUnprocessableEntity, s.postForm("/apply", url.Values{}).Code)

	rec := s.postJSON("/api/events", `{"type":"input","field":"age","value":"30"}`)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	doc := s.document(s.get("/"))
	assert.Equal(s.T(), 4, doc.Find(".error-message").Length())
	assert.Equal(s.T(), "30", doc.Find("input#age").AttrOr("value", ""))
}

func (s *ServerSuite) TestEvents_Errors() {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed json", `{"type":`, "INVALID_REQUEST"},
		{"unknown event", `{"type":"dblclick"}`, "UNKNOWN_EVENT"},
		{"unknown click target", `{"type":"click","target":"footer"}`, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.postJSON("/api/events", tt.body)

			assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
			var env struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(s.T(), tt.wantCode, env.Error.Code)
		})
	}
}

func (s *ServerSuite) TestHealthAndMetrics() {
	health := s.get("/health")
	require.Equal(s.T(), http.StatusOK, health.Code)
	var body map[string]interface{}
	require.NoError(s.T(), json.Unmarshal(health.Body.Bytes(), &body))
	assert.Equal(s.T(), "healthy", body["status"])

	assert.Equal(s.T(), http.StatusOK, s.get("/ready").Code)

	s.get("/")
	metrics := s.get("/metrics")
	require.Equal(s.T(), http.StatusOK, metrics.Code)
	assert.Contains(s.T(), metrics.Body.String(), "http_requests_total")
}

func (s *ServerSuite) TestStaticScript() {
	rec := s.get("/static/app.js")

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	script := rec.Body.String()
	assert.Contains(s.T(), script, "/api/events")
	assert.Contains(s.T(), script, "writeText(patch.copyText)")
	assert.Contains(s.T(), script, "Promise.reject(")
	assert.Contains(s.T(), script, "alert(patch.copyFailedAlert)")
	assert.Contains(s.T(), script, "type: 'copied'")
	assert.Contains(s.T(), script, "type: 'copy-failed'")
	assert.Contains(s.T(), script, "patch.copyResetLabel")
}

// The JSON API waits on real time, so these tests run with a short delay.

func apiRequest(t *testing.T, h http.Handler, ctx context.Context, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "vortexzz_session", Value: uuid.NewString()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateApplication_Success(t *testing.T) {
	h := newTestServer(t, 20*time.Millisecond, time.Now, nil).Routes()

	rec := apiRequest(t, h, context.Background(), `{
		"name": "Maxi",
		"age": 25,
		"discord": "maxi#1234",
		"experience": "no",
		"motivation": "Ich möchte der Community helfen und aktiv moderieren."
	}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp applicationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	want := models.Application{
		Name:            "Maxi",
		Age:             25,
		Discord:         "maxi#1234",
		PriorExperience: false,
		Motivation:      "Ich möchte der Community helfen und aktiv moderieren.",
	}
	if diff := cmp.Diff(want, resp.Application); diff != "" {
		t.Errorf("application mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, resp.Text, "Mod-Erfahrung: Nein")
	assert.False(t, resp.FormattedAt.IsZero())
}

func TestCreateApplication_Rejected(t *testing.T) {
	h := newTestServer(t, 20*time.Millisecond, time.Now, nil).Routes()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"validation failure", `{"name":"Al","age":"15","discord":"ab","experience":"","motivation":"short"}`, http.StatusUnprocessableEntity, "APPLICATION_VALIDATION_FAILED"},
		{"unknown property", `{"name":"Maxi","role":"admin"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"wrong type", `{"age":[25]}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"empty body", ``, http.StatusBadRequest, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := apiRequest(t, h, context.Background(), tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var env struct {
				Error struct {
					Code     string                 `json:"code"`
					Metadata map[string]interface{} `json:"metadata"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestCreateApplication_ValidationListsFields(t *testing.T) {
	h := newTestServer(t, 20*time.Millisecond, time.Now, nil).Routes()

	rec := apiRequest(t, h, context.Background(), `{"name":"Maxi","age":"abc","discord":"maxi#1234","experience":"yes","motivation":"Ich möchte der Community helfen."}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var env struct {
		Error struct {
			Metadata struct {
				Fields []models.FieldError `json:"fields"`
			} `json:"metadata"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Error.Metadata.Fields, 1)
	assert.Equal(t, models.FieldAge, env.Error.Metadata.Fields[0].Field)
	assert.Equal(t, validateapplication.MsgAge, env.Error.Metadata.Fields[0].Message)
}

func TestCreateApplication_WaitAbandoned(t *testing.T) {
	h := newTestServer(t, time.Hour, time.Now, nil).Routes()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rec := apiRequest(t, h, ctx, `{"name":"Maxi","age":"25","discord":"maxi#1234","experience":"yes","motivation":"Ich möchte der Community helfen."}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestReady_Unavailable(t *testing.T) {
	h := newTestServer(t, time.Second, time.Now, func(context.Context) error {
		return errors.New("redis down")
	}).Routes()
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis down")
}
