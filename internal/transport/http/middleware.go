package httptransport

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	apperrors "vortexzz-apply/internal/common/errors"
	"vortexzz-apply/internal/common/metrics"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type contextKeySessionID struct{}

// SessionID returns the visitor session id set by the sessions middleware.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeySessionID{}).(string)
	return id
}

// sessions assigns every visitor a uuid session cookie.
func (s *Server) sessions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(s.config.CookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		http.SetCookie(w, &http.Cookie{
			Name:     s.config.CookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(s.config.SessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   s.config.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		ctx := context.WithValue(r.Context(), contextKeySessionID{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request completed", map[string]interface{}{
			"requestId": chimiddleware.GetReqID(r.Context()),
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"latencyMs": time.Since(start).Milliseconds(),
		})
	})
}

func (s *Server) metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error("panic recovered", map[string]interface{}{
				"requestId": chimiddleware.GetReqID(r.Context()),
				"panic":     fmt.Sprint(rec),
				"stack":     string(debug.Stack()),
			})
			s.errors.HandleRequestError(w, r, fmt.Errorf("panic: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds rounds up so a client never polls before the delay has passed.
func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

func isCode(err error, codes ...apperrors.ErrorCode) bool {
	for _, code := range codes {
		if apperrors.HasCode(err, code) {
			return true
		}
	}
	return false
}
