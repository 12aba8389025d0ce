package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/Leopold1975/gis_console/internal/pkg/metrics"
	"github.com/Leopold1975/gis_console/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const ProfileCookie = "gis_profile"

type profileKey struct{}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := httptest.NewRecorder()

			defer func() {
				logg.Infof("METHOD %s URI %s %s STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					rr.Code,
					time.Since(start).String(),
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(rr, r)

			for k, v := range rr.Header() {
				w.Header()[k] = v
			}

			w.WriteHeader(rr.Code)

			if rr.Code >= 400 && rr.Body.Len() != 0 {
				logg.Errorf("error: %s", rr.Body.String())
			}

			if _, err := rr.Body.WriteTo(w); err != nil {
				logg.Errorf("middleware write error: %s", err.Error())
			}
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.code = code
	sw.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		metrics.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.code)).Inc()
		metrics.RequestDurationMs.WithLabelValues(r.Method, route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

// profileMiddleware reads the browser profile id, issuing a fresh one when the
// cookie is absent or malformed.
func profileMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var profile string

		if c, err := r.Cookie(ProfileCookie); err == nil {
			if id, err := uuid.Parse(c.Value); err == nil {
				profile = id.String()
			}
		}

		if profile == "" {
			profile = uuid.NewString()
			http.SetCookie(w, &http.Cookie{ //nolint:exhaustruct
				Name:     ProfileCookie,
				Value:    profile,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey{}, profile)))
	})
}

func profileFrom(ctx context.Context) string {
	p, _ := ctx.Value(profileKey{}).(string)

	return p
}
