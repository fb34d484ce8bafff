package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-auth-portal/session"
	"github.com/rs/zerolog"
)

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   s.config.GetCookieDomain(),
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetSessionMaxAge().Seconds()),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.config.GetCookieDomain(),
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func sessionIDFrom(r *http.Request) string {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SessionMiddleware loads the signed-in session, if any, into the request
// context. A cookie for a session that no longer exists is cleared.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionIDFrom(r)
		if id == "" {
			next(w, r)
			return
		}

		sess, err := s.sessions.Current(r.Context(), id)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to load session")
		}
		if sess == nil {
			s.clearSessionCookie(w, r)
			next(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeySession, sess)
		next(w, r.WithContext(ctx))
	}
}

// RequireSession sends visitors without a session to the sign-in page.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if currentSession(r.Context()) == nil {
			redirectSuccess(w, r, RouteSignIn)
			return
		}
		next(w, r)
	}
}

func currentSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(ctxKeySession).(*session.Session)
	return sess
}

func currentUser(ctx context.Context) *session.User {
	if sess := currentSession(ctx); sess != nil {
		u := sess.User
		return &u
	}
	return nil
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// withToken appends the registration token to path, if there is one.
func withToken(path, token string) string {
	if token == "" {
		return path
	}
	return path + "?" + url.Values{"token": {token}}.Encode()
}
