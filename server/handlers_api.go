package server

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/jrsteele09/go-auth-portal/forms"
	"github.com/jrsteele09/go-auth-portal/registration"
	"github.com/jrsteele09/go-auth-portal/session"
	"github.com/rs/zerolog/log"
)

const maxAPIBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeRawJSON relays an upstream JSON body unchanged
func writeRawJSON(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// APIValidateHandler proxies a token check to the registration backend
func (s *Server) APIValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Token is required"})
			return
		}

		res, err := s.validator.Check(r.Context(), token)
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("token validation proxy failed")
			status := http.StatusInternalServerError
			var upstream *registration.UpstreamError
			if apperrors.As(err, &upstream) {
				status = upstream.Status
			}
			writeJSON(w, status, map[string]string{"error": "API request failed"})
			return
		}
		if !json.Valid(res.Body) {
			log.Ctx(r.Context()).Error().Int("status", res.Status).Msg("token validation answer is not JSON")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "API request failed"})
			return
		}
		writeRawJSON(w, http.StatusOK, res.Body)
	}
}

// APIRegisterQRCodeHandler relays a registration request to the central server
func (s *Server) APIRegisterQRCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAPIBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
			return
		}

		res, err := s.committer.Forward(r.Context(), payload)
		switch {
		case apperrors.Is(err, apperrors.ErrInvalidRequest):
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		case err != nil:
			log.Ctx(r.Context()).Error().Err(err).Msg("registration proxy failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		default:
			writeRawJSON(w, res.Status, res.Body)
		}
	}
}

type sessionResponse struct {
	User    *session.User `json:"user,omitempty"`
	Expires string        `json:"expires,omitempty"`
}

// APISessionHandler reports the signed-in user, or an empty object
func (s *Server) APISessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		sess := currentSession(r.Context())
		if sess == nil {
			writeJSON(w, http.StatusOK, sessionResponse{})
			return
		}
		user := sess.User
		writeJSON(w, http.StatusOK, sessionResponse{
			User:    &user,
			Expires: sess.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}

// ValidatePasswordHandler checks password length for the htmx hint under
// the password field.
func (s *Server) ValidatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		password := r.PostFormValue(forms.FieldPassword)
		w.Header().Set("Content-Type", contentTypeHTML)
		if password == "" {
			w.WriteHeader(http.StatusOK)
			return
		}

		if msg := forms.PasswordError(password, s.config.GetPasswordMinLength()); msg != "" {
			w.Header().Set("HX-Trigger", `{"passwordInvalid": ""}`)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `<span class="field-error">%s</span>`, html.EscapeString(msg))
			return
		}

		w.Header().Set("HX-Trigger", `{"passwordValid": ""}`)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `<span class="field-ok">&#10003;</span>`)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
