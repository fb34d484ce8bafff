package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-portal/consent"
	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/jrsteele09/go-auth-portal/notice"
	"github.com/jrsteele09/go-auth-portal/server/consentvisit"
	"github.com/rs/zerolog/log"
)

const visitParam = "visit"

type validatePage struct {
	basePage
	State      string
	Token      string
	VisitID    string
	SignInURL  string
	SignUpURL  string
	AcceptURL  string
	DeclineURL string
	HomeURL    string
	Outcome    *notice.Notice
}

func (s *Server) newFlow(token string) *consent.Flow {
	return consent.NewFlow(token, s.validator, s.committer, s.config.GetPlaceholderPassword())
}

// loadVisit restores an open visit for token. It fails with
// ErrVisitNotFound for unknown or expired visits and ErrVisitMismatch for a
// visit opened for another token.
func (s *Server) loadVisit(token, visitID string) (*consent.Flow, error) {
	if visitID == "" {
		return nil, apperrors.ErrVisitNotFound
	}
	v, err := s.visits.Get(visitID)
	if err != nil {
		return nil, err
	}
	flow := s.newFlow(token)
	if !flow.Restore(v.Snapshot) {
		return nil, apperrors.Wrapf(apperrors.ErrVisitMismatch, "[Server loadVisit] visit %s", visitID)
	}
	return flow, nil
}

func (s *Server) saveVisit(r *http.Request, visitID string, flow *consent.Flow) {
	now := time.Now().UTC()
	err := s.visits.Upsert(consentvisit.Visit{
		ID:        visitID,
		Snapshot:  flow.Snapshot(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.GetConsentVisitTTL()),
	})
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("visit", visitID).Msg("failed to save consent visit")
	}
}

func visitURL(token, visitID string) string {
	u := "/validate/" + url.PathEscape(token)
	if visitID == "" {
		return u
	}
	return u + "?" + url.Values{visitParam: {visitID}}.Encode()
}

// ValidatePageHandler shows the consent page for a registration token. A new
// visit validates the token; a returning visit continues where it left off.
func (s *Server) ValidatePageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("validate.html")
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.PathValue("token")
		visitID := r.URL.Query().Get(visitParam)
		if visitID != "" {
			unlock := s.visitLocks.Lock(visitID)
			defer unlock()
		}

		flow, err := s.loadVisit(token, visitID)
		if err != nil {
			if visitID != "" {
				log.Ctx(r.Context()).Debug().Err(err).Str("visit", visitID).Msg("consent visit not restored")
			}
			visitID = uuid.NewString()
			flow = s.newFlow(token)
			flow.Validate(r.Context())
		}
		user := currentUser(r.Context())
		flow.SetSession(user)
		s.saveVisit(r, visitID, flow)

		homeURL := RouteIndex
		if user != nil && flow.State() == consent.Complete {
			homeURL = s.config.GetLoginRedirectPath()
		}

		snap := flow.Snapshot()
		data := validatePage{
			basePage:   s.newBasePage(w, r, "Register your code"),
			State:      flow.State().String(),
			Token:      token,
			VisitID:    visitID,
			SignInURL:  flow.SignInPath(),
			SignUpURL:  flow.SignUpPath(),
			AcceptURL:  "/validate/" + url.PathEscape(token) + "/accept",
			DeclineURL: "/validate/" + url.PathEscape(token) + "/decline",
			HomeURL:    homeURL,
			Outcome:    snap.Outcome,
		}

		render(w, r, tmpl, http.StatusOK, data)
	}
}

// ValidateAcceptHandler records the agreement and binds the token to the
// signed-in account.
func (s *Server) ValidateAcceptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.PathValue("token")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		visitID := r.PostFormValue(visitParam)
		if visitID != "" {
			unlock := s.visitLocks.Lock(visitID)
			defer unlock()
		}

		flow, err := s.loadVisit(token, visitID)
		if err != nil {
			log.Ctx(r.Context()).Info().Err(err).Str("visit", visitID).Msg("consent visit not restored")
			redirectSuccess(w, r, visitURL(token, ""))
			return
		}
		flow.SetSession(currentUser(r.Context()))

		n, err := flow.Accept(r.Context())
		if err != nil {
			log.Ctx(r.Context()).Info().Err(err).Str("visit", visitID).Msg("consent not accepted")
			redirectSuccess(w, r, visitURL(token, visitID))
			return
		}

		s.saveVisit(r, visitID, flow)
		s.notices.add(w, r, n)
		redirectSuccess(w, r, visitURL(token, visitID))
	}
}

// ValidateDeclineHandler withdraws the agreement and signs the user out
func (s *Server) ValidateDeclineHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.PathValue("token")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		visitID := r.PostFormValue(visitParam)
		if visitID != "" {
			unlock := s.visitLocks.Lock(visitID)
			defer unlock()
		}

		flow, err := s.loadVisit(token, visitID)
		if err != nil {
			log.Ctx(r.Context()).Info().Err(err).Str("visit", visitID).Msg("consent visit not restored")
			redirectSuccess(w, r, visitURL(token, ""))
			return
		}
		flow.Decline()

		if id := sessionIDFrom(r); id != "" {
			if err := s.sessions.SignOut(r.Context(), id); err != nil {
				log.Ctx(r.Context()).Error().Err(err).Msg("sign out failed")
			}
		}
		s.clearSessionCookie(w, r)

		s.saveVisit(r, visitID, flow)
		s.notices.add(w, r, notice.NewInfo(notice.MsgSignedOut))
		redirectSuccess(w, r, visitURL(token, visitID))
	}
}
