package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-portal/forms"
	"github.com/jrsteele09/go-auth-portal/internal/config"
	"github.com/jrsteele09/go-auth-portal/registration"
	"github.com/jrsteele09/go-auth-portal/server/consentvisit"
	"github.com/jrsteele09/go-auth-portal/session"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators the portal serves requests with.
type Dependencies struct {
	Sessions  *session.Manager
	Validator *registration.Validator
	Committer *registration.Committer
	Visits    consentvisit.Repo
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	sessions   *session.Manager
	validator  *registration.Validator
	committer  *registration.Committer
	visits     consentvisit.Repo
	visitLocks *consentvisit.Locks // serialises requests for one consent visit
	signIn     *forms.SignIn
	signUp     *forms.SignUp
	notices    *noticeStore
}

func New(cfg config.Config, deps Dependencies) (*Server, error) {
	if deps.Sessions == nil || deps.Validator == nil || deps.Committer == nil {
		return nil, fmt.Errorf("[Server New] sessions, validator and committer are required")
	}
	if deps.Visits == nil {
		deps.Visits = consentvisit.NewInMemoryRepo()
	}

	notices, err := newNoticeStore(cfg.GetSessionSecret(), cfg.GetCookieDomain())
	if err != nil {
		return nil, fmt.Errorf("[Server New] notices: %w", err)
	}

	s := &Server{
		env:        cfg.GetEnv(),
		mux:        http.NewServeMux(),
		config:     cfg,
		sessions:   deps.Sessions,
		validator:  deps.Validator,
		committer:  deps.Committer,
		visits:     deps.Visits,
		visitLocks: consentvisit.NewLocks(),
		signIn:     forms.NewSignIn(deps.Sessions, deps.Committer, cfg.GetPasswordMinLength(), cfg.GetLoginRedirectPath()),
		signUp:     forms.NewSignUp(deps.Committer, cfg.GetPasswordMinLength(), cfg.GetCollectAddress()),
		notices:    notices,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// Routes returns the registered route patterns in registration order.
func (s *Server) Routes() []string {
	out := make([]string, len(s.routes))
	copy(out, s.routes)
	return out
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
