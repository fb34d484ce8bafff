package server

import (
	"net/http"
)

// IndexHandler renders the landing page
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := struct {
			basePage
			SignInURL string
			SignUpURL string
			HomeURL   string
		}{
			basePage:  s.newBasePage(w, r, "Welcome"),
			SignInURL: RouteSignIn,
			SignUpURL: RouteSignUp,
			HomeURL:   s.config.GetLoginRedirectPath(),
		}
		render(w, r, tmpl, http.StatusOK, data)
	}
}

// DocumentsHandler is the signed-in landing page
func (s *Server) DocumentsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("documents.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := struct {
			basePage
			SignOutURL string
		}{
			basePage:   s.newBasePage(w, r, "Documents"),
			SignOutURL: RouteSignOut,
		}
		render(w, r, tmpl, http.StatusOK, data)
	}
}

// UnverifiedAccountHandler tells the user to verify their email first
func (s *Server) UnverifiedAccountHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("unverified.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := struct {
			basePage
			SignInURL string
		}{
			basePage:  s.newBasePage(w, r, "Verify your email"),
			SignInURL: withToken(RouteSignIn, r.URL.Query().Get("token")),
		}
		render(w, r, tmpl, http.StatusOK, data)
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
	}
}
