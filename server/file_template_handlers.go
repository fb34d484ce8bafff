package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-portal/internal/i18n"
	"github.com/jrsteele09/go-auth-portal/notice"
	"github.com/jrsteele09/go-auth-portal/session"
	"github.com/rs/zerolog"
)

//go:embed templates/*
var templateFiles embed.FS

// Templates shared by every page.
var sharedTemplates = []string{"layout.html", "partials.html"}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"addressForm": addressForm,
}

// ParseTemplate parses a page template together with the shared layout.
func ParseTemplate(name string) (*template.Template, error) {
	patterns := append(append([]string{}, sharedTemplates...), name)
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), patterns...)
}

// mustParseTemplate is used while registering routes; the templates are
// embedded so a failure is a build defect.
func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}

type languageLink struct {
	Tag    string
	URL    string
	Active bool
}

// basePage is the data every page layout needs.
type basePage struct {
	AppName   string
	Title     string
	Lang      string
	Languages []languageLink
	User      *session.User
	Notices   []notice.Notice
}

func (s *Server) newBasePage(w http.ResponseWriter, r *http.Request, title string) basePage {
	active := localeFrom(r.Context())

	var links []languageLink
	for _, tag := range i18n.Supported() {
		q := r.URL.Query()
		q.Set(i18n.LangParam, tag.String())
		links = append(links, languageLink{
			Tag:    tag.String(),
			URL:    r.URL.Path + "?" + q.Encode(),
			Active: tag == active,
		})
	}

	return basePage{
		AppName:   s.config.GetAppName(),
		Title:     title,
		Lang:      active.String(),
		Languages: links,
		User:      currentUser(r.Context()),
		Notices:   s.notices.pop(w, r),
	}
}

// render executes the page layout with data.
func render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data any) {
	var sb strings.Builder
	if err := tmpl.ExecuteTemplate(&sb, "layout", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", tmpl.Name()).Msg("failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(sb.String()))
}
