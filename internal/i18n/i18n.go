// Package i18n resolves the display locale for a request. Only the locale tag
// is resolved here; page copy is not translated.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter used to select a locale.
	LangParam = "lang"
	// LangCookieName stores the user's locale preference.
	LangCookieName = "NEXT_LOCALE"
)

var supported = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Dutch,
	language.Portuguese,
}

var matcher = language.NewMatcher(supported)

// Supported returns the supported locales, default first.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

func Default() language.Tag {
	return supported[0]
}

// Parse returns the supported locale for value, if value names one.
func Parse(value string) (language.Tag, bool) {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return Default(), false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return Default(), false
	}
	for _, s := range supported {
		if sb, _ := s.Base(); sb == base {
			return s, true
		}
	}
	return Default(), false
}

// Resolve picks the locale for r from the lang query parameter, then the locale
// cookie, then Accept-Language. The bool reports whether the choice came from
// the query and should be persisted.
func Resolve(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}

	if v := r.URL.Query().Get(LangParam); v != "" {
		if tag, ok := Parse(v); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := Parse(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No {
				return supported[idx], false
			}
		}
	}

	return Default(), false
}

// SetCookie persists the selected locale for a year.
func SetCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}
