package forms

import (
	"net/http"
	"time"
)

// FirstVisitCookie marks a browser that has loaded the sign-in page before.
const FirstVisitCookie = "hasVisitedBefore2"

// VisitMarker reads and writes the first-visit marker.
type VisitMarker interface {
	Visited() bool
	MarkVisited()
}

// CheckReturning reports whether the visitor has been here before and writes
// the marker on the first visit only.
func CheckReturning(m VisitMarker) bool {
	if m.Visited() {
		return true
	}
	m.MarkVisited()
	return false
}

// CookieMarker keeps the marker in a long-lived cookie.
type CookieMarker struct {
	r *http.Request
	w http.ResponseWriter
}

func NewCookieMarker(w http.ResponseWriter, r *http.Request) *CookieMarker {
	return &CookieMarker{r: r, w: w}
}

func (m *CookieMarker) Visited() bool {
	c, err := m.r.Cookie(FirstVisitCookie)
	return err == nil && c.Value != ""
}

func (m *CookieMarker) MarkVisited() {
	http.SetCookie(m.w, &http.Cookie{
		Name:     FirstVisitCookie,
		Value:    "true",
		Path:     "/",
		MaxAge:   int((10 * 365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
