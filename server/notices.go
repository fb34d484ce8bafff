package server

import (
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/jrsteele09/go-auth-portal/notice"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/hkdf"
)

const (
	noticeCookieName = "portal.notices"
	noticeMaxAge     = 300
)

func init() {
	gob.Register(notice.Notice{})
}

// noticeStore flashes notices across a redirect in an encrypted cookie.
type noticeStore struct {
	store *sessions.CookieStore
}

func newNoticeStore(secret, domain string) (*noticeStore, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	authKey, err := deriveKey(secret, "portal notices authentication")
	if err != nil {
		return nil, err
	}
	encKey, err := deriveKey(secret, "portal notices encryption")
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(authKey, encKey)
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   domain,
		MaxAge:   noticeMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &noticeStore{store: store}, nil
}

func deriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}

// add queues notices for the next page rendered for this browser.
func (n *noticeStore) add(w http.ResponseWriter, r *http.Request, notices ...notice.Notice) {
	if len(notices) == 0 {
		return
	}

	sess, err := n.store.Get(r, noticeCookieName)
	if err != nil {
		// An unreadable cookie is replaced by the new one.
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("discarding notice cookie")
	}
	sess.Options.Secure = getScheme(r) == "https"
	for _, nt := range notices {
		sess.AddFlash(nt)
	}
	if err := sess.Save(r, w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to save notices")
	}
}

// pop returns and clears the queued notices.
func (n *noticeStore) pop(w http.ResponseWriter, r *http.Request) []notice.Notice {
	if _, err := r.Cookie(noticeCookieName); err != nil {
		return nil
	}

	sess, err := n.store.Get(r, noticeCookieName)
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("discarding notice cookie")
	}
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to clear notices")
	}

	out := make([]notice.Notice, 0, len(flashes))
	for _, f := range flashes {
		if nt, ok := f.(notice.Notice); ok {
			out = append(out, nt)
		}
	}
	return out
}
