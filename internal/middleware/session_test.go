package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govuk-domains/domain-request/internal/session"
	"github.com/govuk-domains/domain-request/internal/shared"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingPurger struct{ purged []string }

func (p *recordingPurger) Purge(_ context.Context, id string) error {
	p.purged = append(p.purged, id)
	return nil
}

func newSessionRouter(store session.Store, purger Purger, onExpired func()) *gin.Engine {
	r := gin.New()
	r.GET("/step/", RequireSession(store, session.DefaultTimeout, purger, onExpired), TouchSession(store), func(c *gin.Context) {
		c.String(http.StatusOK, "session %s", Record(c).ID)
	})
	return r
}

func TestRequireSessionRedirectsWithoutCookie(t *testing.T) {
	r := newSessionRouter(session.NewMemoryStore(), nil, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/step/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRequireSessionRedirectsForUnknownSession(t *testing.T) {
	r := newSessionRouter(session.NewMemoryStore(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/step/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "nope"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRequireSessionLoadsLiveSession(t *testing.T) {
	store := session.NewMemoryStore()
	rec := session.New(time.Now().UTC())
	require.NoError(t, store.Put(context.Background(), rec))
	r := newSessionRouter(store, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/step/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: rec.ID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), rec.ID)
}

func TestRequireSessionEvictsExpired(t *testing.T) {
	store := session.NewMemoryStore()
	rec := session.New(time.Now().UTC().Add(-30 * time.Minute))
	require.NoError(t, store.Put(context.Background(), rec))
	purger := &recordingPurger{}
	expired := 0
	r := newSessionRouter(store, purger, func() { expired++ })

	req := httptest.NewRequest(http.MethodGet, "/step/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: rec.ID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/session-ended/", w.Header().Get("Location"))
	assert.Equal(t, []string{rec.ID}, purger.purged)
	assert.Equal(t, 1, expired)

	_, err := store.Get(context.Background(), rec.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestTouchSessionAdvancesActivity(t *testing.T) {
	store := session.NewMemoryStore()
	rec := session.New(time.Now().UTC().Add(-10 * time.Minute))
	rec.LastActive = time.Now().UTC().Add(-10 * time.Minute)
	require.NoError(t, store.Put(context.Background(), rec))
	r := newSessionRouter(store, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/step/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: rec.ID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	after, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), after.LastActive, 5*time.Second)
}

func TestVerifyCSRF(t *testing.T) {
	store := session.NewMemoryStore()
	rec := session.New(time.Now().UTC())
	require.NoError(t, store.Put(context.Background(), rec))
	mgr := shared.NewCSRFManager("test-secret", time.Hour)

	r := gin.New()
	r.POST("/step/", RequireSession(store, session.DefaultTimeout, nil, nil), VerifyCSRF(mgr), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	post := func(token string) *httptest.ResponseRecorder {
		body := ""
		if token != "" {
			body = CSRFField + "=" + token
		}
		req := httptest.NewRequest(http.MethodPost, "/step/", nil)
		if body != "" {
			req = httptest.NewRequest(http.MethodPost, "/step/", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: rec.ID})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	tok, err := mgr.Issue(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, post(tok).Code)

	missing := post("")
	assert.Equal(t, http.StatusFound, missing.Code)
	assert.Equal(t, "/", missing.Header().Get("Location"))

	forged := post("forged-token")
	assert.Equal(t, http.StatusFound, forged.Code)
}

func TestCookieConsent(t *testing.T) {
	r := gin.New()
	r.GET("/", CookieConsent(), func(c *gin.Context) {
		c.String(http.StatusOK, "banner=%v accepted=%v", c.MustGet("show_cookie_banner"), c.MustGet("cookies_accepted"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, w.Body.String(), "banner=true")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ConsentCookie, Value: "true"})
	req.AddCookie(&http.Cookie{Name: ConsentAcceptedCookie, Value: "false"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "banner=false")
	assert.Contains(t, w.Body.String(), "accepted=false")
}
