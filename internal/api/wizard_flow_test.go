package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govuk-domains/domain-request/internal/evidence"
	"github.com/govuk-domains/domain-request/internal/middleware"
	"github.com/govuk-domains/domain-request/internal/session"
	"github.com/govuk-domains/domain-request/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var csrfTokenPattern = regexp.MustCompile(`"csrf_token":"([^"]+)"`)

// client drives the wizard the way a browser would: it keeps cookies
// between requests and remembers the CSRF token from the last form it saw.
type client struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]string
	csrf    string
}

func newTestServer(t *testing.T) (*Server, *client) {
	t.Helper()
	backend, err := storage.NewFilesystemBackend(t.TempDir())
	require.NoError(t, err)
	srv := NewServer(Options{
		Store:    session.NewMemoryStore(),
		Evidence: evidence.NewManager(backend),
	})
	return srv, &client{
		t:       t,
		engine:  srv.Engine(),
		cookies: make(map[string]string),
	}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	for name, value := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	w := httptest.NewRecorder()
	cl.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		cl.cookies[c.Name] = c.Value
	}
	if m := csrfTokenPattern.FindStringSubmatch(w.Body.String()); m != nil {
		cl.csrf = m[1]
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	if cl.csrf != "" && form.Get("csrf_token") == "" {
		form.Set("csrf_token", cl.csrf)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

// postFile submits a multipart upload with an optional file.
func (cl *client) postFile(path, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(cl.t, mw.WriteField("csrf_token", cl.csrf))
	if filename != "" {
		fw, err := mw.CreateFormFile(uploadFileField, filename)
		require.NoError(cl.t, err)
		_, err = fw.Write(content)
		require.NoError(cl.t, err)
	}
	require.NoError(cl.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return cl.do(req)
}

// submit posts a form and requires a redirect to the expected next page.
func (cl *client) submit(path string, form url.Values, wantNext string) {
	cl.t.Helper()
	w := cl.post(path, form)
	require.Equal(cl.t, http.StatusFound, w.Code, "POST %s body: %s", path, w.Body.String())
	require.Equal(cl.t, wantNext, w.Header().Get("Location"), "POST %s", path)
	require.Equal(cl.t, http.StatusOK, cl.get(wantNext).Code, "GET %s", wantNext)
}

func pngBytes(size int) []byte {
	b := make([]byte, size)
	copy(b, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	return b
}

func registrarForm() url.Values {
	return url.Values{
		"registrar_organisation": {"WeRegister"},
		"registrar_name":         {"Joe Bloggs"},
		"registrar_phone":        {"01632 960 001"},
		"registrar_email":        {"joe@weregister.co.uk"},
	}
}

func registrantForm() url.Values {
	return url.Values{
		"registrant_organisation": {"Methwold Parish Council"},
		"registrant_full_name":    {"Sam Smith"},
		"registrant_phone":        {"07700 900 982"},
		"registrant_email":        {"sam@methwold.org"},
	}
}

func registryForm() url.Values {
	return url.Values{
		"registrant_role":          {"Clerk"},
		"registrant_contact_email": {"clerk@methwold.org"},
	}
}

// begin starts a new session and lands on the first step.
func (cl *client) begin() {
	cl.t.Helper()
	w := cl.post("/start/", nil)
	require.Equal(cl.t, http.StatusFound, w.Code)
	require.Equal(cl.t, "/registrar-details/", w.Header().Get("Location"))
	require.Equal(cl.t, http.StatusOK, cl.get("/registrar-details/").Code)
	require.NotEmpty(cl.t, cl.csrf)
}

func TestParishCouncilJourney(t *testing.T) {
	srv, cl := newTestServer(t)
	cl.begin()

	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
	cl.submit("/registrant-type/", url.Values{"registrant_type": {"parish-council"}}, "/domain/")
	cl.submit("/domain/", url.Values{"domain_name": {"Methwold.gov.uk"}}, "/domain-confirmation/")
	cl.submit("/domain-confirmation/", url.Values{"domain_confirmation": {"yes"}}, "/registrant-details/")
	cl.submit("/registrant-details/", registrantForm(), "/registry-details/")
	cl.submit("/registry-details/", registryForm(), "/confirm/")

	answers := cl.get("/confirm/")
	require.Equal(t, http.StatusOK, answers.Code)
	assert.Contains(t, answers.Body.String(), "methwold.gov.uk")
	assert.Contains(t, answers.Body.String(), "Parish, town or community council")

	w := cl.post("/confirm/", nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/success/", w.Header().Get("Location"))

	success := cl.get("/success/")
	require.Equal(t, http.StatusOK, success.Code)
	assert.Regexp(t, `GOVUK[A-Z0-9]{6}`, success.Body.String())

	// One-time view: a refresh replays to a hard client error.
	replay := cl.get("/success/")
	assert.Equal(t, http.StatusBadRequest, replay.Code)
	assert.Contains(t, replay.Body.String(), "Invalid request")

	// So does any wizard step after submission.
	assert.Equal(t, http.StatusBadRequest, cl.get("/domain/").Code)
	assert.Equal(t, http.StatusBadRequest, cl.get("/registrar-details/").Code)

	// Exactly one record exists, stored with the submitted answers.
	ref := regexp.MustCompile(`GOVUK[A-Z0-9]{6}`).FindString(success.Body.String())
	stored, err := srv.repo.GetByReference(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "methwold.gov.uk", stored.Application.DomainName)
}

func TestRepeatedConfirmationSubmits(t *testing.T) {
	srv, cl := newTestServer(t)
	cl.begin()

	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
	cl.submit("/registrant-type/", url.Values{"registrant_type": {"parish-council"}}, "/domain/")
	cl.submit("/domain/", url.Values{"domain_name": {"methwold"}}, "/domain-confirmation/")
	cl.submit("/domain-confirmation/", url.Values{"domain_confirmation": {"yes"}}, "/registrant-details/")
	cl.submit("/registrant-details/", registrantForm(), "/registry-details/")
	cl.submit("/registry-details/", registryForm(), "/confirm/")

	first := cl.post("/confirm/", nil)
	require.Equal(t, http.StatusFound, first.Code)
	require.Equal(t, "/success/", first.Header().Get("Location"))

	// A double-clicked submit lands on the same success page.
	second := cl.post("/confirm/", nil)
	require.Equal(t, http.StatusFound, second.Code)
	assert.Equal(t, "/success/", second.Header().Get("Location"))

	success := cl.get("/success/")
	require.Equal(t, http.StatusOK, success.Code)
	ref := regexp.MustCompile(`GOVUK[A-Z0-9]{6}`).FindString(success.Body.String())
	require.NotEmpty(t, ref)

	// Still one record, one counted submission.
	stored, err := srv.repo.GetByReference(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "methwold.gov.uk", stored.Application.DomainName)
	assert.Equal(t, float64(1), testutil.ToFloat64(srv.metrics.Submissions))
}

func TestDomainConfirmationNoLoopsBack(t *testing.T) {
	_, cl := newTestServer(t)
	cl.begin()
	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
	cl.submit("/registrant-type/", url.Values{"registrant_type": {"village-council"}}, "/domain/")
	cl.submit("/domain/", url.Values{"domain_name": {"methwold"}}, "/domain-confirmation/")

	w := cl.post("/domain-confirmation/", url.Values{"domain_confirmation": {"no"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/domain/", w.Header().Get("Location"))

	// The domain step is open again; confirmation has been reset.
	assert.Equal(t, http.StatusOK, cl.get("/domain/").Code)
	cl.submit("/domain/", url.Values{"domain_name": {"methwold-pc"}}, "/domain-confirmation/")
}

func TestCentralGovernmentWebsiteJourney(t *testing.T) {
	_, cl := newTestServer(t)
	cl.begin()
	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
	cl.submit("/registrant-type/", url.Values{"registrant_type": {"central-government"}}, "/domain-purpose/")
	cl.submit("/domain-purpose/", url.Values{"domain_purpose": {"website-email"}}, "/exemption/")
	cl.submit("/exemption/", url.Values{"exemption": {"yes"}}, "/exemption-upload/")

	up := cl.postFile("/exemption-upload/", "exemption.png", pngBytes(400))
	require.Equal(t, http.StatusFound, up.Code)
	require.Equal(t, "/exemption-upload-confirm/", up.Header().Get("Location"))

	confirm := cl.get("/exemption-upload-confirm/")
	require.Equal(t, http.StatusOK, confirm.Code)
	assert.Contains(t, confirm.Body.String(), "exemption.png")
	assert.Contains(t, confirm.Body.String(), "Uploaded")

	w := cl.post("/exemption-upload-confirm/", nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/written-permission/", w.Header().Get("Location"))
	require.Equal(t, http.StatusOK, cl.get("/written-permission/").Code)

	cl.submit("/written-permission/", url.Values{"written_permission": {"yes"}}, "/written-permission-upload/")
	up = cl.postFile("/written-permission-upload/", "permission.png", pngBytes(400))
	require.Equal(t, http.StatusFound, up.Code)
	w = cl.post("/written-permission-upload-confirm/", nil)
	require.Equal(t, "/domain/", w.Header().Get("Location"))

	cl.submit("/domain/", url.Values{"domain_name": {"dft"}}, "/domain-confirmation/")
	cl.submit("/domain-confirmation/", url.Values{"domain_confirmation": {"yes"}}, "/minister/")
	cl.submit("/minister/", url.Values{"minister": {"no"}}, "/registrant-details/")
	cl.submit("/registrant-details/", registrantForm(), "/registry-details/")
	cl.submit("/registry-details/", registryForm(), "/confirm/")

	answers := cl.get("/confirm/").Body.String()
	assert.Contains(t, answers, "Yes, evidence provided: exemption.png")
	assert.Contains(t, answers, "Yes, evidence provided: permission.png")
	assert.Contains(t, answers, "No evidence provided")
}

func TestUploadValidationMessages(t *testing.T) {
	_, cl := newTestServer(t)
	cl.begin()
	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
	cl.submit("/registrant-type/", url.Values{"registrant_type": {"fire-service"}}, "/written-permission/")
	cl.submit("/written-permission/", url.Values{"written_permission": {"yes"}}, "/written-permission-upload/")

	missing := cl.postFile("/written-permission-upload/", "", nil)
	require.Equal(t, http.StatusOK, missing.Code)
	assert.Contains(t, missing.Body.String(), "Choose the file you want to upload.")

	wrong := cl.postFile("/written-permission-upload/", "letter.pdf", []byte("%PDF-1.4 definitely a pdf"))
	require.Equal(t, http.StatusOK, wrong.Code)
	assert.Contains(t, wrong.Body.String(), "Wrong file format.")

	big := cl.postFile("/written-permission-upload/", "big.png", pngBytes(evidence.MaxUploadBytes+500_000))
	require.Equal(t, http.StatusOK, big.Code)
	assert.Contains(t, big.Body.String(), "Please keep filesize under 2.50 MB. Current filesize 3.00 MB")
}

func TestUploadRemoveKillsDownloadURL(t *testing.T) {
	_, cl := newTestServer(t)
	cl.begin()
	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
	cl.submit("/registrant-type/", url.Values{"registrant_type": {"pcc"}}, "/written-permission/")
	cl.submit("/written-permission/", url.Values{"written_permission": {"yes"}}, "/written-permission-upload/")
	require.Equal(t, http.StatusFound, cl.postFile("/written-permission-upload/", "proof.png", pngBytes(200)).Code)

	body := cl.get("/written-permission-upload-confirm/").Body.String()
	m := regexp.MustCompile(`/uploads/[^"\\]+`).FindString(body)
	require.NotEmpty(t, m)
	assert.Equal(t, http.StatusOK, cl.get(m).Code)

	w := cl.get("/written-permission-upload-remove/")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/written-permission-upload/", w.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, cl.get(m).Code)
}

func TestTerminalRejections(t *testing.T) {
	t.Run("ineligible registrant type", func(t *testing.T) {
		_, cl := newTestServer(t)
		cl.begin()
		cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
		cl.submit("/registrant-type/", url.Values{"registrant_type": {"none"}}, "/registrant-type-fail/")
	})

	t.Run("other purpose", func(t *testing.T) {
		_, cl := newTestServer(t)
		cl.begin()
		cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
		cl.submit("/registrant-type/", url.Values{"registrant_type": {"alb"}}, "/domain-purpose/")
		cl.submit("/domain-purpose/", url.Values{"domain_purpose": {"api-only"}}, "/domain-purpose-fail/")
	})

	t.Run("no permission names chief executive for route 3", func(t *testing.T) {
		_, cl := newTestServer(t)
		cl.begin()
		cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
		cl.submit("/registrant-type/", url.Values{"registrant_type": {"county-council"}}, "/written-permission/")
		w := cl.post("/written-permission/", url.Values{"written_permission": {"no"}})
		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/written-permission-fail/", w.Header().Get("Location"))
		assert.Contains(t, cl.get("/written-permission-fail/").Body.String(), "chief executive")
	})

	t.Run("no permission names chief information officer for central government", func(t *testing.T) {
		_, cl := newTestServer(t)
		cl.begin()
		cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
		cl.submit("/registrant-type/", url.Values{"registrant_type": {"central-government"}}, "/domain-purpose/")
		cl.submit("/domain-purpose/", url.Values{"domain_purpose": {"email-only"}}, "/written-permission/")
		w := cl.post("/written-permission/", url.Values{"written_permission": {"no"}})
		require.Equal(t, "/written-permission-fail/", w.Header().Get("Location"))
		assert.Contains(t, cl.get("/written-permission-fail/").Body.String(), "chief information officer")
	})
}

func TestValidationErrorsLeaveStateUntouched(t *testing.T) {
	_, cl := newTestServer(t)
	cl.begin()

	bad := registrarForm()
	bad.Set("registrar_phone", "12345")
	w := cl.post("/registrar-details/", bad)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Enter a telephone number, like 01632 960 001 or 07700 900 982")

	// The next step is still off limits: nothing was persisted.
	assert.Equal(t, http.StatusBadRequest, cl.get("/registrant-type/").Code)
}

func TestDomainValidation(t *testing.T) {
	_, cl := newTestServer(t)
	cl.begin()
	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
	cl.submit("/registrant-type/", url.Values{"registrant_type": {"parish-council"}}, "/domain/")

	for _, bad := range []string{"ab", "-methwold", "methwold-", "meth--wold", "meth wold", strings.Repeat("a", 64)} {
		w := cl.post("/domain/", url.Values{"domain_name": {bad}})
		require.Equal(t, http.StatusOK, w.Code, "domain %q", bad)
		assert.Contains(t, w.Body.String(), "Please enter a valid domain name", "domain %q", bad)
	}

	// Uppercase plus suffix both normalize away.
	cl.submit("/domain/", url.Values{"domain_name": {"METHWOLD.gov.uk"}}, "/domain-confirmation/")
	assert.Contains(t, cl.get("/domain-confirmation/").Body.String(), "methwold.gov.uk")
}

func TestSequenceViolationIsHard400(t *testing.T) {
	_, cl := newTestServer(t)
	cl.begin()

	for _, path := range []string{"/domain/", "/registrant-details/", "/confirm/", "/minister/"} {
		w := cl.get(path)
		assert.Equal(t, http.StatusBadRequest, w.Code, "GET %s", path)
		assert.Contains(t, w.Body.String(), "Invalid request")
	}
}

func TestNoSessionRedirectsToStart(t *testing.T) {
	_, cl := newTestServer(t)
	w := cl.get("/domain/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestCSRFFailureReturnsToStart(t *testing.T) {
	_, cl := newTestServer(t)
	cl.begin()

	form := registrarForm()
	form.Set("csrf_token", "forged")
	w := cl.post("/registrar-details/", form)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestChangeAffordances(t *testing.T) {
	_, cl := newTestServer(t)
	cl.begin()
	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
	cl.submit("/registrant-type/", url.Values{"registrant_type": {"parish-council"}}, "/domain/")
	cl.submit("/domain/", url.Values{"domain_name": {"methwold"}}, "/domain-confirmation/")
	cl.submit("/domain-confirmation/", url.Values{"domain_confirmation": {"yes"}}, "/registrant-details/")
	cl.submit("/registrant-details/", registrantForm(), "/registry-details/")
	cl.submit("/registry-details/", registryForm(), "/confirm/")

	// Back to answers persists and returns to the summary.
	edited := registrantForm()
	edited.Set("registrant_full_name", "Alex Jones")
	edited.Set("action", "back-to-answers")
	w := cl.post("/change-registrant-details/", edited)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/confirm/", w.Header().Get("Location"))
	assert.Contains(t, cl.get("/confirm/").Body.String(), "Alex Jones")

	// A domain edit clears the confirmation, so even back-to-answers has
	// to walk forward through the re-opened confirmation step.
	domainEdit := url.Values{"domain_name": {"methwold-pc"}, "action": {"back-to-answers"}}
	w = cl.post("/change-domain/", domainEdit)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/domain-confirmation/", w.Header().Get("Location"))
	cl.submit("/domain-confirmation/", url.Values{"domain_confirmation": {"yes"}}, "/registrant-details/")

	// A registrant-type edit that changes the route walks forward through
	// the now-required steps without re-asking for answers on file.
	w = cl.post("/registrant-type/?change", url.Values{"registrant_type": {"fire-service"}, "action": {"back-to-answers"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/written-permission/", w.Header().Get("Location"))
}

func TestSessionExpiryAndKeepalive(t *testing.T) {
	srv, cl := newTestServer(t)
	cl.begin()

	w := cl.get("/session-expiry")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"active"`)

	// Age the session into the warning window; the probe must see it
	// without refreshing the clock.
	id := cl.cookies[session.CookieName]
	rec, err := srv.store.Get(context.Background(), id)
	require.NoError(t, err)
	rec.LastActive = time.Now().UTC().Add(-16 * time.Minute)
	require.NoError(t, srv.store.Put(context.Background(), rec))

	w = cl.get("/session-expiry")
	assert.Contains(t, w.Body.String(), `"state":"warned"`)

	w = cl.post("/session-keepalive", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, cl.get("/session-expiry").Body.String(), `"state":"active"`)
}

func TestExpiredSessionLandsOnSessionEnded(t *testing.T) {
	srv, cl := newTestServer(t)
	cl.begin()

	id := cl.cookies[session.CookieName]
	rec, err := srv.store.Get(context.Background(), id)
	require.NoError(t, err)
	rec.LastActive = time.Now().UTC().Add(-21 * time.Minute)
	require.NoError(t, srv.store.Put(context.Background(), rec))

	w := cl.get("/registrant-type/")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/session-ended/", w.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, cl.get("/session-ended/").Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(srv.metrics.SessionsExpired))
}

func TestStartDiscardsPreviousSession(t *testing.T) {
	srv, cl := newTestServer(t)
	cl.begin()
	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
	old := cl.cookies[session.CookieName]

	cl.begin()
	assert.NotEqual(t, old, cl.cookies[session.CookieName])
	_, err := srv.store.Get(context.Background(), old)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// The fresh session is blank.
	assert.Equal(t, http.StatusBadRequest, cl.get("/registrant-type/").Code)
}

func TestAdminApplicationEndpoint(t *testing.T) {
	backend, err := storage.NewFilesystemBackend(t.TempDir())
	require.NoError(t, err)
	srv := NewServer(Options{
		Store:    session.NewMemoryStore(),
		Evidence: evidence.NewManager(backend),
	})
	srv.cfg.Admin.Enabled = true
	srv.cfg.Admin.Token = "admin-token"
	cl := &client{t: t, engine: srv.Engine(), cookies: make(map[string]string)}

	cl.begin()
	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
	cl.submit("/registrant-type/", url.Values{"registrant_type": {"parish-council"}}, "/domain/")
	cl.submit("/domain/", url.Values{"domain_name": {"methwold"}}, "/domain-confirmation/")
	cl.submit("/domain-confirmation/", url.Values{"domain_confirmation": {"yes"}}, "/registrant-details/")
	cl.submit("/registrant-details/", registrantForm(), "/registry-details/")
	cl.submit("/registry-details/", registryForm(), "/confirm/")
	require.Equal(t, http.StatusFound, cl.post("/confirm/", nil).Code)
	ref := regexp.MustCompile(`GOVUK[A-Z0-9]{6}`).FindString(cl.get("/success/").Body.String())
	require.NotEmpty(t, ref)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/applications/%s", ref), nil)
	w := httptest.NewRecorder()
	cl.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/applications/%s", ref), nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	cl.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "methwold.gov.uk")
	assert.Contains(t, w.Body.String(), `"written-permission":false`)
}

func TestCookieBannerChoice(t *testing.T) {
	_, cl := newTestServer(t)

	w := cl.post("/cookies/", url.Values{"cookies": {"accept"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/cookies/", w.Header().Get("Location"))
	assert.Equal(t, "true", cl.cookies[middleware.ConsentCookie])
	assert.Equal(t, "true", cl.cookies[middleware.ConsentAcceptedCookie])

	// Rejecting keeps the preference flag set but flips the consent value.
	w = cl.post("/cookies/", url.Values{"cookies": {"reject"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "true", cl.cookies[middleware.ConsentCookie])
	assert.Equal(t, "false", cl.cookies[middleware.ConsentAcceptedCookie])

	// Once answered, the banner stays hidden and the page reflects the choice.
	page := cl.get("/cookies/")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `"show_cookie_banner":false`)
	assert.Contains(t, page.Body.String(), `"cookies_accepted":"false"`)
}

func TestStaticEndpoints(t *testing.T) {
	_, cl := newTestServer(t)

	robots := cl.get("/robots.txt")
	assert.Equal(t, http.StatusOK, robots.Code)
	assert.Contains(t, robots.Body.String(), "Disallow")

	assert.Equal(t, http.StatusOK, cl.get("/.well-known/security.txt").Code)
	assert.Equal(t, http.StatusOK, cl.get("/cookies/").Code)
	assert.Equal(t, http.StatusNotFound, cl.get("/no-such-page/").Code)
}

func TestConfiguredRegistrarList(t *testing.T) {
	srv, cl := newTestServer(t)
	srv.cfg.App.Registrars = []string{"WeRegister", "Registrars-R-Us"}
	cl.engine = srv.Engine()

	cl.begin()

	form := registrarForm()
	form.Set("registrar_organisation", "Unapproved Ltd")
	w := cl.post("/registrar-details/", form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Select your organisation")

	cl.submit("/registrar-details/", registrarForm(), "/registrant-type/")
}
