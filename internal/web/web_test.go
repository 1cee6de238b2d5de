package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ghaggin/yoga/internal/api"
	"github.com/ghaggin/yoga/internal/auth"
	"github.com/ghaggin/yoga/internal/config"
	"github.com/ghaggin/yoga/internal/middleware"
	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stack struct {
	t    *testing.T
	repo repository.Repository
	web  *httptest.Server
}

// newStack runs the booking API and the web client against a seeded store.
func newStack(t *testing.T) *stack {
	t.Helper()
	require := require.New(t)
	log := zap.NewNop()
	ctx := context.Background()

	repo := repository.NewJSON(filepath.Join(t.TempDir(), "yoga.json"), log)
	require.NoError(repository.Seed(ctx, repo, log))
	require.NoError(repo.AddSession(ctx, &model.Session{
		Name:        "Morning Yoga",
		Description: "A relaxing yoga session.",
		Date:        model.NewTime(time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC)),
		TeacherID:   2,
	}))

	cfg := config.Default()

	ctrl, err := api.NewController(api.ControllerParams{
		Logger: log,
		Repo:   repo,
		Tokens: auth.NewTokens(cfg.API.JWTSecret, time.Hour),
	})
	require.NoError(err)
	apiServer, err := api.New(api.Params{Log: log, Config: cfg, Controller: ctrl})
	require.NoError(err)
	apiSrv := httptest.NewServer(apiServer.Handler())
	t.Cleanup(apiSrv.Close)

	cfg.Web.APIURL = apiSrv.URL
	sessions, err := middleware.NewSessionManager(middleware.Params{Config: cfg, Log: log})
	require.NoError(err)
	w, err := New(Params{Log: log, Config: cfg, Sessions: sessions, Client: NewClient(cfg, log)})
	require.NoError(err)
	webSrv := httptest.NewServer(w.Handler())
	t.Cleanup(webSrv.Close)

	return &stack{t: t, repo: repo, web: webSrv}
}

type browser struct {
	t    *testing.T
	base string
	http *http.Client
}

func (s *stack) browser() *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(s.t, err)
	return &browser{t: s.t, base: s.web.URL, http: &http.Client{Jar: jar}}
}

// page is the final location and body after redirects are followed.
type page struct {
	status int
	path   string
	body   string
}

func (b *browser) read(resp *http.Response, err error) page {
	b.t.Helper()
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{status: resp.StatusCode, path: resp.Request.URL.Path, body: string(body)}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	return b.read(b.http.Get(b.base + path))
}

func (b *browser) post(path string, form url.Values) page {
	b.t.Helper()
	return b.read(b.http.PostForm(b.base+path, form))
}

func (b *browser) login(email, password string) page {
	b.t.Helper()
	return b.post("/login", url.Values{"email": {email}, "password": {password}})
}

func (b *browser) loginAdmin() page {
	return b.login(repository.AdminEmail, repository.AdminPassword)
}

func (b *browser) register(email string) {
	b.t.Helper()
	p := b.post("/register", url.Values{
		"firstName": {"Jane"},
		"lastName":  {"Doe"},
		"email":     {email},
		"password":  {"secret"},
	})
	require.Equal(b.t, "/login", p.path)
}

func TestGuards(t *testing.T) {
	assert := assert.New(t)
	b := newStack(t).browser()

	for _, path := range []string{"/", "/sessions", "/me", "/detail/1", "/sessions/create"} {
		assert.Equal("/login", b.get(path).path, path)
	}

	b.register("jane@doe.com")
	b.login("jane@doe.com", "secret")

	assert.Equal("/sessions", b.get("/login").path)
	assert.Equal("/sessions", b.get("/register").path)
	assert.Equal("/sessions", b.get("/sessions/create").path)
	assert.Equal("/sessions", b.get("/sessions/update/1").path)
	assert.Equal("/sessions", b.get("/").path)
}

func TestNotFound(t *testing.T) {
	b := newStack(t).browser()

	p := b.get("/nowhere")
	assert.Equal(t, http.StatusNotFound, p.status)
	assert.Contains(t, p.body, "Page not found !")
}

func TestLoginFlow(t *testing.T) {
	assert := assert.New(t)
	b := newStack(t).browser()

	p := b.login(repository.AdminEmail, "wrong")
	assert.Equal("/login", p.path)
	assert.Contains(p.body, `class="error"`)
	assert.Contains(p.body, "An error occurred")

	p = b.loginAdmin()
	assert.Equal("/sessions", p.path)
	assert.Contains(p.body, "Rentals available")
	assert.Equal(1, strings.Count(p.body, `data-cy="session-item"`))
	assert.Contains(p.body, `data-cy="create-button"`)
	assert.Contains(p.body, "Account")

	p = b.post("/logout", nil)
	assert.Equal("/login", p.path)
	assert.Equal("/login", b.get("/sessions").path)
}

func TestRegisterValidation(t *testing.T) {
	b := newStack(t).browser()

	p := b.post("/register", url.Values{
		"firstName": {"Jo"},
		"lastName":  {"Doe"},
		"email":     {"jane@doe.com"},
		"password":  {"secret"},
	})
	assert.Equal(t, "/register", p.path)
	assert.Contains(t, p.body, "invalid fields: firstName")
}

func TestSessionCrud(t *testing.T) {
	assert := assert.New(t)
	b := newStack(t).browser()
	b.loginAdmin()

	p := b.get("/sessions/create")
	assert.Equal(http.StatusOK, p.status)
	assert.Contains(p.body, "Margot DELAHAYE")

	p = b.post("/sessions/create", url.Values{
		"name":        {"Evening Yoga"},
		"date":        {"2025-02-01"},
		"teacher_id":  {"1"},
		"description": {"Wind down."},
	})
	assert.Equal("/sessions", p.path)
	assert.Contains(p.body, "Session created !")
	assert.Equal(2, strings.Count(p.body, `data-cy="session-item"`))

	// the flash is shown once
	assert.NotContains(b.get("/sessions").body, "Session created !")

	p = b.get("/sessions/update/2")
	assert.Contains(p.body, `value="Evening Yoga"`)
	assert.Contains(p.body, `value="2025-02-01"`)

	p = b.post("/sessions/update/2", url.Values{
		"name":        {"Late Yoga"},
		"date":        {"2025-02-02"},
		"teacher_id":  {"1"},
		"description": {"Wind down."},
	})
	assert.Contains(p.body, "Session updated !")
	assert.Contains(p.body, "Late Yoga")

	p = b.post("/sessions/update/2", url.Values{"name": {"x"}})
	assert.Equal("/sessions/update/2", p.path)
	assert.Contains(p.body, `class="error"`)

	p = b.get("/detail/2")
	assert.Contains(p.body, `data-cy="delete-button"`)
	assert.Contains(p.body, "Margot DELAHAYE")

	p = b.post("/detail/2/delete", nil)
	assert.Equal("/sessions", p.path)
	assert.Contains(p.body, "Session deleted !")
	assert.Equal(1, strings.Count(p.body, `data-cy="session-item"`))

	assert.Equal(http.StatusNotFound, b.get("/detail/2").status)
	assert.Equal(http.StatusNotFound, b.get("/detail/abc").status)
}

func TestParticipation(t *testing.T) {
	assert := assert.New(t)
	b := newStack(t).browser()
	b.register("jane@doe.com")
	b.login("jane@doe.com", "secret")

	p := b.get("/detail/1")
	assert.Contains(p.body, "Morning Yoga")
	assert.Contains(p.body, "Hélène THIERCELIN")
	assert.Contains(p.body, "0 attendees")
	assert.Contains(p.body, "January 20, 2025")
	assert.Contains(p.body, `data-cy="participate-button"`)
	assert.NotContains(p.body, `data-cy="delete-button"`)

	p = b.post("/detail/1/participate", nil)
	assert.Equal("/detail/1", p.path)
	assert.Contains(p.body, "1 attendees")
	assert.Contains(p.body, `data-cy="unparticipate-button"`)

	p = b.post("/detail/1/unparticipate", nil)
	assert.Contains(p.body, "0 attendees")

	// only admins may delete, others go back to the list quietly
	p = b.post("/detail/1/delete", nil)
	assert.Equal("/sessions", p.path)
	assert.Equal(http.StatusOK, p.status)
	assert.NotContains(p.body, "An error occurred")
	assert.Equal(1, strings.Count(p.body, `data-cy="session-item"`))

	// leaving twice is refused by the API
	p = b.post("/detail/1/unparticipate", nil)
	assert.Equal("/sessions", p.path)
	assert.Contains(p.body, "An error occurred")
}

func TestAccount(t *testing.T) {
	require := require.New(t)
	s := newStack(t)

	admin := s.browser()
	admin.loginAdmin()
	p := admin.get("/me")
	require.Contains(p.body, "Email: yoga@studio.com")
	require.Contains(p.body, "You are admin")
	require.NotContains(p.body, `data-cy="delete-account-button"`)

	b := s.browser()
	b.register("jane@doe.com")
	b.login("jane@doe.com", "secret")
	p = b.get("/me")
	require.Contains(p.body, "Name: Jane DOE")
	require.Contains(p.body, `data-cy="delete-account-button"`)

	p = b.post("/me/delete", nil)
	require.Equal("/login", p.path)
	require.Contains(p.body, "Your account has been deleted !")

	_, err := s.repo.GetUserByEmail(context.Background(), "jane@doe.com")
	require.ErrorIs(err, repository.ErrNotFound)
	require.Equal("/login", b.get("/me").path)
}

func TestExpiredAccountLogsOut(t *testing.T) {
	s := newStack(t)
	b := s.browser()
	b.register("jane@doe.com")
	b.login("jane@doe.com", "secret")

	u, err := s.repo.GetUserByEmail(context.Background(), "jane@doe.com")
	require.NoError(t, err)
	require.NoError(t, s.repo.DeleteUser(context.Background(), u.ID))

	assert.Equal(t, "/login", b.get("/sessions").path)
	assert.Equal(t, "/login", b.get("/sessions").path)
}
