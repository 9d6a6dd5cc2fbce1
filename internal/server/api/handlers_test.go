package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"drive/internal/core"
	"drive/internal/server/config"
	"drive/internal/server/service"
	"drive/internal/server/session"
	"drive/internal/theme"

	"github.com/labstack/echo/v4"
)

// --- Helpers ---

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:        "http://localhost:8080",
		RootLabel:      "My Drive",
		DefaultTheme:   theme.Light,
		SessionTTL:     time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	svc := service.NewDriveService(core.SampleFiletree(), session.NewStore(cfg.RootLabel), service.Options{
		Strict: cfg.StrictNavigation,
		Nested: cfg.NestedNavigation,
	})
	h, err := NewHandler(svc, nil, cfg)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	e, err := SetupRouter(testContext(t), h, cfg)
	if err != nil {
		t.Fatalf("failed to set up router: %v", err)
	}
	return e
}

// client replays cookies between requests like a browser would.
type client struct {
	t       *testing.T
	e       *echo.Echo
	cookies map[string]*http.Cookie
	header  http.Header
}

func newClient(t *testing.T, e *echo.Echo) *client {
	return &client{t: t, e: e, cookies: make(map[string]*http.Cookie), header: make(http.Header)}
}

func (cl *client) do(method, path, contentType, body string) *httptest.ResponseRecorder {
	cl.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	cl.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		cl.cookies[ck.Name] = ck
	}
	return rec
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(http.MethodGet, path, "", "")
}

func (cl *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return cl.do(http.MethodPost, path, echo.MIMEApplicationForm, form.Encode())
}

func (cl *client) postJSON(path, body string) *httptest.ResponseRecorder {
	return cl.do(http.MethodPost, path, echo.MIMEApplicationJSON, body)
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) service.View {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var v service.View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	return v
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rec.Code != expected {
		t.Fatalf("expected status %d, got %d: %s", expected, rec.Code, rec.Body.String())
	}
}

// --- Page ---

func TestIndexPage(t *testing.T) {
	t.Run("renders root listing", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		rec := cl.get("/")
		assertStatus(t, rec, http.StatusOK)

		body := rec.Body.String()
		for _, want := range []string{
			"Google Drive", "Search in Drive", "Recent", "Starred", "Trash",
			"Documents", "Images", "Project Plan.xlsx", "Meeting Notes.txt",
			`<button type="submit" disabled>Back</button>`,
			`data-theme="light"`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("expected page to contain %q", want)
			}
		}
		if cl.cookies[sessionCookie] == nil {
			t.Error("expected a session cookie")
		}
	})

	t.Run("open folder and go back", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		cl.get("/")

		rec := cl.postForm("/open", url.Values{"name": {"Images"}})
		assertStatus(t, rec, http.StatusSeeOther)

		body := cl.get("/").Body.String()
		if !strings.Contains(body, "My Drive &gt; Images") {
			t.Error("expected breadcrumb trail for Images")
		}
		if !strings.Contains(body, "Vacation.jpg") || strings.Contains(body, "Project Plan.xlsx") {
			t.Error("expected Images listing only")
		}
		if strings.Contains(body, `<button type="submit" disabled>Back</button>`) {
			t.Error("expected back to be enabled")
		}

		assertStatus(t, cl.postForm("/back", nil), http.StatusSeeOther)
		if !strings.Contains(cl.get("/").Body.String(), "Project Plan.xlsx") {
			t.Error("expected root listing after back")
		}
	})

	t.Run("blank folder name is ignored", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		assertStatus(t, cl.postForm("/open", url.Values{"name": {"   "}}), http.StatusSeeOther)

		v := decodeView(t, cl.get("/api/view"))
		if len(v.Breadcrumbs) != 1 || v.CurrentFolder != core.RootID {
			t.Errorf("expected to stay at root, got %v (%q)", v.Breadcrumbs, v.CurrentFolder)
		}
	})

	t.Run("unknown folder shows empty", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		cl.postForm("/open", url.Values{"name": {"NoSuchFolder"}})

		if !strings.Contains(cl.get("/").Body.String(), "This folder is empty.") {
			t.Error("expected empty folder message")
		}
	})

	t.Run("upload shows notice once", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		assertStatus(t, cl.postForm("/upload", nil), http.StatusSeeOther)

		if !strings.Contains(cl.get("/").Body.String(), service.UploadNotice) {
			t.Error("expected upload notice")
		}
		if strings.Contains(cl.get("/").Body.String(), service.UploadNotice) {
			t.Error("expected notice to disappear after being shown")
		}
	})

	t.Run("theme toggle", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		assertStatus(t, cl.postForm("/theme", nil), http.StatusSeeOther)

		if !strings.Contains(cl.get("/").Body.String(), `data-theme="dark"`) {
			t.Error("expected dark theme")
		}
		if ck := cl.cookies[themeCookie]; ck == nil || ck.Value != "dark" {
			t.Error("expected stored dark preference")
		}
	})
}

// --- JSON API ---

func TestAPINavigation(t *testing.T) {
	t.Run("open and back", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))

		v := decodeView(t, cl.get("/api/view"))
		if v.CurrentFolder != core.RootID || v.CanGoBack {
			t.Fatalf("unexpected start view: %+v", v)
		}

		v = decodeView(t, cl.postJSON("/api/open", `{"name":"Images"}`))
		if v.CurrentFolder != "Images" || v.Trail != "My Drive > Images" {
			t.Fatalf("unexpected view after open: %+v", v)
		}
		if len(v.Entries) != 2 || v.Entries[0].Name != "Vacation.jpg" || v.Entries[1].Name != "Family.png" {
			t.Errorf("unexpected entries: %+v", v.Entries)
		}

		v = decodeView(t, cl.postJSON("/api/back", ""))
		if v.CurrentFolder != core.RootID || len(v.Breadcrumbs) != 1 || len(v.Entries) != 4 {
			t.Errorf("unexpected view after back: %+v", v)
		}
	})

	t.Run("back at root is a no-op", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		v := decodeView(t, cl.postJSON("/api/back", ""))
		if v.CurrentFolder != core.RootID || len(v.Breadcrumbs) != 1 {
			t.Errorf("unexpected view: %+v", v)
		}
	})

	t.Run("open requires a name", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		assertStatus(t, cl.postJSON("/api/open", `{}`), http.StatusBadRequest)
	})

	t.Run("unknown folder is fail-soft by default", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		v := decodeView(t, cl.postJSON("/api/open", `{"name":"NoSuchFolder"}`))
		if v.Resolved || len(v.Entries) != 0 {
			t.Errorf("expected unresolved empty view, got %+v", v)
		}
	})

	t.Run("unknown folder is 404 in strict mode", func(t *testing.T) {
		cfg := testConfig()
		cfg.StrictNavigation = true
		cl := newClient(t, newTestServer(t, cfg))

		assertStatus(t, cl.postJSON("/api/open", `{"name":"NoSuchFolder"}`), http.StatusNotFound)

		v := decodeView(t, cl.get("/api/view"))
		if v.CurrentFolder != core.RootID {
			t.Errorf("expected state unchanged, got %q", v.CurrentFolder)
		}
	})

	t.Run("stale cookie starts a new session", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		cl.cookies[sessionCookie] = &http.Cookie{Name: sessionCookie, Value: "stale"}

		v := decodeView(t, cl.postJSON("/api/open", `{"name":"Documents"}`))
		if v.CurrentFolder != "Documents" {
			t.Errorf("expected Documents, got %q", v.CurrentFolder)
		}
		if cl.cookies[sessionCookie].Value == "stale" {
			t.Error("expected a fresh session cookie")
		}
	})
}

func TestAPIUpload(t *testing.T) {
	cl := newClient(t, newTestServer(t, testConfig()))

	rec := cl.postJSON("/api/upload", "")
	assertStatus(t, rec, http.StatusNotImplemented)
	if !strings.Contains(rec.Body.String(), service.UploadNotice) {
		t.Errorf("expected upload notice in body, got %s", rec.Body.String())
	}
}

func TestAPITheme(t *testing.T) {
	t.Run("toggle stores preference", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		v := decodeView(t, cl.postJSON("/api/theme", ""))
		if v.Theme != theme.Dark {
			t.Errorf("expected dark, got %s", v.Theme)
		}
	})

	t.Run("stored preference seeds new session", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		cl.cookies[themeCookie] = &http.Cookie{Name: themeCookie, Value: "dark"}

		if v := decodeView(t, cl.get("/api/view")); v.Theme != theme.Dark {
			t.Errorf("expected dark, got %s", v.Theme)
		}
	})

	t.Run("system hint seeds new session", func(t *testing.T) {
		cl := newClient(t, newTestServer(t, testConfig()))
		cl.header.Set(systemThemeHeader, "dark")

		if v := decodeView(t, cl.get("/api/view")); v.Theme != theme.Dark {
			t.Errorf("expected dark, got %s", v.Theme)
		}
	})
}

func TestAPITree(t *testing.T) {
	cl := newClient(t, newTestServer(t, testConfig()))

	rec := cl.get("/api/tree")
	assertStatus(t, rec, http.StatusOK)

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag")
	}
	tree, err := core.DecodeTree(rec.Body)
	if err != nil {
		t.Fatalf("failed to decode tree: %v", err)
	}
	if len(tree.Root()) != 4 {
		t.Errorf("expected 4 root entries, got %d", len(tree.Root()))
	}

	cl.header.Set("If-None-Match", etag)
	assertStatus(t, cl.get("/api/tree"), http.StatusNotModified)
}

func TestHealth(t *testing.T) {
	cl := newClient(t, newTestServer(t, testConfig()))
	rec := cl.get("/health")
	assertStatus(t, rec, http.StatusOK)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "healthy" || body["database"] != "disabled" {
		t.Errorf("unexpected health: %v", body)
	}
	if body["files"] != float64(6) || body["folders"] != float64(2) {
		t.Errorf("unexpected tree size: %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	cl := newClient(t, newTestServer(t, testConfig()))
	cl.get("/")

	rec := cl.get("/metrics")
	assertStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "drive_http_requests_total") {
		t.Error("expected request counter in exposition")
	}
}
