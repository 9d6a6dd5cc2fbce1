package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"drive/internal/server/config"
	"drive/internal/server/database"
	"drive/internal/server/service"
	"drive/internal/theme"

	"github.com/labstack/echo/v4"
)

const (
	sessionCookie = "drive_session"
	themeCookie   = "drive_theme"

	// systemThemeHeader is the client hint carrying the OS color scheme.
	systemThemeHeader = "Sec-CH-Prefers-Color-Scheme"
)

// Handler contains the HTTP handlers for the drive UI and API.
type Handler struct {
	svc      *service.DriveService
	db       *database.DB // nil when no catalogue is configured
	cfg      *config.Config
	treeJSON []byte
	treeETag string
}

// NewHandler creates a new handler. db may be nil.
func NewHandler(svc *service.DriveService, db *database.DB, cfg *config.Config) (*Handler, error) {
	var buf bytes.Buffer
	if err := svc.Tree().EncodeTree(&buf); err != nil {
		return nil, err
	}
	sum, err := svc.Tree().Fingerprint()
	if err != nil {
		return nil, err
	}

	return &Handler{
		svc:      svc,
		db:       db,
		cfg:      cfg,
		treeJSON: buf.Bytes(),
		treeETag: `"` + sum + `"`,
	}, nil
}

type pageData struct {
	Title   string
	Sidebar []string
	View    *service.View
}

// HandleIndex handles GET /.
func (h *Handler) HandleIndex(c echo.Context) error {
	v, err := h.withSession(c, h.svc.View)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Render(http.StatusOK, "index.html", pageData{
		Title:   "Google Drive Clone",
		Sidebar: sidebarLinks,
		View:    v,
	})
}

// HandleOpenPage handles POST /open with a "name" form field.
func (h *Handler) HandleOpenPage(c echo.Context) error {
	name := c.FormValue("name")
	if strings.TrimSpace(name) == "" {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	_, err := h.withSession(c, func(id string) (*service.View, error) {
		return h.svc.Open(id, name)
	})
	if err != nil && !errors.Is(err, service.ErrFolderNotFound) {
		return mapServiceError(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// HandleBackPage handles POST /back.
func (h *Handler) HandleBackPage(c echo.Context) error {
	if _, err := h.withSession(c, h.svc.Back); err != nil {
		return mapServiceError(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// HandleThemePage handles POST /theme.
func (h *Handler) HandleThemePage(c echo.Context) error {
	v, err := h.withSession(c, h.svc.ToggleTheme)
	if err != nil {
		return mapServiceError(c, err)
	}
	h.setThemeCookie(c, v.Theme)
	return c.Redirect(http.StatusSeeOther, "/")
}

// HandleUploadPage handles POST /upload. Nothing is stored; the page
// shows a notice instead.
func (h *Handler) HandleUploadPage(c echo.Context) error {
	err := h.upload(c)
	if err != nil && !errors.Is(err, service.ErrUploadNotSupported) {
		return mapServiceError(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// HandleView handles GET /api/view.
func (h *Handler) HandleView(c echo.Context) error {
	v, err := h.withSession(c, h.svc.View)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

type openRequest struct {
	Name string `json:"name" form:"name"`
}

// HandleOpen handles POST /api/open.
func (h *Handler) HandleOpen(c echo.Context) error {
	var req openRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "folder name is required (use field 'name')",
		})
	}

	v, err := h.withSession(c, func(id string) (*service.View, error) {
		return h.svc.Open(id, req.Name)
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// HandleBack handles POST /api/back.
func (h *Handler) HandleBack(c echo.Context) error {
	v, err := h.withSession(c, h.svc.Back)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// HandleTheme handles POST /api/theme.
func (h *Handler) HandleTheme(c echo.Context) error {
	v, err := h.withSession(c, h.svc.ToggleTheme)
	if err != nil {
		return mapServiceError(c, err)
	}
	h.setThemeCookie(c, v.Theme)
	return c.JSON(http.StatusOK, v)
}

// HandleUpload handles POST /api/upload.
func (h *Handler) HandleUpload(c echo.Context) error {
	return mapServiceError(c, h.upload(c))
}

// HandleTree handles GET /api/tree.
// Returns the whole tree; honours If-None-Match.
func (h *Handler) HandleTree(c echo.Context) error {
	c.Response().Header().Set("ETag", h.treeETag)
	if c.Request().Header.Get("If-None-Match") == h.treeETag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, h.treeJSON)
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "healthy"
	dbStatus := "disabled"

	if h.db != nil {
		dbStatus = "connected"
		if err := h.db.HealthCheck(c.Request().Context()); err != nil {
			status = "degraded"
			dbStatus = fmt.Sprintf("error: %v", err)
		}
	}

	files, folders := h.svc.Tree().Count()
	return c.JSON(http.StatusOK, echo.Map{
		"status":   status,
		"database": dbStatus,
		"files":    files,
		"folders":  folders,
		"sessions": h.svc.SessionCount(),
	})
}

func (h *Handler) upload(c echo.Context) error {
	_, err := h.withSession(c, func(id string) (*service.View, error) {
		return nil, h.svc.Upload(id)
	})
	return err
}

// withSession runs fn against the caller's session, starting a new one
// when the cookie is missing or has expired.
func (h *Handler) withSession(c echo.Context, fn func(id string) (*service.View, error)) (*service.View, error) {
	if ck, err := c.Cookie(sessionCookie); err == nil && ck.Value != "" {
		v, err := fn(ck.Value)
		if !errors.Is(err, service.ErrSessionNotFound) {
			return v, err
		}
	}

	preferred := theme.Resolve(
		cookieValue(c, themeCookie),
		c.Request().Header.Get(systemThemeHeader),
		h.cfg.DefaultTheme,
	)
	start, err := h.svc.StartSession(preferred)
	if err != nil {
		return nil, err
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    start.SessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.cfg.SessionTTL),
	})
	return fn(start.SessionID)
}

func (h *Handler) setThemeCookie(c echo.Context, t theme.Theme) {
	c.SetCookie(&http.Cookie{
		Name:     themeCookie,
		Value:    string(t),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
	})
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// mapServiceError translates service-layer errors into appropriate HTTP responses.
func mapServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrFolderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "folder not found"})
	case errors.Is(err, service.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, service.ErrUploadNotSupported):
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": service.UploadNotice})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
