package web

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"TrendLens/internal/dashboard"
	xhttp "TrendLens/pkg/http"
	xlogger "TrendLens/pkg/logger"
)

const sessionCookie = "trendlens_session"

type renderer interface {
	Render(w io.Writer, format dashboard.Format) error
}

// DashboardHandler serves the server-rendered prediction dashboard.
type DashboardHandler struct {
	logger   *xlogger.Logger
	sessions *sessionStore
}

// NewDashboardHandler serves one dashboard per session, built by newDash from
// the session id.
func NewDashboardHandler(logger *xlogger.Logger, sessionTTL time.Duration, newDash func(id string) *dashboard.Dashboard) *DashboardHandler {
	return &DashboardHandler{
		logger:   logger,
		sessions: newSessionStore(sessionTTL, newDash),
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusFound, "/ui") })
	g := e.Group("/ui")
	g.GET("", h.Page)
	g.POST("/predict", h.Predict)
	g.GET("/chart.png", h.Chart)
}

// ExpireSessions drops idle sessions and reports how many were released.
func (h *DashboardHandler) ExpireSessions() int {
	return h.sessions.expire()
}

// Close releases every session's chart.
func (h *DashboardHandler) Close() error {
	h.sessions.close()
	return nil
}

// Page handles GET /ui.
func (h *DashboardHandler) Page(c echo.Context) error {
	d := h.session(c)
	s := d.Page.Snapshot()
	_, gen := d.Presenter.Current()

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Ticker:        s.Ticker,
		SubmitEnabled: s.SubmitEnabled,
		SubmitLabel:   s.SubmitLabel,
		ResultTitle:   s.ResultTitle,
		ErrorMessage:  s.ErrorMessage,
		ChartVisible:  s.ChartVisible,
		ChartTitle:    dashboard.ChartTitle,
		Generation:    gen,
	})
	if err != nil {
		h.logger.Error("render dashboard page", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// Predict handles POST /ui/predict and redirects back to the page.
func (h *DashboardHandler) Predict(c echo.Context) error {
	d := h.session(c)
	err := d.Submit(c.Request().Context(), c.FormValue("ticker"))
	if errors.Is(err, dashboard.ErrBusy) {
		h.logger.Debug("dashboard submit rejected while busy")
	}
	return c.Redirect(http.StatusSeeOther, "/ui")
}

// Chart handles GET /ui/chart.png; ?format=svg switches the encoding.
func (h *DashboardHandler) Chart(c echo.Context) error {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("No chart has been drawn."))
	}
	d, ok := h.sessions.lookup(cookie.Value)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("No chart has been drawn."))
	}

	current, _ := d.Presenter.Current()
	r, ok := current.(renderer)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("No chart has been drawn."))
	}

	format := dashboard.ParseFormat(c.QueryParam("format"))
	var buf bytes.Buffer
	if err := r.Render(&buf, format); err != nil {
		if errors.Is(err, dashboard.ErrChartDestroyed) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("No chart has been drawn."))
		}
		h.logger.Error("render chart", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *DashboardHandler) session(c echo.Context) *dashboard.Dashboard {
	var id string
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		id = cookie.Value
	}
	id, d, created := h.sessions.get(id)
	if created {
		c.SetCookie(&http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return d
}
