package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"parseview/internal/domain"
	"parseview/internal/middleware"
	"parseview/internal/service"
	"parseview/internal/viewer"
)

const flashCookie = "parseview_flash"

// UIHandler renders the browser playground.
type UIHandler struct {
	sessions  service.SessionService
	sanitizer *viewer.Sanitizer
	defaults  domain.ParseOptions
	maxBytes  int64
	maxSizeMB int64
}

// NewUIHandler creates a new UIHandler.
func NewUIHandler(sessions service.SessionService, sanitizer *viewer.Sanitizer, defaults domain.ParseOptions, maxSizeMB int64) *UIHandler {
	return &UIHandler{
		sessions:  sessions,
		sanitizer: sanitizer,
		defaults:  defaults,
		maxBytes:  maxSizeMB * 1024 * 1024,
		maxSizeMB: maxSizeMB,
	}
}

// Index handles GET /
func (h *UIHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.GetSessionID(c)

	state, err := h.sessions.State(ctx, sessionID)
	if err != nil {
		HandleError(c, err)
		return
	}

	data := gin.H{
		"Title":         "Upload",
		"Error":         popFlash(c),
		"State":         state,
		"Supported":     domain.SupportedExtensionList(),
		"MaxFileSizeMB": h.maxSizeMB,
		"Defaults":      h.defaults,
	}
	if res, err := h.sessions.Result(ctx, sessionID); err == nil {
		data["Result"] = res
		data["Stats"] = viewer.NewStats(res.Result)
	} else if !errors.Is(err, domain.ErrResultNotFound) {
		HandleError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// Upload handles POST /upload from the browser form.
func (h *UIHandler) Upload(c *gin.Context) {
	input, cleanup, err := readUpload(c, h.defaults, h.maxBytes)
	if err != nil {
		h.redirectWithError(c, err)
		return
	}
	defer cleanup()

	if _, err := h.sessions.Upload(c.Request.Context(), input); err != nil {
		h.redirectWithError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/view/document")
}

// Discard handles POST /session/discard from the browser form.
func (h *UIHandler) Discard(c *gin.Context) {
	if err := h.sessions.Discard(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		h.redirectWithError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Document handles GET /view/document
func (h *UIHandler) Document(c *gin.Context) {
	res, ok := h.resultOrRedirect(c)
	if !ok {
		return
	}
	view, err := viewer.NewDocumentView(res.Result, h.sanitizer)
	if err != nil {
		HandleError(c, err)
		return
	}

	data := gin.H{
		"Title":     "Document",
		"FileName":  res.Document.FileName,
		"Stats":     viewer.NewStats(res.Result),
		"Document":  view,
		"PageCount": viewer.PageCount(res.Result),
		"BaseURL":   "/view/document?",
		"PageView":  viewer.PageView{},
	}
	if len(view.Pages) == 0 {
		data["Page"] = 1
		data["Notice"] = "the vendor returned no elements for this document"
		c.HTML(http.StatusOK, "document.html", data)
		return
	}

	page, _ := queryInt(c, "page", view.Pages[0].Page)
	pages, err := selectPage(view.Pages, page)
	if err != nil {
		data["Notice"] = "page " + c.Query("page") + " does not exist; showing the first page"
		pages = view.Pages[:1]
	}
	data["Page"] = pages[0].Page
	data["PageView"] = pages[0]
	c.HTML(http.StatusOK, "document.html", data)
}

// Elements handles GET /view/elements
func (h *UIHandler) Elements(c *gin.Context) {
	res, ok := h.resultOrRedirect(c)
	if !ok {
		return
	}
	page, _ := queryInt(c, "page", 0)
	selected, _ := queryInt(c, "selected", -1)

	var notice string
	view, err := viewer.NewElementView(res.Result, page, selected)
	if errors.Is(err, domain.ErrSelectionOutOfRange) {
		notice = "no element with that index on this page; selection cleared"
		view, err = viewer.NewElementView(res.Result, page, -1)
	}
	if errors.Is(err, domain.ErrPageOutOfRange) {
		notice = "page does not exist; showing the first page"
		view, err = viewer.NewElementView(res.Result, 1, -1)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	c.HTML(http.StatusOK, "elements.html", gin.H{
		"Title":     "Elements",
		"Notice":    notice,
		"FileName":  res.Document.FileName,
		"View":      view,
		"Page":      view.Page,
		"PageCount": view.PageCount,
		"BaseURL":   "/view/elements?",
	})
}

func (h *UIHandler) resultOrRedirect(c *gin.Context) (*domain.SessionResult, bool) {
	res, err := h.sessions.Result(c.Request.Context(), middleware.GetSessionID(c))
	if errors.Is(err, domain.ErrResultNotFound) {
		setFlash(c, "upload a document first")
		c.Redirect(http.StatusSeeOther, "/")
		return nil, false
	}
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return res, true
}

func (h *UIHandler) redirectWithError(c *gin.Context, err error) {
	status, _, msg := MapDomainError(err)
	if status >= 500 {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.ContextKeyRequestID)).
			Str("session_id", middleware.GetSessionID(c)).
			Msg("uiHandler: request failed")
	}
	setFlash(c, msg)
	c.Redirect(http.StatusSeeOther, "/")
}

func setFlash(c *gin.Context, msg string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return ""
	}
	http.SetCookie(c.Writer, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	return raw
}
