package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parseview/internal/domain"
	"parseview/internal/export"
	"parseview/internal/middleware"
	"parseview/internal/service"
	"parseview/internal/viewer"
)

// ResultHandler serves the session's current parse result and its views.
type ResultHandler struct {
	sessions  service.SessionService
	sanitizer *viewer.Sanitizer
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(sessions service.SessionService, sanitizer *viewer.Sanitizer) *ResultHandler {
	return &ResultHandler{sessions: sessions, sanitizer: sanitizer}
}

func (h *ResultHandler) current(c *gin.Context) (*domain.SessionResult, bool) {
	res, err := h.sessions.Result(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return res, true
}

// Result handles GET /api/v1/result
// @Summary Get the current parse result
// @Tags result
// @Produce json
// @Success 200 {object} Response{data=domain.SessionResult}
// @Failure 404 {object} ErrorResponseBody "No result for this session"
// @Router /result [get]
func (h *ResultHandler) Result(c *gin.Context) {
	res, ok := h.current(c)
	if !ok {
		return
	}
	RespondOK(c, res)
}

// Stats handles GET /api/v1/result/stats
// @Summary Summarize the current parse result
// @Tags result
// @Produce json
// @Success 200 {object} Response{data=viewer.Stats}
// @Failure 404 {object} ErrorResponseBody "No result for this session"
// @Router /result/stats [get]
func (h *ResultHandler) Stats(c *gin.Context) {
	res, ok := h.current(c)
	if !ok {
		return
	}
	RespondOK(c, viewer.NewStats(res.Result))
}

// Document handles GET /api/v1/result/document
// @Summary Get the sanitized reading view
// @Tags result
// @Produce json
// @Param page query int false "1-based page; omit for every page"
// @Success 200 {object} Response{data=viewer.DocumentView}
// @Failure 400 {object} ErrorResponseBody "Page out of range"
// @Failure 404 {object} ErrorResponseBody "No result for this session"
// @Router /result/document [get]
func (h *ResultHandler) Document(c *gin.Context) {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		HandleError(c, err)
		return
	}
	res, ok := h.current(c)
	if !ok {
		return
	}
	view, err := viewer.NewDocumentView(res.Result, h.sanitizer)
	if err != nil {
		HandleError(c, err)
		return
	}
	if page != 0 {
		if view.Pages, err = selectPage(view.Pages, page); err != nil {
			HandleError(c, err)
			return
		}
	}
	RespondOK(c, view)
}

// Elements handles GET /api/v1/result/elements
// @Summary List the elements on a page
// @Tags result
// @Produce json
// @Param page query int false "1-based page; defaults to the first page"
// @Param selected query int false "Index of the element to highlight"
// @Success 200 {object} Response{data=viewer.ElementView}
// @Failure 400 {object} ErrorResponseBody "Page or selection out of range"
// @Failure 404 {object} ErrorResponseBody "No result for this session"
// @Router /result/elements [get]
func (h *ResultHandler) Elements(c *gin.Context) {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		HandleError(c, err)
		return
	}
	selected, err := queryInt(c, "selected", -1)
	if err != nil {
		HandleError(c, err)
		return
	}
	res, ok := h.current(c)
	if !ok {
		return
	}
	view, err := viewer.NewElementView(res.Result, page, selected)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// Element handles GET /api/v1/result/elements/:index
// @Summary Select one element
// @Description Returns the element and the view of its page with only that element highlighted.
// @Tags result
// @Produce json
// @Param index path int true "Element index in vendor order"
// @Success 200 {object} Response{data=ElementDetail}
// @Failure 400 {object} ErrorResponseBody "Index out of range"
// @Failure 404 {object} ErrorResponseBody "No result for this session"
// @Router /result/elements/{index} [get]
func (h *ResultHandler) Element(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_INDEX", "element index must be a non-negative integer")
		return
	}
	res, ok := h.current(c)
	if !ok {
		return
	}
	view, err := viewer.NewElementView(res.Result, 0, index)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ElementDetail{Index: index, Element: view.Selection, View: view})
}

// Boxes handles GET /api/v1/result/pages/:page/boxes.png
// @Summary Render the bounding boxes of a page
// @Tags result
// @Produce png
// @Param page path int true "1-based page"
// @Param selected query int false "Index of the element to highlight"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponseBody "Page or selection out of range"
// @Failure 404 {object} ErrorResponseBody "No result for this session"
// @Router /result/pages/{page}/boxes.png [get]
func (h *ResultHandler) Boxes(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		RespondError(c, http.StatusBadRequest, "INVALID_PAGE", "page must be a positive integer")
		return
	}
	selected, err := queryInt(c, "selected", -1)
	if err != nil {
		HandleError(c, err)
		return
	}
	res, ok := h.current(c)
	if !ok {
		return
	}
	view, err := viewer.NewElementView(res.Result, page, selected)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := viewer.RenderPNG(&buf, view); err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Export handles GET /api/v1/result/export
// @Summary Export the elements as CSV or XLSX
// @Tags result
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponseBody "Unknown format"
// @Failure 404 {object} ErrorResponseBody "No result for this session"
// @Router /result/export [get]
func (h *ResultHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}
	res, ok := h.current(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, res.Result); err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.BuildFilename(res.Document.FileName, format)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrValidation, name, raw)
	}
	return v, nil
}

func selectPage(pages []viewer.PageView, page int) ([]viewer.PageView, error) {
	for i := range pages {
		if pages[i].Page == page {
			return pages[i : i+1], nil
		}
	}
	return nil, fmt.Errorf("%w: page %d", domain.ErrPageOutOfRange, page)
}
