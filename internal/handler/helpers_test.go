package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"parseview/internal/domain"
	"parseview/internal/handler"
	"parseview/internal/middleware"
)

const testSessionID = "3f2b8c1e-5d4a-4e6f-9a7b-1c2d3e4f5a6b"

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(method, target string, body *bytes.Buffer, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = &bytes.Buffer{}
	}
	c.Request, _ = http.NewRequest(method, target, body)
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	c.Set(middleware.ContextKeySessionID, testSessionID)
	return c, w
}

func multipartBody(t *testing.T, fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func box(id, page int, category string, y float64) domain.Element {
	return domain.Element{
		ID: id, Order: id, Page: page, Category: category,
		Coordinates: []domain.Coordinate{{X: 0.1, Y: y}, {X: 0.9, Y: y}, {X: 0.9, Y: y + 0.1}, {X: 0.1, Y: y + 0.1}},
		BoundingBox: domain.BoundingBox{PageIndex: page - 1, X: 0.1, Y: y, Width: 0.8, Height: 0.1},
		Content:     domain.Content{HTML: "<p>" + category + "</p>", Text: category},
	}
}

func sampleSessionResult() *domain.SessionResult {
	return &domain.SessionResult{
		SessionID: testSessionID,
		Document:  domain.DocumentInfo{FileName: "report.pdf", FileType: domain.FileTypePDF, Size: 2048, PageCount: 2},
		Options:   domain.ParseOptions{OCR: domain.OCRModeForce},
		Result: &domain.ParseResult{
			API:     "upstage-document-parse",
			Model:   "document-parse",
			Content: domain.Content{HTML: "<h1>Report</h1>", Markdown: "# Report"},
			Elements: []domain.Element{
				box(0, 1, "heading1", 0.05),
				box(1, 1, "paragraph", 0.3),
				box(2, 2, "table", 0.2),
			},
		},
		ParsedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}
