package upstage_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parseview/internal/config"
	"parseview/internal/domain"
	"parseview/internal/parser/upstage"
	"parseview/internal/port"
)

func testConfig() *config.VendorConfig {
	return &config.VendorConfig{
		Provider:    "upstage",
		APIKey:      "test-upstage-key",
		Model:       "document-parse",
		OCR:         "force",
		TimeoutSecs: 30,
	}
}

func newTestParser(t *testing.T, serverURL string) *upstage.Parser {
	t.Helper()
	p, err := upstage.NewParserWithEndpoint(testConfig(), serverURL)
	require.NoError(t, err)
	return p
}

func writeTempDoc(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake pdf body for upload tests"), 0o600))
	return path
}

func parseInput(t *testing.T) port.ParseInput {
	return port.ParseInput{
		FilePath:    writeTempDoc(t, "report.pdf"),
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		Options:     domain.ParseOptions{OCR: domain.OCRModeForce, ExtractImages: true},
	}
}

// twoPageResponse builds a vendor payload with twelve elements, six per page.
func twoPageResponse() map[string]interface{} {
	elements := make([]map[string]interface{}, 0, 12)
	for i := 0; i < 12; i++ {
		page := 1 + i/6
		top := 0.05 + float64(i%6)*0.15
		elements = append(elements, map[string]interface{}{
			"id":       i,
			"category": "paragraph",
			"page":     page,
			"content": map[string]interface{}{
				"html":     fmt.Sprintf("<p id='%d'>Paragraph %d</p>", i, i),
				"markdown": fmt.Sprintf("Paragraph %d", i),
				"text":     fmt.Sprintf("Paragraph %d", i),
			},
			"coordinates": []map[string]float64{
				{"x": 0.1, "y": top},
				{"x": 0.9, "y": top},
				{"x": 0.9, "y": top + 0.1},
				{"x": 0.1, "y": top + 0.1},
			},
		})
	}
	return map[string]interface{}{
		"api":      "2.0",
		"model":    "document-parse-250116",
		"content":  map[string]string{"html": "<p>doc</p>", "markdown": "doc", "text": "doc"},
		"elements": elements,
		"usage":    map[string]int{"pages": 2},
	}
}

func TestNewParser_MissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "   "

	p, err := upstage.NewParser(cfg)

	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestNewParser_NilConfig(t *testing.T) {
	p, err := upstage.NewParser(nil)

	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestUpstageParser_Parse_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request headers
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-upstage-key", r.Header.Get("Authorization"))

		// Verify multipart form
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "document-parse", r.FormValue("model"))
		assert.Equal(t, "force", r.FormValue("ocr"))
		assert.Equal(t, "['table', 'figure', 'chart', 'equation']", r.FormValue("base64_encoding"))
		assert.Empty(t, r.FormValue("output_formats"))

		file, header, err := r.FormFile("document")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "report.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		data, _ := io.ReadAll(file)
		assert.Contains(t, string(data), "%PDF-1.4")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(twoPageResponse())
	}))
	defer server.Close()

	result, err := newTestParser(t, server.URL).Parse(context.Background(), parseInput(t))
	require.NoError(t, err)

	assert.Equal(t, "2.0", result.API)
	assert.Equal(t, "document-parse-250116", result.Model)
	assert.Equal(t, "doc", result.Content.Markdown)
	require.Len(t, result.Elements, 12)
	assert.Equal(t, 2, result.PageCount())

	for i, el := range result.Elements {
		assert.Equal(t, i, el.Order)
		assert.Equal(t, i, el.ID)
		assert.Contains(t, []int{0, 1}, el.BoundingBox.PageIndex)
		assert.Equal(t, el.Page-1, el.BoundingBox.PageIndex)
		assert.Len(t, el.Coordinates, 4)
		assert.InDelta(t, 0.1, el.BoundingBox.X, 1e-9)
		assert.InDelta(t, 0.8, el.BoundingBox.Width, 1e-9)
		assert.InDelta(t, 0.1, el.BoundingBox.Height, 1e-9)
		assert.True(t, el.HasCoordinates())
	}
	assert.Equal(t, 0, result.Elements[5].BoundingBox.PageIndex)
	assert.Equal(t, 1, result.Elements[6].BoundingBox.PageIndex)
}

func TestUpstageParser_Parse_PreservesVendorOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"elements":[
			{"id":9,"category":"footer","page":2,"coordinates":[{"x":0,"y":0.95},{"x":1,"y":0.95},{"x":1,"y":1},{"x":0,"y":1}]},
			{"id":2,"category":"heading1","page":1,"coordinates":[{"x":0,"y":0.1},{"x":1,"y":0.1},{"x":1,"y":0.2},{"x":0,"y":0.2}]},
			{"id":4,"category":"paragraph","page":1,"coordinates":[{"x":0,"y":0.05},{"x":1,"y":0.05},{"x":1,"y":0.08},{"x":0,"y":0.08}]}
		]}`))
	}))
	defer server.Close()

	result, err := newTestParser(t, server.URL).Parse(context.Background(), parseInput(t))
	require.NoError(t, err)

	ids := make([]int, len(result.Elements))
	for i, el := range result.Elements {
		ids[i] = el.ID
		assert.Equal(t, i, el.Order)
	}
	assert.Equal(t, []int{9, 2, 4}, ids)
}

func TestUpstageParser_Parse_LenientShapes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"content": "plain document text",
			"elements": [
				{"id":1,"category":"figure","page":1,"content":"caption text",
				 "coordinates":[[0.2,0.3],[0.6,0.3],[0.6,0.7],[0.2,0.7]],
				 "base64_encoding":{"data":"iVBORw0KGgoAAAA="}},
				{"id":2,"page":0,"content":{"html":"<p>x</p>"},"coordinates":[{"x":0.1},"bogus"],
				 "base64_encoding":""}
			]}`))
	}))
	defer server.Close()

	result, err := newTestParser(t, server.URL).Parse(context.Background(), parseInput(t))
	require.NoError(t, err)

	assert.Equal(t, "plain document text", result.Content.Text)
	assert.Equal(t, "upstage-document-parse", result.API)
	require.Len(t, result.Elements, 2)

	fig := result.Elements[0]
	assert.Equal(t, "caption text", fig.Content.Text)
	assert.Equal(t, "iVBORw0KGgoAAAA=", fig.Base64Encoding)
	assert.InDelta(t, 0.2, fig.BoundingBox.X, 1e-9)
	assert.InDelta(t, 0.3, fig.BoundingBox.Y, 1e-9)
	assert.InDelta(t, 0.4, fig.BoundingBox.Width, 1e-9)
	assert.InDelta(t, 0.4, fig.BoundingBox.Height, 1e-9)

	other := result.Elements[1]
	assert.Equal(t, domain.CategoryUnknown, other.Category)
	assert.Equal(t, 1, other.Page)
	assert.Equal(t, 0, other.BoundingBox.PageIndex)
	assert.Empty(t, other.Coordinates)
	assert.False(t, other.HasCoordinates())
	assert.False(t, other.HasImage())
}

func TestUpstageParser_Parse_ContentWithoutElements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":{"html":"<p>all</p>","text":"all"}}`))
	}))
	defer server.Close()

	result, err := newTestParser(t, server.URL).Parse(context.Background(), parseInput(t))
	require.NoError(t, err)

	require.Len(t, result.Elements, 1)
	assert.Equal(t, domain.CategoryDocument, result.Elements[0].Category)
	assert.Equal(t, 1, result.Elements[0].Page)
	assert.Equal(t, "all", result.Elements[0].Content.Text)
}

func TestUpstageParser_Parse_OptionsForwarded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "auto", r.FormValue("ocr"))
		assert.Empty(t, r.FormValue("base64_encoding"))
		assert.Equal(t, "['html', 'markdown']", r.FormValue("output_formats"))
		_, _ = w.Write([]byte(`{"elements":[]}`))
	}))
	defer server.Close()

	input := parseInput(t)
	input.Options = domain.ParseOptions{
		OCR:           domain.OCRModeAuto,
		OutputFormats: []domain.OutputFormat{domain.OutputFormatHTML, domain.OutputFormatMarkdown},
	}

	result, err := newTestParser(t, server.URL).Parse(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, result.Elements)
}

func TestUpstageParser_Parse_NonOKStatus_SingleAttempt(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	result, err := newTestParser(t, server.URL).Parse(context.Background(), parseInput(t))
	assert.Nil(t, result)

	var vendorErr *domain.VendorError
	require.True(t, errors.As(err, &vendorErr))
	assert.Equal(t, http.StatusUnauthorized, vendorErr.StatusCode)
	assert.Equal(t, "Invalid API key", vendorErr.Message)
	assert.ErrorIs(t, err, domain.ErrVendor)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestUpstageParser_Parse_RateLimitedNotRetried(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestParser(t, server.URL).Parse(context.Background(), parseInput(t))

	var vendorErr *domain.VendorError
	require.True(t, errors.As(err, &vendorErr))
	assert.Equal(t, http.StatusTooManyRequests, vendorErr.StatusCode)
	assert.Contains(t, vendorErr.Message, "retry after 15s")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestUpstageParser_Parse_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"elements": "not a list"`))
	}))
	defer server.Close()

	_, err := newTestParser(t, server.URL).Parse(context.Background(), parseInput(t))

	var vendorErr *domain.VendorError
	require.True(t, errors.As(err, &vendorErr))
	assert.Contains(t, vendorErr.Message, "malformed vendor response")
}

func TestUpstageParser_Parse_WrongElementsType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"elements": {"id": 1}}`))
	}))
	defer server.Close()

	_, err := newTestParser(t, server.URL).Parse(context.Background(), parseInput(t))

	assert.ErrorIs(t, err, domain.ErrVendor)
	assert.Contains(t, err.Error(), "malformed vendor response")
}

func TestUpstageParser_Parse_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestParser(t, url).Parse(context.Background(), parseInput(t))

	var vendorErr *domain.VendorError
	require.True(t, errors.As(err, &vendorErr))
	assert.Equal(t, 0, vendorErr.StatusCode)
}

func TestUpstageParser_Parse_MissingFile(t *testing.T) {
	p := newTestParser(t, "http://127.0.0.1:1")
	_, err := p.Parse(context.Background(), port.ParseInput{FilePath: filepath.Join(t.TempDir(), "missing.pdf")})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrVendor)
}
