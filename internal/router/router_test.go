package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"parseview/internal/config"
	"parseview/internal/domain"
	"parseview/internal/handler"
	"parseview/internal/metrics"
	"parseview/internal/middleware"
	"parseview/internal/router"
	"parseview/internal/viewer"
	"parseview/internal/web"
	"parseview/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(svc *mocks.MockSessionService, store *mocks.MockResultStore) *gin.Engine {
	cfg := &config.Config{
		Vendor:  config.VendorConfig{Provider: "upstage", Model: "document-parse", OCR: "force"},
		Upload:  config.UploadConfig{MaxFileSizeMB: 50},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:8501"}},
		Session: config.SessionConfig{CookieName: "parseview_session", MaxAge: time.Hour},
	}
	defaults := cfg.DefaultOptions()
	sanitizer := viewer.NewSanitizer()
	return router.Setup(cfg, router.Handlers{
		Upload:  handler.NewUploadHandler(svc, defaults, cfg.Upload.MaxBytes()),
		Result:  handler.NewResultHandler(svc, sanitizer),
		Session: handler.NewSessionHandler(svc),
		Health:  handler.NewHealthHandler(store),
		Info:    handler.NewInfoHandler(cfg),
		UI:      handler.NewUIHandler(svc, sanitizer, defaults, cfg.Upload.MaxFileSizeMB),
	}, metrics.New(), web.MustTemplates())
}

func TestRouter_Ops(t *testing.T) {
	r := setup(new(mocks.MockSessionService), new(mocks.MockResultStore))

	for _, path := range []string{"/healthz", "/metrics", "/api", "/swagger/doc.json"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_ResultUsesSessionHeader(t *testing.T) {
	svc := new(mocks.MockSessionService)
	r := setup(svc, new(mocks.MockResultStore))

	id := domain.NewSessionID()
	svc.On("Result", mock.Anything, id).Return(nil, domain.ErrResultNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/result", nil)
	req.Header.Set(middleware.HeaderSessionID, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, id, w.Header().Get(middleware.HeaderSessionID))
	assert.Contains(t, w.Body.String(), "RESULT_NOT_FOUND")
	svc.AssertExpectations(t)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := setup(new(mocks.MockSessionService), new(mocks.MockResultStore))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
