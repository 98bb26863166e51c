package handler

import (
	"github.com/gin-gonic/gin"

	"parseview/internal/config"
	"parseview/internal/domain"
)

// InfoHandler reports what the service is and how it is configured.
type InfoHandler struct {
	info ServiceInfo
}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler(cfg *config.Config) *InfoHandler {
	return &InfoHandler{info: ServiceInfo{
		Service:          "parseview",
		Status:           "running",
		Provider:         cfg.Vendor.Provider,
		Model:            cfg.Vendor.Model,
		SupportedFormats: domain.SupportedExtensions(),
		MaxFileSizeMB:    cfg.Upload.MaxFileSizeMB,
		DefaultOCR:       cfg.Vendor.OCR,
		ExtractImages:    cfg.Vendor.ExtractImages,
		ImageCategories:  domain.ImageCategories,
	}}
}

// Info handles GET /api
// @Summary Service information
// @Tags health
// @Produce json
// @Success 200 {object} Response{data=ServiceInfo}
// @Router /api [get]
func (h *InfoHandler) Info(c *gin.Context) {
	RespondOK(c, h.info)
}
