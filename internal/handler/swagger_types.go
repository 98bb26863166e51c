package handler

import (
	"parseview/internal/domain"
	"parseview/internal/viewer"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// Response is the success envelope.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data"`
}

// ErrorResponseBody is the error envelope.
type ErrorResponseBody struct {
	Success bool        `json:"success" example:"false"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code         string `json:"code" example:"RESULT_NOT_FOUND"`
	Message      string `json:"message" example:"no parse result for this session; upload a document first"`
	VendorStatus int    `json:"vendor_status,omitempty" example:"401"`
}

// ElementDetail is the response for a single selected element.
type ElementDetail struct {
	Index   int                 `json:"index" example:"3"`
	Element *domain.Element     `json:"element"`
	View    *viewer.ElementView `json:"view"`
}

// ServiceInfo describes the running service.
type ServiceInfo struct {
	Service          string   `json:"service" example:"parseview"`
	Status           string   `json:"status" example:"running"`
	Provider         string   `json:"provider" example:"upstage"`
	Model            string   `json:"model" example:"document-parse"`
	SupportedFormats []string `json:"supported_formats"`
	MaxFileSizeMB    int64    `json:"max_file_size_mb" example:"50"`
	DefaultOCR       string   `json:"default_ocr" example:"force"`
	ExtractImages    bool     `json:"extract_images" example:"true"`
	ImageCategories  []string `json:"image_categories"`
}
