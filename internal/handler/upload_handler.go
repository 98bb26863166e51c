package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"parseview/internal/domain"
	"parseview/internal/middleware"
	"parseview/internal/service"
)

// multipartOverhead is the allowance for form fields and boundaries on top of the file itself.
const multipartOverhead = 1 << 20

// UploadHandler handles document uploads.
type UploadHandler struct {
	sessions service.SessionService
	defaults domain.ParseOptions
	maxBytes int64
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(sessions service.SessionService, defaults domain.ParseOptions, maxBytes int64) *UploadHandler {
	return &UploadHandler{sessions: sessions, defaults: defaults, maxBytes: maxBytes}
}

// Upload handles POST /api/v1/upload
// @Summary Upload and parse a document
// @Description Relays the file to the document parsing vendor and stores the result as the session's current result.
// @Tags parse
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to parse"
// @Param ocr formData string false "OCR mode: auto or force"
// @Param extract_images formData bool false "Request base64 crops for tables, figures, charts and equations"
// @Param output_formats formData string false "Comma-separated list of html, markdown, text"
// @Param X-Session-ID header string false "Session identifier"
// @Success 201 {object} Response{data=domain.SessionResult} "Document parsed"
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type or invalid option"
// @Failure 409 {object} ErrorResponseBody "Upload already in progress"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 502 {object} ErrorResponseBody "Vendor rejected the request"
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	input, cleanup, err := readUpload(c, h.defaults, h.maxBytes)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer cleanup()

	result, err := h.sessions.Upload(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, result)
}

// readUpload extracts the file and options of a multipart upload. The caller
// must invoke cleanup once the upload has been processed.
func readUpload(c *gin.Context, defaults domain.ParseOptions, maxBytes int64) (service.UploadInput, func(), error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.UploadInput{}, nil, fmt.Errorf("%w: request exceeds %d bytes", domain.ErrFileTooLarge, maxBytes)
		}
		return service.UploadInput{}, nil, fmt.Errorf("%w: file field is required", domain.ErrValidation)
	}

	opts, err := ParseOptionsForm(c, defaults)
	if err != nil {
		_ = file.Close()
		return service.UploadInput{}, nil, err
	}

	cleanup := func() {
		_ = file.Close()
		if c.Request.MultipartForm != nil {
			_ = c.Request.MultipartForm.RemoveAll()
		}
	}
	return service.UploadInput{
		SessionID: middleware.GetSessionID(c),
		File:      file,
		FileName:  fileName(header),
		Size:      header.Size,
		Options:   opts,
	}, cleanup, nil
}

func fileName(h *multipart.FileHeader) string {
	name := strings.TrimSpace(h.Filename)
	if name == "" {
		return "upload"
	}
	return name
}

// ParseOptionsForm reads ocr, extract_images and output_formats from the form,
// falling back to defaults for absent fields.
func ParseOptionsForm(c *gin.Context, defaults domain.ParseOptions) (domain.ParseOptions, error) {
	opts := defaults

	if v := strings.TrimSpace(c.PostForm("ocr")); v != "" {
		opts.OCR = domain.OCRMode(strings.ToLower(v))
	}

	if v := strings.TrimSpace(c.PostForm("extract_images")); v != "" {
		b, err := parseFormBool(v)
		if err != nil {
			return opts, fmt.Errorf("%w: extract_images must be a boolean, got %q", domain.ErrInvalidOption, v)
		}
		opts.ExtractImages = b
	}

	var formats []domain.OutputFormat
	for _, raw := range c.PostFormArray("output_formats") {
		for _, f := range strings.Split(raw, ",") {
			f = strings.ToLower(strings.TrimSpace(f))
			if f != "" {
				formats = append(formats, domain.OutputFormat(f))
			}
		}
	}
	if len(formats) > 0 {
		opts.OutputFormats = formats
	}

	if err := service.ValidateOptions(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// parseFormBool accepts the usual strconv forms plus the "on" an HTML checkbox submits.
func parseFormBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(v)
}
