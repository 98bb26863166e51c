package domain

import (
	"sort"
	"strings"
)

// FileType represents a document format accepted for parsing.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypePPTX FileType = "pptx"
	FileTypeXLSX FileType = "xlsx"
	FileTypeHWP  FileType = "hwp"
	FileTypeHWPX FileType = "hwpx"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeBMP  FileType = "bmp"
	FileTypeTIFF FileType = "tiff"
	FileTypeHEIC FileType = "heic"
	FileTypeWEBP FileType = "webp"
)

// AllowedFileTypes maps FileType to the MIME type sent to the vendor.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FileTypePPTX: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypeHWP:  "application/x-hwp",
	FileTypeHWPX: "application/hwp+zip",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeBMP:  "image/bmp",
	FileTypeTIFF: "image/tiff",
	FileTypeHEIC: "image/heic",
	FileTypeWEBP: "image/webp",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"docx": FileTypeDOCX,
	"pptx": FileTypePPTX,
	"xlsx": FileTypeXLSX,
	"hwp":  FileTypeHWP,
	"hwpx": FileTypeHWPX,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"bmp":  FileTypeBMP,
	"tiff": FileTypeTIFF,
	"tif":  FileTypeTIFF,
	"heic": FileTypeHEIC,
	"webp": FileTypeWEBP,
}

// SupportedExtensions returns the accepted extensions in sorted order, for messages and the UI.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(AllowedExtensions))
	for ext := range AllowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// SupportedExtensionList returns SupportedExtensions joined with ", ".
func SupportedExtensionList() string {
	return strings.Join(SupportedExtensions(), ", ")
}

// OCRMode controls whether the vendor forces OCR on every page.
type OCRMode string

const (
	OCRModeAuto  OCRMode = "auto"
	OCRModeForce OCRMode = "force"
)

// ValidOCRModes lists accepted OCR modes.
var ValidOCRModes = map[OCRMode]bool{
	OCRModeAuto:  true,
	OCRModeForce: true,
}

// OutputFormat is a content representation requested from the vendor.
type OutputFormat string

const (
	OutputFormatHTML     OutputFormat = "html"
	OutputFormatMarkdown OutputFormat = "markdown"
	OutputFormatText     OutputFormat = "text"
)

// ValidOutputFormats lists accepted output formats.
var ValidOutputFormats = map[OutputFormat]bool{
	OutputFormatHTML:     true,
	OutputFormatMarkdown: true,
	OutputFormatText:     true,
}

// SessionStatus is the lifecycle of a single browser session.
type SessionStatus string

const (
	SessionStatusEmpty     SessionStatus = "empty"
	SessionStatusUploading SessionStatus = "uploading"
	SessionStatusParsed    SessionStatus = "parsed"
	SessionStatusError     SessionStatus = "error"
)

// Element categories the vendor is known to emit. Unknown categories pass through unchanged.
const (
	CategoryHeading1  = "heading1"
	CategoryParagraph = "paragraph"
	CategoryTable     = "table"
	CategoryFigure    = "figure"
	CategoryChart     = "chart"
	CategoryEquation  = "equation"
	CategoryDocument  = "document"
	CategoryUnknown   = "unknown"
)

// ImageCategories are the element categories for which the vendor can return base64 crops.
var ImageCategories = []string{CategoryTable, CategoryFigure, CategoryChart, CategoryEquation}
