package upstage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"parseview/internal/config"
	"parseview/internal/domain"
	"parseview/internal/parser"
	"parseview/internal/port"
)

const (
	providerName   = "upstage"
	defaultURL     = "https://api.upstage.ai/v1/document-digitization"
	defaultModel   = "document-parse"
	defaultTimeout = 600 * time.Second

	// maxResponseBytes caps the vendor body; base64 crops make responses large.
	maxResponseBytes = 256 << 20
)

// Parser implements port.DocumentParser using the Upstage Document Parse API.
type Parser struct {
	apiKey   string
	model    string
	ocr      domain.OCRMode
	endpoint string
	client   *http.Client
}

// NewParser creates an Upstage-based document parser. It returns a ConfigError
// when no API key is configured and never touches the network.
func NewParser(cfg *config.VendorConfig) (*Parser, error) {
	return newParser(cfg, "")
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.VendorConfig, endpoint string) (*Parser, error) {
	return newParser(cfg, endpoint)
}

func newParser(cfg *config.VendorConfig, endpoint string) (*Parser, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: upstage API key is required", domain.ErrConfig)
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout()
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if endpoint == "" {
		endpoint = cfg.APIURL
	}
	if endpoint == "" {
		endpoint = defaultURL
	}
	ocr := domain.OCRMode(cfg.OCR)
	if !domain.ValidOCRModes[ocr] {
		ocr = domain.OCRModeForce
	}
	return &Parser{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		model:    model,
		ocr:      ocr,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Parse uploads the document in a single multipart request and normalizes the response.
// There is exactly one attempt; any failure is returned as a *domain.VendorError.
func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*domain.ParseResult, error) {
	file, err := os.Open(input.FilePath)
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	fileName := input.FileName
	if fileName == "" {
		fileName = filepath.Base(input.FilePath)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(p.writeForm(writer, file, fileName, input))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")

	log.Debug().
		Str("file", fileName).
		Str("endpoint", p.endpoint).
		Msg("upstageParser.Parse: sending document")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, parser.NewTransportError(providerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, parser.NewTransportError(providerName, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parser.NewStatusError(providerName, resp.StatusCode, resp.Header, respBody)
	}

	result, err := normalizeResponse(respBody)
	if err != nil {
		return nil, parser.NewMalformedResponseError(providerName, resp.StatusCode, err)
	}

	log.Debug().
		Str("file", fileName).
		Int("elements", len(result.Elements)).
		Msg("upstageParser.Parse: document parsed")
	return result, nil
}

func (p *Parser) writeForm(w *multipart.Writer, file io.Reader, fileName string, input port.ParseInput) error {
	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename="%s"`, escapeQuotes(fileName)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}

	ocr := input.Options.OCR
	if ocr == "" {
		ocr = p.ocr
	}
	fields := [][2]string{
		{"model", p.model},
		{"ocr", string(ocr)},
	}
	if input.Options.ExtractImages {
		fields = append(fields, [2]string{"base64_encoding", listField(domain.ImageCategories)})
	}
	if len(input.Options.OutputFormats) > 0 {
		formats := make([]string, len(input.Options.OutputFormats))
		for i, f := range input.Options.OutputFormats {
			formats[i] = string(f)
		}
		fields = append(fields, [2]string{"output_formats", listField(formats)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	return w.Close()
}

// listField renders values the way the vendor expects list-valued form fields: ['a', 'b'].
func listField(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
