// Package ingest validates source material and hands it to the extraction
// service. Local validation failures never produce a remote call.
package ingest

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"socialflow/internal/backend"
	"socialflow/internal/domain"
	"socialflow/internal/infra"
)

// validExtensions mirrors the extraction service's accepted file types.
var validExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".txt":  true,
}

// Extractor is the slice of the backend client the gateway needs.
type Extractor interface {
	ExtractFile(ctx context.Context, filename string, data []byte) (*domain.ContentUpload, error)
	ExtractText(ctx context.Context, text string) (*domain.ContentUpload, error)
	ExtractURL(ctx context.Context, rawURL string) (*domain.ContentUpload, error)
}

var _ Extractor = (*backend.Client)(nil)

// Material is one submission: exactly one of Filename+Data, Text, or URL.
type Material struct {
	Filename string
	Data     []byte
	Text     string
	URL      string
}

// Gateway performs submission validation and extraction.
type Gateway struct {
	extractor Extractor
	logger    *infra.Logger
}

// NewGateway constructs a Gateway.
func NewGateway(extractor Extractor, logger *infra.Logger) *Gateway {
	return &Gateway{extractor: extractor, logger: logger}
}

// Submit validates the material and forwards it for extraction. Exactly one
// input kind must be set; malformed URLs and unsupported file extensions are
// rejected before any network traffic.
func (g *Gateway) Submit(ctx context.Context, m Material) (*domain.ContentUpload, error) {
	kind, err := m.kind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.SourceKindFile:
		ext := strings.ToLower(filepath.Ext(m.Filename))
		if !validExtensions[ext] {
			return nil, fmt.Errorf("%w: unsupported file type %q", domain.ErrExtraction, strings.TrimPrefix(ext, "."))
		}
		if len(m.Data) == 0 {
			return nil, fmt.Errorf("%w: file is empty", domain.ErrExtraction)
		}
		g.logger.Info().Str("filename", m.Filename).Int("bytes", len(m.Data)).Msg("ingest: submitting file")
		return g.extractor.ExtractFile(ctx, m.Filename, m.Data)

	case domain.SourceKindText:
		if strings.TrimSpace(m.Text) == "" {
			return nil, fmt.Errorf("%w: text is empty", domain.ErrExtraction)
		}
		g.logger.Info().Int("chars", len(m.Text)).Msg("ingest: submitting text")
		return g.extractor.ExtractText(ctx, m.Text)

	case domain.SourceKindURL:
		if err := validateURL(m.URL); err != nil {
			return nil, err
		}
		g.logger.Info().Str("url", m.URL).Msg("ingest: submitting url")
		return g.extractor.ExtractURL(ctx, m.URL)
	}
	return nil, fmt.Errorf("%w: no input provided", domain.ErrExtraction)
}

func (m Material) kind() (domain.SourceKind, error) {
	set := 0
	var kind domain.SourceKind
	if m.Filename != "" || len(m.Data) > 0 {
		set++
		kind = domain.SourceKindFile
	}
	if m.Text != "" {
		set++
		kind = domain.SourceKindText
	}
	if m.URL != "" {
		set++
		kind = domain.SourceKindURL
	}
	if set == 0 {
		return "", fmt.Errorf("%w: no input provided", domain.ErrExtraction)
	}
	if set > 1 {
		return "", fmt.Errorf("%w: provide exactly one of file, text, or url", domain.ErrExtraction)
	}
	return kind, nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: malformed url", domain.ErrExtraction)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: url scheme must be http or https", domain.ErrExtraction)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: url has no host", domain.ErrExtraction)
	}
	return nil
}
