package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/pageza/recipe-assistant/backend/config"
)

const mimePDF = "application/pdf"

// Upload is a file submitted alongside a recipe request
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Extractor pulls plain text out of an uploaded document.
type Extractor interface {
	Extract(ctx context.Context, file Upload) (string, error)
}

// SimulatedExtractor waits for a fixed delay and returns a canned sentence
// naming the file. It never reads the content.
type SimulatedExtractor struct {
	Delay time.Duration
}

// Extract implements Extractor.
func (e SimulatedExtractor) Extract(ctx context.Context, file Upload) (string, error) {
	if e.Delay > 0 {
		timer := time.NewTimer(e.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", &ExtractionError{File: file.Name, Err: ctx.Err()}
		case <-timer.C:
		}
	}
	return fmt.Sprintf("PDF content extracted from %s. This would contain actual text in production.", file.Name), nil
}

// PDFExtractor reads the text layer of a PDF upload.
type PDFExtractor struct{}

// Extract implements Extractor.
func (PDFExtractor) Extract(ctx context.Context, file Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ExtractionError{File: file.Name, Err: err}
	}
	if mime := normalizeMimeType(file); mime != mimePDF {
		return "", &ExtractionError{File: file.Name, Err: fmt.Errorf("unsupported mime type: %s", mime)}
	}

	text, err := extractPDF(file.Data)
	if err != nil {
		return "", &ExtractionError{File: file.Name, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ExtractionError{File: file.Name, Err: errors.New("no text layer found")}
	}
	return text, nil
}

// NewExtractor picks the extractor named by cfg.ExtractorMode.
func NewExtractor(cfg *config.Config) Extractor {
	if cfg.ExtractorMode == config.ExtractorPDF {
		return PDFExtractor{}
	}
	return SimulatedExtractor{Delay: cfg.ExtractDelay}
}

func normalizeMimeType(file Upload) string {
	mime := strings.ToLower(strings.TrimSpace(file.ContentType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == mimePDF {
		return mime
	}
	if strings.EqualFold(filepath.Ext(file.Name), ".pdf") {
		return mimePDF
	}
	if len(file.Data) > 0 {
		return http.DetectContentType(file.Data)
	}
	return mime
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some truncated inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
