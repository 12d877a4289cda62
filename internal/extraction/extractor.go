package extraction

import (
	"bytes"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// minUsableTextLength is the trimmed length below which an extraction
// result is considered unusable and the next strategy is tried.
const minUsableTextLength = 20

// noReadableText is returned when every strategy comes back empty.
const noReadableText = "No readable text found"

// TextExtractor extracts plain text from PDF documents using an ordered
// chain of strategies: layout-aware extraction via mupdf first, then a
// stream-based pure-Go parser as fallback. Extraction never fails for a
// single document; every strategy error degrades to empty output.
type TextExtractor struct {
	logger *zap.Logger
}

// NewTextExtractor creates a new text extractor
func NewTextExtractor(logger *zap.Logger) *TextExtractor {
	return &TextExtractor{logger: logger}
}

// ExtractText extracts text from a single PDF blob. It always returns
// some string: usable text from one of the strategies, whatever partial
// text the fallback produced, or a sentinel when nothing was readable.
func (e *TextExtractor) ExtractText(blob []byte, filename string) string {
	text := e.extractWithFitz(blob)
	if len(strings.TrimSpace(text)) >= minUsableTextLength {
		e.logger.Debug("Extracted text with mupdf", zap.String("filename", filename))
		return text
	}

	text = e.extractWithStreamParser(blob)
	if len(strings.TrimSpace(text)) >= minUsableTextLength {
		e.logger.Debug("Extracted text with stream parser", zap.String("filename", filename))
		return text
	}

	if text != "" {
		e.logger.Warn("Only partial text extracted", zap.String("filename", filename))
		return text
	}

	e.logger.Warn("No readable text in document", zap.String("filename", filename))
	return noReadableText
}

// extractWithFitz renders each page's text through mupdf
func (e *TextExtractor) extractWithFitz(blob []byte) string {
	doc, err := fitz.NewFromMemory(blob)
	if err != nil {
		e.logger.Debug("mupdf failed to open document", zap.Error(err))
		return ""
	}
	defer doc.Close()

	var parts []string
	for page := 0; page < doc.NumPage(); page++ {
		pageText, err := doc.Text(page)
		if err != nil {
			e.logger.Debug("mupdf failed to read page", zap.Int("page", page), zap.Error(err))
			continue
		}
		if pageText != "" {
			parts = append(parts, pageText)
		}
	}
	return strings.Join(parts, "\n")
}

// extractWithStreamParser reads the content streams directly. The parser
// panics on some malformed files, so the whole call is fenced.
func (e *TextExtractor) extractWithStreamParser(blob []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("stream parser panicked", zap.Any("cause", r))
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		e.logger.Debug("stream parser failed to open document", zap.Error(err))
		return ""
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		e.logger.Debug("stream parser failed to read text", zap.Error(err))
		return ""
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return buf.String()
}
