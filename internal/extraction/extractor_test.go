package extraction

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildZip builds an in-memory zip archive from name->content pairs
func buildZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range entries {
		entry, err := writer.Create(name)
		require.NoError(t, err)
		_, err = entry.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestExtractTextNeverFails(t *testing.T) {
	extractor := NewTextExtractor(zap.NewNop())

	tests := []struct {
		name string
		blob []byte
	}{
		{"empty blob", nil},
		{"garbage bytes", []byte("definitely not a pdf")},
		{"truncated pdf header", []byte("%PDF-1.4")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := extractor.ExtractText(tt.blob, "doc.pdf")
			assert.Equal(t, "No readable text found", text,
				"unreadable input must yield the sentinel, not an error")
		})
	}
}

func TestExtractAllSkipsIneligibleEntries(t *testing.T) {
	extractor := NewTextExtractor(zap.NewNop())
	archive := buildZip(t, map[string][]byte{
		"invoice1.pdf":          []byte("fake pdf one"),
		"nested/invoice2.PDF":   []byte("fake pdf two"),
		"readme.txt":            []byte("not an invoice"),
		"__MACOSX/invoice1.pdf": []byte("resource fork"),
		"nested/._invoice2.pdf": []byte("resource fork"),
		"nested/.DS_Store":      []byte("finder noise"),
		"invoices/subfolder/":   nil,
		"spreadsheet.xlsx":      []byte("wrong type"),
		"invoices/invoice3.pdf": []byte("fake pdf three"),
	})

	texts, err := extractor.ExtractAll(archive)
	require.NoError(t, err)

	assert.Len(t, texts, 3)
	assert.Contains(t, texts, "invoice1.pdf")
	assert.Contains(t, texts, "nested/invoice2.PDF")
	assert.Contains(t, texts, "invoices/invoice3.pdf")
}

func TestExtractAllUnreadableEntryGetsSentinel(t *testing.T) {
	extractor := NewTextExtractor(zap.NewNop())
	archive := buildZip(t, map[string][]byte{
		"broken.pdf": []byte("not really a pdf"),
	})

	texts, err := extractor.ExtractAll(archive)
	require.NoError(t, err)
	assert.Equal(t, "No readable text found", texts["broken.pdf"])
}

func TestExtractAllFailsOnBadArchive(t *testing.T) {
	extractor := NewTextExtractor(zap.NewNop())

	_, err := extractor.ExtractAll([]byte("this is not a zip file"))

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Contains(t, extractionErr.Error(), "zip archive")
}

func TestExtractAllFailsWithoutEligibleEntries(t *testing.T) {
	extractor := NewTextExtractor(zap.NewNop())
	archive := buildZip(t, map[string][]byte{
		"readme.txt":           []byte("nothing to see"),
		"__MACOSX/invoice.pdf": []byte("housekeeping"),
	})

	_, err := extractor.ExtractAll(archive)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Contains(t, extractionErr.Error(), "no valid PDF documents")
}

func TestExtractionErrorUnwrap(t *testing.T) {
	cause := assert.AnError
	err := &ExtractionError{Message: "failed to open zip archive", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), cause.Error())
}
