package extraction

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"
)

// ExtractAll extracts text from every eligible PDF in a zip archive,
// keyed by entry name. One entry's failure becomes an inline error string
// for that entry rather than aborting the batch. Returns *ExtractionError
// when the archive cannot be opened or contains no eligible documents.
func (e *TextExtractor) ExtractAll(archive []byte) (map[string]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, &ExtractionError{Message: "failed to open zip archive", Cause: err}
	}

	texts := make(map[string]string)
	for _, entry := range reader.File {
		if !isEligibleEntry(entry) {
			continue
		}

		blob, err := readEntry(entry)
		if err != nil {
			e.logger.Error("Failed to read archive entry",
				zap.String("entry", entry.Name), zap.Error(err))
			texts[entry.Name] = fmt.Sprintf("Error processing %s: %v", entry.Name, err)
			continue
		}

		texts[entry.Name] = e.ExtractText(blob, entry.Name)
		e.logger.Info("Processed archive entry", zap.String("entry", entry.Name))
	}

	if len(texts) == 0 {
		return nil, &ExtractionError{Message: "no valid PDF documents found in zip archive"}
	}
	return texts, nil
}

// isEligibleEntry reports whether an archive entry is an invoice document
// rather than a directory or OS housekeeping artifact.
func isEligibleEntry(entry *zip.File) bool {
	name := entry.Name
	if entry.FileInfo().IsDir() {
		return false
	}
	if strings.HasPrefix(name, "__MACOSX") {
		return false
	}
	base := path.Base(name)
	if base == ".DS_Store" || strings.HasPrefix(base, "._") {
		return false
	}
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
