package validation

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/username/gstrecon/backend/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
	"application/vnd.ms-excel": true, // legacy .xls
	"application/zip":          true, // xlsx is a zip container; some browsers report it as such
	"application/octet-stream": true, // common fallback for binary uploads; magic bytes decide
	"text/csv":                 false,
	"text/plain":               false,
}

// File signatures for the two spreadsheet containers we accept.
var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}                         // PK\x03\x04, xlsx
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1} // compound file, legacy xls
)

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	normalized := strings.ToLower(strings.Split(contentType, ";")[0])
	if allowed, exists := AllowedClientContentTypes[normalized]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for spreadsheet upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content signature and
// verifies the upload really is one of the spreadsheet containers, regardless
// of what the client declared.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 8)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	// IMPORTANT: Reset the file read pointer to the beginning so the actual parser can read the full file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if n == 0 {
		return "", fmt.Errorf("file is empty")
	}

	switch {
	case bytes.HasPrefix(buffer[:n], zipMagic):
		logger.L.Debug("File content type validated", "detectedContentType", "xlsx")
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case bytes.HasPrefix(buffer[:n], cfbMagic):
		logger.L.Debug("File content type validated", "detectedContentType", "xls")
		return "application/vnd.ms-excel", nil
	default:
		logger.L.Warn("File rejected: content does not start with a spreadsheet signature")
		return "application/octet-stream", fmt.Errorf("file content is not a recognized Excel workbook")
	}
}
