// backend/src/security/validation/field_validator_test.go
package validation

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/gstrecon/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestValidateGSTIN(t *testing.T) {
	cases := []struct {
		name  string
		input string
		valid bool
	}{
		{"canonical", "29ABCDE1234F1Z5", true},
		{"lowercase normalized", "29abcde1234f1z5", true},
		{"surrounding whitespace", "  29ABCDE1234F1Z5  ", true},
		{"empty passes", "", true},
		{"too short", "29ABCDE1234F1Z", false},
		{"too long", "29ABCDE1234F1Z5X", false},
		{"entity code zero", "29ABCDE1234F0Z5", false},
		{"missing Z", "29ABCDE1234F1Y5", false},
		{"digits where letters expected", "29ABC121234F1Z5", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateGSTIN(tc.input)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidationFailed)
			}
		})
	}
}

func TestValidateTaxPeriod(t *testing.T) {
	assert.NoError(t, ValidateTaxPeriod("2025-04"))
	assert.NoError(t, ValidateTaxPeriod("2025-12"))
	assert.NoError(t, ValidateTaxPeriod(""))
	assert.Error(t, ValidateTaxPeriod("2025-13"))
	assert.Error(t, ValidateTaxPeriod("2025-00"))
	assert.Error(t, ValidateTaxPeriod("04-2025"))
	assert.Error(t, ValidateTaxPeriod("2025/04"))
}

func TestValidateInvoiceNo(t *testing.T) {
	assert.NoError(t, ValidateInvoiceNo("FY25-26/INV/001"))
	assert.NoError(t, ValidateInvoiceNo("INV_001.A"))
	assert.NoError(t, ValidateInvoiceNo(""))
	assert.Error(t, ValidateInvoiceNo("INV;DROP TABLE"))
	assert.Error(t, ValidateInvoiceNo(string(make([]byte, MaxInvoiceNoLength+1))))
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	xlsxHead := append([]byte{0x50, 0x4B, 0x03, 0x04}, []byte("rest of archive")...)
	mime, err := ValidateFileContentByMagicBytes(bytes.NewReader(xlsxHead))
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", mime)

	xlsHead := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}
	mime, err = ValidateFileContentByMagicBytes(bytes.NewReader(xlsHead))
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.ms-excel", mime)

	_, err = ValidateFileContentByMagicBytes(bytes.NewReader([]byte("plain,csv,content")))
	assert.Error(t, err)

	_, err = ValidateFileContentByMagicBytes(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestValidateFileContentResetsReader(t *testing.T) {
	content := append([]byte{0x50, 0x4B, 0x03, 0x04}, []byte("payload")...)
	r := bytes.NewReader(content)

	_, err := ValidateFileContentByMagicBytes(r)
	require.NoError(t, err)

	rest := make([]byte, len(content))
	n, _ := r.Read(rest)
	assert.Equal(t, len(content), n)
}

func TestValidateClientContentType(t *testing.T) {
	assert.NoError(t, ValidateClientContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.NoError(t, ValidateClientContentType("application/zip; boundary=x"))
	assert.NoError(t, ValidateClientContentType("APPLICATION/OCTET-STREAM"))
	assert.Error(t, ValidateClientContentType("text/csv"))
	assert.Error(t, ValidateClientContentType("text/html"))
}
