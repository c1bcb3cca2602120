// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/username/gstrecon/backend/src/logger"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

// Constants for lengths remain here
const (
	DefaultMaxStringLength = 255
	MaxGSTINLength         = 15
	MaxInvoiceNoLength     = 64
	MaxParticularsLength   = 512
)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateStringRegex checks if a string matches a given regex pattern.
func ValidateStringRegex(s string, pattern *regexp.Regexp, fieldName, formatDescription string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (%s)", ErrValidationFailed, fieldName, s, formatDescription)
	}
	return nil
}

// --- Numeric Validators ---

// ValidateIntString parses a string to int and checks if it's within a range.
// An empty string passes as zero; callers requiring a value should run
// ValidateStringNotEmpty first.
func ValidateIntString(s, fieldName string, allowNegative bool, minVal, maxVal int) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, nil
	}

	val, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %s ('%s') is not a valid integer: %v", ErrValidationFailed, fieldName, s, err)
	}
	if !allowNegative && val < 0 {
		logger.L.Warn("Negative value not allowed for field", "field", fieldName, "value", val)
		return 0, fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	if val < minVal || val > maxVal {
		logger.L.Warn("Integer value out of range", "field", fieldName, "value", val, "min", minVal, "max", maxVal)
		return 0, fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrValidationFailed, fieldName, minVal, maxVal, val)
	}
	return val, nil
}

// --- Date Validator ---

// ValidateDateString checks if a string is a valid date in "DD-MM-YYYY" format.
func ValidateDateString(s, fieldName string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("02-01-2006", trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is not a valid date (expected DD-MM-YYYY): %v", ErrValidationFailed, fieldName, s, err)
	}
	if t.Format("02-01-2006") != trimmed {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is an invalid date (e.g., day/month mismatch)", ErrValidationFailed, fieldName, s)
	}
	return t, nil
}

// --- Specific Format Validators ---

// Regexes for specific formats are defined here (they are not for general content scanning)
var (
	// State code, PAN, entity code, the literal Z, checksum character.
	gstinRegex     = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	taxPeriodRegex = regexp.MustCompile(`^[0-9]{4}-(0[1-9]|1[0-2])$`)
	invoiceNoRegex = regexp.MustCompile(`^[a-zA-Z0-9/_. -]+$`)
)

// ValidateGSTIN checks if a string is a plausible GSTIN. Empty values pass;
// the reconciliation engine handles missing identifiers on its own.
func ValidateGSTIN(s string) error {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if trimmed == "" {
		return nil
	}
	if err := ValidateStringMaxLength(trimmed, MaxGSTINLength, "GSTIN"); err != nil {
		return err
	}
	return ValidateStringRegex(trimmed, gstinRegex, "GSTIN", "15-character GST identification number")
}

// ValidateTaxPeriod checks if a period string is a "YYYY-MM" month.
func ValidateTaxPeriod(s string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return ValidateStringRegex(trimmed, taxPeriodRegex, "Period", "YYYY-MM")
}

// ValidateInvoiceNo checks format and length for an invoice number.
func ValidateInvoiceNo(s string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if err := ValidateStringMaxLength(trimmed, MaxInvoiceNoLength, "Invoice No"); err != nil {
		return err
	}
	return ValidateStringRegex(trimmed, invoiceNoRegex, "Invoice No", "alphanumeric with separators")
}
