package utils

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate  *validator.Validate
	sanitizer = bluemonday.StrictPolicy()

	panRegex     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadhaarRegex = regexp.MustCompile(`^[2-9][0-9]{11}$`)
	ifscRegex    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their form names so clients can highlight inputs.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	mustRegister("pan", func(fl validator.FieldLevel) bool { return ValidatePAN(fl.Field().String()) })
	mustRegister("aadhaar", func(fl validator.FieldLevel) bool { return ValidateAadhaar(fl.Field().String()) })
	mustRegister("ifsc", func(fl validator.FieldLevel) bool { return ValidateIFSC(fl.Field().String()) })
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ValidatePAN(pan string) bool {
	return panRegex.MatchString(pan)
}

func ValidateAadhaar(aadhaar string) bool {
	return aadhaarRegex.MatchString(aadhaar)
}

func ValidateIFSC(ifsc string) bool {
	return ifscRegex.MatchString(ifsc)
}

// StripSpaces removes every whitespace rune, not just the ends.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// DigitsOnly drops every non-digit rune.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// SanitizeString trims input and strips any markup from it, including markup
// that only appears once entities are decoded. The result is a fixed point:
// SanitizeString(SanitizeString(s)) == SanitizeString(s).
func SanitizeString(input string) string {
	out := sanitizeOnce(input)
	for {
		next := sanitizeOnce(out)
		if next == out || len(next) >= len(out) {
			return next
		}
		out = next
	}
}

func sanitizeOnce(s string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(strings.TrimSpace(s))))
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("invalid date")
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ValidDateOfBirth reports whether dob is no earlier than 1900 and not after
// today's date.
func ValidDateOfBirth(dob, now time.Time) bool {
	if dob.Year() < 1900 {
		return false
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !dob.After(today)
}

func FormatValidationError(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fields
	}

	for _, fieldError := range validationErrors {
		field := fieldError.Field()
		switch fieldError.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "min":
			fields[field] = fmt.Sprintf("%s must be at least %s characters", field, fieldError.Param())
		case "max":
			fields[field] = fmt.Sprintf("%s must be at most %s characters", field, fieldError.Param())
		case "len":
			fields[field] = fmt.Sprintf("%s must be exactly %s characters", field, fieldError.Param())
		case "pan":
			fields[field] = "Invalid PAN Card number format"
		case "aadhaar":
			fields[field] = "Invalid Aadhaar number (12 digits)"
		case "ifsc":
			fields[field] = "Invalid IFSC Code"
		default:
			fields[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return fields
}
