// Package validation checks request payloads before they reach services.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"productapi/internal/models"

	"github.com/go-playground/validator/v10"
)

// Error codes reported per field.
const (
	CodeRequired      = "Required"
	CodeTooLong       = "TooLong"
	CodeInvalidFormat = "InvalidFormat"
	CodeInvalidType   = "InvalidType"
	CodeOutOfRange    = "OutOfRange"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ErrInvalidBody is returned when the payload is not a JSON object.
var ErrInvalidBody = errors.New("request body must be a JSON object")

// FieldError describes one rule a field failed.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors is an ordered list of field failures.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Code)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// productFields fixes the order errors are reported in.
var productFields = []string{"name", "slug", "quantity"}

var messages = map[string]map[string]string{
	"name": {
		CodeRequired:    "Name is required",
		CodeTooLong:     "Name too long",
		CodeInvalidType: "Name must be a string",
	},
	"slug": {
		CodeRequired:      "Slug is required",
		CodeInvalidFormat: "Slug must be a valid slug",
		CodeInvalidType:   "Slug must be a string",
	},
	"quantity": {
		CodeInvalidType: "Quantity must be a non-negative integer",
		CodeOutOfRange:  "Quantity must be a non-negative integer",
	},
}

// tagCodes maps validator tags onto error codes.
var tagCodes = map[string]string{
	"required": CodeRequired,
	"max":      CodeTooLong,
	"slug":     CodeInvalidFormat,
	"gte":      CodeOutOfRange,
	"email":    CodeInvalidFormat,
	"maxbytes": CodeTooLong,
}

// ProductValidator validates product payloads.
type ProductValidator struct {
	validate *validator.Validate
}

// NewProductValidator creates a validator with the slug rule registered.
func NewProductValidator() *ProductValidator {
	return &ProductValidator{validate: newValidate()}
}

// newValidate reports fields by their json names and knows the slug rule.
func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	})
	// maxbytes bounds the encoded length; max counts runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// IsSlug reports whether s is lowercase alphanumeric tokens joined by single hyphens.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Parse decodes body into a ProductInput and checks every field.
// It returns ErrInvalidBody when body is not a JSON object, or Errors
// listing all violations in name, slug, quantity order.
func (v *ProductValidator) Parse(body []byte) (models.ProductInput, error) {
	var input models.ProductInput

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return input, ErrInvalidBody
	}

	// decodeErrs holds the code of fields that could not be decoded.
	decodeErrs := map[string]string{}
	var ok bool
	if input.Name, ok = decodeString(raw["name"]); !ok {
		decodeErrs["name"] = CodeInvalidType
	}
	if input.Slug, ok = decodeString(raw["slug"]); !ok {
		decodeErrs["slug"] = CodeInvalidType
	}
	var code string
	if input.Quantity, code = decodeInt(raw["quantity"]); code != "" {
		decodeErrs["quantity"] = code
	}

	// Fields that failed decoding hold zero values; their rule errors are
	// dropped below in favour of the decode error.
	var ruleErrs validator.ValidationErrors
	if err := v.validate.Struct(input); err != nil {
		if !errors.As(err, &ruleErrs) {
			return input, fmt.Errorf("validate product: %w", err)
		}
	}

	var errs Errors
	for _, field := range productFields {
		if code, failed := decodeErrs[field]; failed {
			errs = append(errs, newFieldError(field, code))
			continue
		}
		for _, fe := range ruleErrs {
			if fe.Field() == field {
				errs = append(errs, newFieldError(field, tagCodes[fe.Tag()]))
			}
		}
	}
	if len(errs) > 0 {
		return input, errs
	}
	return input, nil
}

func newFieldError(field, code string) FieldError {
	return FieldError{Field: field, Code: code, Message: messages[field][code]}
}

// decodeString treats a missing or null field as empty; any non-string
// JSON value is a type error.
func decodeString(raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeInt accepts only JSON integer literals. Integers that do not fit
// an int are OutOfRange; anything else that is not an integer is
// InvalidType.
func decodeInt(raw json.RawMessage) (int, string) {
	if isAbsent(raw) {
		return 0, CodeInvalidType
	}
	n, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, strconv.IntSize)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, CodeOutOfRange
		}
		return 0, CodeInvalidType
	}
	return int(n), ""
}

func isAbsent(raw json.RawMessage) bool {
	return raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
