package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxNodeIDLength bounds node identifiers; lnd public keys are 66 hex chars.
const MaxNodeIDLength = 256

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// ErrInvalidNodeID is returned for empty or malformed node identifiers.
	ErrInvalidNodeID = errors.New("invalid node id")
)

func init() {
	validate = validator.New()
	// nodeid: printable, no whitespace, bounded length
	_ = validate.RegisterValidation("nodeid", func(fl validator.FieldLevel) bool {
		return ValidateNodeID(fl.Field().String()) == nil
	})
}

// Struct validates a struct using its `validate` tags.
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	return formatValidationError(validate.Struct(v))
}

// ValidateNodeID checks that id can serve as a graph node key.
func ValidateNodeID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidNodeID)
	}
	if len(id) > MaxNodeIDLength {
		return fmt.Errorf("%w: length %d exceeds %d", ErrInvalidNodeID, len(id), MaxNodeIDLength)
	}
	if strings.IndexFunc(id, func(r rune) bool { return unicode.IsSpace(r) || !unicode.IsPrint(r) }) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace or control characters", ErrInvalidNodeID, id)
	}
	return nil
}

// IsPubKey reports whether key looks like a compressed secp256k1 public key
// in hex, the format lnd uses for node identities.
func IsPubKey(key string) bool {
	if len(key) != 66 || (key[:2] != "02" && key[:2] != "03") {
		return false
	}
	for _, c := range key {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Errorf("%s: field is required", field))
		case "min", "gte":
			msgs = append(msgs, fmt.Errorf("%s: must be at least %s", field, param))
		case "max", "lte":
			msgs = append(msgs, fmt.Errorf("%s: must not exceed %s", field, param))
		case "oneof":
			msgs = append(msgs, fmt.Errorf("%s: must be one of [%s]", field, param))
		case "nodeid":
			msgs = append(msgs, fmt.Errorf("%s: %w", field, ErrInvalidNodeID))
		default:
			msgs = append(msgs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.Join(msgs...)
}
