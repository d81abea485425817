// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	apperrors "github.com/allisson/storesync/internal/errors"
)

var (
	// serialRegex matches ticket serials: fixed-width, digits only
	serialRegex = regexp.MustCompile(`^[0-9]{1,9}$`)

	// packNumberRegex matches the pack number printed on the barcode
	packNumberRegex = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Serial validates a ticket serial number such as "000" or "149"
var Serial = validation.NewStringRuleWithError(
	func(s string) bool {
		return serialRegex.MatchString(s)
	},
	validation.NewError("validation_serial_format", "must be a numeric serial of 1 to 9 digits"),
)

// PackNumber validates a pack number: letters, digits and dashes, no whitespace anywhere
var PackNumber = validation.NewStringRuleWithError(
	func(s string) bool {
		return packNumberRegex.MatchString(s)
	},
	validation.NewError("validation_pack_number_format", "must contain only letters, digits and dashes"),
)

// UUID validates that a string parses as a UUID
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid_format", "must be a valid UUID"),
)

// NotNilUUID validates that a uuid.UUID value is set
var NotNilUUID = validation.By(func(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return validation.NewError("validation_uuid_required", "cannot be blank")
	}
	return nil
})

// PositiveDecimal validates that a decimal value is greater than zero
var PositiveDecimal = validation.By(func(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return validation.NewError("validation_decimal_type", "must be a decimal")
	}
	if !d.IsPositive() {
		return validation.NewError("validation_decimal_positive", "must be greater than zero")
	}
	return nil
})

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
