// Package validation wraps validator/v10 with the guide's custom tags and
// converts failures into VALIDATION domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
	"github.com/visitgevgelija/guide-server/internal/i18n"
)

// MaxListingIDLength bounds favorite ids accepted from clients.
const MaxListingIDLength = 128

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the guide tags registered:
//
//	listingid  non-empty, printable, no whitespace, at most 128 bytes
//	lang       one of i18n.Languages
//	viewmode   app or web
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("listingid", func(fl validator.FieldLevel) bool {
		return ValidListingID(fl.Field().String())
	})
	_ = v.RegisterValidation("lang", func(fl validator.FieldLevel) bool {
		return i18n.Language(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("viewmode", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "app", "web":
			return true
		default:
			return false
		}
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err, "")
	}
	return nil
}

// Var validates a single value against tag; field names it in the details.
func (v *Validator) Var(field string, value any, tag string) error {
	if err := v.v.Var(value, tag); err != nil {
		return v.formatError(err, field)
	}
	return nil
}

// ValidListingID reports whether id is acceptable as a favorite.
func ValidListingID(id string) bool {
	if id == "" || len(id) > MaxListingIDLength {
		return false
	}
	for _, r := range id {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

func (v *Validator) formatError(err error, field string) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		name := e.Field()
		if name == "" {
			name = field
		}
		fieldErrors[name] = friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	case "listingid":
		return fmt.Sprintf("must be 1-%d printable characters without spaces", MaxListingIDLength)
	case "lang":
		langs := make([]string, len(i18n.Languages))
		for i, l := range i18n.Languages {
			langs[i] = string(l)
		}
		return "must be one of: " + strings.Join(langs, " ")
	case "viewmode":
		return "must be one of: app web"
	default:
		return "is invalid"
	}
}
