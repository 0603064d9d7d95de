package httpx

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	isbn13Pattern   = regexp.MustCompile(`^\d{13}$`)
	patronIDPattern = regexp.MustCompile(`^\d{6}$`)
)

func init() {
	validate = validator.New()

	// Report failures under the wire name, not the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("isbn13", func(fl validator.FieldLevel) bool {
		return isbn13Pattern.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("patronid", func(fl validator.FieldLevel) bool {
		return patronIDPattern.MatchString(fl.Field().String())
	})
}

// ValidateStruct runs `validate` tags over a request struct and maps
// failures into response details.
func ValidateStruct(s interface{}) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var details []ErrorDetail
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		param := err.Param()

		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "isbn13":
			message = fmt.Sprintf("%s must be exactly 13 digits", field)
		case "patronid":
			message = fmt.Sprintf("%s must be exactly 6 digits", field)
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		details = append(details, ErrorDetail{
			Field:   field,
			Message: message,
		})
	}

	return details
}
