package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// TagUnitInterval validates numbers in [0,1], the range of every item score.
const TagUnitInterval = "unitinterval"

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() error {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}

	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return fmt.Errorf("register translations: %w", err)
	}

	if err := v.RegisterValidation(TagUnitInterval, unitInterval); err != nil {
		return fmt.Errorf("register %s: %w", TagUnitInterval, err)
	}
	return v.RegisterTranslation(TagUnitInterval, trans,
		func(t ut.Translator) error {
			return t.Add(TagUnitInterval, "{0} must be between 0 and 1", true)
		},
		func(t ut.Translator, fe govalidator.FieldError) string {
			msg, _ := t.T(TagUnitInterval, fe.Field())
			return msg
		},
	)
}

func unitInterval(fl govalidator.FieldLevel) bool {
	var f float64
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f = fl.Field().Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(fl.Field().Int())
	default:
		return false
	}
	return f >= 0 && f <= 1
}

// TranslateErrors maps a binding error to field name → message. Errors that are not
// validation errors, such as JSON syntax errors, land under "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans == nil {
				fields[fe.Field()] = fe.Error()
				continue
			}
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
