package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/creativehub/nexus/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterBindingValidators adds the custom tags used in request structs to
// gin's validator. Safe to call more than once.
func RegisterBindingValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding validator is not go-playground/validator")
			return
		}
		if err = v.RegisterValidation("username", validateUsername); err != nil {
			return
		}
		if err = v.RegisterValidation("mediatype", validateMediaType); err != nil {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
	})
	return err
}

func validateUsername(fl validator.FieldLevel) bool {
	return models.IsValidUsername(models.NormalizeUsername(fl.Field().String()))
}

func validateMediaType(fl validator.FieldLevel) bool {
	return models.IsValidMediaType(models.MediaType(strings.ToLower(fl.Field().String())))
}

// jsonFieldName reports fields by their JSON name so errors match the request body
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	}
	return name
}

// FirstFieldError turns a binding error into a field name and message.
// ok is false when err is not a validation failure (malformed JSON, for example).
func FirstFieldError(err error) (field, message string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", "", false
	}
	fe := verrs[0]
	field = fe.Field()
	switch fe.Tag() {
	case "required":
		message = "is required"
	case "email":
		message = "must be a valid email address"
	case "username":
		message = "must be 3-30 characters of a-z, 0-9, '_' or '.'"
	case "mediatype":
		message = "must be image or video"
	case "min":
		message = fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		message = fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		message = fmt.Sprintf("must be one of %s", fe.Param())
	default:
		message = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return field, message, true
}
