package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	initOnce sync.Once

	privKeyPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)
)

// Init hooks into gin's validator: field names are reported by their JSON
// tag and the privkey tag is registered.
func Init() {
	initOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		validate = v
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("privkey", func(fl validator.FieldLevel) bool {
			return privKeyPattern.MatchString(fl.Field().String())
		})
	})
}

// IsValidationError reports whether err came from struct tag validation
// rather than from decoding the body.
func IsValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// GetErrorMsg translates validation errors into user-friendly messages.
// Field values are never echoed, since some fields carry private keys.
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var errMsgs []string
		for _, e := range validationErrors {
			field := e.Field()
			param := e.Param()

			switch e.Tag() {
			case "required":
				errMsgs = append(errMsgs, fmt.Sprintf("%s is required", field))
			case "min":
				errMsgs = append(errMsgs, fmt.Sprintf("%s must be at least %s", field, param))
			case "max":
				errMsgs = append(errMsgs, fmt.Sprintf("%s must be at most %s", field, param))
			case "oneof":
				errMsgs = append(errMsgs, fmt.Sprintf("%s must be one of [%s]", field, param))
			case "eth_addr":
				errMsgs = append(errMsgs, fmt.Sprintf("%s must be a 0x-prefixed 20-byte hex address", field))
			case "privkey":
				errMsgs = append(errMsgs, fmt.Sprintf("%s must be a 32-byte hex private key", field))
			default:
				errMsgs = append(errMsgs, fmt.Sprintf("%s failed %s validation", field, e.Tag()))
			}
		}
		return strings.Join(errMsgs, "; ")
	}
	return "invalid request body"
}
