package server

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"taskboard/internal/apperr"
)

var registerFieldNames sync.Once

// registerJSONFieldNames makes validation errors report json field names.
func registerJSONFieldNames() {
	registerFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes the request body into dst and translates decoding and
// binding failures into validation errors.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidInput, "Request body too large.", err)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation(apperr.CodeInvalidInput, describeFieldError(fe)).WithField(fe.Field())
	}
	return apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidInput, "Malformed request body.", err)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required: " + fe.Field() + "."
	case "email":
		return "Enter a valid email address."
	case "max":
		return "Ensure " + fe.Field() + " has at most " + fe.Param() + " characters."
	case "gt":
		return "Ensure " + fe.Field() + " is greater than " + fe.Param() + "."
	}
	return "Invalid value for " + fe.Field() + "."
}

// optionalID is a JSON user reference that tells an explicit null apart from
// an absent field.
type optionalID struct {
	Set   bool
	Value *int64
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return errors.New("user reference must be an integer or null")
	}
	o.Value = &id
	return nil
}
