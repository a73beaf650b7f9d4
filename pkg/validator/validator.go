package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	DateLayout         = "2006-01-02"
	ClockLayout        = "15:04"
	ClockSecondsLayout = "15:04:05"
)

var messages = map[string]string{
	"required":     "is required",
	"email":        "must be a valid email",
	"min":          "is too short",
	"max":          "is too long",
	"gte":          "is too small",
	"lte":          "is too large",
	"oneof":        "has an unsupported value",
	"uuid":         "must be a valid UUID",
	"isodate":      "must be a date in YYYY-MM-DD format",
	"clock":        "must be a time in HH:mm format",
	"clockseconds": "must be a time in HH:mm:ss format",
	"timezone":     "must be an IANA timezone",
}

// New returns a validator reading the same "binding" tags gin uses,
// with the scheduling tags registered.
func New() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Register adds the custom tags and reports json field names in errors.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"isodate":      layoutFunc(DateLayout),
		"clock":        layoutFunc(ClockLayout),
		"clockseconds": layoutFunc(ClockSecondsLayout),
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin installs the custom tags on gin's binding engine.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	return Register(v)
}

// layoutFunc requires the canonical form: time.Parse alone accepts "9:30"
// for "15:04".
func layoutFunc(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		t, err := time.Parse(layout, s)
		return err == nil && t.Format(layout) == s
	}
}

// Fields flattens validator errors into field -> message. ok is false
// when err carries no field errors.
func Fields(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed on %s", e.Tag())
		}
		fields[e.Field()] = msg
	}
	return fields, true
}
