package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// report json field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("isodatetime", isISODatetime)
}

// Validate struct fields. Keys are json paths relative to v, e.g. "context.stepCount".
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range verrs {
		errors[fieldPath(err.Namespace())] = err.Tag()
	}
	return errors
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// isISODatetime accepts UTC RFC 3339 timestamps with optional fractional seconds.
func isISODatetime(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := ParseISODatetime(s)
	return err == nil
}

// ParseISODatetime parses a UTC timestamp such as 2024-01-02T19:05:00.000Z.
// Offsets other than Z and surrounding whitespace are rejected.
func ParseISODatetime(s string) (time.Time, error) {
	if !strings.HasSuffix(s, "Z") {
		return time.Time{}, fmt.Errorf("datetime %q must end in Z", s)
	}
	return time.Parse(time.RFC3339Nano, s)
}
