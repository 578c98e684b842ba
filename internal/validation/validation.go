package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violations maps a field name to an error code usable in templates and
// JSON responses ("required", "email", "oneof", ...).
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var validate = newValidator()

func newValidator() *validator.Validate {
	va := validator.New()
	// Report JSON tag names in errors instead of Go struct field names.
	va.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return va
}

// Struct validates a tagged struct and returns field violations keyed by
// JSON name. A nil error from the validator yields an empty map.
func Struct(s any) Violations {
	v := Violations{}
	err := validate.Struct(s)
	if err == nil {
		return v
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		v["_"] = "invalid"
		return v
	}
	for _, fe := range errs {
		v[fe.Field()] = fe.Tag()
	}
	return v
}

// Required records a violation when value is blank.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Email records a violation when value is not a plausible email address.
func Email(field, value string, v Violations) {
	if err := validate.Var(value, "required,email"); err != nil {
		v[field] = "email"
	}
}

// IntIn records a violation when val is outside the allowed set.
func IntIn(field string, val int, allowed []int, v Violations) {
	for _, a := range allowed {
		if val == a {
			return
		}
	}
	v[field] = "out_of_range"
}
