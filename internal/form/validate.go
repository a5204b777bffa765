package form

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"jewelry/catalog/internal/domain"
	"jewelry/catalog/internal/slug"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// FieldErrors maps a field path ("name", "occasions[0].name") to its message
type FieldErrors map[string]string

// Fields returns the failing field paths in order
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError is returned by Submit when the form has field errors
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "invalid category: " + strings.Join(parts, "; ")
}

// Validate checks a payload. A blank name is reported alone.
func Validate(state domain.CategoryFormState) FieldErrors {
	if strings.TrimSpace(state.Name) == "" {
		return FieldErrors{"name": "Name is required"}
	}

	err := validate.Struct(state)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		out[path] = message(fe)
	}
	return out
}

// ValidateChanges is Validate limited to what differs from baseline, so a
// loaded category can be saved even when the server stored values the
// form rules would reject. The name is always checked.
func ValidateChanges(state, baseline domain.CategoryFormState) FieldErrors {
	errs := Validate(state)
	if len(errs) == 0 {
		return nil
	}

	current := reflect.ValueOf(state)
	loaded := reflect.ValueOf(baseline)
	for path := range errs {
		if path == "name" {
			continue
		}
		if unchanged(current, loaded, path) {
			delete(errs, path)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// unchanged compares the top-level field a path points into. For indexed
// paths like occasions[1].name only that element is compared.
func unchanged(current, loaded reflect.Value, path string) bool {
	key := path
	if i := strings.IndexAny(key, ".["); i >= 0 {
		key = key[:i]
	}

	a, ok := fieldByJSON(current, key)
	if !ok {
		return false
	}
	b, _ := fieldByJSON(loaded, key)

	open := strings.IndexByte(path, '[')
	if open < 0 || a.Kind() != reflect.Slice {
		return reflect.DeepEqual(a.Interface(), b.Interface())
	}

	end := strings.IndexByte(path[open:], ']')
	if end < 0 {
		return false
	}
	var idx int
	if _, err := fmt.Sscanf(path[open+1:open+end], "%d", &idx); err != nil {
		return false
	}
	if idx >= a.Len() || idx >= b.Len() {
		return false
	}
	return reflect.DeepEqual(a.Index(idx).Interface(), b.Index(idx).Interface())
}

func fieldByJSON(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0] == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "slug" {
			return "must contain at least one letter or digit"
		}
		return "must not be empty"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "uri":
		return "must be a URL or absolute path"
	case "slug":
		return "may only contain lowercase letters, digits and single hyphens"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
