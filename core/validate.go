package core

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Validator lets a model carry its own validation rules. When implemented,
// the returned errors are merged with the tag-derived ones before any write.
type Validator interface {
	Validate() ValidationErrors
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks a model instance against the resource's tag-derived rules
// (required, max=N, email) and the model's own Validator implementation, if
// any. An empty result means the record may be written.
func (r *Resource) Validate(model any) ValidationErrors {
	errs := make(ValidationErrors)

	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	for i := range r.Fields {
		f := &r.Fields[i]
		if f.PrimaryKey {
			continue
		}
		field := v.FieldByName(f.Name)
		if !field.IsValid() {
			continue
		}

		if f.Required && field.IsZero() {
			errs.Add(f.JSONName, fmt.Sprintf("The %s field is required.", strings.ToLower(f.DisplayName)))
			continue
		}

		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			field = field.Elem()
		}
		if field.Kind() != reflect.String {
			continue
		}
		s := field.String()
		if f.MaxLen > 0 && len(s) > f.MaxLen {
			errs.Add(f.JSONName, fmt.Sprintf("The %s field may not be longer than %d characters.", strings.ToLower(f.DisplayName), f.MaxLen))
		}
		if f.Email && s != "" && !emailPattern.MatchString(s) {
			errs.Add(f.JSONName, fmt.Sprintf("The %s field must be a valid email address.", strings.ToLower(f.DisplayName)))
		}
	}

	if validator, ok := model.(Validator); ok {
		for field, messages := range validator.Validate() {
			errs[field] = append(errs[field], messages...)
		}
	}

	return errs
}
