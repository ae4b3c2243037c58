package core

import (
	"fmt"
	"reflect"
	"time"
)

// timeLayouts are the formats accepted when filling a time.Time field from a
// string value.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Fill mass-assigns caller-supplied data into a model instance. Only
// fillable fields are touched: primary keys, read-only fields, and keys that
// match no field are silently skipped, mirroring a safe-fill whitelist.
func (r *Resource) Fill(model any, data map[string]any) error {
	v := reflect.ValueOf(model)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("model must be a pointer to a struct, got %T", model)
	}
	elem := v.Elem()

	for key, value := range data {
		info := r.FieldByInput(key)
		if info == nil || !info.Fillable() {
			continue
		}
		field := elem.FieldByName(info.Name)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		if err := setField(field, value); err != nil {
			return fmt.Errorf("field %s: %w", info.Name, err)
		}
	}
	return nil
}

// setField assigns value to a struct field, converting across the small set
// of shapes JSON decoding and form parsing produce.
func setField(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	// Pointer fields receive the value through one level of indirection.
	if field.Kind() == reflect.Ptr {
		target := reflect.New(field.Type().Elem())
		if err := setField(target.Elem(), value); err != nil {
			return err
		}
		field.Set(target)
		return nil
	}

	val := reflect.ValueOf(value)

	// time.Time accepts time values and the common string layouts.
	if field.Type() == reflect.TypeOf(time.Time{}) {
		switch tv := value.(type) {
		case time.Time:
			field.Set(reflect.ValueOf(tv))
			return nil
		case string:
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, tv); err == nil {
					field.Set(reflect.ValueOf(t))
					return nil
				}
			}
			return fmt.Errorf("cannot parse %q as time", tv)
		}
	}

	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		// JSON numbers arrive as float64; refuse lossy float→int
		// conversions only when the value has a fractional part.
		if val.Kind() == reflect.Float64 && isIntKind(field.Kind()) {
			f := val.Float()
			if f != float64(int64(f)) {
				return fmt.Errorf("cannot assign %v to integer field", value)
			}
		}
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
