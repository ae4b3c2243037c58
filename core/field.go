package core

import (
	"reflect"
	"strconv"
	"strings"
)

// FieldInfo represents metadata about a struct field
type FieldInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	JSONName     string `json:"json_name"`
	DisplayName  string `json:"display_name"`
	DBColumnName string `json:"db_column_name,omitempty"`
	Required     bool   `json:"required"`
	ReadOnly     bool   `json:"read_only"`
	Searchable   bool   `json:"searchable"`
	Unique       bool   `json:"unique"`
	PrimaryKey   bool   `json:"primary_key"`
	MaxLen       int    `json:"max_len,omitempty"`
	Email        bool   `json:"email,omitempty"`
}

// Fillable reports whether caller-supplied data may be mass-assigned into
// the field. Primary keys and read-only fields never are.
func (f *FieldInfo) Fillable() bool {
	return !f.PrimaryKey && !f.ReadOnly
}

// getJSONTag extracts the JSON name from a struct field tag, falling back to
// the field name.
func getJSONTag(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "" {
		return field.Name
	}
	return tag
}

// getDBTag extracts the column name from a struct field's db tag. An empty
// result means "derive from the field name"; "-" marks the field as not
// backed by a column.
func getDBTag(field reflect.StructField) string {
	return field.Tag.Get("db")
}

// applyValidateTag parses the field's validate tag into rule flags on info.
// Supported rules: required, email, max=N.
func applyValidateTag(field reflect.StructField, info *FieldInfo) {
	tag := field.Tag.Get("validate")
	if tag == "" || tag == "-" {
		return
	}
	for _, rule := range strings.Split(tag, ",") {
		rule = strings.TrimSpace(rule)
		switch {
		case rule == "required":
			info.Required = true
		case rule == "email":
			info.Email = true
		case strings.HasPrefix(rule, "max="):
			if n, err := strconv.Atoi(strings.TrimPrefix(rule, "max=")); err == nil && n > 0 {
				info.MaxLen = n
			}
		}
	}
}

// applyCrudTag parses the field's crud tag. Supported options: pk, readonly,
// searchable, unique.
func applyCrudTag(field reflect.StructField, info *FieldInfo) {
	tag := field.Tag.Get("crud")
	if tag == "" {
		return
	}
	for _, opt := range strings.Split(tag, ",") {
		switch strings.TrimSpace(opt) {
		case "pk":
			info.PrimaryKey = true
		case "readonly":
			info.ReadOnly = true
		case "searchable":
			info.Searchable = true
		case "unique":
			info.Unique = true
		}
	}
}

// isPrimaryKeyField reports whether the struct field is the record's primary
// key: either named ID or tagged crud:"pk".
func isPrimaryKeyField(field reflect.StructField) bool {
	if field.Name == "ID" {
		return true
	}
	return strings.Contains(field.Tag.Get("crud"), "pk")
}
