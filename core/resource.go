package core

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
)

// RelationKind tags the supported relation shapes.
type RelationKind int

const (
	// HasMany links a parent record to the child rows whose foreign-key
	// column equals the parent's primary key.
	HasMany RelationKind = iota + 1
	// BelongsTo links a child record to the parent row whose primary key
	// equals the child's foreign-key column.
	BelongsTo
)

// Relation describes an eager-loadable association between two resources.
type Relation struct {
	Kind       RelationKind
	Related    *Resource
	Field      string // struct field on this resource's model to assign into
	ForeignKey string // column on the child side of the association
}

// Resource represents a registered model with its persistence metadata
type Resource struct {
	Name        string              `json:"name"`
	DisplayName string              `json:"display_name"`
	PluralName  string              `json:"plural_name"`
	Model       any                 `json:"-"`
	ModelType   reflect.Type        `json:"-"`
	Fields      []FieldInfo         `json:"fields"`
	PrimaryKey  string              `json:"primary_key"` // struct field name
	TableName   string              `json:"table_name"`
	CreatedAt   string              `json:"created_at_field"` // struct field name, empty if none
	Relations   map[string]Relation `json:"-"`
	DefaultSort SortField           `json:"default_sort"`
}

// NewResource registers a model struct and discovers its fields. model must
// be a pointer to a struct.
func NewResource(model any) (*Resource, error) {
	t := reflect.TypeOf(model)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a pointer to a struct, got %T", model)
	}

	name := t.Elem().Name()
	r := &Resource{
		Name:        name,
		DisplayName: name,
		PluralName:  name + "s",
		Model:       model,
		ModelType:   t,
		Relations:   make(map[string]Relation),
	}
	if err := r.discoverFields(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNewResource is NewResource that panics on error, for registration at
// program startup.
func MustNewResource(model any) *Resource {
	r, err := NewResource(model)
	if err != nil {
		panic(err)
	}
	return r
}

// WithTableName overrides the derived table name.
func (r *Resource) WithTableName(name string) *Resource {
	r.TableName = name
	return r
}

// WithDisplayName overrides the display and plural names.
func (r *Resource) WithDisplayName(singular, plural string) *Resource {
	r.DisplayName = singular
	r.PluralName = plural
	return r
}

// WithDefaultSort explicitly configures the default sort order.
func (r *Resource) WithDefaultSort(field string, direction SortDirection) *Resource {
	r.DefaultSort = SortField{Field: field, Direction: direction, Precedence: SortPrecedenceExplicit}
	return r
}

// WithRelation registers a named relation for eager loading. For HasMany the
// foreign key is a column on the related resource; for BelongsTo it is a
// column on this resource. field names the struct field the loaded records
// are assigned into.
func (r *Resource) WithRelation(name string, kind RelationKind, related *Resource, field, foreignKey string) *Resource {
	r.Relations[name] = Relation{Kind: kind, Related: related, Field: field, ForeignKey: foreignKey}
	return r
}

// discoverFields extracts field information from the struct using reflection
func (r *Resource) discoverFields() error {
	t := r.ModelType.Elem()
	r.Fields = make([]FieldInfo, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		// Fields without a column never reach the database (relation
		// targets, computed values).
		if getDBTag(field) == "-" {
			continue
		}

		info := FieldInfo{
			Name:         field.Name,
			Type:         field.Type.String(),
			JSONName:     getJSONTag(field),
			DisplayName:  field.Name,
			DBColumnName: getDBTag(field),
		}
		applyCrudTag(field, &info)
		applyValidateTag(field, &info)

		if isPrimaryKeyField(field) && r.PrimaryKey == "" {
			info.PrimaryKey = true
			info.ReadOnly = true
			r.PrimaryKey = field.Name
		}
		if r.CreatedAt == "" && isCreatedAtField(field) {
			r.CreatedAt = field.Name
		}

		r.Fields = append(r.Fields, info)
	}

	if r.PrimaryKey == "" {
		return fmt.Errorf("model %s has no primary key field (name it ID or tag it crud:\"pk\")", r.Name)
	}
	return nil
}

// isCreatedAtField reports whether the field carries the record's creation
// timestamp.
func isCreatedAtField(field reflect.StructField) bool {
	if field.Type != reflect.TypeOf(time.Time{}) {
		return false
	}
	name := strings.ToLower(field.Name)
	return name == "createdat" || name == "created_at"
}

// GetEffectiveDefaultSort returns the effective default sort for this
// resource following the precedence hierarchy: Explicit > CreatedAt > ID
func (r *Resource) GetEffectiveDefaultSort() SortField {
	if r.DefaultSort.Precedence == SortPrecedenceExplicit {
		return r.DefaultSort
	}
	if r.CreatedAt != "" {
		return SortField{Field: r.CreatedAt, Direction: SortDesc, Precedence: SortPrecedenceAutoCreatedAt}
	}
	return SortField{Field: r.PrimaryKey, Direction: SortAsc, Precedence: SortPrecedenceAutoID}
}

// GetColumnName resolves a struct field name to its database column name,
// honoring db tags and falling back to snake_case. Names that match no field
// are treated as literal column names.
func (r *Resource) GetColumnName(fieldName string) string {
	for i := range r.Fields {
		f := &r.Fields[i]
		if f.Name == fieldName || f.JSONName == fieldName {
			if f.DBColumnName != "" {
				return f.DBColumnName
			}
			return strcase.ToSnake(f.Name)
		}
	}
	return fieldName
}

// PrimaryKeyColumn returns the database column of the primary key.
func (r *Resource) PrimaryKeyColumn() string {
	return r.GetColumnName(r.PrimaryKey)
}

// CreatedAtColumn returns the database column of the creation timestamp, or
// "created_at" when the model declares none.
func (r *Resource) CreatedAtColumn() string {
	if r.CreatedAt == "" {
		return "created_at"
	}
	return r.GetColumnName(r.CreatedAt)
}

// FieldByInput finds the field addressed by a caller-supplied key, matching
// the struct field name, the JSON name, or the database column name.
func (r *Resource) FieldByInput(key string) *FieldInfo {
	for i := range r.Fields {
		f := &r.Fields[i]
		if f.Name == key || f.JSONName == key {
			return f
		}
		column := f.DBColumnName
		if column == "" {
			column = strcase.ToSnake(f.Name)
		}
		if column == key {
			return f
		}
	}
	return nil
}

// RouteName returns the URL path segment for this resource.
func (r *Resource) RouteName() string {
	return strcase.ToKebab(r.PluralName)
}

// DeriveTableName returns the configured table name, or the snake_case
// plural of the model name.
func (r *Resource) DeriveTableName() string {
	if r.TableName != "" {
		return r.TableName
	}
	return strcase.ToSnake(r.ModelType.Elem().Name()) + "s"
}

// NewModel returns a freshly allocated instance of the resource's model.
func (r *Resource) NewModel() any {
	return reflect.New(r.ModelType.Elem()).Interface()
}

// PrimaryKeyValue extracts the primary-key value from a model instance.
func (r *Resource) PrimaryKeyValue(model any) any {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	f := v.FieldByName(r.PrimaryKey)
	if !f.IsValid() {
		return nil
	}
	return f.Interface()
}

// CreatedAtValue extracts the creation timestamp from a model instance.
func (r *Resource) CreatedAtValue(model any) (time.Time, bool) {
	if r.CreatedAt == "" {
		return time.Time{}, false
	}
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	f := v.FieldByName(r.CreatedAt)
	if !f.IsValid() {
		return time.Time{}, false
	}
	t, ok := f.Interface().(time.Time)
	return t, ok
}
