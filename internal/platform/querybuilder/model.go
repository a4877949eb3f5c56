package querybuilder

import (
	"errors"
	"reflect"
	"strings"
	"sync"
)

var (
	errNilModel     = errors.New("querybuilder: model is nil")
	errNotStruct    = errors.New("querybuilder: model is not a struct")
	errNoDBColumns  = errors.New("querybuilder: model has no db columns")
	modelFieldCache sync.Map // reflect.Type -> []modelField
)

type modelField struct {
	index     int
	column    string
	omitEmpty bool
}

// InsertModel builds a single-row INSERT from the exported `db`-tagged fields
// of model. Fields tagged `db:"col,omitempty"` are skipped when zero so the
// column default applies.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}

func modelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, errNilModel
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, errNotStruct
	}

	fields := fieldsOf(value.Type())
	cols := make([]string, 0, len(fields))
	vals := make([]any, 0, len(fields))
	for _, f := range fields {
		fv := value.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		cols = append(cols, f.column)
		vals = append(vals, fv.Interface())
	}
	if len(cols) == 0 {
		return nil, nil, errNoDBColumns
	}
	return cols, vals, nil
}

func fieldsOf(typ reflect.Type) []modelField {
	if cached, ok := modelFieldCache.Load(typ); ok {
		return cached.([]modelField)
	}

	fields := make([]modelField, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, modelField{
			index:     i,
			column:    name,
			omitEmpty: strings.TrimSpace(opts) == "omitempty",
		})
	}
	modelFieldCache.Store(typ, fields)
	return fields
}
