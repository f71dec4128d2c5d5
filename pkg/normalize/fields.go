package normalize

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// fieldTag customises field snapshot keys: `view:"name"` renames a field and
// `view:"-"` hides it.
const fieldTag = "view"

// snapshot copies the exported fields of a struct (or pointer to struct) into
// a map. Untagged embedded structs are flattened into the parent.
func snapshot(rv reflect.Value) (map[string]any, bool) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	out := make(map[string]any, rv.NumField())
	collectFields(rv, out)
	return out, true
}

func collectFields(rv reflect.Value, out map[string]any) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name, skip := fieldName(field)
		if skip {
			continue
		}
		value := rv.Field(i)
		if name == "" {
			embedded := value
			for embedded.Kind() == reflect.Pointer && !embedded.IsNil() {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				collectFields(embedded, out)
				continue
			}
			name = field.Name
		}
		out[name] = value.Interface()
	}
}

func fieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get(fieldTag)
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" && !field.Anonymous {
		name = field.Name
	}
	return name, false
}

// formatScalar renders numbers with strconv rules, booleans as "true" or
// "false" and nil as the empty string.
func formatScalar(value any) string {
	if value == nil {
		return ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Complex64:
		return strconv.FormatComplex(rv.Complex(), 'g', -1, 64)
	case reflect.Complex128:
		return strconv.FormatComplex(rv.Complex(), 'g', -1, 128)
	}
	return fmt.Sprint(value)
}
