package expr

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Reflect projects an in-memory record into a Value. Structs become
// dictionaries keyed by the `value` tag (lowercased field name when untagged);
// a tag of "-" hides the field from rules. Nil pointers render as the empty
// string, times as RFC 3339, slices recursively as lists.
func Reflect(v any) Value {
	return reflectValue(reflect.ValueOf(v))
}

func reflectValue(rv reflect.Value) Value {
	if !rv.IsValid() {
		return String("")
	}
	if rv.Type() == timeType {
		return String(rv.Interface().(time.Time).Format(time.RFC3339))
	}
	if v, ok := rv.Interface().(Value); ok {
		return v
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return String("")
		}
		return reflectValue(rv.Elem())
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Boolean(rv.Bool())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Numeral(rv.Uint())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Numeral(rv.Int())
	case reflect.Slice, reflect.Array:
		list := make(List, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			list = append(list, Lit{V: reflectValue(rv.Index(i))})
		}
		return list
	case reflect.Map:
		dict := Dictionary{}
		iter := rv.MapRange()
		for iter.Next() {
			dict[fmt.Sprint(iter.Key().Interface())] = reflectValue(iter.Value())
		}
		return dict
	case reflect.Struct:
		dict := Dictionary{}
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Tag.Get("value")
			if name == "-" {
				continue
			}
			if name == "" {
				name = strings.ToLower(f.Name)
			}
			dict[name] = reflectValue(rv.Field(i))
		}
		return dict
	default:
		return String(fmt.Sprint(rv.Interface()))
	}
}
