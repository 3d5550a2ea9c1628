// Package fieldpath reads values off arbitrary rows by dotted path and
// coerces them to the string, number and time forms the grid engine sorts,
// filters and searches on.
//
// A path is a sequence of segments separated by dots. Each segment selects a
// map key, a struct field (by Go name, then json tag, then case-insensitive
// name) or a slice index. A non-numeric segment applied to a slice maps the
// rest of the path over every element and collects the results, so
// "labels.name" on a row whose labels field is a slice of structs yields the
// names of all labels.
package fieldpath

import (
	"reflect"
	"strconv"
	"strings"
)

// Get returns the value at path inside v. An empty path returns v itself.
// The boolean is false when any segment is missing.
func Get(v any, path string) (any, bool) {
	if path == "" {
		return v, v != nil
	}
	return walk(reflect.ValueOf(v), strings.Split(path, "."))
}

// GetAll reads several paths and returns the values that resolved, in order.
func GetAll(v any, paths []string) []any {
	out := make([]any, 0, len(paths))
	for _, p := range paths {
		if got, ok := Get(v, p); ok {
			out = append(out, got)
		}
	}
	return out
}

func walk(rv reflect.Value, segs []string) (any, bool) {
	rv = indirect(rv)
	if !rv.IsValid() {
		return nil, false
	}
	if len(segs) == 0 {
		return rv.Interface(), true
	}
	seg := segs[0]

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return walk(mv, segs[1:])
	case reflect.Struct:
		fv, ok := field(rv, seg)
		if !ok {
			return nil, false
		}
		return walk(fv, segs[1:])
	case reflect.Slice, reflect.Array:
		if idx, err := strconv.Atoi(seg); err == nil {
			if idx < 0 || idx >= rv.Len() {
				return nil, false
			}
			return walk(rv.Index(idx), segs[1:])
		}
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if got, ok := walk(rv.Index(i), segs); ok {
				out = append(out, got)
			}
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}

// field resolves a struct field by exact name, json tag, then
// case-insensitive name. Unexported fields are never returned.
func field(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return rv.FieldByIndex(sf.Index), true
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if tag == name {
			return rv.Field(i), true
		}
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.IsExported() && strings.EqualFold(sf.Name, name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
