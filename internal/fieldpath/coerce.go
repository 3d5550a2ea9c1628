package fieldpath

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the canonical timestamp rendering used for search.
const TimeLayout = "2006-01-02T15:04:05.000Z"

var timeType = reflect.TypeOf(time.Time{})

// Members returns the elements of a slice or array value. Strings and byte
// slices are scalars, not lists.
func Members(v any) ([]any, bool) {
	switch v.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return v.([]any), true
	case []string:
		ss := v.([]string)
		out := make([]any, len(ss))
		for i, s := range ss {
			out[i] = s
		}
		return out, true
	}
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// String renders v for matching. Slices and arrays join their members with
// sep, maps flatten to their values in key order, structs to their exported
// field values, and times to TimeLayout in UTC. Nil renders as "".
func String(v any, sep string) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return formatTime(x)
	case *time.Time:
		if x == nil {
			return ""
		}
		return formatTime(*x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case json.Number:
		return x.String()
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}
	return stringValue(reflect.ValueOf(v), sep)
}

func stringValue(rv reflect.Value, sep string) string {
	rv = indirect(rv)
	if !rv.IsValid() {
		return ""
	}
	if rv.Type() == timeType {
		return formatTime(rv.Interface().(time.Time))
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if s := String(rv.Index(i).Interface(), sep); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, sep)
	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := String(rv.MapIndex(k).Interface(), sep); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, sep)
	case reflect.Struct:
		parts := make([]string, 0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			if !rv.Type().Field(i).IsExported() {
				continue
			}
			if s := String(rv.Field(i).Interface(), sep); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, sep)
	default:
		return fmt.Sprint(rv.Interface())
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Float coerces numbers and numeric strings. NaN, nil and anything
// non-numeric report false.
func Float(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		rv := indirect(reflect.ValueOf(v))
		if !rv.IsValid() {
			return 0, false
		}
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			return 0, false
		}
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var errNotTime = errors.New("not a time value")

// Time coerces time values, RFC 3339 and date-only strings, and millisecond
// epoch numbers. The zero time reports false.
func Time(v any) (time.Time, bool) {
	t, err := toTime(v)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case *time.Time:
		if x == nil {
			return time.Time{}, errNotTime
		}
		return *x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateTime, time.DateOnly} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		return time.Time{}, errNotTime
	}
	if f, ok := Float(v); ok {
		return time.UnixMilli(int64(f)).UTC(), nil
	}
	return time.Time{}, errNotTime
}
