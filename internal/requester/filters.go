package requester

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
)

// Filters maps list filter keys to their values.
type Filters map[string]any

// EncodeFilters builds the query string for a list request, without the leading "?".
//
// Entries whose value is empty, zero, false or nil are left out entirely. This means a
// caller cannot filter on a literal 0 or false: "unset" and "zero" are the same thing
// here.
func EncodeFilters(filters Filters) string {
	if len(filters) == 0 {
		return ""
	}

	params := url.Values{}
	for key, value := range filters {
		s, ok := filterValue(value)
		if !ok {
			continue
		}
		params.Add(key, s)
	}
	return params.Encode()
}

// filterValue returns the string form of v, or false when v is falsy.
func filterValue(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Invalid:
		return "", false
	case reflect.String:
		s := rv.String()
		return s, s != ""
	case reflect.Bool:
		if !rv.Bool() {
			return "", false
		}
		return "true", true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		return strconv.FormatInt(n, 10), n != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		return strconv.FormatUint(n, 10), n != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == 0 || math.IsNaN(f) {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, rv.Type().Bits()), true
	}

	return fmt.Sprint(rv.Interface()), true
}
