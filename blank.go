package omegacache

import (
	"bytes"
	"reflect"
	"strings"
)

// Blanker lets a value type decide whether it counts as "not found".
type Blanker interface {
	IsBlank() bool
}

// IsBlank reports whether v is treated as absent: nil (including typed nil
// pointers, maps, slices, interfaces, funcs and chans), a whitespace-only
// string or byte slice, or a Blanker reporting true.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return true
		}
	case reflect.Slice:
		if rv.IsNil() {
			return true
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return len(bytes.TrimSpace(rv.Bytes())) == 0
		}
	case reflect.String:
		return strings.TrimSpace(rv.String()) == ""
	}
	if b, ok := v.(Blanker); ok {
		return b.IsBlank()
	}
	return false
}
