package tool

import (
	"reflect"
	"runtime"
	"strings"
)

func isFunction(fn any) bool {
	if fn == nil {
		return false
	}
	return reflect.TypeOf(fn).Kind() == reflect.Func
}

func functionName(fn any) string {
	if !isFunction(fn) {
		return ""
	}

	val := reflect.ValueOf(fn)
	typ := val.Type()

	// named function types keep their type name
	if typ.Name() != "" {
		return typ.String()
	}
	if f := runtime.FuncForPC(val.Pointer()); f != nil {
		name := f.Name()
		if lastDot := strings.LastIndex(name, "."); lastDot >= 0 {
			name = name[lastDot+1:]
		}
		return strings.TrimSuffix(name, "-fm")
	}
	return typ.String()
}
