package tool

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"time"

	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// ErrArgument is returned when an argument cannot be bound to a function parameter.
var ErrArgument = errors.New("invalid argument")

var errorType = reflect.TypeFor[error]()

// bindArguments decodes the named arguments into the positional parameters of fn.
// Missing arguments bind to the zero value of the parameter type.
func bindArguments(ctx context.Context, def Definition, arguments string) ([]reflect.Value, error) {
	typ := reflect.TypeOf(def.Function)
	args := gjson.Parse(arguments)
	start := firstArgument(typ)

	callArgs := make([]reflect.Value, 0, typ.NumIn())
	if start == 1 {
		callArgs = append(callArgs, reflect.ValueOf(ctx))
	}

	for i, name := range def.parameterNames() {
		paramType := typ.In(start + i)
		val := args.Get(gjson.Escape(name))
		if !val.Exists() {
			callArgs = append(callArgs, reflect.Zero(paramType))
			continue
		}

		target := reflect.New(paramType)
		if err := json.Unmarshal([]byte(val.Raw), target.Interface()); err != nil {
			return nil, fmt.Errorf("%w %q for %s: %w", ErrArgument, name, def.Name, err)
		}
		callArgs = append(callArgs, target.Elem())
	}
	return callArgs, nil
}

// callFunction invokes fn and renders its first return value as text.
// A trailing error return value is reported as the call error.
func callFunction(fn any, args []reflect.Value) (string, error) {
	val := reflect.ValueOf(fn)
	vtpe := val.Type()

	results := val.Call(args)
	if len(results) == 0 {
		return "", nil
	}

	if last := results[len(results)-1]; vtpe.Out(len(results)-1) == errorType {
		if !last.IsNil() {
			return "", last.Interface().(error)
		}
		results = results[:len(results)-1]
		if len(results) == 0 {
			return "", nil
		}
	}

	res := results[0]
	if !res.IsValid() || (res.Kind() == reflect.Interface || res.Kind() == reflect.Pointer) && res.IsNil() {
		return "", nil
	}

	switch v := res.Interface().(type) {
	case string:
		return v, nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(v).Float(), 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			slog.Error("failed to marshal function result", slogx.Error(err))
			return "", err
		}
		return string(b), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			slog.Error("failed to marshal function result", slogx.Error(err))
			return "", err
		}
		return string(b), nil
	}
}
