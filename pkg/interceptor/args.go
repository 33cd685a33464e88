package interceptor

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"mercator-hq/wiretap/pkg/serialize"
)

// formatArgs renders "name: [value]" for every parameter, joined by ", ".
// Scrubbed values are never serialized.
func (ic *Interceptor) formatArgs(ctx context.Context, call Call) string {
	parts := make([]string, len(call.Params))
	for i, p := range call.Params {
		parts[i] = p.Name + ": [" + ic.formatArg(ctx, call.Policy, p) + "]"
	}
	return strings.Join(parts, ", ")
}

func (ic *Interceptor) formatArg(ctx context.Context, policy ContentPolicy, p Param) string {
	if replaced, ok := ic.scrubber.Scrub(p.Name, p.Value); ok {
		ic.metrics.RecordScrubbed(p.Name)
		return rawString(replaced)
	}

	if policy.ConsumesStructured && p.Payload {
		return ic.serializer.Serialize(ctx, p.Value, serialize.TypeName(p.Value))
	}
	return rawString(p.Value)
}

// rawString is the unserialized form of a value: "null" for nil, the error
// message for errors, String() for Stringers and fmt formatting otherwise.
func rawString(v any) string {
	if isNil(v) {
		return "null"
	}
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
