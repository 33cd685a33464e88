package serialize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"reflect"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ErrUnsupported is returned when a value cannot be rendered as JSON.
var ErrUnsupported = errors.New("unsupported value")

// VoidTypeName is the declared type name of calls that return nothing.
const VoidTypeName = "void"

// MockObject is logged for test doubles that cannot be encoded.
const MockObject = "Mock Object"

// Adapter renders values as JSON text for log messages. It never fails: when
// a value cannot be encoded it falls back to a short description, or to an
// empty string after logging a warning.
type Adapter struct {
	logger    *slog.Logger
	onFailure func(typeName string)
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithFailureHook registers fn to be called with the type name of every value
// the adapter could not render.
func WithFailureHook(fn func(typeName string)) Option {
	return func(a *Adapter) {
		a.onFailure = fn
	}
}

// New creates an Adapter that reports unrenderable values on logger.
func New(logger *slog.Logger, opts ...Option) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Serialize converts value to its logged form. declaredTypeName is the type
// the call site declared for value; it selects the void and mock shortcuts.
// The first rule that applies wins:
//
//  1. declared type "void" renders as "void"
//  2. compact JSON (protojson for protobuf messages)
//  3. declared type containing "mock" renders as "Mock Object"
//  4. values exposing a content length or size render as "file of size:[N B]"
//  5. anything else logs a warning and renders as ""
func (a *Adapter) Serialize(ctx context.Context, value any, declaredTypeName string) string {
	if strings.EqualFold(declaredTypeName, VoidTypeName) {
		return VoidTypeName
	}

	out, err := encode(value)
	if err == nil {
		return out
	}

	if strings.Contains(strings.ToLower(declaredTypeName), "mock") {
		return MockObject
	}

	if size, ok := fileSize(value); ok {
		return fmt.Sprintf("file of size:[%d B]", size)
	}

	typeName := TypeName(value)
	a.logger.WarnContext(ctx,
		fmt.Sprintf("Unable to process object of type %s for logging", typeName),
		slog.String("error", err.Error()),
	)
	if a.onFailure != nil {
		a.onFailure(typeName)
	}
	return ""
}

// TypeName returns the runtime type name of v, or "null" for nil.
func TypeName(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}

// encode marshals value as compact JSON without HTML escaping. A panic raised
// by a custom marshaler is reported as an error.
func encode(value any) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: marshaler panicked: %v", ErrUnsupported, r)
		}
	}()

	if msg, ok := value.(proto.Message); ok {
		return encodeProto(msg)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// encodeProto renders msg with its canonical JSON mapping. protojson output
// is compacted since its whitespace is not stable.
func encodeProto(msg proto.Message) (string, error) {
	data, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return buf.String(), nil
}

type contentLengther interface {
	ContentLength() int64
}

type sizer interface {
	Size() int64
}

func fileSize(value any) (int64, bool) {
	switch v := value.(type) {
	case *multipart.FileHeader:
		if v == nil {
			return 0, false
		}
		return v.Size, true
	case contentLengther:
		return v.ContentLength(), true
	case sizer:
		return v.Size(), true
	}
	return 0, false
}
