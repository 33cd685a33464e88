package serialize

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"mercator-hq/wiretap/pkg/telemetry/logging/logtest"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type failingMarshaler struct{}

func (failingMarshaler) MarshalJSON() ([]byte, error) {
	return nil, errors.New("boom")
}

type panickingMarshaler struct{}

func (panickingMarshaler) MarshalJSON() ([]byte, error) {
	panic("marshal exploded")
}

type MockRepository struct {
	Fn func()
}

type blob struct {
	n  int64
	Fn func()
}

func (b blob) ContentLength() int64 { return b.n }

type upload struct {
	n  int64
	Ch chan int
}

func (u upload) Size() int64 { return u.n }

func TestAdapter_Serialize(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		declared string
		want     string
	}{
		{name: "void marker", value: nil, declared: "void", want: "void"},
		{name: "void marker any case", value: "ignored", declared: "VOID", want: "void"},
		{name: "nil", value: nil, declared: "null", want: "null"},
		{name: "struct", value: user{ID: 1, Name: "ann"}, declared: "serialize.user", want: `{"id":1,"name":"ann"}`},
		{name: "string", value: "hello", declared: "string", want: `"hello"`},
		{name: "html not escaped", value: "<a&b>", declared: "string", want: `"<a&b>"`},
		{name: "slice", value: []int{1, 2, 3}, declared: "[]int", want: `[1,2,3]`},
		{name: "mock type", value: MockRepository{Fn: func() {}}, declared: "serialize.MockRepository", want: MockObject},
		{name: "content length", value: blob{n: 1024, Fn: func() {}}, declared: "serialize.blob", want: "file of size:[1024 B]"},
		{name: "size", value: upload{n: 2048, Ch: make(chan int)}, declared: "serialize.upload", want: "file of size:[2048 B]"},
		{name: "multipart header", value: &multipart.FileHeader{Filename: "a.png", Size: 512}, declared: "*multipart.FileHeader", want: `{"Filename":"a.png","Header":null,"Size":512}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := logtest.NewRecorder(slog.LevelDebug)
			a := New(rec.Logger())

			got := a.Serialize(context.Background(), tt.value, tt.declared)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, rec.Entries())
		})
	}
}

func TestAdapter_SerializeFailureWarns(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "channel", value: make(chan int)},
		{name: "marshaler error", value: failingMarshaler{}},
		{name: "marshaler panic", value: panickingMarshaler{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := logtest.NewRecorder(slog.LevelDebug)
			var failed []string
			a := New(rec.Logger(), WithFailureHook(func(typeName string) {
				failed = append(failed, typeName)
			}))

			got := a.Serialize(context.Background(), tt.value, TypeName(tt.value))
			assert.Empty(t, got)

			entries := rec.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, slog.LevelWarn, entries[0].Level)
			assert.Equal(t, "Unable to process object of type "+TypeName(tt.value)+" for logging", entries[0].Message)
			assert.Contains(t, entries[0].Attrs, "error")
			assert.Equal(t, []string{TypeName(tt.value)}, failed)
		})
	}
}

func TestAdapter_MockOnlyOnFailure(t *testing.T) {
	a := New(logtest.NewRecorder(nil).Logger())

	// Encodable values are serialized even when the declared type looks like a mock.
	got := a.Serialize(context.Background(), user{ID: 2}, "MockUser")
	assert.Equal(t, `{"id":2,"name":""}`, got)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "null", TypeName(nil))
	assert.Equal(t, "string", TypeName("x"))
	assert.Equal(t, "*serialize.user", TypeName(&user{}))
}

func TestAdapter_SerializeProtoMessages(t *testing.T) {
	a := New(logtest.NewRecorder(slog.LevelDebug).Logger())
	ctx := context.Background()

	assert.Equal(t, `"picard"`, a.Serialize(ctx, wrapperspb.String("picard"), "*wrapperspb.StringValue"))
	assert.Equal(t, `"42"`, a.Serialize(ctx, wrapperspb.Int64(42), "*wrapperspb.Int64Value"))

	st, err := structpb.NewStruct(map[string]any{"rank": "captain"})
	require.NoError(t, err)
	assert.Equal(t, `{"rank":"captain"}`, a.Serialize(ctx, st, "*structpb.Struct"))
}
