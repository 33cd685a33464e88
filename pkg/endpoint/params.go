package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Source says where a parameter is read from.
type Source uint8

const (
	// SourcePath reads a chi URL parameter.
	SourcePath Source = iota
	// SourceQuery reads a query string value.
	SourceQuery
	// SourceHeader reads a request header.
	SourceHeader
	// SourceForm reads a form field.
	SourceForm
	// SourceBody decodes the JSON request body.
	SourceBody
	// SourceRaw reads the request body as a *Resource.
	SourceRaw
	// SourceFile reads a multipart file as an *Upload.
	SourceFile
)

func (s Source) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceQuery:
		return "query"
	case SourceHeader:
		return "header"
	case SourceForm:
		return "form"
	case SourceBody:
		return "body"
	case SourceRaw:
		return "raw body"
	case SourceFile:
		return "file"
	default:
		return "unknown"
	}
}

// payload reports whether parameters from s carry the full request body.
func (s Source) payload() bool {
	return s == SourceBody || s == SourceRaw
}

// ParamSpec declares one handler parameter.
type ParamSpec struct {
	// Name is the logged parameter name.
	Name string

	// Source is where the value comes from.
	Source Source

	// Key is the lookup key (URL param, query key, header, form field).
	// Defaults to Name.
	Key string

	// Required rejects requests where the value is absent.
	Required bool

	// Parse converts path, query, header and form strings. Without it the
	// value is passed as a string.
	Parse func(string) (any, error)

	// New returns the pointer a SourceBody parameter is decoded into.
	// Without it the body is decoded into a map[string]any.
	New func() any
}

func (p ParamSpec) key() string {
	if p.Key != "" {
		return p.Key
	}
	return p.Name
}

// Int parses a base-10 integer.
func Int(s string) (any, error) {
	return strconv.ParseInt(s, 10, 64)
}

// Bool parses a boolean.
func Bool(s string) (any, error) {
	return strconv.ParseBool(s)
}

// Input holds the bound parameter values of one request.
type Input struct {
	names  []string
	values []any
}

// NewInput builds an Input from alternating names and values. It is meant
// for calling handlers directly in tests.
func NewInput(kv ...any) *Input {
	in := &Input{}
	for i := 0; i+1 < len(kv); i += 2 {
		in.names = append(in.names, fmt.Sprint(kv[i]))
		in.values = append(in.values, kv[i+1])
	}
	return in
}

// Value returns the bound value of name, or nil.
func (in *Input) Value(name string) any {
	for i, n := range in.names {
		if n == name {
			return in.values[i]
		}
	}
	return nil
}

// String returns the value of name when it is a string.
func (in *Input) String(name string) string {
	s, _ := in.Value(name).(string)
	return s
}

// Int64 returns the value of name when it was parsed with Int.
func (in *Input) Int64(name string) int64 {
	n, _ := in.Value(name).(int64)
	return n
}

// File returns the upload bound to name.
func (in *Input) File(name string) *Upload {
	u, _ := in.Value(name).(*Upload)
	return u
}

// Raw returns the raw body bound to name.
func (in *Input) Raw(name string) *Resource {
	r, _ := in.Value(name).(*Resource)
	return r
}

// Arg returns the value of name as T.
func Arg[T any](in *Input, name string) (T, bool) {
	v, ok := in.Value(name).(T)
	return v, ok
}

// bind reads every declared parameter from r.
func bind(r *http.Request, specs []ParamSpec, maxUpload int64) (*Input, error) {
	in := &Input{
		names:  make([]string, len(specs)),
		values: make([]any, len(specs)),
	}
	for i, spec := range specs {
		v, err := bindOne(r, spec, maxUpload)
		if err != nil {
			return nil, &BindError{Param: spec.Name, Source: spec.Source, Err: err}
		}
		in.names[i] = spec.Name
		in.values[i] = v
	}
	return in, nil
}

func bindOne(r *http.Request, spec ParamSpec, maxUpload int64) (any, error) {
	switch spec.Source {
	case SourceBody:
		return bindBody(r, spec)
	case SourceRaw:
		return bindRaw(r, spec, maxUpload)
	case SourceFile:
		return bindFile(r, spec, maxUpload)
	}

	var raw string
	var present bool
	switch spec.Source {
	case SourcePath:
		raw = chi.URLParam(r, spec.key())
		present = raw != ""
	case SourceQuery:
		values := r.URL.Query()
		present = values.Has(spec.key())
		raw = values.Get(spec.key())
	case SourceHeader:
		raw = r.Header.Get(spec.key())
		present = raw != ""
	case SourceForm:
		if err := parseForm(r, maxUpload); err != nil {
			return nil, err
		}
		_, present = r.Form[spec.key()]
		raw = r.Form.Get(spec.key())
	default:
		return nil, fmt.Errorf("unsupported source %d", spec.Source)
	}

	if !present {
		if spec.Required {
			return nil, ErrMissing
		}
		return nil, nil
	}
	if spec.Parse == nil {
		return raw, nil
	}
	return spec.Parse(raw)
}

func bindBody(r *http.Request, spec ParamSpec) (any, error) {
	var dst any = &map[string]any{}
	if spec.New != nil {
		dst = spec.New()
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if spec.Required {
				return nil, ErrMissing
			}
			return nil, nil
		}
		return nil, err
	}

	if m, ok := dst.(*map[string]any); ok {
		return *m, nil
	}
	return dst, nil
}

func bindRaw(r *http.Request, spec ParamSpec, maxUpload int64) (any, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxUpload+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxUpload {
		return nil, fmt.Errorf("body exceeds %d bytes", maxUpload)
	}
	if len(data) == 0 && spec.Required {
		return nil, ErrMissing
	}
	return NewResource(data, r.Header.Get("Content-Type")), nil
}

func bindFile(r *http.Request, spec ParamSpec, maxUpload int64) (any, error) {
	if err := parseForm(r, maxUpload); err != nil {
		return nil, err
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File[spec.key()]) == 0 {
		if spec.Required {
			return nil, ErrMissing
		}
		return nil, nil
	}
	return &Upload{header: r.MultipartForm.File[spec.key()][0]}, nil
}

// parseForm parses url-encoded and multipart forms once per request.
func parseForm(r *http.Request, maxUpload int64) error {
	if r.Form != nil {
		return nil
	}
	err := r.ParseMultipartForm(maxUpload)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}
