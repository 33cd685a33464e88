package reqctx

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Null is how absent values are rendered.
const Null = "null"

// Entry is a single key/value pair of a RequestContext.
type Entry struct {
	Key   string
	Value string
}

// RequestContext is an immutable key/value mapping describing the environment
// an invocation runs in. Keys keep the position of their first insertion. The
// zero value is an empty context.
type RequestContext struct {
	entries []Entry
}

// New builds a RequestContext from alternating key/value arguments. A
// trailing key without a value is recorded as null.
func New(kv ...any) RequestContext {
	var rc RequestContext
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		var value any
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		rc = rc.Add(key, value)
	}
	return rc
}

// Add returns a copy of rc with key set to value. A key already present keeps
// its position and takes the new value; a new key is appended. A nil value is
// stored as "null".
func (rc RequestContext) Add(key string, value any) RequestContext {
	entries := make([]Entry, len(rc.entries), len(rc.entries)+1)
	copy(entries, rc.entries)
	e := Entry{Key: key, Value: render(value)}
	if i := rc.index(key); i >= 0 {
		entries[i] = e
	} else {
		entries = append(entries, e)
	}
	return RequestContext{entries: entries}
}

func (rc RequestContext) index(key string) int {
	for i, e := range rc.entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Entries returns a copy of the pairs in insertion order.
func (rc RequestContext) Entries() []Entry {
	out := make([]Entry, len(rc.entries))
	copy(out, rc.entries)
	return out
}

// Get returns the value for key.
func (rc RequestContext) Get(key string) (string, bool) {
	if i := rc.index(key); i >= 0 {
		return rc.entries[i].Value, true
	}
	return "", false
}

// Len returns the number of pairs.
func (rc RequestContext) Len() int {
	return len(rc.entries)
}

// IsEmpty reports whether rc has no pairs.
func (rc RequestContext) IsEmpty() bool {
	return len(rc.entries) == 0
}

// String renders "key: [value]" pairs joined by ", " in insertion order.
func (rc RequestContext) String() string {
	var b strings.Builder
	for i, e := range rc.entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Key)
		b.WriteString(": [")
		b.WriteString(e.Value)
		b.WriteString("]")
	}
	return b.String()
}

// Equal reports whether both contexts map the same keys to the same values.
// Insertion order does not take part.
func (rc RequestContext) Equal(other RequestContext) bool {
	if len(rc.entries) != len(other.entries) {
		return false
	}
	for _, e := range rc.entries {
		if v, ok := other.Get(e.Key); !ok || v != e.Value {
			return false
		}
	}
	return true
}

// Hash returns a hash of the full content, consistent with Equal: each pair
// is hashed on its own and the results are summed.
func (rc RequestContext) Hash() uint64 {
	var sum uint64
	d := xxhash.New()
	for _, e := range rc.entries {
		d.Reset()
		_, _ = d.WriteString(e.Key)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(e.Value)
		sum += d.Sum64()
	}
	return sum
}

// Provider supplies the RequestContext of the invocation running under ctx.
type Provider interface {
	RequestContext(ctx context.Context) (RequestContext, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (RequestContext, error)

// RequestContext implements Provider.
func (f ProviderFunc) RequestContext(ctx context.Context) (RequestContext, error) {
	return f(ctx)
}

// Empty is a Provider that always yields an empty context.
var Empty Provider = ProviderFunc(func(context.Context) (RequestContext, error) {
	return RequestContext{}, nil
})

// First returns a provider that asks each provider in turn and yields the
// first non-empty context. An error from any provider stops the search.
func First(providers ...Provider) Provider {
	return ProviderFunc(func(ctx context.Context) (RequestContext, error) {
		for _, p := range providers {
			rc, err := p.RequestContext(ctx)
			if err != nil {
				return RequestContext{}, err
			}
			if !rc.IsEmpty() {
				return rc, nil
			}
		}
		return RequestContext{}, nil
	})
}

func render(value any) string {
	if isNil(value) {
		return Null
	}
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
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
