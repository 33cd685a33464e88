package interceptor

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/wiretap/pkg/reqctx"
	"mercator-hq/wiretap/pkg/scrub"
	"mercator-hq/wiretap/pkg/telemetry/logging/logtest"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

type user struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type unencodable struct {
	Ch chan int
}

type MockService struct {
	Name string `json:"name"`
}

type recordingMetrics struct {
	mu            sync.Mutex
	invocations   []string
	scrubbed      []string
	stageFailures []string
	serialization []string
}

func (m *recordingMetrics) RecordInvocation(method, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invocations = append(m.invocations, method+":"+outcome)
}

func (m *recordingMetrics) RecordScrubbed(param string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrubbed = append(m.scrubbed, param)
}

func (m *recordingMetrics) RecordLoggingFailure(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageFailures = append(m.stageFailures, stage)
}

func (m *recordingMetrics) RecordSerializationFailure(typeName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.serialization = append(m.serialization, typeName)
}

var pickardContext = reqctx.New(
	"url", "https://www.example.com",
	"username", "Jean-Luc Picard",
)

func newTestInterceptor(t *testing.T, level slog.Level, provider reqctx.Provider) (*Interceptor, *logtest.Recorder, *recordingMetrics) {
	t.Helper()
	rec := logtest.NewRecorder(level)
	metrics := &recordingMetrics{}
	if provider == nil {
		provider = reqctx.Empty
	}
	ic := New(Options{
		Logger:   rec.Logger(),
		Scrubber: scrub.NewDefault(),
		Context:  provider,
		Metrics:  metrics,
		Clock:    fixedClock{t: time.Unix(0, 0)},
	})
	return ic, rec, metrics
}

func staticContext(rc reqctx.RequestContext) reqctx.Provider {
	return reqctx.ProviderFunc(func(context.Context) (reqctx.RequestContext, error) {
		return rc, nil
	})
}

func returning(v any) ProceedFunc {
	return func(context.Context) (any, error) { return v, nil }
}

func TestInvoke_GetUserScenario(t *testing.T) {
	ic, rec, metrics := newTestInterceptor(t, slog.LevelDebug, staticContext(pickardContext))

	call := Call{
		Name:    "getUser",
		Params:  []Param{{Name: "userId", Value: 1}},
		Returns: Typed("user"),
		Policy:  ContentPolicy{ProducesStructured: true},
	}
	want := user{ID: 1, Email: "foobar@example.com", Password: "password"}

	got, err := ic.Invoke(context.Background(), call, returning(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Equal(t, []string{
		"INFO getUser() called with arguments: userId: [1] called via url: [https://www.example.com], username: [Jean-Luc Picard]",
		"INFO getUser() took [0 ms] to complete",
		`INFO getUser() returned: [{"id":1,"email":"foobar@example.com","password":"password"}]`,
	}, rec.Lines())
	assert.Equal(t, []string{"getUser:success"}, metrics.invocations)
}

func TestInvoke_ArgumentsInDeclarationOrder(t *testing.T) {
	ic, rec, _ := newTestInterceptor(t, slog.LevelInfo, nil)

	call := Call{
		Name: "search",
		Params: []Param{
			{Name: "query", Value: "go"},
			{Name: "page", Value: 2},
			{Name: "size", Value: 50},
			{Name: "sort", Value: nil},
		},
		Returns: Void(),
	}

	_, err := ic.Invoke(context.Background(), call, returning(nil))
	require.NoError(t, err)

	assert.Equal(t, "search() called with arguments: query: [go], page: [2], size: [50], sort: [null]", rec.Messages()[0])
}

func TestInvoke_MessageShapes(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
		rc     reqctx.RequestContext
		want   string
	}{
		{
			name:   "no params with context",
			params: nil,
			rc:     reqctx.New("url", "/ping"),
			want:   "ping() called via url: [/ping]",
		},
		{
			name:   "params without context",
			params: []Param{{Name: "id", Value: 3}},
			want:   "ping() called with arguments: id: [3]",
		},
		{
			name: "no params no context",
			want: "ping()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic, rec, _ := newTestInterceptor(t, slog.LevelInfo, staticContext(tt.rc))

			_, err := ic.Invoke(context.Background(), Call{Name: "ping", Params: tt.params, Returns: Void()}, returning(nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Messages()[0])
		})
	}
}

func TestInvoke_Scrubbing(t *testing.T) {
	ic, rec, metrics := newTestInterceptor(t, slog.LevelInfo, nil)
	require.NoError(t, ic.Scrubber().SetBlacklistPattern("pass.*"))

	call := Call{
		Name: "login",
		Params: []Param{
			{Name: "username", Value: "alice"},
			{Name: "password", Value: map[string]string{"raw": "hunter2"}, Payload: true},
		},
		Returns: Typed("bool"),
		Policy:  ContentPolicy{ConsumesStructured: true},
	}

	_, err := ic.Invoke(context.Background(), call, returning(true))
	require.NoError(t, err)

	// Matched by both the name set and the pattern, replaced exactly once and
	// never serialized.
	assert.Equal(t, "login() called with arguments: username: [alice], password: [xxxxx]", rec.Messages()[0])
	assert.Equal(t, []string{"password"}, metrics.scrubbed)
}

func TestInvoke_ScrubbingCustomReplacementAndDisabled(t *testing.T) {
	ic, rec, _ := newTestInterceptor(t, slog.LevelInfo, nil)
	call := Call{Name: "login", Params: []Param{{Name: "password", Value: "hunter2"}}, Returns: Void()}

	ic.Scrubber().SetReplacement("#####")
	_, err := ic.Invoke(context.Background(), call, returning(nil))
	require.NoError(t, err)
	assert.Equal(t, "login() called with arguments: password: [#####]", rec.Messages()[0])

	rec.Reset()
	ic.Scrubber().SetEnabled(false)
	_, err = ic.Invoke(context.Background(), call, returning(nil))
	require.NoError(t, err)
	assert.Equal(t, "login() called with arguments: password: [hunter2]", rec.Messages()[0])
}

func TestInvoke_ResultsAreNotScrubbed(t *testing.T) {
	ic, rec, _ := newTestInterceptor(t, slog.LevelDebug, nil)

	call := Call{Name: "reveal", Returns: Typed("string")}
	_, err := ic.Invoke(context.Background(), call, returning("password"))
	require.NoError(t, err)

	assert.Equal(t, "reveal() returned: [password]", rec.Messages()[2])
}

func TestInvoke_PayloadSerialization(t *testing.T) {
	value := user{ID: 9, Email: "a@b.c"}

	tests := []struct {
		name    string
		policy  ContentPolicy
		payload bool
		want    string
	}{
		{
			name:    "structured payload",
			policy:  ContentPolicy{ConsumesStructured: true},
			payload: true,
			want:    `body: [{"id":9,"email":"a@b.c","password":""}]`,
		},
		{
			name:    "structured but scalar param",
			policy:  ContentPolicy{ConsumesStructured: true},
			payload: false,
			want:    "body: [{9 a@b.c }]",
		},
		{
			name:    "payload but unstructured",
			policy:  ContentPolicy{},
			payload: true,
			want:    "body: [{9 a@b.c }]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic, rec, _ := newTestInterceptor(t, slog.LevelInfo, nil)
			call := Call{
				Name:    "create",
				Params:  []Param{{Name: "body", Value: value, Payload: tt.payload}},
				Returns: Void(),
				Policy:  tt.policy,
			}

			_, err := ic.Invoke(context.Background(), call, returning(nil))
			require.NoError(t, err)
			assert.Equal(t, "create() called with arguments: "+tt.want, rec.Messages()[0])
		})
	}
}

func TestInvoke_SameSerializationForArgumentAndResult(t *testing.T) {
	ic, rec, _ := newTestInterceptor(t, slog.LevelDebug, nil)
	value := user{ID: 5, Email: "<x@y.z>"}

	call := Call{
		Name:    "echo",
		Params:  []Param{{Name: "u", Value: value, Payload: true}},
		Returns: Typed(""),
		Policy:  ContentPolicy{ProducesStructured: true, ConsumesStructured: true},
	}
	_, err := ic.Invoke(context.Background(), call, returning(value))
	require.NoError(t, err)

	msgs := rec.Messages()
	const encoded = `{"id":5,"email":"<x@y.z>","password":""}`
	assert.Equal(t, "echo() called with arguments: u: ["+encoded+"]", msgs[0])
	assert.Equal(t, "echo() returned: ["+encoded+"]", msgs[2])
}

func TestInvoke_ReturnedLine(t *testing.T) {
	tests := []struct {
		name    string
		returns ReturnType
		policy  ContentPolicy
		result  any
		want    string
	}{
		{name: "void", returns: Void(), policy: ContentPolicy{ProducesStructured: true}, want: "returned: [void]"},
		{name: "void unstructured", returns: Void(), result: "ignored", want: "returned: [void]"},
		{name: "typed nil structured", returns: Typed("user"), policy: ContentPolicy{ProducesStructured: true}, want: "returned: [null]"},
		{name: "typed nil raw", returns: Typed("user"), want: "returned: [null]"},
		{name: "typed nil pointer raw", returns: Typed("*user"), result: (*user)(nil), want: "returned: [null]"},
		{name: "raw string", returns: Typed("string"), result: "ok", want: "returned: [ok]"},
		{
			name:    "serializable mock",
			returns: Typed("MockService"),
			policy:  ContentPolicy{ProducesStructured: true},
			result:  MockService{Name: "stub"},
			want:    `returned: [{"name":"stub"}]`,
		},
		{
			name:    "unserializable mock",
			returns: Typed("MockService"),
			policy:  ContentPolicy{ProducesStructured: true},
			result:  unencodable{Ch: make(chan int)},
			want:    "returned: [Mock Object]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic, rec, _ := newTestInterceptor(t, slog.LevelDebug, nil)

			got, err := ic.Invoke(context.Background(), Call{Name: "op", Returns: tt.returns, Policy: tt.policy}, returning(tt.result))
			require.NoError(t, err)
			assert.Equal(t, tt.result, got)

			msgs := rec.Messages()
			require.Len(t, msgs, 3)
			assert.Equal(t, "op() "+tt.want, msgs[2])
		})
	}
}

func TestInvoke_ReturnedSuppressedWithoutDebug(t *testing.T) {
	ic, rec, _ := newTestInterceptor(t, slog.LevelInfo, nil)

	_, err := ic.Invoke(context.Background(), Call{Name: "op", Returns: Void()}, returning(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"op()", "op() took [0 ms] to complete"}, rec.Messages())
}

func TestInvoke_UnresolvedReturnSkipsPostLogging(t *testing.T) {
	ic, rec, metrics := newTestInterceptor(t, slog.LevelDebug, nil)

	got, err := ic.Invoke(context.Background(), Call{Name: "op"}, returning(42))
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	assert.Equal(t, []string{"op()"}, rec.Messages())
	assert.Equal(t, []string{"op:success"}, metrics.invocations)
}

func TestInvoke_ElapsedMilliseconds(t *testing.T) {
	rec := logtest.NewRecorder(slog.LevelInfo)
	ic := New(Options{
		Logger: rec.Logger(),
		Clock:  &stepClock{t: time.Unix(0, 0), step: 1500 * time.Microsecond},
	})

	_, err := ic.Invoke(context.Background(), Call{Name: "slow", Returns: Void()}, returning(nil))
	require.NoError(t, err)

	assert.Equal(t, "slow() took [1 ms] to complete", rec.Messages()[1])
}

func TestInvoke_ContextProviderFailure(t *testing.T) {
	failing := reqctx.ProviderFunc(func(context.Context) (reqctx.RequestContext, error) {
		return reqctx.RequestContext{}, errors.New("x")
	})
	ic, rec, metrics := newTestInterceptor(t, slog.LevelDebug, failing)

	called := false
	got, err := ic.Invoke(context.Background(), Call{Name: "getUser", Returns: Typed("int")}, func(context.Context) (any, error) {
		called = true
		return 7, nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 7, got)

	assert.Equal(t, []string{
		"ERROR Exception occurred in pre-proceed logic of getUser(): x",
		"INFO getUser() took [0 ms] to complete",
		"INFO getUser() returned: [7]",
	}, rec.Lines())
	assert.Equal(t, []string{StagePre}, metrics.stageFailures)
}

func TestInvoke_ContextProviderPanic(t *testing.T) {
	panicking := reqctx.ProviderFunc(func(context.Context) (reqctx.RequestContext, error) {
		panic("no security context")
	})
	ic, rec, _ := newTestInterceptor(t, slog.LevelInfo, panicking)

	_, err := ic.Invoke(context.Background(), Call{Name: "op", Returns: Void()}, returning(nil))
	require.NoError(t, err)

	assert.Equal(t, "ERROR Exception occurred in pre-proceed logic of op(): no security context", rec.Lines()[0])
}

func TestInvoke_ResultSerializationFailure(t *testing.T) {
	ic, rec, metrics := newTestInterceptor(t, slog.LevelDebug, nil)
	result := unencodable{Ch: make(chan int)}

	got, err := ic.Invoke(context.Background(), Call{
		Name:    "stream",
		Returns: Typed(""),
		Policy:  ContentPolicy{ProducesStructured: true},
	}, returning(result))
	require.NoError(t, err)
	assert.Equal(t, result, got)

	lines := rec.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, "INFO stream() took [0 ms] to complete", lines[1])
	assert.Equal(t, "WARN Unable to process object of type interceptor.unencodable for logging", lines[2])
	assert.Equal(t, "INFO stream() returned: []", lines[3])
	assert.Equal(t, []string{"interceptor.unencodable"}, metrics.serialization)
}

func TestInvoke_ErrorPropagates(t *testing.T) {
	ic, rec, metrics := newTestInterceptor(t, slog.LevelInfo, nil)
	wantErr := errors.New("user not found")

	got, err := ic.Invoke(context.Background(), Call{Name: "getUser", Returns: Typed("user")}, func(context.Context) (any, error) {
		return nil, wantErr
	})
	assert.Same(t, wantErr, err)
	assert.Nil(t, got)

	assert.Equal(t, []string{
		"INFO getUser()",
		"INFO getUser() took [0 ms] to complete",
		"INFO getUser() threw exception: [user not found]",
	}, rec.Lines())
	assert.Equal(t, []string{"getUser:error"}, metrics.invocations)
}

func TestInvoke_ErrorWithUnresolvedReturn(t *testing.T) {
	ic, rec, _ := newTestInterceptor(t, slog.LevelInfo, nil)

	_, err := ic.Invoke(context.Background(), Call{Name: "op"}, func(context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	assert.Equal(t, []string{"op()", "op() threw exception: [boom]"}, rec.Messages())
}

func TestInvoke_PanicPropagates(t *testing.T) {
	ic, rec, metrics := newTestInterceptor(t, slog.LevelInfo, nil)

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = ic.Invoke(context.Background(), Call{Name: "op", Returns: Void()}, func(context.Context) (any, error) {
			panic("kaboom")
		})
	})

	assert.Equal(t, []string{
		"op()",
		"op() took [0 ms] to complete",
		"op() threw exception: [panic: kaboom]",
	}, rec.Messages())
	assert.Equal(t, []string{"op:panic"}, metrics.invocations)
}

func TestInvoke_GoexitIsNotAPanic(t *testing.T) {
	ic, rec, metrics := newTestInterceptor(t, slog.LevelInfo, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = ic.Invoke(context.Background(), Call{Name: "op", Returns: Void()}, func(context.Context) (any, error) {
			runtime.Goexit()
			return nil, nil
		})
	}()
	<-done

	assert.Equal(t, []string{
		"op()",
		"op() took [0 ms] to complete",
	}, rec.Messages())
	assert.Equal(t, []string{"op:exit"}, metrics.invocations)
}

func TestInvoke_ContextPassesThrough(t *testing.T) {
	ic, _, _ := newTestInterceptor(t, slog.LevelInfo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ic.Invoke(ctx, Call{Name: "op", Returns: Void()}, func(ctx context.Context) (any, error) {
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvoke_Concurrent(t *testing.T) {
	ic, rec, _ := newTestInterceptor(t, slog.LevelInfo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			call := Call{Name: "op", Params: []Param{{Name: "password", Value: i}}, Returns: Void()}
			_, err := ic.Invoke(context.Background(), call, returning(nil))
			assert.NoError(t, err)
		}(i)
		if i == 8 {
			ic.Scrubber().SetReplacement("***")
		}
	}
	wg.Wait()

	assert.Len(t, rec.Entries(), 32)
	for _, m := range rec.Messages() {
		assert.NotContains(t, m, "password: [1")
	}
}

func TestNew_Defaults(t *testing.T) {
	ic := New(Options{})
	assert.NotNil(t, ic.Logger())
	assert.NotNil(t, ic.Scrubber())
}
