package interceptor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/wiretap/pkg/reqctx"
	"mercator-hq/wiretap/pkg/scrub"
	"mercator-hq/wiretap/pkg/serialize"
)

// Logging stages reported through Recorder.RecordLoggingFailure.
const (
	StagePre  = "pre-proceed"
	StagePost = "post-proceed"
)

// Invocation outcomes reported through Recorder.RecordInvocation.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomePanic   = "panic"
	OutcomeExit    = "exit"
)

// ProceedFunc runs the wrapped call.
type ProceedFunc func(ctx context.Context) (any, error)

// Clock supplies the current time. Elapsed time is the difference of two
// readings, so implementations should carry a monotonic component.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Recorder receives invocation measurements. The metrics package provides a
// Prometheus implementation.
type Recorder interface {
	RecordInvocation(method, outcome string, elapsed time.Duration)
	RecordScrubbed(param string)
	RecordLoggingFailure(stage string)
	RecordSerializationFailure(typeName string)
}

type nopRecorder struct{}

func (nopRecorder) RecordInvocation(string, string, time.Duration) {}
func (nopRecorder) RecordScrubbed(string)                          {}
func (nopRecorder) RecordLoggingFailure(string)                    {}
func (nopRecorder) RecordSerializationFailure(string)              {}

// Options configures an Interceptor. Nil fields get defaults.
type Options struct {
	// Logger is the sink. Defaults to slog.Default().
	Logger *slog.Logger

	// Scrubber redacts arguments. Defaults to scrub.NewDefault().
	Scrubber *scrub.Scrubber

	// Serializer renders structured values. Defaults to an adapter logging
	// on Logger and reporting failures to Metrics.
	Serializer *serialize.Adapter

	// Context describes the environment of each call. Defaults to
	// reqctx.Empty.
	Context reqctx.Provider

	// Metrics receives measurements. Defaults to a no-op recorder.
	Metrics Recorder

	// Clock measures elapsed time. Defaults to the system clock.
	Clock Clock
}

// Interceptor wraps calls with pre- and post-execution log records.
// It is safe for concurrent use.
type Interceptor struct {
	logger     *slog.Logger
	scrubber   *scrub.Scrubber
	serializer *serialize.Adapter
	context    reqctx.Provider
	metrics    Recorder
	clock      Clock
}

// New creates an Interceptor.
func New(opts Options) *Interceptor {
	ic := &Interceptor{
		logger:     opts.Logger,
		scrubber:   opts.Scrubber,
		serializer: opts.Serializer,
		context:    opts.Context,
		metrics:    opts.Metrics,
		clock:      opts.Clock,
	}
	if ic.logger == nil {
		ic.logger = slog.Default()
	}
	if ic.scrubber == nil {
		ic.scrubber = scrub.NewDefault()
	}
	if ic.metrics == nil {
		ic.metrics = nopRecorder{}
	}
	if ic.serializer == nil {
		ic.serializer = serialize.New(ic.logger, serialize.WithFailureHook(ic.metrics.RecordSerializationFailure))
	}
	if ic.context == nil {
		ic.context = reqctx.Empty
	}
	if ic.clock == nil {
		ic.clock = systemClock{}
	}
	return ic
}

// Scrubber returns the scrubber used for arguments.
func (ic *Interceptor) Scrubber() *scrub.Scrubber {
	return ic.scrubber
}

// Logger returns the sink.
func (ic *Interceptor) Logger() *slog.Logger {
	return ic.logger
}

// Invoke runs proceed wrapped in logging.
//
// Failures while building log records are logged and swallowed; they never
// prevent proceed from running or change what it returns. An error from
// proceed is logged and returned unchanged. A panic in proceed is logged and
// re-raised with the same value. If proceed ends its goroutine with
// runtime.Goexit, no exception is logged and the exit continues.
func (ic *Interceptor) Invoke(ctx context.Context, call Call, proceed ProceedFunc) (result any, err error) {
	ic.safely(ctx, StagePre, call, func() error {
		return ic.preLog(ctx, call)
	})

	start := ic.clock.Now()
	completed := false

	defer func() {
		elapsed := ic.clock.Now().Sub(start)

		var recovered any
		panicked := false
		if !completed {
			recovered = recover()
			panicked = recovered != nil
		}

		if call.Returns.Resolved() {
			ic.safely(ctx, StagePost, call, func() error {
				ic.postLog(ctx, call, result, elapsed)
				return nil
			})
		}

		outcome := OutcomeSuccess
		switch {
		case panicked:
			outcome = OutcomePanic
			ic.exceptionLog(ctx, call, fmt.Sprintf("panic: %v", recovered))
		case !completed:
			outcome = OutcomeExit
		case err != nil:
			outcome = OutcomeError
			ic.exceptionLog(ctx, call, err.Error())
		}
		ic.metrics.RecordInvocation(call.Name, outcome, elapsed)

		if panicked {
			panic(recovered)
		}
	}()

	result, err = proceed(ctx)
	completed = true
	return result, err
}

// safely runs fn, logging any error or panic it produces as a stage failure.
func (ic *Interceptor) safely(ctx context.Context, stage string, call Call, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			ic.stageError(ctx, stage, call, r)
		}
	}()
	if err := fn(); err != nil {
		ic.stageError(ctx, stage, call, err)
	}
}
