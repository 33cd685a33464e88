package grpclog

import (
	"context"
	"strings"

	"google.golang.org/grpc"

	"mercator-hq/wiretap/pkg/interceptor"
)

// RequestParam is the parameter name the request message is logged under.
const RequestParam = "request"

// Option configures UnaryServerInterceptor.
type Option func(*options)

type options struct {
	defaultLogging interceptor.Eligibility
	methods        map[string]interceptor.Eligibility
}

// WithDefaultLogging sets the service-level eligibility that methods without
// their own declaration inherit.
func WithDefaultLogging(e interceptor.Eligibility) Option {
	return func(o *options) {
		o.defaultLogging = e
	}
}

// WithMethodLogging declares the eligibility of one method, identified by
// its full name such as "/users.Users/GetUser".
func WithMethodLogging(fullMethod string, e interceptor.Eligibility) Option {
	return func(o *options) {
		o.methods[fullMethod] = e
	}
}

// UnaryServerInterceptor logs unary calls through ic. Each call is logged
// under its short method name with the request message as its only,
// structured, parameter.
//
// Example usage:
//
//	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
//		grpclog.UnaryServerInterceptor(ic, grpclog.WithDefaultLogging(interceptor.Enabled)),
//	))
func UnaryServerInterceptor(ic *interceptor.Interceptor, opts ...Option) grpc.UnaryServerInterceptor {
	o := &options{methods: make(map[string]interceptor.Eligibility)}
	for _, opt := range opts {
		opt(o)
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !interceptor.ResolveEligibility(o.methods[info.FullMethod], o.defaultLogging) {
			return handler(ctx, req)
		}

		call := interceptor.Call{
			Name:    MethodName(info.FullMethod),
			Params:  []interceptor.Param{{Name: RequestParam, Value: req, Payload: true}},
			Returns: interceptor.Typed(""),
			Policy:  interceptor.ContentPolicy{ProducesStructured: true, ConsumesStructured: true},
		}
		return ic.Invoke(ctx, call, func(ctx context.Context) (any, error) {
			return handler(ctx, req)
		})
	}
}

// MethodName returns the method part of a full gRPC method name.
func MethodName(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}
