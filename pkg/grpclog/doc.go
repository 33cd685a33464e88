// Package grpclog applies the logging interceptor to gRPC unary calls.
//
// The request message is logged as the single "request" parameter and the
// response as the result, both in their protobuf JSON mapping. Eligibility
// follows the same rule as HTTP endpoints: a method declaration overrides the
// service default, and nothing declared means not logged.
//
// MetadataProvider supplies the " called via" context for gRPC calls.
// reqctx.First combines it with reqctx.HTTPProvider when one interceptor
// serves both.
package grpclog
