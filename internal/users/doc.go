// Package users is a small user directory used to exercise the logging
// interceptor end to end. Users live in SQLite; the same store is served
// over HTTP endpoints and a gRPC service built from protobuf well-known
// types.
package users
