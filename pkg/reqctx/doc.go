// Package reqctx describes the environment of an intercepted invocation.
//
// A RequestContext is an ordered list of key/value pairs rendered into the
// pre-execution log line after "called via". Providers build it from the
// invocation's context.Context; HTTPProvider reports the request URL and the
// authenticated username.
package reqctx
