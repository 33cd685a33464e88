// Package interceptor adds logging around service-boundary calls.
//
// A boundary (an HTTP endpoint, a gRPC handler) describes each call as a Call
// and hands it to Interceptor.Invoke together with the function that performs
// it. The interceptor then logs:
//
//	getUser() called with arguments: userId: [1] called via url: [/getUser?userId=1], username: [alice]
//	getUser() took [3 ms] to complete
//	getUser() returned: [{"id":1,"email":"alice@example.com"}]
//
// The "returned" record is only written when the logger is enabled for debug
// output. Arguments whose names are blacklisted by the scrub.Scrubber are
// replaced before formatting. Payload arguments and results are rendered as
// JSON when the call's ContentPolicy marks them as structured.
//
// Errors returned by the wrapped call produce a "threw exception" record and
// are returned unchanged; panics are logged and re-raised. Failures while
// building log records are logged at ERROR and never reach the caller.
package interceptor
