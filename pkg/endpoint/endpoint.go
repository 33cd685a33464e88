package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mercator-hq/wiretap/pkg/interceptor"
	"mercator-hq/wiretap/pkg/middleware"
)

// DefaultMaxUploadBytes bounds raw bodies and multipart forms when the
// controller sets no limit.
const DefaultMaxUploadBytes int64 = 32 << 20

// HandlerFunc implements an endpoint. The returned value is written as the
// response body.
type HandlerFunc func(ctx context.Context, in *Input) (any, error)

// Controller groups endpoints and carries the class-level declarations they
// inherit.
type Controller struct {
	Name string

	// Logging is the class-level eligibility.
	Logging interceptor.Eligibility

	// Produces and Consumes are the class-level media types.
	Produces []string
	Consumes []string

	// MaxUploadBytes bounds request bodies. Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

// Endpoint is one route of a controller.
type Endpoint struct {
	// Name is the method name used in log records.
	Name string

	Method  string
	Pattern string

	// Logging overrides the controller eligibility unless Inherited.
	Logging interceptor.Eligibility

	// Produces and Consumes override the controller media types when set.
	Produces []string
	Consumes []string

	// Params are bound from the request in order.
	Params []ParamSpec

	// Returns is the declared result type. Leave it unresolved to skip the
	// timing and result records.
	Returns interceptor.ReturnType

	// Status is the success status. Defaults to 200, or 204 for void
	// endpoints.
	Status int

	Handle HandlerFunc
}

// route is an endpoint with its declarations resolved at mount time.
type route struct {
	ep        Endpoint
	logged    bool
	policy    interceptor.ContentPolicy
	mediaType string
	maxUpload int64
	ic        *interceptor.Interceptor
}

// Mount registers eps on r. Eligibility and content policy are resolved
// once per endpoint here, not per request.
func Mount(r chi.Router, ic *interceptor.Interceptor, ctrl Controller, eps ...Endpoint) {
	maxUpload := ctrl.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	for _, ep := range eps {
		rt := &route{
			ep:     ep,
			logged: interceptor.ResolveEligibility(ep.Logging, ctrl.Logging),
			policy: interceptor.ResolvePolicy(
				interceptor.MediaTypes{Produces: ep.Produces, Consumes: ep.Consumes},
				interceptor.MediaTypes{Produces: ctrl.Produces, Consumes: ctrl.Consumes},
			),
			mediaType: structuredType(ep.Produces, ctrl.Produces),
			maxUpload: maxUpload,
			ic:        ic,
		}
		r.Method(ep.Method, ep.Pattern, rt)

		ic.Logger().Debug("endpoint mounted",
			"controller", ctrl.Name,
			"endpoint", ep.Name,
			"method", ep.Method,
			"pattern", ep.Pattern,
			"logged", rt.logged,
		)
	}
}

func (rt *route) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	in, err := bind(r, rt.ep.Params, rt.maxUpload)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	proceed := func(ctx context.Context) (any, error) {
		return rt.ep.Handle(ctx, in)
	}

	var result any
	if rt.logged {
		result, err = rt.ic.Invoke(r.Context(), rt.call(in), proceed)
	} else {
		result, err = proceed(r.Context())
	}
	if err != nil {
		status, msg := statusOf(err)
		middleware.WriteError(w, status, msg)
		return
	}

	rt.respond(w, result)
}

func (rt *route) call(in *Input) interceptor.Call {
	params := make([]interceptor.Param, len(rt.ep.Params))
	for i, spec := range rt.ep.Params {
		params[i] = interceptor.Param{
			Name:    spec.Name,
			Value:   in.values[i],
			Payload: spec.Source.payload(),
		}
	}
	return interceptor.Call{
		Name:    rt.ep.Name,
		Params:  params,
		Returns: rt.ep.Returns,
		Policy:  rt.policy,
	}
}

func (rt *route) respond(w http.ResponseWriter, result any) {
	status := rt.ep.Status
	if rt.ep.Returns.IsVoid() || result == nil {
		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
		return
	}
	if status == 0 {
		status = http.StatusOK
	}

	if res, ok := result.(*Resource); ok {
		w.Header().Set("Content-Type", res.ContentType())
		w.WriteHeader(status)
		_, _ = w.Write(res.Bytes())
		return
	}

	if rt.policy.ProducesStructured {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(result); err != nil {
			rt.ic.Logger().Error("failed to encode response", "endpoint", rt.ep.Name, "error", err)
			middleware.WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		w.Header().Set("Content-Type", rt.mediaType)
		w.WriteHeader(status)
		_, _ = w.Write(buf.Bytes())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, result)
}

// structuredType returns the first structured media type declared, falling
// back to application/json.
func structuredType(method, class []string) string {
	types := method
	if len(types) == 0 {
		types = class
	}
	for _, t := range types {
		if interceptor.IsStructured(t) {
			return t
		}
	}
	return "application/json"
}
