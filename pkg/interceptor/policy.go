package interceptor

import (
	"mime"
	"strings"
)

// ContentPolicy says whether a call's input and output are structured (JSON)
// payloads.
type ContentPolicy struct {
	ProducesStructured bool
	ConsumesStructured bool
}

// MediaTypes are the media types declared at one level (controller or
// endpoint).
type MediaTypes struct {
	Produces []string
	Consumes []string
}

// ResolvePolicy resolves the content policy of a call. For each direction the
// method-level declaration is used when it names any media type; otherwise
// the class-level declaration applies.
func ResolvePolicy(method, class MediaTypes) ContentPolicy {
	return ContentPolicy{
		ProducesStructured: anyStructured(pick(method.Produces, class.Produces)),
		ConsumesStructured: anyStructured(pick(method.Consumes, class.Consumes)),
	}
}

// IsStructured reports whether mediaType is application/json or a +json
// type such as application/problem+json.
func IsStructured(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mediaType))
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func pick(method, class []string) []string {
	if len(method) > 0 {
		return method
	}
	return class
}

func anyStructured(types []string) bool {
	for _, t := range types {
		if IsStructured(t) {
			return true
		}
	}
	return false
}
