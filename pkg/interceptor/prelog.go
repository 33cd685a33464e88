package interceptor

import (
	"context"
	"strings"
)

// preLog emits "<name>() called with arguments: ... called via <context>".
// Each clause is omitted when it would be empty.
func (ic *Interceptor) preLog(ctx context.Context, call Call) error {
	rc, err := ic.context.RequestContext(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(call.Name)
	b.WriteString("()")
	if len(call.Params) > 0 {
		b.WriteString(" called with arguments: ")
		b.WriteString(ic.formatArgs(ctx, call))
	}
	if !rc.IsEmpty() {
		b.WriteString(" called via ")
		b.WriteString(rc.String())
	}

	ic.logger.InfoContext(ctx, b.String())
	return nil
}
