package interceptor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/wiretap/pkg/serialize"
)

// postLog emits the timing record and, when the sink logs debug output, the
// formatted result.
func (ic *Interceptor) postLog(ctx context.Context, call Call, result any, elapsed time.Duration) {
	ic.logger.InfoContext(ctx, fmt.Sprintf("%s() took [%d ms] to complete", call.Name, elapsed.Milliseconds()))

	if !ic.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	ic.logger.InfoContext(ctx, fmt.Sprintf("%s() returned: [%s]", call.Name, ic.formatResult(ctx, call, result)))
}

func (ic *Interceptor) formatResult(ctx context.Context, call Call, result any) string {
	if call.Returns.IsVoid() {
		return serialize.VoidTypeName
	}
	if !call.Policy.ProducesStructured {
		return rawString(result)
	}

	declared := call.Returns.Name()
	if declared == "" {
		declared = serialize.TypeName(result)
	}
	return ic.serializer.Serialize(ctx, result, declared)
}
