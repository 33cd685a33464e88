package interceptor

import (
	"context"
	"fmt"
)

// exceptionLog records an error or panic escaping the wrapped call.
func (ic *Interceptor) exceptionLog(ctx context.Context, call Call, failure string) {
	ic.logger.InfoContext(ctx, fmt.Sprintf("%s() threw exception: [%s]", call.Name, failure))
}

// stageError is logged when building a pre or post record fails.
func (ic *Interceptor) stageError(ctx context.Context, stage string, call Call, err any) {
	ic.metrics.RecordLoggingFailure(stage)
	ic.logger.ErrorContext(ctx, fmt.Sprintf("Exception occurred in %s logic of %s(): %v", stage, call.Name, err))
}
