package refresh

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"appcatalog/internal/contextutil"
)

// Schedule runs refresh on the cron spec (for example "@daily") until ctx is
// done. An empty spec disables scheduling and returns a nil Cron.
func Schedule(ctx context.Context, spec string, refresh Func) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}

	logger := contextutil.LoggerFromContext(ctx)
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		logger.InfoContext(ctx, "scheduled catalog refresh")
		if err := refresh(ctx); err != nil {
			logger.ErrorContext(ctx, "scheduled refresh failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c, nil
}
