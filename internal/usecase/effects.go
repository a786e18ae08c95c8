package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/port"
)

var (
	// ErrPermissionDenied indicates the actor may not perform the action.
	// No rule detail leaks past this sentinel.
	ErrPermissionDenied = errors.New("permission denied")
)

// effectRunner executes the side-effect list a transition returns: cache
// invalidation fan-out and fire-and-forget notifications. Persistence has
// already succeeded by the time effects run, so failures here are logged
// and swallowed rather than failing the transition.
type effectRunner struct {
	publisher   port.NotificationPublisher
	invalidator port.ViewInvalidator
	logger      *zap.Logger
}

func newEffectRunner(publisher port.NotificationPublisher, invalidator port.ViewInvalidator, logger *zap.Logger) *effectRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &effectRunner{publisher: publisher, invalidator: invalidator, logger: logger}
}

func (r *effectRunner) run(ctx context.Context, out domain.Outcome) {
	if r.invalidator != nil && len(out.Invalidations) > 0 {
		if err := r.invalidator.MarkStale(ctx, out.Invalidations); err != nil {
			r.logger.Warn("mark stale views failed", zap.Error(err))
		}
	}

	if r.publisher == nil {
		return
	}
	for _, n := range out.Notifications {
		if err := r.publisher.Publish(ctx, n); err != nil {
			r.logger.Warn("publish notification failed",
				zap.String("template", string(n.Template)),
				zap.String("recipient", n.RecipientID),
				zap.Error(err),
			)
		}
	}
}
