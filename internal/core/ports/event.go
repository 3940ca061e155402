package ports

import (
	"context"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
)

type ApplicationEventPublisher interface {
	PublishApplicationEvent(ctx context.Context, evt domain.OutboxEvent) error
}

// WorkflowMetrics records application workflow activity.
type WorkflowMetrics interface {
	ApplicationSubmitted()
	ApplicationDecided(status domain.ApplicationStatus)
}
