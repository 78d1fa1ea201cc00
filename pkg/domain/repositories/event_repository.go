package repositories

import (
	"context"

	"github.com/vsinha/kitchenplan/pkg/domain/entities"
)

// EventRepository provides read access to scheduled events.
// GetEvent only returns events owned by organizationID that are not soft-deleted.
type EventRepository interface {
	GetEvent(ctx context.Context, eventID, organizationID string) (*entities.Event, error)
}
