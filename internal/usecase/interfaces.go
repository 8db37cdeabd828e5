package usecase

import (
	"context"

	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
)

// SessionStore persists operator sessions. Implementations return copies,
// so callers must Save after mutating.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id models.ObjectID) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id models.ObjectID) error
}

type UploadPublisher interface {
	PublishUploadCompleted(ctx context.Context, event models.UploadCompletedEvent) error
}
