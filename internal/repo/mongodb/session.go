package mongodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionTTLIndex = "updated_at_ttl"

// SessionRepository stores sessions in MongoDB. Credentials never reach the
// database; they live in process memory next to the session id.
type SessionRepository struct {
	repo baseRepo[models.Session]

	mu    sync.RWMutex
	creds map[models.ObjectID]models.Credentials
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{
		repo:  newBaseRepo[models.Session](db.Database),
		creds: make(map[models.ObjectID]models.Credentials),
	}
}

// EnsureIndexes creates the TTL index that drops sessions idle for ttl.
// A zero ttl leaves sessions in place forever.
func (r *SessionRepository) EnsureIndexes(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	_, err := r.repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().
			SetName(sessionTTLIndex).
			SetExpireAfterSeconds(int32(ttl / time.Second)),
	})
	if err != nil {
		return fmt.Errorf("create session ttl index: %w", err)
	}
	return nil
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = models.NewObjectID()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	if err := r.repo.Insert(ctx, *session); err != nil {
		return err
	}
	r.storeCredentials(session)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id models.ObjectID) (*models.Session, error) {
	if !id.Valid() {
		return nil, models.ErrNotFound
	}
	session, err := r.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	if creds, ok := r.creds[id]; ok {
		session.Credentials = &creds
	}
	r.mu.RUnlock()
	return session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now()
	if err := r.repo.ReplaceByID(ctx, *session); err != nil {
		return err
	}
	r.storeCredentials(session)
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id models.ObjectID) error {
	if !id.Valid() {
		return models.ErrNotFound
	}
	r.mu.Lock()
	delete(r.creds, id)
	r.mu.Unlock()
	return r.repo.DeleteByID(ctx, id)
}

func (r *SessionRepository) storeCredentials(session *models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.Credentials == nil {
		delete(r.creds, session.ID)
		return
	}
	r.creds[session.ID] = *session.Credentials
}
