package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// keep the baseRepo implementation in sync with IRepository interface
var _ IRepository[models.Session] = (*baseRepo[models.Session])(nil)

type IEntity interface {
	CollectionName() string
	GetObjectID() models.ObjectID
}

type IRepository[E IEntity] interface {
	Insert(ctx context.Context, entity E, opts ...*options.InsertOneOptions) error
	FindByID(ctx context.Context, id models.ObjectID) (*E, error)
	ReplaceByID(ctx context.Context, entity E) error
	DeleteByID(ctx context.Context, id models.ObjectID) error
}

type baseRepo[E IEntity] struct {
	coll *mongo.Collection
}

func newBaseRepo[E IEntity](dbc *mongo.Database) baseRepo[E] {
	var entity E
	return baseRepo[E]{
		coll: dbc.Collection(entity.CollectionName()),
	}
}

func (r *baseRepo[E]) Insert(ctx context.Context, entity E, opts ...*options.InsertOneOptions) error {
	if _, err := r.coll.InsertOne(ctx, entity, opts...); err != nil {
		return fmt.Errorf("insert one: %w", err)
	}
	return nil
}

func (r *baseRepo[E]) FindByID(ctx context.Context, id models.ObjectID) (*E, error) {
	var entity E
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&entity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one: %w", err)
	}
	return &entity, nil
}

func (r *baseRepo[E]) ReplaceByID(ctx context.Context, entity E) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": entity.GetObjectID()}, entity)
	if err != nil {
		return fmt.Errorf("replace one: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *baseRepo[E]) DeleteByID(ctx context.Context, id models.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete one: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
