package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestSessionRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	newRepo := func(mt *mtest.T) *SessionRepository {
		return NewSessionRepository(&DB{Client: mt.Client, Database: mt.DB})
	}

	mt.Run("ensure indexes creates ttl index", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.EnsureIndexes(context.Background(), 48*time.Hour))
		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "createIndexes", started.CommandName)
		cmd := started.Command.String()
		assert.Contains(mt, cmd, sessionTTLIndex)
		assert.Contains(mt, cmd, "expireAfterSeconds")
	})

	mt.Run("ensure indexes skipped without ttl", func(mt *mtest.T) {
		repo := newRepo(mt)
		require.NoError(mt, repo.EnsureIndexes(context.Background(), 0))
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("create keeps credentials out of the document", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		session := &models.Session{Credentials: &models.Credentials{SiteURL: "https://shop.example", Password: "secret"}}
		require.NoError(mt, repo.Create(context.Background(), session))
		assert.True(mt, session.ID.Valid())

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
		assert.NotContains(mt, started.Command.String(), "secret")
	})

	mt.Run("get restores credentials from memory", func(mt *mtest.T) {
		repo := newRepo(mt)
		oid := primitive.NewObjectID()
		id := models.ObjectID(oid.Hex())
		repo.storeCredentials(&models.Session{ID: id, Credentials: &models.Credentials{Username: "admin"}})

		mt.AddMockResponses(mtest.CreateCursorResponse(1, "shop_assistant.assistant_sessions", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "file_name", Value: "products.csv"},
			{Key: "history", Value: bson.A{bson.D{{Key: "role", Value: "user"}, {Key: "content", Value: "hi"}}}},
		}))

		session, err := repo.Get(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, id, session.ID)
		assert.Equal(mt, "products.csv", session.FileName)
		require.Len(mt, session.History, 1)
		require.NotNil(mt, session.Credentials)
		assert.Equal(mt, "admin", session.Credentials.Username)
	})

	mt.Run("get missing document", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop_assistant.assistant_sessions", mtest.FirstBatch))

		_, err := repo.Get(context.Background(), models.NewObjectID())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("get invalid id", func(mt *mtest.T) {
		repo := newRepo(mt)
		_, err := repo.Get(context.Background(), "not-an-id")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("save unmatched", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.Save(context.Background(), &models.Session{ID: models.NewObjectID()})
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("delete drops credentials", func(mt *mtest.T) {
		repo := newRepo(mt)
		id := models.NewObjectID()
		repo.storeCredentials(&models.Session{ID: id, Credentials: &models.Credentials{Username: "admin"}})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, repo.Delete(context.Background(), id))
		assert.Empty(mt, repo.creds)
	})
}
