package app

import (
	"context"
	"testing"

	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/nguyentranbao-ct/shop-assistant/internal/repo/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestNewSessionStore_DefaultsToMemory(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	store, err := newSessionStore(lc, &config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &memstore.SessionStore{}, store)
}

func TestNewUploadPublisher_Disabled(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	publisher, err := newUploadPublisher(lc, &config.Config{})
	require.NoError(t, err)
	require.NotNil(t, publisher)

	lc.RequireStart()
	lc.RequireStop()
	assert.NoError(t, publisher.PublishUploadCompleted(context.Background(), models.UploadCompletedEvent{SessionID: "s"}))
}
