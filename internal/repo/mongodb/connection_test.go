package mongodb

import (
	"testing"
	"time"

	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	t.Run("no hosts", func(t *testing.T) {
		_, err := clientOptions(config.DatabaseConfig{Database: "shop_assistant"})
		assert.Error(t, err)
	})

	t.Run("no database", func(t *testing.T) {
		_, err := clientOptions(config.DatabaseConfig{Hosts: []string{"localhost:27017"}})
		assert.Error(t, err)
	})

	t.Run("anonymous", func(t *testing.T) {
		opts, err := clientOptions(config.DatabaseConfig{
			Hosts:    []string{"mongo-0:27017", "mongo-1:27017"},
			Database: "shop_assistant",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"mongo-0:27017", "mongo-1:27017"}, opts.Hosts)
		assert.Equal(t, appName, *opts.AppName)
		assert.Equal(t, 10*time.Second, *opts.Timeout)
		assert.Nil(t, opts.Auth)
	})

	t.Run("with credentials", func(t *testing.T) {
		opts, err := clientOptions(config.DatabaseConfig{
			Hosts:    []string{"localhost:27017"},
			Direct:   true,
			Username: "assistant",
			Password: "pw",
			AuthDB:   "admin",
			Database: "shop_assistant",
		})
		require.NoError(t, err)
		require.NotNil(t, opts.Auth)
		assert.Equal(t, "assistant", opts.Auth.Username)
		assert.Equal(t, "admin", opts.Auth.AuthSource)
		assert.True(t, *opts.Direct)
	})
}
