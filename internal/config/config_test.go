package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"QUANTUM_CHAT_URL", "QUANTUM_EXECUTE_URL", "QUANTUM_CHAT_TIMEOUT", "QUANTUM_EXECUTE_TIMEOUT", "CONVERSATIONS_DIR", "QUANTUM_API_KEY"} {
		// Setenv restores the previous value once the test ends.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://142.117.62.233:3001/chat", cfg.ChatURL)
	assert.Equal(t, "http://142.117.62.233:3001/execute", cfg.ExecuteURL)
	assert.Equal(t, 90*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 30*time.Second, cfg.ExecuteTimeout)
	assert.Equal(t, "quantum_conversations", cfg.ConversationsDir)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QUANTUM_CHAT_URL", "http://localhost:9000/chat")
	t.Setenv("QUANTUM_CHAT_TIMEOUT", "5s")
	t.Setenv("CONVERSATIONS_DIR", "/tmp/convs")
	t.Setenv("TELEGRAM_OWNER_CHAT_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/chat", cfg.ChatURL)
	assert.Equal(t, 5*time.Second, cfg.ChatTimeout)
	assert.Equal(t, "/tmp/convs", cfg.ConversationsDir)
	assert.Equal(t, int64(42), cfg.OwnerChatID)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("unparsable duration", func(t *testing.T) {
		t.Setenv("QUANTUM_EXECUTE_TIMEOUT", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("zero timeout", func(t *testing.T) {
		t.Setenv("QUANTUM_CHAT_TIMEOUT", "0s")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidateBot(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateBot())
	cfg.TelegramBotToken = "token"
	assert.Error(t, cfg.ValidateBot())
	cfg.OwnerChatID = 7
	assert.NoError(t, cfg.ValidateBot())
}
