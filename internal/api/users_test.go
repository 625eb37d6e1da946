package api

import (
	"testing"

	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUsernameCaching(t *testing.T) {
	tests := map[string]struct {
		cacheSize int
		calls     int
	}{
		"Cached":   {cacheSize: 10, calls: 1},
		"Uncached": {cacheSize: 0, calls: 2},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			client := newFakeClient()
			f, err := NewUserFinder(client, tc.cacheSize, zap.NewNop())
			require.NoError(t, err)

			for i := 0; i < 2; i++ {
				username, err := f.Username("ana-id")
				require.NoError(t, err)
				assert.Equal(t, "ana", username)
			}
			assert.Equal(t, tc.calls, client.userCalls)
		})
	}
}

func TestUsernameUnknownUser(t *testing.T) {
	f, err := NewUserFinder(newFakeClient(), 10, zap.NewNop())
	require.NoError(t, err)

	_, err = f.Username("ghost-id")

	assert.ErrorIs(t, err, errNotFound)
}

func TestBotID(t *testing.T) {
	tests := map[string]struct {
		botName string
		id      string
		err     bool
	}{
		"Me":      {botName: "", id: "bot-id"},
		"ByName":  {botName: "creator", id: "creator-id"},
		"Unknown": {botName: "nobody", err: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			id, err := BotID(newFakeClient(), tc.botName)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.id, id)
		})
	}
}

func TestBotIDEmptyUser(t *testing.T) {
	client := newFakeClient()
	client.users["me"].Id = ""

	_, err := BotID(client, "")

	assert.ErrorIs(t, err, models.ErrBotNotFound)
}
