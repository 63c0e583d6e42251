package classifier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritchiero/Budget-Agent/internal/model"
)

func TestClassifyText(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		content string
		want    Category
	}{
		{"heartbeat", "user", "HEARTBEAT_OK", Heartbeat},
		{"heartbeat beats whatsapp", "assistant", "Heartbeat: WhatsApp reconnect done", Heartbeat},
		{"whatsapp", "assistant", "Gateway disconnect, reconnecting", WhatsAppReconnect},
		{"whatsapp beats memory", "user", "whatsapp dropped, reloading SOUL.md", WhatsAppReconnect},
		{"memory resync", "assistant", "Loading conversation from SOUL.md", MemoryResync},
		{"email", "assistant", "Checking email via himalaya", EmailCheck},
		{"spanish email", "user", "revisa mi correo", EmailCheck},
		{"cost report", "assistant", "Here is the daily usage summary", CostReport},
		{"cron", "user", "[cron] run nightly backup", CronTask},
		{"user fallback", "user", "Book a table for two", UserRequest},
		{"assistant fallback", "assistant", "Done, table booked.", Response},
		{"system fallback", "system", "You are a helpful agent", Other},
		{"empty role", "", "", Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyText(tt.role, tt.content))
		})
	}
}

func TestClassifyUsesFlattenedBlocks(t *testing.T) {
	var msg model.LogMessage
	require.NoError(t, json.Unmarshal([]byte(`{"type":"message","message":{"role":"assistant","content":[{"type":"thinking","thinking":"time for a routine check"},{"type":"text","text":"ok"}]}}`), &msg))

	assert.Equal(t, Heartbeat, Classify(msg))
	// deterministic
	assert.Equal(t, Classify(msg), Classify(msg))
}

func TestCategories(t *testing.T) {
	assert.Len(t, All, 9)
	for _, c := range All {
		assert.NotEmpty(t, c.Description(), c)
	}

	assert.True(t, UserRequest.UserInitiated())
	assert.True(t, Response.UserInitiated())
	assert.False(t, Heartbeat.UserInitiated())
	assert.False(t, Other.UserInitiated())
}
