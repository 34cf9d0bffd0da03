package telegram

import (
	"testing"
	"time"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSyncDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	date, err := parseSyncDate("2024-01-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), date)

	// Today is fine, tomorrow is not
	_, err = parseSyncDate("2024-06-15", now)
	assert.NoError(t, err)
	_, err = parseSyncDate("2024-06-16", now)
	assert.Error(t, err)
}

func TestParseSyncDateRejectsBadInput(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
	}{
		{"wrong format", "01.01.2024"},
		{"partial date", "2024-01"},
		{"impossible date", "2024-02-31"},
		{"not a date", "tomorrow"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSyncDate(tt.text, now)
			assert.Error(t, err)
		})
	}
}

func TestChannelIdentifier(t *testing.T) {
	// Channels are stored by numeric id even when they have a username,
	// since public channels can be renamed
	assert.Equal(t, "-1001234567890", channelIdentifier(tgmodels.Chat{
		ID:       -1001234567890,
		Type:     "channel",
		Username: "mychannel",
	}))

	assert.Equal(t, "@somegroup", channelIdentifier(tgmodels.Chat{
		ID:       -100987,
		Type:     "supergroup",
		Username: "somegroup",
	}))

	assert.Equal(t, "-100987", channelIdentifier(tgmodels.Chat{
		ID:   -100987,
		Type: "supergroup",
	}))
}
