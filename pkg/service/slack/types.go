package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Service provides interface to Slack API for notification operations
type Service interface {
	// ListJoinedChannels retrieves the list of channels the bot has joined
	// Used for channel selection UI
	ListJoinedChannels(ctx context.Context) ([]Channel, error)

	// GetChannelNames retrieves channel names for the given IDs (with caching)
	// Used for displaying channel names in the UI
	GetChannelNames(ctx context.Context, ids []string) (map[string]string, error)

	// CreateChannel creates a new public Slack channel for a risk
	// The channel name is automatically generated from riskID and riskName
	// with the configured prefix. Returns the channel ID on success.
	CreateChannel(ctx context.Context, riskID int64, riskName string) (string, error)

	// RenameChannel renames an existing Slack channel for a risk
	// The channel name is automatically generated from riskID and riskName
	RenameChannel(ctx context.Context, channelID string, riskID int64, riskName string) error

	// ArchiveChannel archives a Slack channel. Archiving an already
	// archived channel is not an error.
	ArchiveChannel(ctx context.Context, channelID string) error

	// PostMessage posts a Block Kit message to a channel and returns the message timestamp.
	// The text parameter is used as a fallback for notifications.
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error)
}

// Channel represents a Slack channel
type Channel struct {
	ID   string
	Name string
}
