package slack

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is how long resolved channel names stay cached
	DefaultCacheTTL = 45 * time.Second
	// DefaultChannelPrefix is the default prefix for risk channels
	DefaultChannelPrefix = "risk"

	conversationsPageSize = 100
)

// nameCache caches channel ID to name lookups with per-entry expiry.
// Channel renames are rare, so a short TTL is enough to keep the API
// call volume down without serving stale names for long.
type nameCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]nameEntry
}

type nameEntry struct {
	name      string
	expiresAt time.Time
}

func newNameCache(ttl time.Duration) *nameCache {
	return &nameCache{
		ttl:     ttl,
		entries: make(map[string]nameEntry),
	}
}

func (nc *nameCache) get(id string, now time.Time) (string, bool) {
	nc.mu.RLock()
	defer nc.mu.RUnlock()
	entry, ok := nc.entries[id]
	if !ok || !entry.expiresAt.After(now) {
		return "", false
	}
	return entry.name, true
}

func (nc *nameCache) put(id, name string, now time.Time) {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	nc.entries[id] = nameEntry{name: name, expiresAt: now.Add(nc.ttl)}
}

// client implements Service interface
type client struct {
	api           *slack.Client
	names         *nameCache
	cacheTTL      time.Duration
	channelPrefix string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for the channel name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// WithChannelPrefix sets the prefix for risk channels
func WithChannelPrefix(prefix string) Option {
	return func(c *client) {
		c.channelPrefix = prefix
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		api:           slack.New(token),
		cacheTTL:      DefaultCacheTTL,
		channelPrefix: DefaultChannelPrefix,
	}

	for _, opt := range opts {
		opt(c)
	}
	c.names = newNameCache(c.cacheTTL)

	return c, nil
}

// ListJoinedChannels retrieves the list of channels the bot has joined
func (c *client) ListJoinedChannels(ctx context.Context) ([]Channel, error) {
	params := &slack.GetConversationsParameters{
		// TODO: Add "private_channel" support after resolving scope configuration
		// Requires: groups:read scope in addition to channels:read
		Types:           []string{"public_channel"},
		ExcludeArchived: true,
		Limit:           conversationsPageSize,
	}

	var channels []Channel
	for {
		convs, nextCursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get conversations")
		}

		for _, conv := range convs {
			if !conv.IsMember {
				continue
			}
			channels = append(channels, Channel{ID: conv.ID, Name: conv.Name})
		}

		if nextCursor == "" {
			return channels, nil
		}
		params.Cursor = nextCursor
	}
}

// GetChannelNames resolves channel names for the given IDs. Cached
// names are returned without an API call; IDs that cannot be resolved
// are omitted from the result so the caller can fall back to the ID.
func (c *client) GetChannelNames(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	now := time.Now()

	for _, id := range ids {
		if name, ok := c.names.get(id, now); ok {
			result[id] = name
			continue
		}

		info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
			ChannelID: id,
		})
		if err != nil {
			continue
		}

		result[id] = info.Name
		c.names.put(id, info.Name, now)
	}

	return result, nil
}

// CreateChannel creates a public Slack channel named from the risk ID
// and title with the configured prefix, and returns the channel ID.
func (c *client) CreateChannel(ctx context.Context, riskID int64, riskName string) (string, error) {
	channelName := GenerateRiskChannelName(riskID, riskName, c.channelPrefix)
	channel, err := c.api.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: channelName,
		IsPrivate:   false,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create Slack channel",
			goerr.V("channel_name", channelName), goerr.V("risk_id", riskID))
	}
	return channel.ID, nil
}

// RenameChannel renames the risk's channel after a title change, using
// the same naming scheme as CreateChannel.
func (c *client) RenameChannel(ctx context.Context, channelID string, riskID int64, riskName string) error {
	channelName := GenerateRiskChannelName(riskID, riskName, c.channelPrefix)
	if _, err := c.api.RenameConversationContext(ctx, channelID, channelName); err != nil {
		return goerr.Wrap(err, "failed to rename Slack channel",
			goerr.V("channel_id", channelID), goerr.V("channel_name", channelName), goerr.V("risk_id", riskID))
	}
	return nil
}

// ArchiveChannel archives a Slack channel. A channel that is already
// archived is treated as success.
func (c *client) ArchiveChannel(ctx context.Context, channelID string) error {
	if err := c.api.ArchiveConversationContext(ctx, channelID); err != nil {
		var serr slack.SlackErrorResponse
		if errors.As(err, &serr) && serr.Err == "already_archived" {
			return nil
		}
		return goerr.Wrap(err, "failed to archive Slack channel", goerr.V("channel_id", channelID))
	}
	return nil
}

// PostMessage posts a Block Kit message to a channel and returns the message timestamp
func (c *client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post Slack message", goerr.V("channel_id", channelID))
	}
	return ts, nil
}
