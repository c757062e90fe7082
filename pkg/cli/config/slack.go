package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jungkj/riscura-sub000/pkg/service/slack"
)

// Slack holds configuration for Slack notifications
type Slack struct {
	botToken      string
	notifyChannel string
	channelPrefix string
}

// Flags returns CLI flags for Slack configuration
func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (xoxb-...)",
			Category:    "Slack",
			Sources:     cli.EnvVars("RISCURA_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-notify-channel",
			Usage:       "Channel ID for escalation and ingestion notices",
			Category:    "Slack",
			Sources:     cli.EnvVars("RISCURA_SLACK_NOTIFY_CHANNEL"),
			Destination: &x.notifyChannel,
		},
		&cli.StringFlag{
			Name:        "slack-channel-prefix",
			Usage:       "Prefix for per-risk channel names",
			Category:    "Slack",
			Value:       slack.DefaultChannelPrefix,
			Sources:     cli.EnvVars("RISCURA_SLACK_CHANNEL_PREFIX"),
			Destination: &x.channelPrefix,
		},
	}
}

// LogValue implements slog.LogValuer, hiding the bot token
func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("notify_channel", x.notifyChannel),
		slog.String("channel_prefix", x.channelPrefix),
	)
}

// NotifyChannel returns the configured notification channel ID
func (x *Slack) NotifyChannel() string {
	return x.notifyChannel
}

// IsConfigured returns true if a bot token is set
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure creates a Slack service from the configured flags.
// Returns nil if no bot token is set (notifications will be disabled).
func (x *Slack) Configure() (slack.Service, error) {
	if x.botToken == "" {
		return nil, nil
	}

	var opts []slack.Option
	if x.channelPrefix != "" {
		opts = append(opts, slack.WithChannelPrefix(x.channelPrefix))
	}

	svc, err := slack.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Slack service")
	}

	return svc, nil
}
