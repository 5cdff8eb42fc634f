package publisher

import (
	"context"

	"github.com/hot-channels-bot/internal/apperr"
	"github.com/hot-channels-bot/internal/ranking"
	"github.com/hot-channels-bot/internal/slackapi"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

// Appearance controls how the bot shows up in the channel
type Appearance struct {
	Username  string
	IconEmoji string
}

// Publisher posts composed rankings
type Publisher struct {
	api        slackapi.API
	appearance Appearance
	dryRun     bool
}

// New creates a publisher. In dry-run mode payloads are logged instead of posted.
func New(api slackapi.API, appearance Appearance, dryRun bool) *Publisher {
	return &Publisher{api: api, appearance: appearance, dryRun: dryRun}
}

// Publish posts msg to the channel and returns the message timestamp
func (p *Publisher) Publish(ctx context.Context, channelID string, msg ranking.Message) (string, error) {
	if p.dryRun {
		payload, err := msg.JSON()
		if err != nil {
			return "", apperr.New(apperr.KindPost, "render payload", err)
		}
		logrus.Infof("Dry run: not posting to %s, payload: %s", channelID, payload)
		return "", nil
	}

	options := []slack.MsgOption{
		slack.MsgOptionText(msg.Text, false),
		slack.MsgOptionBlocks(msg.Blocks...),
	}
	if p.appearance.Username != "" {
		options = append(options, slack.MsgOptionUsername(p.appearance.Username))
	}
	if p.appearance.IconEmoji != "" {
		options = append(options, slack.MsgOptionIconEmoji(p.appearance.IconEmoji))
	}

	respChannel, timestamp, err := p.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		logrus.Errorf("Error posting message to %s: %v", channelID, err)
		return "", apperr.New(apperr.KindPost, "chat.postMessage", err)
	}

	logrus.Infof("Posted ranking to %s (ts=%s)", respChannel, timestamp)
	return timestamp, nil
}
