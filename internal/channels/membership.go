package channels

import (
	"context"

	"github.com/hot-channels-bot/internal/apperr"
	"github.com/hot-channels-bot/internal/models"
	"github.com/hot-channels-bot/internal/slackapi"
	"github.com/sirupsen/logrus"
)

// Join adds the bot to a channel and returns the updated record
func Join(ctx context.Context, api slackapi.API, channel models.ChannelMeta) (models.ChannelMeta, error) {
	if _, _, _, err := api.JoinConversationContext(ctx, channel.ID); err != nil {
		logrus.Errorf("Error joining channel %s (%s): %v", channel.Name, channel.ID, err)
		return channel, apperr.New(apperr.KindJoin, "conversations.join "+channel.Name, err)
	}
	logrus.Infof("The bot joined channel %q", channel.Name)
	return channel.WithMembership(true), nil
}

// EnsureMember joins channel unless the bot is already in it
func EnsureMember(ctx context.Context, api slackapi.API, channel models.ChannelMeta) (models.ChannelMeta, error) {
	if channel.IsMember {
		return channel, nil
	}
	return Join(ctx, api, channel)
}

// ReconcileMembership makes sure the bot can read every returned channel.
// With autoJoin, non-member channels are joined in order and come back flagged as members;
// otherwise they are dropped. The first failed join aborts the whole reconciliation.
func ReconcileMembership(ctx context.Context, api slackapi.API, channels []models.ChannelMeta, autoJoin bool) ([]models.ChannelMeta, error) {
	result := make([]models.ChannelMeta, 0, len(channels))

	if !autoJoin {
		for _, c := range channels {
			if c.IsMember {
				result = append(result, c)
			}
		}
		logrus.Infof("Auto join disabled: keeping %d member channels out of %d", len(result), len(channels))
		return result, nil
	}

	joined := 0
	for _, c := range channels {
		if !c.IsMember {
			updated, err := Join(ctx, api, c)
			if err != nil {
				return nil, err
			}
			c = updated
			joined++
		}
		result = append(result, c)
	}

	if joined > 0 {
		logrus.Infof("Joined %d public channels", joined)
	}
	return result, nil
}
