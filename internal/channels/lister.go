package channels

import (
	"context"
	"fmt"

	"github.com/hot-channels-bot/internal/apperr"
	"github.com/hot-channels-bot/internal/models"
	"github.com/hot-channels-bot/internal/slackapi"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

// ListLimit is the number of channels requested from conversations.list
const ListLimit = 1000

// ListPublicChannels fetches up to ListLimit non-archived public channels.
// Only the first page is read.
func ListPublicChannels(ctx context.Context, api slackapi.API) ([]models.ChannelMeta, error) {
	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Limit:           ListLimit,
		Types:           []string{"public_channel"},
	}

	logrus.Debugf("Listing public channels (limit=%d)", params.Limit)

	result, nextCursor, err := api.GetConversationsContext(ctx, params)
	if err != nil {
		logrus.Errorf("Error fetching conversations: %v", err)
		return nil, apperr.New(apperr.KindChannelFetch, "conversations.list", err)
	}
	if nextCursor != "" {
		logrus.Warnf("Workspace has more than %d public channels, the rest are ignored", ListLimit)
	}

	metas := make([]models.ChannelMeta, 0, len(result))
	for i, c := range result {
		if !c.IsChannel {
			continue
		}
		if c.ID == "" || c.Name == "" {
			return nil, apperr.New(apperr.KindChannelFetch, "conversations.list",
				fmt.Errorf("malformed channel at index %d: missing id or name", i))
		}
		metas = append(metas, fromSlack(c))
	}

	logrus.Infof("Fetched %d public channels", len(metas))
	return metas, nil
}

func fromSlack(c slack.Channel) models.ChannelMeta {
	return models.ChannelMeta{
		ID:          c.ID,
		Name:        c.Name,
		IsMember:    c.IsMember,
		Topic:       c.Topic.Value,
		Purpose:     c.Purpose.Value,
		MemberCount: c.NumMembers,
	}
}
