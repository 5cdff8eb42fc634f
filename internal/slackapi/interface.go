package slackapi

import (
	"context"

	"github.com/slack-go/slack"
)

// API is the subset of the Slack Web API the bot uses.
// *slack.Client satisfies it.
type API interface {
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	JoinConversationContext(ctx context.Context, channelID string) (*slack.Channel, string, []string, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// AuthTester verifies the token before a run starts
type AuthTester interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
}

var (
	_ API        = (*slack.Client)(nil)
	_ AuthTester = (*slack.Client)(nil)
)
