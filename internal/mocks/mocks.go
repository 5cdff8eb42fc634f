package mocks

import (
	"context"
	"sync"

	"github.com/slack-go/slack"
)

// MockSlackAPI is a mock implementation of slackapi.API.
// It records every call so tests can assert on what reached Slack.
type MockSlackAPI struct {
	GetConversationsFunc       func(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	JoinConversationFunc       func(ctx context.Context, channelID string) (*slack.Channel, string, []string, error)
	GetConversationHistoryFunc func(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	PostMessageFunc            func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	AuthTestFunc               func(ctx context.Context) (*slack.AuthTestResponse, error)

	mu           sync.Mutex
	ListCalls    int
	Joined       []string
	HistoryCalls []string
	PostedTo     []string
}

// GetConversationsContext mocks the conversations.list call
func (m *MockSlackAPI) GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	m.mu.Lock()
	m.ListCalls++
	m.mu.Unlock()

	if m.GetConversationsFunc != nil {
		return m.GetConversationsFunc(ctx, params)
	}
	return []slack.Channel{}, "", nil
}

// JoinConversationContext mocks the conversations.join call
func (m *MockSlackAPI) JoinConversationContext(ctx context.Context, channelID string) (*slack.Channel, string, []string, error) {
	m.mu.Lock()
	m.Joined = append(m.Joined, channelID)
	m.mu.Unlock()

	if m.JoinConversationFunc != nil {
		return m.JoinConversationFunc(ctx, channelID)
	}
	return &slack.Channel{}, "", nil, nil
}

// GetConversationHistoryContext mocks the conversations.history call
func (m *MockSlackAPI) GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	m.mu.Lock()
	m.HistoryCalls = append(m.HistoryCalls, params.ChannelID)
	m.mu.Unlock()

	if m.GetConversationHistoryFunc != nil {
		return m.GetConversationHistoryFunc(ctx, params)
	}
	return &slack.GetConversationHistoryResponse{}, nil
}

// PostMessageContext mocks the chat.postMessage call
func (m *MockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	m.mu.Lock()
	m.PostedTo = append(m.PostedTo, channelID)
	m.mu.Unlock()

	if m.PostMessageFunc != nil {
		return m.PostMessageFunc(ctx, channelID, options...)
	}
	return channelID, "1700000000.000100", nil
}

// AuthTestContext mocks the auth.test call
func (m *MockSlackAPI) AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error) {
	if m.AuthTestFunc != nil {
		return m.AuthTestFunc(ctx)
	}
	return &slack.AuthTestResponse{User: "mock-bot", Team: "mock-team"}, nil
}

// Calls returns a snapshot of the recorded join, history and post calls
func (m *MockSlackAPI) Calls() (joined, history, posted []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Joined...),
		append([]string(nil), m.HistoryCalls...),
		append([]string(nil), m.PostedTo...)
}

// MockRunner is a mock of the pipeline runner used by the scheduler
type MockRunner struct {
	RunFunc func(ctx context.Context) error

	mu    sync.Mutex
	calls int
}

// Run mocks a single pipeline run
func (m *MockRunner) Run(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// CallCount returns how many times Run was invoked
func (m *MockRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
