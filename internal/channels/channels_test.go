package channels

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/hot-channels-bot/internal/apperr"
	"github.com/hot-channels-bot/internal/mocks"
	"github.com/hot-channels-bot/internal/models"
	"github.com/slack-go/slack"
)

func sampleChannels() []models.ChannelMeta {
	return []models.ChannelMeta{
		{ID: "C1", Name: "general", IsMember: true, MemberCount: 40},
		{ID: "C2", Name: "random", IsMember: false, MemberCount: 35},
		{ID: "C3", Name: "hot-channels", IsMember: true, MemberCount: 12},
		{ID: "C4", Name: "times-alice", IsMember: false, MemberCount: 2},
		{ID: "C5", Name: "times-bob", IsMember: true, MemberCount: 3},
		{ID: "C6", Name: "雑談", IsMember: true, MemberCount: 8},
	}
}

func TestListPublicChannels(t *testing.T) {
	notChannel := false
	api := &mocks.MockSlackAPI{
		GetConversationsFunc: func(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
			if !params.ExcludeArchived {
				t.Errorf("Expected archived channels to be excluded")
			}
			if params.Limit != ListLimit {
				t.Errorf("Expected limit %d, got %d", ListLimit, params.Limit)
			}
			if len(params.Types) != 1 || params.Types[0] != "public_channel" {
				t.Errorf("Expected public_channel type filter, got %v", params.Types)
			}
			return mocks.SlackChannels(
				mocks.ChannelFixture{ID: "C1", Name: "general", IsMember: true, Topic: "company news", Purpose: "everyone", Members: 40},
				mocks.ChannelFixture{ID: "G1", Name: "not-a-channel", IsChannel: &notChannel},
				mocks.ChannelFixture{ID: "C2", Name: "random", Members: 35},
			), "", nil
		},
	}

	metas, err := ListPublicChannels(context.Background(), api)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("Expected 2 channels, got %d", len(metas))
	}

	expected := models.ChannelMeta{ID: "C1", Name: "general", IsMember: true, Topic: "company news", Purpose: "everyone", MemberCount: 40}
	if metas[0] != expected {
		t.Errorf("Expected %+v, got %+v", expected, metas[0])
	}
	if metas[1].Name != "random" || metas[1].IsMember {
		t.Errorf("Unexpected second channel: %+v", metas[1])
	}
	if api.ListCalls != 1 {
		t.Errorf("Expected exactly one list call, got %d", api.ListCalls)
	}
}

func TestListPublicChannels_Errors(t *testing.T) {
	tests := []struct {
		name     string
		channels []slack.Channel
		err      error
	}{
		{name: "api error", err: errors.New("invalid_auth")},
		{name: "malformed payload", channels: mocks.SlackChannels(mocks.ChannelFixture{ID: "", Name: "ghost"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mocks.MockSlackAPI{
				GetConversationsFunc: func(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
					return tt.channels, "", tt.err
				},
			}

			_, err := ListPublicChannels(context.Background(), api)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !apperr.Is(err, apperr.KindChannelFetch) {
				t.Errorf("Expected channel fetch error, got %v (kind %v)", err, apperr.KindOf(err))
			}
		})
	}
}

func TestSelectTarget(t *testing.T) {
	channels := sampleChannels()

	target, err := SelectTarget(channels, "hot-channels")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if target.ID != "C3" {
		t.Errorf("Expected C3, got %s", target.ID)
	}

	for _, name := range []string{"hot", "Hot-Channels", "hot-channels ", ""} {
		t.Run("missing "+name, func(t *testing.T) {
			_, err := SelectTarget(channels, name)
			if !apperr.Is(err, apperr.KindConfiguration) {
				t.Errorf("Expected configuration error for %q, got %v", name, err)
			}
		})
	}
}

func TestCompileExclusions(t *testing.T) {
	patterns, err := CompileExclusions([]string{"times-.*", "hot-channels"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("Expected 2 patterns, got %d", len(patterns))
	}
	if patterns[1].MatchString("not-hot-channels") {
		t.Errorf("Compiled patterns must only match whole names")
	}

	_, err = CompileExclusions([]string{"times-("})
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Errorf("Expected configuration error for invalid pattern, got %v", err)
	}
}

func TestExclude(t *testing.T) {
	tests := []struct {
		name     string
		literals []string
		patterns []string
		expected []string
	}{
		{
			name:     "no exclusions",
			expected: []string{"general", "random", "hot-channels", "times-alice", "times-bob", "雑談"},
		},
		{
			name:     "literal names",
			literals: []string{"hot-channels", "random", "does-not-exist"},
			expected: []string{"general", "times-alice", "times-bob", "雑談"},
		},
		{
			name:     "full match patterns",
			patterns: []string{"times-.*"},
			expected: []string{"general", "random", "hot-channels", "雑談"},
		},
		{
			name:     "substring is not enough",
			patterns: []string{"times", "eral"},
			expected: []string{"general", "random", "hot-channels", "times-alice", "times-bob", "雑談"},
		},
		{
			name:     "unicode pattern",
			patterns: []string{`\p{Han}+`},
			expected: []string{"general", "random", "hot-channels", "times-alice", "times-bob"},
		},
		{
			name:     "literal and pattern combined",
			literals: []string{"hot-channels"},
			patterns: []string{"times-(alice|bob)", "gen.*"},
			expected: []string{"random", "雑談"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns, err := CompileExclusions(tt.patterns)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			input := sampleChannels()
			result := Exclude(input, tt.literals, patterns)

			names := models.ChannelNames(result)
			if len(names) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, names)
			}
			for i := range names {
				if names[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, names)
					break
				}
			}

			if len(input) != len(sampleChannels()) {
				t.Errorf("Input slice must not be modified")
			}
		})
	}
}

func TestExclude_UnanchoredPatterns(t *testing.T) {
	// Patterns compiled elsewhere still get full-match semantics
	patterns := []*regexp.Regexp{regexp.MustCompile("times"), regexp.MustCompile("random|x")}

	result := Exclude(sampleChannels(), nil, patterns)

	for _, c := range result {
		if c.Name == "random" {
			t.Errorf("Expected random to be excluded by full match")
		}
	}
	if len(result) != 5 {
		t.Errorf("Expected 5 channels, got %v", models.ChannelNames(result))
	}
}

func TestExclude_Property(t *testing.T) {
	literals := []string{"random"}
	patterns, _ := CompileExclusions([]string{"times-.*", "hot-.*"})
	anchored := anchorAll(patterns)

	input := sampleChannels()
	result := Exclude(input, literals, patterns)

	seen := make(map[string]int)
	for _, c := range result {
		seen[c.ID]++
		if c.Name == "random" || firstFullMatch(anchored, c.Name) >= 0 {
			t.Errorf("Excluded channel %s survived", c.Name)
		}
	}
	for _, c := range input {
		excluded := c.Name == "random" || firstFullMatch(anchored, c.Name) >= 0
		if !excluded && seen[c.ID] != 1 {
			t.Errorf("Expected channel %s exactly once, got %d", c.Name, seen[c.ID])
		}
	}
}

func TestReconcileMembership_AutoJoin(t *testing.T) {
	api := &mocks.MockSlackAPI{}
	input := sampleChannels()

	result, err := ReconcileMembership(context.Background(), api, input, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result) != len(input) {
		t.Fatalf("Expected %d channels, got %d", len(input), len(result))
	}
	for i := range result {
		if result[i].ID != input[i].ID {
			t.Errorf("Order changed at %d: %s vs %s", i, result[i].ID, input[i].ID)
		}
		if !result[i].IsMember {
			t.Errorf("Expected %s to be a member", result[i].Name)
		}
	}

	joined, _, _ := api.Calls()
	if len(joined) != 2 || joined[0] != "C2" || joined[1] != "C4" {
		t.Errorf("Expected joins for C2 then C4, got %v", joined)
	}

	if input[1].IsMember {
		t.Errorf("Input records must not be mutated")
	}
}

func TestReconcileMembership_NoAutoJoin(t *testing.T) {
	api := &mocks.MockSlackAPI{}

	result, err := ReconcileMembership(context.Background(), api, sampleChannels(), false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	names := models.ChannelNames(result)
	expected := []string{"general", "hot-channels", "times-bob", "雑談"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, names)
		}
	}

	if joined, _, _ := api.Calls(); len(joined) != 0 {
		t.Errorf("Expected no join calls, got %v", joined)
	}
}

func TestReconcileMembership_JoinFailure(t *testing.T) {
	api := &mocks.MockSlackAPI{
		JoinConversationFunc: func(ctx context.Context, channelID string) (*slack.Channel, string, []string, error) {
			if channelID == "C2" {
				return nil, "", nil, errors.New("is_archived")
			}
			return &slack.Channel{}, "", nil, nil
		},
	}

	result, err := ReconcileMembership(context.Background(), api, sampleChannels(), true)
	if err == nil {
		t.Fatal("Expected join error")
	}
	if !apperr.Is(err, apperr.KindJoin) {
		t.Errorf("Expected join error kind, got %v", apperr.KindOf(err))
	}
	if result != nil {
		t.Errorf("Expected no partial result, got %v", models.ChannelNames(result))
	}

	joined, _, _ := api.Calls()
	if len(joined) != 1 {
		t.Errorf("Expected to stop after the first failed join, got %v", joined)
	}
}

func TestEnsureMember(t *testing.T) {
	api := &mocks.MockSlackAPI{}

	member := models.ChannelMeta{ID: "C1", Name: "hot-channels", IsMember: true}
	got, err := EnsureMember(context.Background(), api, member)
	if err != nil || !got.IsMember {
		t.Fatalf("Unexpected result %+v, %v", got, err)
	}
	if joined, _, _ := api.Calls(); len(joined) != 0 {
		t.Errorf("Expected no join for existing member, got %v", joined)
	}

	outsider := models.ChannelMeta{ID: "C9", Name: "hot-channels"}
	got, err = EnsureMember(context.Background(), api, outsider)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !got.IsMember {
		t.Errorf("Expected membership after join")
	}
	if joined, _, _ := api.Calls(); len(joined) != 1 || joined[0] != "C9" {
		t.Errorf("Expected one join for C9, got %v", joined)
	}
}
