package mocks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/slack-go/slack"
)

// ChannelFixture describes a channel as conversations.list would return it
type ChannelFixture struct {
	ID        string
	Name      string
	IsMember  bool
	Topic     string
	Purpose   string
	Members   int
	IsChannel *bool
}

// SlackChannel decodes the fixture through the Slack wire format
func (f ChannelFixture) SlackChannel() slack.Channel {
	isChannel := true
	if f.IsChannel != nil {
		isChannel = *f.IsChannel
	}

	raw := map[string]any{
		"id":          f.ID,
		"name":        f.Name,
		"is_channel":  isChannel,
		"is_member":   f.IsMember,
		"num_members": f.Members,
		"topic":       map[string]any{"value": f.Topic},
		"purpose":     map[string]any{"value": f.Purpose},
	}

	data, err := json.Marshal(raw)
	if err != nil {
		panic(fmt.Sprintf("marshal channel fixture: %v", err))
	}

	var channel slack.Channel
	if err := json.Unmarshal(data, &channel); err != nil {
		panic(fmt.Sprintf("unmarshal channel fixture: %v", err))
	}
	return channel
}

// SlackChannels converts fixtures in order
func SlackChannels(fixtures ...ChannelFixture) []slack.Channel {
	channels := make([]slack.Channel, 0, len(fixtures))
	for _, f := range fixtures {
		channels = append(channels, f.SlackChannel())
	}
	return channels
}

// Timestamp renders t the way Slack formats message timestamps
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10) + "." + fmt.Sprintf("%06d", t.Nanosecond()/1000)
}

// Messages builds history messages posted at the given times
func Messages(times ...time.Time) []slack.Message {
	messages := make([]slack.Message, 0, len(times))
	for _, t := range times {
		messages = append(messages, slack.Message{Msg: slack.Msg{Timestamp: Timestamp(t), Text: "hello"}})
	}
	return messages
}
