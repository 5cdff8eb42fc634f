package models

// ChannelMeta describes a public Slack channel as seen during a single run
type ChannelMeta struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsMember    bool   `json:"is_member"`
	Topic       string `json:"topic"`
	Purpose     string `json:"purpose"`
	MemberCount int    `json:"member_count"`
}

// WithMembership returns a copy of the channel with the membership flag set
func (c ChannelMeta) WithMembership(isMember bool) ChannelMeta {
	c.IsMember = isMember
	return c
}

// MessageCount is the number of messages a channel received inside the counting window
type MessageCount struct {
	ChannelID string `json:"channel_id"`
	Count     int    `json:"count"`
}

// ChannelNames returns the names of the given channels in order
func ChannelNames(channels []ChannelMeta) []string {
	names := make([]string, 0, len(channels))
	for _, c := range channels {
		names = append(names, c.Name)
	}
	return names
}
