package ranking

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/slack-go/slack"
)

const (
	// Title is the text of the header block
	Title = ":star2: Daily Hot Channel Rankings :star2:"
	// FallbackText is shown by clients that cannot render blocks
	FallbackText = "Hot channel ranking"

	timestampLayout = "2006-01-02 (Mon) 15:04 MST"
)

// HeaderBlockCount is the number of blocks placed before the first ranked channel
const HeaderBlockCount = 3

// BlocksPerRow is the number of blocks rendered for each ranked channel
const BlocksPerRow = 2

// Message is a composed ranking ready to be posted
type Message struct {
	Text   string
	Blocks []slack.Block
}

// JSON renders the blocks the way chat.postMessage receives them
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(slack.Blocks{BlockSet: m.Blocks})
}

// Compose builds the Block Kit payload. total is the message volume across all counted
// channels and at is the time shown in the context line.
func Compose(rows []Row, total int, at time.Time) Message {
	blocks := make([]slack.Block, 0, HeaderBlockCount+BlocksPerRow*len(rows))
	blocks = append(blocks,
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, Title, true, false)),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("Total %d messages in last 24 hr. |%s", total, at.Format(timestampLayout)),
				false, false),
		),
		slack.NewDividerBlock(),
	)

	for _, row := range rows {
		fields := []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, channelField(row), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, statsField(row), false, false),
		}
		blocks = append(blocks,
			slack.NewSectionBlock(nil, fields, nil),
			slack.NewDividerBlock(),
		)
	}

	return Message{Text: FallbackText, Blocks: blocks}
}

// channelField renders the medal, channel name and emphasized topic
func channelField(row Row) string {
	topic := row.Channel.Topic
	if topic != "" {
		topic = "*" + topic + "*"
	}
	return fmt.Sprintf("%s  #%s\n%s", row.Medal, row.Channel.Name, topic)
}

// statsField renders the message count, member count and purpose
func statsField(row Row) string {
	return fmt.Sprintf(":speech_balloon: %d :people_holding_hands: %d\n%s",
		row.Count, row.Channel.MemberCount, row.Channel.Purpose)
}
