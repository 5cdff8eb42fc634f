package activity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hot-channels-bot/internal/apperr"
	"github.com/hot-channels-bot/internal/models"
	"github.com/hot-channels-bot/internal/slackapi"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

const (
	// DefaultPageSize matches the default page size of conversations.history
	DefaultPageSize = 100
	// Window is how far back messages are counted
	Window = 24 * time.Hour
)

// Options configures a Counter
type Options struct {
	PageSize          int
	Concurrency       int
	RequestsPerSecond float64
	Now               func() time.Time
}

// Counter counts recent messages per channel from a single history page.
// A channel with more than PageSize messages in the window is undercounted; no
// pagination is attempted.
type Counter struct {
	api         slackapi.API
	pageSize    int
	concurrency int
	limiter     *rate.Limiter
	now         func() time.Time
}

// NewCounter creates a counter, filling in defaults for unset options
func NewCounter(api slackapi.API, opts Options) *Counter {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Counter{
		api:         api,
		pageSize:    opts.PageSize,
		concurrency: opts.Concurrency,
		limiter:     rate.NewLimiter(limit, 1),
		now:         opts.Now,
	}
}

// CountRecentMessages counts messages in the newest history page posted at or after now-Window
func (c *Counter) CountRecentMessages(ctx context.Context, channelID string) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, apperr.New(apperr.KindHistoryFetch, "conversations.history "+channelID, err)
	}

	now := c.now()
	since := now.Add(-Window)

	params := &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     c.pageSize,
		Oldest:    formatTimestamp(since),
		Inclusive: true,
	}

	history, err := c.api.GetConversationHistoryContext(ctx, params)
	if err != nil {
		logrus.Errorf("Error fetching history for channel %s: %v", channelID, err)
		return 0, apperr.New(apperr.KindHistoryFetch, "conversations.history "+channelID, err)
	}
	if history == nil {
		return 0, apperr.New(apperr.KindHistoryFetch, "conversations.history "+channelID,
			fmt.Errorf("empty response"))
	}

	count := 0
	for _, msg := range history.Messages {
		ts, err := ParseTimestamp(msg.Timestamp)
		if err != nil {
			return 0, apperr.New(apperr.KindHistoryFetch, "conversations.history "+channelID, err)
		}
		if !ts.Before(since) {
			count++
		}
	}

	if count >= c.pageSize {
		logrus.Warnf("Channel %s saturated the history page (%d messages), count is a lower bound", channelID, count)
	}
	logrus.Debugf("Channel %s: %d messages since %s", channelID, count, since.Format(time.RFC3339))

	return count, nil
}

// CountAll counts every channel and returns the results in input order.
// With concurrency above one the history calls fan out over a bounded pool; the first
// failure cancels the remaining calls and is returned.
func (c *Counter) CountAll(ctx context.Context, channels []models.ChannelMeta) ([]models.MessageCount, error) {
	counts := make([]models.MessageCount, len(channels))

	if c.concurrency == 1 || len(channels) <= 1 {
		for i, ch := range channels {
			n, err := c.CountRecentMessages(ctx, ch.ID)
			if err != nil {
				return nil, err
			}
			counts[i] = models.MessageCount{ChannelID: ch.ID, Count: n}
		}
		return counts, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	jobs := make(chan int)

	workers := c.concurrency
	if workers > len(channels) {
		workers = len(channels)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				n, err := c.CountRecentMessages(ctx, channels[i].ID)
				if err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				counts[i] = models.MessageCount{ChannelID: channels[i].ID, Count: n}
			}
		}()
	}

feed:
	for i := range channels {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, apperr.New(apperr.KindHistoryFetch, "count messages", err)
	}
	return counts, nil
}

// Total sums the counts
func Total(counts []models.MessageCount) int {
	total := 0
	for _, mc := range counts {
		total += mc.Count
	}
	return total
}

// ParseTimestamp converts a Slack message timestamp such as "1700000000.000200"
func ParseTimestamp(ts string) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid message timestamp %q: %w", ts, err)
	}

	var nsec int64
	if fracPart != "" {
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		}
		frac, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid message timestamp %q: %w", ts, err)
		}
		for i := len(fracPart); i < 9; i++ {
			frac *= 10
		}
		nsec = frac
	}

	return time.Unix(sec, nsec), nil
}

func formatTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}
