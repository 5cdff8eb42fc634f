package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hot-channels-bot/internal/activity"
	"github.com/hot-channels-bot/internal/apperr"
	"github.com/hot-channels-bot/internal/channels"
	"github.com/hot-channels-bot/internal/config"
	"github.com/hot-channels-bot/internal/publisher"
	"github.com/hot-channels-bot/internal/ranking"
	"github.com/hot-channels-bot/internal/slackapi"
	"github.com/sirupsen/logrus"
)

// Report summarizes a successful run
type Report struct {
	TargetChannel string
	Counted       int
	Ranked        int
	TotalMessages int
	PostedAt      string
	StartedAt     time.Time
	Duration      time.Duration
}

// Runner executes the ranking pipeline against one workspace
type Runner struct {
	api        slackapi.API
	channels   config.ChannelsConfig
	maxEntries int
	counter    *activity.Counter
	publisher  *publisher.Publisher
	now        func() time.Time
}

// Option customizes a Runner
type Option func(*Runner)

// WithClock replaces time.Now, for the header timestamp and the counting window
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner wires the pipeline stages from the configuration
func NewRunner(api slackapi.API, cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		api:        api,
		channels:   cfg.Channels,
		maxEntries: cfg.Ranking.MaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.counter = activity.NewCounter(api, activity.Options{
		PageSize:          cfg.Activity.PageSize,
		Concurrency:       cfg.Activity.Concurrency,
		RequestsPerSecond: cfg.Activity.RequestsPerSecond,
		Now:               r.now,
	})
	r.publisher = publisher.New(api, publisher.Appearance{
		Username:  cfg.BotAppearance.Username,
		IconEmoji: cfg.BotAppearance.IconEmoji,
	}, cfg.DryRun)

	return r
}

// Run executes the pipeline once
func (r *Runner) Run(ctx context.Context) error {
	_, err := r.RunOnce(ctx)
	return err
}

// RunOnce lists, filters, counts, ranks and posts. Nothing is posted unless every
// earlier stage succeeded.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	started := r.now()
	logrus.Infof("Starting hot channel ranking run for #%s", r.channels.ChannelName)

	// Compile exclusions first so a bad pattern fails before any API call
	patterns, err := channels.CompileExclusions(r.channels.ExcludeFromStat)
	if err != nil {
		return nil, err
	}
	literals := make([]string, 0, len(r.channels.ExcludeFromStat)+len(r.channels.ExcludeNames))
	literals = append(literals, r.channels.ExcludeNames...)
	literals = append(literals, r.channels.ExcludeFromStat...)

	all, err := channels.ListPublicChannels(ctx, r.api)
	if err != nil {
		return nil, err
	}

	target, err := channels.SelectTarget(all, r.channels.ChannelName)
	if err != nil {
		return nil, err
	}

	target, err = channels.EnsureMember(ctx, r.api, target)
	if err != nil {
		return nil, err
	}

	candidates := channels.Exclude(all, literals, patterns)

	candidates, err = channels.ReconcileMembership(ctx, r.api, candidates, r.channels.AutoJoin)
	if err != nil {
		return nil, err
	}

	counts, err := r.counter.CountAll(ctx, candidates)
	if err != nil {
		return nil, err
	}

	total := activity.Total(counts)
	rows := ranking.Rank(counts, candidates, r.maxEntries)
	msg := ranking.Compose(rows, total, r.now())

	ts, err := r.publisher.Publish(ctx, target.ID, msg)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TargetChannel: target.Name,
		Counted:       len(counts),
		Ranked:        len(rows),
		TotalMessages: total,
		PostedAt:      ts,
		StartedAt:     started,
		Duration:      r.now().Sub(started),
	}
	logrus.Infof("Ranking run finished: %d channels counted, %d ranked, %d messages total",
		report.Counted, report.Ranked, report.TotalMessages)

	return report, nil
}

// Describe renders an error for the log, naming its kind and whether a later run may succeed
func Describe(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Transient() {
		return fmt.Sprintf("%s error (transient): %v", appErr.Kind, err)
	}
	return fmt.Sprintf("%s error: %v", apperr.KindOf(err), err)
}
