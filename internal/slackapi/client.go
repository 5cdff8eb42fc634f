package slackapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

// Options tweaks how the Slack client is built
type Options struct {
	// APIURL overrides the Slack endpoint, mostly for tests. It must end with a slash.
	APIURL string
	Debug  bool
}

// logrusAdapter routes slack-go's internal logging to logrus at debug level
type logrusAdapter struct {
	entry *logrus.Entry
}

func (a *logrusAdapter) Output(calldepth int, s string) error {
	a.entry.Debug(strings.TrimSpace(s))
	return nil
}

// New creates a Slack client authenticated with a bot token
func New(token string, opts Options) (*slack.Client, error) {
	if token == "" {
		return nil, fmt.Errorf("slack token is required")
	}

	clientOpts := []slack.Option{
		slack.OptionLog(&logrusAdapter{entry: logrus.WithField("component", "slack-api")}),
		slack.OptionDebug(opts.Debug),
	}
	if opts.APIURL != "" {
		url := opts.APIURL
		if !strings.HasSuffix(url, "/") {
			url += "/"
		}
		clientOpts = append(clientOpts, slack.OptionAPIURL(url))
	}

	client := slack.New(token, clientOpts...)
	logrus.Debugf("Created Slack client with token starting with: %s", maskToken(token))

	return client, nil
}

// Verify runs auth.test so that a bad token fails before any channel is touched
func Verify(ctx context.Context, api AuthTester) (*slack.AuthTestResponse, error) {
	resp, err := api.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Slack: %w", err)
	}
	logrus.Infof("Authenticated with Slack as: %s (team: %s)", resp.User, resp.Team)
	return resp, nil
}

func maskToken(token string) string {
	if len(token) <= 10 {
		return "***"
	}
	return token[:10] + "..."
}
