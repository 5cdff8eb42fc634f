// Hot Channels Bot
// Copyright (C) 2025  Hot Channels Bot Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hot-channels-bot/internal/bot"
	"github.com/hot-channels-bot/internal/config"
	"github.com/hot-channels-bot/internal/health"
	"github.com/hot-channels-bot/internal/scheduler"
	"github.com/hot-channels-bot/internal/slackapi"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %s", bot.Describe(err))
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)

	logrus.Info("Starting Hot Channels Bot")

	client, err := slackapi.New(cfg.Slack.Token, slackapi.Options{
		APIURL: cfg.Slack.APIURL,
		Debug:  cfg.Slack.Debug,
	})
	if err != nil {
		logrus.Fatalf("Failed to create Slack client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := slackapi.Verify(ctx, client); err != nil {
		logrus.Fatalf("Slack authentication failed: %v", err)
	}

	runner := bot.NewRunner(client, cfg)

	if !cfg.Scheduled() {
		if err := runOnce(ctx, runner); err != nil {
			logrus.Errorf("Ranking run failed: %s", bot.Describe(err))
			stop()
			os.Exit(1)
		}
		return
	}

	if err := runScheduled(ctx, cfg, runner); err != nil {
		logrus.Errorf("Scheduler failed: %v", err)
		stop()
		os.Exit(1)
	}
}

// runOnce executes a single ranking run
func runOnce(ctx context.Context, runner scheduler.Runner) error {
	ctx, cancel := context.WithTimeout(ctx, scheduler.RunTimeout)
	defer cancel()

	return runner.Run(ctx)
}

// runScheduled keeps the bot resident, serving health checks until ctx is cancelled
func runScheduled(ctx context.Context, cfg *config.Config, runner scheduler.Runner) error {
	loc := time.Local
	if cfg.Schedule.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Schedule.Timezone)
		if err != nil {
			return err
		}
	}

	healthServer := health.NewServer(cfg.Health.Port)
	go func() {
		if err := healthServer.Start(); err != nil {
			logrus.Errorf("Health server error: %v", err)
		}
	}()

	sched := scheduler.New(cfg.Schedule.Cron, loc, runner, healthServer)
	err := sched.Start(ctx)

	logrus.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if stopErr := healthServer.Stop(shutdownCtx); stopErr != nil {
		logrus.Warnf("Failed to stop health server: %v", stopErr)
	}

	return err
}
