package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jryio/statusbot/command"
	"github.com/jryio/statusbot/directory"
	"github.com/jryio/statusbot/metrics"
	"github.com/jryio/statusbot/secret"
)

// Robot is the overall bot state.
type Robot struct {
	// cmd is the state visible to commands.
	cmd *command.Robot
	// source is where the directory gets desks.
	source directory.Source
	// token is the token expected on incoming webhooks.
	token secret.Secret
	// refresh is the interval between directory refreshes.
	refresh time.Duration
	// metrics are the collectors the bot reports.
	metrics *metrics.Metrics
}

// Run starts the webhook server and the directory refresh loop. It returns
// when either fails or ctx is done.
func (robo *Robot) Run(ctx context.Context, listen string) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return robo.api(ctx, listen, http.NewServeMux(), robo.metrics.Collectors())
	})
	group.Go(func() error {
		robo.refreshLoop(ctx)
		return nil
	})
	return group.Wait()
}

// refreshLoop refreshes the directory immediately and then at each interval
// until ctx is done. Failures keep the previous directory.
func (robo *Robot) refreshLoop(ctx context.Context) {
	robo.refreshOnce(ctx)
	t := time.NewTicker(robo.refresh)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			robo.refreshOnce(ctx)
		}
	}
}

func (robo *Robot) refreshOnce(ctx context.Context) {
	dir := robo.cmd.Directory
	start := time.Now()
	err := dir.Refresh(ctx, robo.source)
	dur := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "directory refresh failed", slog.Any("err", err), slog.Duration("took", dur))
		robo.metrics.RefreshLatency.Observe(dur.Seconds(), "error")
		return
	}
	slog.DebugContext(ctx, "directory refreshed", slog.Int("desks", dir.Len()), slog.Duration("took", dur))
	robo.metrics.RefreshLatency.Observe(dur.Seconds(), "ok")
	robo.metrics.DirectorySize.Observe(float64(dir.Len()))
}
