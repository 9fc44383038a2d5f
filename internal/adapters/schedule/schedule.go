// Package schedule decides when polling cycles run: once a day shortly after
// midnight, plus a fallback interval so a missed daily run is recovered.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	DefaultDaily    = "1 0 * * *"
	DefaultFallback = "@every 12h"
)

type Config struct {
	Daily    string
	Fallback string
	Location *time.Location
}

type Schedule struct {
	daily    cron.Schedule
	fallback cron.Schedule
	loc      *time.Location
	log      zerolog.Logger
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func New(cfg Config, log zerolog.Logger) (*Schedule, error) {
	if strings.TrimSpace(cfg.Daily) == "" {
		cfg.Daily = DefaultDaily
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	daily, err := parser.Parse(cfg.Daily)
	if err != nil {
		return nil, fmt.Errorf("parse daily schedule %q: %w", cfg.Daily, err)
	}

	s := &Schedule{
		daily: daily,
		loc:   cfg.Location,
		log:   log.With().Str("component", "schedule").Logger(),
	}
	if strings.TrimSpace(cfg.Fallback) != "" {
		if s.fallback, err = parser.Parse(cfg.Fallback); err != nil {
			return nil, fmt.Errorf("parse fallback schedule %q: %w", cfg.Fallback, err)
		}
	}

	return s, nil
}

func (s *Schedule) Location() *time.Location {
	return s.loc
}

// NextFireTime is the next daily trigger after now, in the configured zone.
func (s *Schedule) NextFireTime(now time.Time) time.Time {
	return s.daily.Next(now.In(s.loc))
}

// Next is the earliest of the daily trigger and the fallback interval.
func (s *Schedule) Next(now time.Time) time.Time {
	next := s.NextFireTime(now)
	if s.fallback == nil {
		return next
	}
	if fallback := s.fallback.Next(now.In(s.loc)); fallback.Before(next) {
		return fallback
	}
	return next
}

// Run fires job on every trigger until ctx is done. A trigger that arrives
// while the previous job is still running is dropped.
func (s *Schedule) Run(ctx context.Context, job func(context.Context)) {
	logger := cronLogger{log: s.log}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(s.loc),
		cron.WithLogger(logger),
	)

	// Both triggers share one wrapped job so they also share the overlap guard.
	wrapped := cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).
		Then(cron.FuncJob(func() { job(ctx) }))
	c.Schedule(s.daily, wrapped)
	if s.fallback != nil {
		c.Schedule(s.fallback, wrapped)
	}

	c.Start()
	s.log.Info().
		Str("tz", s.loc.String()).
		Time("next_fire", s.NextFireTime(time.Now())).
		Msg("scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
