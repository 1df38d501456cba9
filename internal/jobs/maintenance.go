// Package jobs runs the periodic maintenance the TTL indexes do not fully
// cover: sessions past expiry are flagged inactive between sweeps, and
// analytics retention is enforced even where the TTL index is missing.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"inkwell/cms/internal/config"
	"inkwell/cms/internal/repository"
)

type Maintenance struct {
	cron      *cron.Cron
	sessions  *repository.SessionRepository
	analytics *repository.AnalyticsRepository
	retention config.RetentionConfig
	log       zerolog.Logger
}

func NewMaintenance(
	sessions *repository.SessionRepository,
	analytics *repository.AnalyticsRepository,
	retention config.RetentionConfig,
	log zerolog.Logger,
) *Maintenance {
	return &Maintenance{
		cron:      cron.New(cron.WithSeconds()),
		sessions:  sessions,
		analytics: analytics,
		retention: retention,
		log:       log,
	}
}

func (m *Maintenance) Start() error {
	if _, err := m.cron.AddFunc(m.retention.SessionSweep, m.sweepSessions); err != nil {
		return err
	}
	if _, err := m.cron.AddFunc(m.retention.AnalyticsSweep, m.pruneAnalytics); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop halts scheduling and waits briefly for running sweeps.
func (m *Maintenance) Stop() {
	stopped := m.cron.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(5 * time.Second):
		m.log.Warn().Msg("maintenance stop timed out")
	}
}

func (m *Maintenance) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := m.sessions.DeactivateExpired(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if n > 0 {
		m.log.Info().Int64("sessions", n).Msg("deactivated expired sessions")
	}
}

func (m *Maintenance) pruneAnalytics() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-m.retention.AnalyticsMaxAge)
	n, err := m.analytics.PruneOlderThan(ctx, cutoff)
	if err != nil {
		m.log.Error().Err(err).Msg("analytics prune failed")
		return
	}
	if n > 0 {
		m.log.Info().Int64("events", n).Time("cutoff", cutoff).Msg("pruned analytics events")
	}
}
