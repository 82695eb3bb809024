// Package heartbeat probes the account bridge on a cron schedule and raises
// a monitoring alert when the account is unreachable. It exists because every
// gateway session is short-lived: without a periodic probe, a dead account
// only surfaces when the panel next tries an operation.
package heartbeat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/PouryDev/support-telegram-account/internal/alert"
	"github.com/PouryDev/support-telegram-account/internal/telegram"
)

const probeTimeout = 30 * time.Second

// Reporter runs the periodic account probe.
type Reporter struct {
	schedule string
	sessions *telegram.SessionProvider
	alerts   *alert.Notifier
	logger   *slog.Logger

	cron *cron.Cron
	// TryLock guards against overlapping ticks when a probe outlives the
	// schedule interval; the late tick is skipped, not queued.
	running sync.Mutex
}

// NewReporter creates a reporter with a standard 5-field cron schedule.
func NewReporter(schedule string, sessions *telegram.SessionProvider, alerts *alert.Notifier, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		schedule: schedule,
		sessions: sessions,
		alerts:   alerts,
		logger:   logger,
	}
}

// Start begins the schedule. Returns an error for an invalid expression.
func (r *Reporter) Start() error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	r.cron = cron.New(cron.WithParser(parser))

	if _, err := r.cron.AddFunc(r.schedule, r.tick); err != nil {
		return fmt.Errorf("heartbeat: invalid schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	r.logger.Info("heartbeat started", "schedule", r.schedule)
	return nil
}

// Stop halts the schedule and waits for a running probe to finish.
func (r *Reporter) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// tick runs one probe, skipping when the previous one is still in flight.
func (r *Reporter) tick() {
	if !r.running.TryLock() {
		r.logger.Warn("heartbeat probe still running, skipping tick")
		return
	}
	defer r.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	if err := r.Probe(ctx); err != nil {
		r.logger.Error("heartbeat probe failed", "error", err)
		r.alerts.Send(ctx, fmt.Sprintf("Account heartbeat failed\n%v", err))
		return
	}
	r.logger.Debug("heartbeat probe ok")
}

// Probe opens a session and asks the bridge for the account's own identity.
func (r *Reporter) Probe(ctx context.Context) error {
	sess, err := r.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	if _, err := sess.GetMe(ctx); err != nil {
		return fmt.Errorf("heartbeat: getMe: %w", err)
	}
	return nil
}
