package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lumina-spa/lumina/internal/appointments"
	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/clients"
	jobmetrics "github.com/lumina-spa/lumina/internal/jobs"
	"github.com/lumina-spa/lumina/internal/notify"
)

var _ appointments.ReminderQueue = (*Client)(nil)

// ReminderJob delivers appointment reminders to clients over SMS.
type ReminderJob struct {
	Appointments appointments.Repository
	Clients      clients.Repository
	Notifier     notify.Notifier
	Logger       *slog.Logger
	Metrics      *jobmetrics.Metrics
	clock        func() time.Time
}

// NewReminderJob initialises the reminder handler.
func NewReminderJob(appts appointments.Repository, cl clients.Repository, notifier notify.Notifier, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReminderJob {
	return &ReminderJob{
		Appointments: appts,
		Clients:      cl,
		Notifier:     notifier,
		Logger:       logger,
		Metrics:      metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// HandleReminder processes a single appointment reminder.
func (j *ReminderJob) HandleReminder(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("reminder job: not configured")
	}
	tracker := j.Metrics.Track("appointment_reminder")

	var payload AppointmentReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	// Jobs run as the system, not a principal: lookups are unscoped.
	appt, err := j.Appointments.Get(ctx, authz.ScopeFilter{}, payload.AppointmentID)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			return tracker.End(nil)
		}
		return tracker.End(err)
	}
	if appt.Status == appointments.StatusCancelled || appt.Status == appointments.StatusCompleted {
		return tracker.End(nil)
	}
	if !appt.StartsAt.After(j.clock()) {
		return tracker.End(nil)
	}
	client, err := j.Clients.Get(ctx, authz.ScopeFilter{}, appt.ClientID)
	if err != nil {
		return tracker.End(err)
	}
	if client.Phone == "" {
		j.Logger.Warn("reminder skipped, client has no phone",
			slog.Int64("appointment_id", appt.ID),
			slog.Int64("client_id", client.ID))
		return tracker.End(nil)
	}
	msg := fmt.Sprintf("Hi %s, this is a reminder of your appointment on %s.",
		client.Name, appt.StartsAt.Format("Mon Jan 2 at 3:04 PM"))
	if err := j.Notifier.SendSMS(ctx, client.Phone, msg); err != nil {
		return tracker.End(err)
	}
	j.Metrics.AddReminders("sms", 1)
	j.Logger.Info("appointment reminder sent",
		slog.Int64("appointment_id", appt.ID),
		slog.Int64("client_id", client.ID))
	return tracker.End(nil)
}

// SweepHandler enqueues a reminder for every appointment starting in the next
// day. Runs nightly via the scheduler; per-appointment tasks are deduplicated
// by Asynq task id so repeated sweeps stay idempotent.
func (j *ReminderJob) SweepHandler(enqueue func(ctx context.Context, appointmentID int64, startsAt time.Time) error) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if j == nil {
			return errors.New("reminder job: not configured")
		}
		tracker := j.Metrics.Track("reminder_sweep")
		now := j.clock()
		due, err := j.Appointments.ListStartingBetween(ctx, now, now.Add(24*time.Hour))
		if err != nil {
			return tracker.End(err)
		}
		var failed int
		for _, appt := range due {
			if appt.Status == appointments.StatusCancelled {
				continue
			}
			if err := enqueue(ctx, appt.ID, appt.StartsAt); err != nil {
				failed++
				j.Logger.Warn("reminder enqueue failed",
					slog.Int64("appointment_id", appt.ID),
					slog.Any("error", err))
			}
		}
		if failed > 0 {
			return tracker.End(fmt.Errorf("reminder sweep: %d of %d enqueues failed", failed, len(due)))
		}
		return tracker.End(nil)
	}
}
