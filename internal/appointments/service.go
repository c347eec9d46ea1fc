package appointments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// ReminderQueue enqueues a reminder for a booked appointment. Implemented by
// the jobs client; nil disables reminders (tests, seed runs).
type ReminderQueue interface {
	EnqueueAppointmentReminder(ctx context.Context, appointmentID int64, startsAt time.Time) error
}

// Service handles appointment scheduling business logic.
type Service struct {
	repo      Repository
	reminders ReminderQueue
	logger    *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, reminders ReminderQueue, logger *slog.Logger) *Service {
	return &Service{repo: repo, reminders: reminders, logger: logger}
}

// List returns appointments visible under the caller's scope.
func (s *Service) List(ctx context.Context, scope authz.ScopeFilter, filters ListFilters) ([]Appointment, error) {
	return s.repo.List(ctx, scope, filters)
}

// Get fetches a single appointment within scope.
func (s *Service) Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Appointment, error) {
	return s.repo.Get(ctx, scope, id)
}

// Book creates an appointment. A client-scoped caller always books for
// themselves: the scope filter overrides whatever client id the request
// carried.
func (s *Service) Book(ctx context.Context, scope authz.ScopeFilter, a Appointment) (Appointment, error) {
	if scope.Restricted() && scope.Column == "client_id" {
		a.ClientID = scope.PrincipalID
	}
	if a.ClientID == 0 || a.ProviderID == 0 || a.ServiceID == 0 {
		return Appointment{}, fmt.Errorf("client, provider, and service required: %w", httpx.ErrValidation)
	}
	if a.StartsAt.IsZero() || !a.EndsAt.After(a.StartsAt) {
		return Appointment{}, fmt.Errorf("appointment window invalid: %w", httpx.ErrValidation)
	}
	overlapping, err := s.repo.CountOverlapping(ctx, a.ProviderID, a.StartsAt, a.EndsAt)
	if err != nil {
		return Appointment{}, err
	}
	if overlapping > 0 {
		return Appointment{}, ErrSlotTaken
	}
	a.Status = StatusBooked
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return Appointment{}, err
	}
	if s.reminders != nil {
		if err := s.reminders.EnqueueAppointmentReminder(ctx, created.ID, created.StartsAt); err != nil && s.logger != nil {
			s.logger.Warn("enqueue reminder", slog.Int64("appointment_id", created.ID), slog.Any("error", err))
		}
	}
	return created, nil
}

// UpdateStatus moves an appointment through its lifecycle within scope.
func (s *Service) UpdateStatus(ctx context.Context, scope authz.ScopeFilter, id int64, to Status) (Appointment, error) {
	if !to.Valid() {
		return Appointment{}, fmt.Errorf("unknown status %q: %w", to, httpx.ErrValidation)
	}
	current, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return Appointment{}, err
	}
	if !CanTransition(current.Status, to) {
		return Appointment{}, fmt.Errorf("%s to %s: %w", current.Status, to, ErrInvalidTransition)
	}
	return s.repo.UpdateStatus(ctx, scope, id, to)
}

// Delete removes an appointment. Only unscoped roles reach this path.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
