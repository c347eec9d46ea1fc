package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-spa/lumina/internal/appointments"
	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/clients"
)

type fakeApptRepo struct {
	rows map[int64]appointments.Appointment
}

func (m *fakeApptRepo) List(context.Context, authz.ScopeFilter, appointments.ListFilters) ([]appointments.Appointment, error) {
	return nil, nil
}

func (m *fakeApptRepo) Get(_ context.Context, _ authz.ScopeFilter, id int64) (appointments.Appointment, error) {
	a, ok := m.rows[id]
	if !ok {
		return appointments.Appointment{}, appointments.ErrNotFound
	}
	return a, nil
}

func (m *fakeApptRepo) Create(_ context.Context, a appointments.Appointment) (appointments.Appointment, error) {
	return a, nil
}

func (m *fakeApptRepo) UpdateStatus(_ context.Context, _ authz.ScopeFilter, id int64, status appointments.Status) (appointments.Appointment, error) {
	return appointments.Appointment{}, appointments.ErrNotFound
}

func (m *fakeApptRepo) Delete(context.Context, int64) error { return nil }

func (m *fakeApptRepo) CountOverlapping(context.Context, int64, time.Time, time.Time) (int64, error) {
	return 0, nil
}

func (m *fakeApptRepo) ListStartingBetween(_ context.Context, from, to time.Time) ([]appointments.Appointment, error) {
	var out []appointments.Appointment
	for _, a := range m.rows {
		if !a.StartsAt.Before(from) && a.StartsAt.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeClientsRepo struct {
	rows map[int64]clients.Client
}

func (m *fakeClientsRepo) List(context.Context, authz.ScopeFilter, string) ([]clients.Client, error) {
	return nil, nil
}

func (m *fakeClientsRepo) Get(_ context.Context, _ authz.ScopeFilter, id int64) (clients.Client, error) {
	c, ok := m.rows[id]
	if !ok {
		return clients.Client{}, clients.ErrNotFound
	}
	return c, nil
}

func (m *fakeClientsRepo) Create(_ context.Context, c clients.Client) (clients.Client, error) {
	return c, nil
}

func (m *fakeClientsRepo) Update(_ context.Context, c clients.Client) (clients.Client, error) {
	return c, nil
}

func (m *fakeClientsRepo) Delete(context.Context, int64) error { return nil }

type recordingNotifier struct {
	phones   []string
	messages []string
	err      error
}

func (n *recordingNotifier) SendSMS(_ context.Context, phone, message string) error {
	if n.err != nil {
		return n.err
	}
	n.phones = append(n.phones, phone)
	n.messages = append(n.messages, message)
	return nil
}

func reminderFixture(t *testing.T) (*ReminderJob, *fakeApptRepo, *recordingNotifier) {
	t.Helper()
	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	appts := &fakeApptRepo{rows: map[int64]appointments.Appointment{
		1: {ID: 1, ClientID: 5, ProviderID: 2, StartsAt: now.Add(3 * time.Hour), EndsAt: now.Add(4 * time.Hour), Status: appointments.StatusBooked},
		2: {ID: 2, ClientID: 5, ProviderID: 2, StartsAt: now.Add(5 * time.Hour), EndsAt: now.Add(6 * time.Hour), Status: appointments.StatusCancelled},
		3: {ID: 3, ClientID: 6, ProviderID: 2, StartsAt: now.Add(-2 * time.Hour), EndsAt: now.Add(-1 * time.Hour), Status: appointments.StatusBooked},
		4: {ID: 4, ClientID: 7, ProviderID: 3, StartsAt: now.Add(8 * time.Hour), EndsAt: now.Add(9 * time.Hour), Status: appointments.StatusBooked},
	}}
	cls := &fakeClientsRepo{rows: map[int64]clients.Client{
		5: {ID: 5, Name: "Casey", Phone: "+15550100"},
		6: {ID: 6, Name: "Drew", Phone: "+15550101"},
		7: {ID: 7, Name: "Jordan"},
	}}
	notifier := &recordingNotifier{}
	job := NewReminderJob(appts, cls, notifier, slog.New(slog.DiscardHandler), nil)
	job.clock = func() time.Time { return now }
	return job, appts, notifier
}

func reminderTask(t *testing.T, id int64) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(AppointmentReminderPayload{AppointmentID: id})
	require.NoError(t, err)
	return asynq.NewTask(TaskTypeAppointmentReminder, payload)
}

func TestHandleReminderSendsSMS(t *testing.T) {
	job, _, notifier := reminderFixture(t)

	require.NoError(t, job.HandleReminder(context.Background(), reminderTask(t, 1)))
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "+15550100", notifier.phones[0])
	assert.Contains(t, notifier.messages[0], "Hi Casey")
	assert.Contains(t, notifier.messages[0], "reminder of your appointment")
}

func TestHandleReminderSkipsTerminalAndPast(t *testing.T) {
	job, _, notifier := reminderFixture(t)

	// Cancelled, already started, and deleted appointments all complete
	// without sending.
	for _, id := range []int64{2, 3, 99} {
		require.NoError(t, job.HandleReminder(context.Background(), reminderTask(t, id)))
	}
	assert.Empty(t, notifier.messages)
}

func TestHandleReminderSkipsPhonelessClient(t *testing.T) {
	job, _, notifier := reminderFixture(t)

	require.NoError(t, job.HandleReminder(context.Background(), reminderTask(t, 4)))
	assert.Empty(t, notifier.messages)
}

func TestHandleReminderMalformedPayload(t *testing.T) {
	job, _, _ := reminderFixture(t)

	task := asynq.NewTask(TaskTypeAppointmentReminder, []byte("{not json"))
	err := job.HandleReminder(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleReminderNotifierFailure(t *testing.T) {
	job, _, notifier := reminderFixture(t)
	notifier.err = errors.New("gateway timeout")

	err := job.HandleReminder(context.Background(), reminderTask(t, 1))
	assert.Error(t, err)
}

func TestSweepEnqueuesUpcoming(t *testing.T) {
	job, _, _ := reminderFixture(t)

	var enqueued []int64
	handler := job.SweepHandler(func(_ context.Context, appointmentID int64, _ time.Time) error {
		enqueued = append(enqueued, appointmentID)
		return nil
	})

	task := asynq.NewTask(TaskTypeReminderSweep, nil)
	require.NoError(t, handler(context.Background(), task))
	// Appointments 1 and 4 start within the next day; 2 is cancelled and 3
	// lies in the past.
	assert.ElementsMatch(t, []int64{1, 4}, enqueued)
}

func TestSweepReportsEnqueueFailures(t *testing.T) {
	job, _, _ := reminderFixture(t)

	handler := job.SweepHandler(func(context.Context, int64, time.Time) error {
		return errors.New("redis down")
	})

	task := asynq.NewTask(TaskTypeReminderSweep, nil)
	err := handler(context.Background(), task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enqueues failed")
}
