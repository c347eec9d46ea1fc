package appointments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

type mockRepository struct {
	mu     sync.Mutex
	rows   map[int64]Appointment
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{rows: make(map[int64]Appointment), nextID: 1}
}

func (m *mockRepository) owner(a Appointment, column string) int64 {
	switch column {
	case "provider_id":
		return a.ProviderID
	case "client_id":
		return a.ClientID
	}
	return 0
}

func (m *mockRepository) List(ctx context.Context, scope authz.ScopeFilter, filters ListFilters) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.rows {
		if scope.Restricted() && !scope.Matches(m.owner(a, scope.Column)) {
			continue
		}
		if filters.Status != "" && a.Status != filters.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || (scope.Restricted() && !scope.Matches(m.owner(a, scope.Column))) {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

func (m *mockRepository) Create(ctx context.Context, a Appointment) (Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.nextID
	m.nextID++
	m.rows[a.ID] = a
	return a, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, scope authz.ScopeFilter, id int64, status Status) (Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || (scope.Restricted() && !scope.Matches(m.owner(a, scope.Column))) {
		return Appointment{}, ErrNotFound
	}
	a.Status = status
	m.rows[id] = a
	return a, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *mockRepository) CountOverlapping(ctx context.Context, providerID int64, startsAt, endsAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, a := range m.rows {
		if a.ProviderID != providerID || a.Status == StatusCancelled {
			continue
		}
		if a.StartsAt.Before(endsAt) && startsAt.Before(a.EndsAt) {
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.rows {
		if !a.StartsAt.Before(from) && a.StartsAt.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type recordingQueue struct {
	mu  sync.Mutex
	ids []int64
}

func (q *recordingQueue) EnqueueAppointmentReminder(ctx context.Context, appointmentID int64, startsAt time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, appointmentID)
	return nil
}

func slot(dayOffset, hour int) (time.Time, time.Time) {
	start := time.Now().UTC().Truncate(time.Hour).AddDate(0, 0, dayOffset).Add(time.Duration(hour) * time.Hour)
	return start, start.Add(time.Hour)
}

func TestBookEnqueuesReminder(t *testing.T) {
	repo := newMockRepository()
	queue := &recordingQueue{}
	svc := NewService(repo, queue, nil)

	start, end := slot(1, 10)
	created, err := svc.Book(context.Background(), authz.ScopeFilter{}, Appointment{
		ClientID: 1, ProviderID: 2, ServiceID: 3, StartsAt: start, EndsAt: end,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, created.Status)
	assert.Equal(t, []int64{created.ID}, queue.ids)
}

func TestBookForcesOwnClientID(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	scope := authz.ScopeFilter{Column: "client_id", PrincipalID: 77}

	start, end := slot(1, 10)
	// The request claims another client; the scope wins.
	created, err := svc.Book(context.Background(), scope, Appointment{
		ClientID: 1, ProviderID: 2, ServiceID: 3, StartsAt: start, EndsAt: end,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), created.ClientID)
}

func TestBookValidation(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	ctx := context.Background()
	start, end := slot(1, 10)

	_, err := svc.Book(ctx, authz.ScopeFilter{}, Appointment{ProviderID: 2, ServiceID: 3, StartsAt: start, EndsAt: end})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Book(ctx, authz.ScopeFilter{}, Appointment{ClientID: 1, ProviderID: 2, ServiceID: 3, StartsAt: end, EndsAt: start})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestBookRejectsOverlappingProviderSlot(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	start, end := slot(1, 10)
	_, err := svc.Book(ctx, authz.ScopeFilter{}, Appointment{ClientID: 1, ProviderID: 2, ServiceID: 3, StartsAt: start, EndsAt: end})
	require.NoError(t, err)

	_, err = svc.Book(ctx, authz.ScopeFilter{}, Appointment{ClientID: 4, ProviderID: 2, ServiceID: 3, StartsAt: start.Add(30 * time.Minute), EndsAt: end.Add(30 * time.Minute)})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Another provider is free to take the same window.
	_, err = svc.Book(ctx, authz.ScopeFilter{}, Appointment{ClientID: 4, ProviderID: 9, ServiceID: 3, StartsAt: start, EndsAt: end})
	assert.NoError(t, err)
}

func TestProvidersSeeDisjointAppointments(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	startA, endA := slot(1, 9)
	startB, endB := slot(1, 9)
	a, err := svc.Book(ctx, authz.ScopeFilter{}, Appointment{ClientID: 1, ProviderID: 100, ServiceID: 3, StartsAt: startA, EndsAt: endA})
	require.NoError(t, err)
	b, err := svc.Book(ctx, authz.ScopeFilter{}, Appointment{ClientID: 2, ProviderID: 200, ServiceID: 3, StartsAt: startB, EndsAt: endB})
	require.NoError(t, err)

	scopeA := authz.ScopeFilter{Column: "provider_id", PrincipalID: 100}
	scopeB := authz.ScopeFilter{Column: "provider_id", PrincipalID: 200}

	seenA, err := svc.List(ctx, scopeA, ListFilters{})
	require.NoError(t, err)
	seenB, err := svc.List(ctx, scopeB, ListFilters{})
	require.NoError(t, err)

	require.Len(t, seenA, 1)
	require.Len(t, seenB, 1)
	assert.Equal(t, a.ID, seenA[0].ID)
	assert.Equal(t, b.ID, seenB[0].ID)

	// Neither provider can reach the other's row directly either.
	_, err = svc.Get(ctx, scopeA, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	start, end := slot(1, 10)
	appt, err := svc.Book(ctx, authz.ScopeFilter{}, Appointment{ClientID: 1, ProviderID: 2, ServiceID: 3, StartsAt: start, EndsAt: end})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, authz.ScopeFilter{}, appt.ID, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	confirmed, err := svc.UpdateStatus(ctx, authz.ScopeFilter{}, appt.ID, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	done, err := svc.UpdateStatus(ctx, authz.ScopeFilter{}, appt.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	_, err = svc.UpdateStatus(ctx, authz.ScopeFilter{}, appt.ID, StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, authz.ScopeFilter{}, appt.ID, Status("paused"))
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateStatusHonoursScope(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	start, end := slot(1, 10)
	appt, err := svc.Book(ctx, authz.ScopeFilter{}, Appointment{ClientID: 1, ProviderID: 2, ServiceID: 3, StartsAt: start, EndsAt: end})
	require.NoError(t, err)

	foreign := authz.ScopeFilter{Column: "provider_id", PrincipalID: 999}
	_, err = svc.UpdateStatus(ctx, foreign, appt.ID, StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}
