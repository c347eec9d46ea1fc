package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-spa/lumina/internal/authz"
)

type mockRepository struct {
	upcoming    int64
	clients     int64
	revenue     int64
	revenueErr  error
	revenueHits int
	lastScope   authz.ScopeFilter
}

func (m *mockRepository) CountUpcomingAppointments(_ context.Context, scope authz.ScopeFilter, _ time.Time) (int64, error) {
	m.lastScope = scope
	return m.upcoming, nil
}

func (m *mockRepository) CountClients(context.Context) (int64, error) {
	return m.clients, nil
}

func (m *mockRepository) SumPaymentsBetween(context.Context, time.Time, time.Time) (int64, error) {
	m.revenueHits++
	if m.revenueErr != nil {
		return 0, m.revenueErr
	}
	return m.revenue, nil
}

func TestSummarizeUnscopedIncludesRevenue(t *testing.T) {
	repo := &mockRepository{upcoming: 4, clients: 12, revenue: 45500}
	svc := NewService(repo)

	summary, err := svc.Summarize(context.Background(), authz.ScopeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, summary.UpcomingAppointments)
	assert.EqualValues(t, 12, summary.ActiveClients)
	require.NotNil(t, summary.RevenueTodayCents)
	assert.EqualValues(t, 45500, *summary.RevenueTodayCents)
	assert.Equal(t, "USD 455.00", summary.RevenueToday)
}

func TestSummarizeScopedOmitsRevenue(t *testing.T) {
	repo := &mockRepository{upcoming: 2, clients: 12}
	svc := NewService(repo)

	scope := authz.ScopeFilter{Column: "provider_id", PrincipalID: 7}
	summary, err := svc.Summarize(context.Background(), scope)
	require.NoError(t, err)
	assert.Nil(t, summary.RevenueTodayCents)
	assert.Empty(t, summary.RevenueToday)
	assert.Zero(t, repo.revenueHits)
	assert.Equal(t, scope, repo.lastScope)
}

func TestSummarizePropagatesErrors(t *testing.T) {
	repo := &mockRepository{revenueErr: errors.New("payments table gone")}
	svc := NewService(repo)

	_, err := svc.Summarize(context.Background(), authz.ScopeFilter{})
	assert.Error(t, err)
}
