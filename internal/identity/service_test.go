package identity

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-spa/lumina/internal/authz"
)

type mockRepository struct {
	accounts map[int64]*Account
	byEmail  map[string]int64
	tokens   map[string]int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		accounts: make(map[int64]*Account),
		byEmail:  make(map[string]int64),
		tokens:   make(map[string]int64),
	}
}

func (m *mockRepository) add(acc Account) {
	copied := acc
	m.accounts[acc.ID] = &copied
	m.byEmail[acc.Email] = acc.ID
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	copied := *m.accounts[id]
	return &copied, nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	acc, ok := m.accounts[id]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	copied := *acc
	return &copied, nil
}

func (m *mockRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	acc, ok := m.accounts[id]
	if !ok {
		return ErrPrincipalNotFound
	}
	acc.Role = role
	return nil
}

func (m *mockRepository) SetActive(ctx context.Context, id int64, active bool) error {
	acc, ok := m.accounts[id]
	if !ok {
		return ErrPrincipalNotFound
	}
	acc.IsActive = active
	return nil
}

func (m *mockRepository) RecordToken(ctx context.Context, jti string, principalID int64, issuedAt, expiresAt time.Time, ip, ua string) error {
	m.tokens[jti] = principalID
	return nil
}

func (m *mockRepository) DeleteToken(ctx context.Context, jti string) error {
	delete(m.tokens, jti)
	return nil
}

func serviceFixture(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := newMockRepository()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.add(Account{ID: 1, Email: "rita@lumina.local", Name: "Rita", PasswordHash: string(hash), Role: "reception", IsActive: true})
	repo.add(Account{ID: 2, Email: "sam@lumina.local", Name: "Sam", PasswordHash: string(hash), Role: "staff", IsActive: true})
	repo.add(Account{ID: 3, Email: "gone@lumina.local", Name: "Gone", PasswordHash: string(hash), Role: "client", IsActive: false})

	svc := NewService(repo, NewTokenIssuer(testSecret, time.Hour), NewRevocationList(client), nil)
	return svc, repo
}

func TestAuthenticateIssuesToken(t *testing.T) {
	svc, _ := serviceFixture(t)
	ctx := context.Background()

	profile, token, err := svc.Authenticate(ctx, "Rita@lumina.local ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleReception, profile.Role)
	assert.NotEmpty(t, token.Value)

	subject, err := svc.ValidateToken(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(1), subject)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := serviceFixture(t)
	ctx := context.Background()

	_, _, err := svc.Authenticate(ctx, "rita@lumina.local", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Authenticate(ctx, "nobody@lumina.local", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejectsDisabledAccount(t *testing.T) {
	svc, _ := serviceFixture(t)
	_, _, err := svc.Authenticate(context.Background(), "gone@lumina.local", "correct-horse")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLegacyStaffRoleFoldsIntoReception(t *testing.T) {
	svc, _ := serviceFixture(t)
	ctx := context.Background()

	profile, _, err := svc.Authenticate(ctx, "sam@lumina.local", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleReception, profile.Role)

	principal, err := svc.PrincipalByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleReception, principal.Role)
}

func TestPrincipalByIDReadsRoleFresh(t *testing.T) {
	svc, repo := serviceFixture(t)
	ctx := context.Background()

	principal, err := svc.PrincipalByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleReception, principal.Role)

	require.NoError(t, svc.ReassignRole(ctx, 1, authz.RoleProvider))
	principal, err = svc.PrincipalByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleProvider, principal.Role)

	assert.Equal(t, "provider", repo.accounts[1].Role)
}

func TestPrincipalByIDRefusesDisabledAccount(t *testing.T) {
	svc, repo := serviceFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.SetActive(ctx, 1, false))
	_, err := svc.PrincipalByID(ctx, 1)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, repo := serviceFixture(t)
	ctx := context.Background()

	_, token, err := svc.Authenticate(ctx, "rita@lumina.local", "correct-horse")
	require.NoError(t, err)
	svc.RecordIssuedToken(ctx, token, "203.0.113.7", "test-agent")
	assert.Contains(t, repo.tokens, token.ID)

	require.NoError(t, svc.Logout(ctx, token.Value))

	_, err = svc.ValidateToken(ctx, token.Value)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.NotContains(t, repo.tokens, token.ID)
}

func TestReassignRoleRejectsUnknownRole(t *testing.T) {
	svc, _ := serviceFixture(t)
	err := svc.ReassignRole(context.Background(), 1, authz.Role("root"))
	assert.ErrorIs(t, err, authz.ErrUnknownRole)
}
