package identity

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-spa/lumina/internal/authz"
)

// Service implements the identity provider: credential authentication, token
// issuance and validation, and fresh principal resolution for the guard.
type Service struct {
	repo        Repository
	tokens      *TokenIssuer
	revocations *RevocationList
	logger      *slog.Logger
}

// NewService constructs a Service. The revocation list may be nil in tests
// that do not cover logout.
func NewService(repo Repository, tokens *TokenIssuer, revocations *RevocationList, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, revocations: revocations, logger: logger}
}

// Authenticate validates credentials and issues a bearer token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Profile, Token, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Profile{}, Token{}, ErrInvalidCredentials
	}
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// Burn a comparison anyway so response timing does not leak whether
		// the account exists.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return Profile{}, Token{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Profile{}, Token{}, ErrInvalidCredentials
	}
	if !account.IsActive {
		return Profile{}, Token{}, ErrAccountDisabled
	}
	role, err := authz.ParseRole(account.Role)
	if err != nil {
		return Profile{}, Token{}, err
	}
	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return Profile{}, Token{}, err
	}
	profile := Profile{ID: account.ID, Email: account.Email, Name: account.Name, Role: role}
	return profile, token, nil
}

// RecordIssuedToken persists token issuance metadata for auditing. Failures
// are logged, not fatal: the token is already signed and valid.
func (s *Service) RecordIssuedToken(ctx context.Context, token Token, ip, ua string) {
	if err := s.repo.RecordToken(ctx, token.ID, token.Subject, token.IssuedAt, token.ExpiresAt, ip, ua); err != nil && s.logger != nil {
		s.logger.Warn("record issued token", slog.Any("error", err))
	}
}

// ValidateToken verifies signature, expiry, and revocation, returning the
// subject id. Principal existence is checked separately by PrincipalByID.
func (s *Service) ValidateToken(ctx context.Context, value string) (int64, error) {
	token, err := s.tokens.Parse(value)
	if err != nil {
		return 0, err
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, token.ID)
		if err != nil {
			return 0, err
		}
		if revoked {
			return 0, ErrTokenRevoked
		}
	}
	return token.Subject, nil
}

// PrincipalByID resolves the current principal, reading the role from the
// store so a reassignment applies on the next request without re-login.
func (s *Service) PrincipalByID(ctx context.Context, id int64) (authz.Principal, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return authz.Principal{}, err
	}
	if !account.IsActive {
		return authz.Principal{}, ErrAccountDisabled
	}
	role, err := authz.ParseRole(account.Role)
	if err != nil {
		return authz.Principal{}, err
	}
	return authz.Principal{ID: account.ID, Email: account.Email, Name: account.Name, Role: role}, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *Service) Logout(ctx context.Context, value string) error {
	token, err := s.tokens.Parse(value)
	if err != nil {
		return err
	}
	if s.revocations != nil {
		if err := s.revocations.Revoke(ctx, token.ID, token.ExpiresAt); err != nil {
			return err
		}
	}
	if err := s.repo.DeleteToken(ctx, token.ID); err != nil && s.logger != nil {
		s.logger.Warn("delete issued token", slog.Any("error", err))
	}
	return nil
}

// ReassignRole changes a principal's role. Administrative path only; there
// is deliberately no HTTP route for it.
func (s *Service) ReassignRole(ctx context.Context, principalID int64, role authz.Role) error {
	if !role.Valid() {
		return authz.ErrUnknownRole
	}
	return s.repo.UpdateRole(ctx, principalID, role.String())
}

var _ authz.IdentitySource = (*Service)(nil)
