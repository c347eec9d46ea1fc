package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tokenIssuer = "lumina"

// Token is an issued bearer credential.
type Token struct {
	Value     string
	ID        string
	Subject   int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and parses bearer tokens. Claims carry only the subject
// id and a jti; the role is never embedded, so a stale token cannot pin a
// principal to a role they no longer hold.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer with the given HMAC secret and
// token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL exposes the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a new token for the principal.
func (t *TokenIssuer) Issue(principalID int64) (Token, error) {
	now := t.now().UTC()
	expires := now.Add(t.ttl)
	jti := uuid.NewString()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(principalID, 10),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Token{}, fmt.Errorf("identity: sign token: %w", err)
	}
	return Token{Value: signed, ID: jti, Subject: principalID, IssuedAt: now, ExpiresAt: expires}, nil
}

// Parse verifies signature and expiry and returns the token metadata.
func (t *TokenIssuer) Parse(value string) (Token, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Token{}, ErrTokenExpired
		}
		return Token{}, ErrTokenMalformed
	}
	if !parsed.Valid {
		return Token{}, ErrTokenMalformed
	}
	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Token{}, ErrTokenMalformed
	}
	token := Token{Value: value, ID: claims.ID, Subject: subject}
	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}
	return token, nil
}

// RevocationList tracks revoked token ids in Redis until their natural
// expiry. Tokens stay stateless on the hot path; only logout writes here.
type RevocationList struct {
	client *redis.Client
}

// NewRevocationList constructs a RevocationList.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke marks a token id as revoked until the given expiry.
func (l *RevocationList) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revocationKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether the token id has been revoked.
func (l *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := l.client.Get(ctx, revocationKey(jti)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func revocationKey(jti string) string {
	return "token:revoked:" + jti
}
