package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// Machine-readable denial reasons. The HTTP status collapses the 403
// variants; callers and tests branch on these codes instead.
const (
	ReasonUnauthenticated   = "unauthenticated"
	ReasonForbiddenRole     = "forbidden-role"
	ReasonForbiddenReadOnly = "forbidden-readonly"
	ReasonForbiddenScope    = "forbidden-scope"
)

// IdentitySource resolves bearer tokens and current principals. Implemented
// by the identity service; split into two calls so token failure is rejected
// before any role logic runs.
type IdentitySource interface {
	// ValidateToken verifies signature and expiry and returns the subject id.
	ValidateToken(ctx context.Context, token string) (int64, error)
	// PrincipalByID loads the principal with its current role. The role must
	// come from the store, not the token, so role changes apply immediately.
	PrincipalByID(ctx context.Context, id int64) (Principal, error)
}

// Denial is an audit record of a rejected request.
type Denial struct {
	PrincipalID int64
	Role        Role
	Method      string
	Path        string
	RemoteAddr  string
	Reason      string
	At          time.Time
}

// DenialRecorder persists denials for the audit trail.
type DenialRecorder interface {
	RecordDenial(ctx context.Context, d Denial)
}

// Guard enforces the authorization chain for HTTP routes. Evaluation is
// per-request and stateless; the only side effect is denial logging.
type Guard struct {
	Registry *Registry
	Identity IdentitySource
	Audit    DenialRecorder
	Logger   *slog.Logger
}

// Authenticate resolves the bearer token to a principal, reading the role
// fresh from the store. Any token failure is a terminal 401; role checks
// never run for unauthenticated requests.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			g.deny(w, r, http.StatusUnauthorized, ReasonUnauthenticated, Principal{})
			return
		}
		subject, err := g.Identity.ValidateToken(r.Context(), token)
		if err != nil {
			if g.Logger != nil {
				g.Logger.Warn("token rejected",
					slog.String("path", r.URL.Path),
					slog.String("remote", r.RemoteAddr),
					slog.Any("error", err))
			}
			g.deny(w, r, http.StatusUnauthorized, ReasonUnauthenticated, Principal{})
			return
		}
		principal, err := g.Identity.PrincipalByID(r.Context(), subject)
		if err != nil {
			// Token validated but the subject no longer resolves; treat as
			// an authentication failure, not a role mismatch.
			if g.Logger != nil {
				g.Logger.Warn("principal lookup failed",
					slog.Int64("principal_id", subject),
					slog.String("path", r.URL.Path),
					slog.String("remote", r.RemoteAddr),
					slog.Any("error", err))
			}
			g.deny(w, r, http.StatusUnauthorized, ReasonUnauthenticated, Principal{})
			return
		}
		ctx := ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Namespace restricts a route subtree to a single role. Namespaces are
// generated from the registry roles; the legacy /staff prefix mounts the
// reception namespace.
func (g *Guard) Namespace(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				g.deny(w, r, http.StatusUnauthorized, ReasonUnauthenticated, Principal{})
				return
			}
			if principal.Role != role {
				g.deny(w, r, http.StatusForbidden, ReasonForbiddenRole, principal)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require checks the registry grant for the resource, applies the read-only
// override, and attaches the scope filter for own-records grants.
func (g *Guard) Require(resource Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				g.deny(w, r, http.StatusUnauthorized, ReasonUnauthenticated, Principal{})
				return
			}
			action := ActionForMethod(r.Method)
			grant, ok := g.Registry.Allowed(principal.Role, resource, action)
			if !ok {
				g.deny(w, r, http.StatusForbidden, ReasonForbiddenRole, principal)
				return
			}
			// Layered atop the per-path grant: a read-only role never
			// mutates, even where the table above says otherwise.
			if g.Registry.IsReadOnly(principal.Role) && MutatingMethod(r.Method) {
				g.deny(w, r, http.StatusForbidden, ReasonForbiddenReadOnly, principal)
				return
			}
			ctx := ContextWithScope(r.Context(), scopeFor(grant, principal.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, status int, reason string, principal Principal) {
	if status == http.StatusForbidden {
		if g.Logger != nil {
			g.Logger.Warn("request forbidden",
				slog.Int64("principal_id", principal.ID),
				slog.String("role", principal.Role.String()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote", r.RemoteAddr),
				slog.String("reason", reason))
		}
		if g.Audit != nil {
			g.Audit.RecordDenial(r.Context(), Denial{
				PrincipalID: principal.ID,
				Role:        principal.Role,
				Method:      r.Method,
				Path:        r.URL.Path,
				RemoteAddr:  r.RemoteAddr,
				Reason:      reason,
				At:          time.Now().UTC(),
			})
		}
	}
	httpx.Error(w, status, reason, denialMessage(reason))
}

func denialMessage(reason string) string {
	switch reason {
	case ReasonUnauthenticated:
		return "authentication required"
	case ReasonForbiddenReadOnly:
		return "admins have view-only access"
	case ReasonForbiddenScope:
		return "access restricted to your own records"
	default:
		return "access restricted for this role"
	}
}

// BearerToken extracts the bearer credential from the Authorization header.
// The scheme match is case-insensitive; every consumer of the header must go
// through here so authentication and logout agree on what counts as a token.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
