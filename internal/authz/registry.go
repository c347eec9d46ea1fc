package authz

import (
	"net/http"
	"sort"
)

// Resource identifies a guarded resource family. Route paths are derived from
// resources, never the other way around.
type Resource string

const (
	ResourceClients      Resource = "clients"
	ResourceAppointments Resource = "appointments"
	ResourcePayments     Resource = "payments"
	ResourceServices     Resource = "services"
	ResourceProducts     Resource = "products"
	ResourcePackages     Resource = "packages"
	ResourceDocuments    Resource = "documents"
	ResourceAudit        Resource = "audit"
	ResourceDashboard    Resource = "dashboard"
)

// Action is the verb class a request maps to.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ScopeKind narrows a grant to a subset of rows.
type ScopeKind int

const (
	// ScopeAll grants unrestricted access to the resource.
	ScopeAll ScopeKind = iota
	// ScopeOwn restricts the grant to rows owned by the principal.
	ScopeOwn
)

// Grant is one registry cell: the permission a role holds on a resource for
// an action, with optional row-level narrowing.
type Grant struct {
	Scope ScopeKind
	// OwnColumn names the column compared against the principal id when
	// Scope is ScopeOwn.
	OwnColumn string
}

// Registry is the single source of truth for role permissions. It is built
// once at startup and never mutated afterwards; authorization rules are part
// of the deployed configuration, not runtime data.
type Registry struct {
	grants   map[Role]map[Resource]map[Action]Grant
	readOnly map[Role]bool
}

// NewRegistry builds the static policy table.
//
// admin sees everything but is flagged read-only: admins observe, they do not
// mutate business records. The flag lives here so a new admin-visible
// resource cannot pick up write access by omission.
func NewRegistry() *Registry {
	r := &Registry{
		grants:   make(map[Role]map[Resource]map[Action]Grant),
		readOnly: map[Role]bool{RoleAdmin: true},
	}

	all := Grant{Scope: ScopeAll}
	ownProvider := Grant{Scope: ScopeOwn, OwnColumn: "provider_id"}
	ownClient := Grant{Scope: ScopeOwn, OwnColumn: "client_id"}
	// ownSelf is for the clients resource itself, where the owning column is
	// the row id rather than a foreign key.
	ownSelf := Grant{Scope: ScopeOwn, OwnColumn: "id"}

	// admin: full visibility. Writes listed deliberately; the read-only flag
	// overrides them all, and the double bookkeeping is covered by tests.
	r.grant(RoleAdmin, ResourceClients, all, ActionRead, ActionCreate, ActionUpdate, ActionDelete)
	r.grant(RoleAdmin, ResourceAppointments, all, ActionRead, ActionCreate, ActionUpdate, ActionDelete)
	r.grant(RoleAdmin, ResourcePayments, all, ActionRead, ActionCreate, ActionUpdate, ActionDelete)
	r.grant(RoleAdmin, ResourceServices, all, ActionRead, ActionCreate, ActionUpdate, ActionDelete)
	r.grant(RoleAdmin, ResourceProducts, all, ActionRead, ActionCreate, ActionUpdate, ActionDelete)
	r.grant(RoleAdmin, ResourcePackages, all, ActionRead, ActionCreate, ActionUpdate, ActionDelete)
	r.grant(RoleAdmin, ResourceDocuments, all, ActionRead)
	r.grant(RoleAdmin, ResourceAudit, all, ActionRead)
	r.grant(RoleAdmin, ResourceDashboard, all, ActionRead)

	// provider: own-scoped clinical and appointment work.
	r.grant(RoleProvider, ResourceAppointments, ownProvider, ActionRead, ActionUpdate)
	r.grant(RoleProvider, ResourceClients, all, ActionRead)
	r.grant(RoleProvider, ResourceServices, all, ActionRead)
	r.grant(RoleProvider, ResourceDashboard, all, ActionRead)

	// reception: front-desk CRUD, read-only on the catalog.
	r.grant(RoleReception, ResourceClients, all, ActionRead, ActionCreate, ActionUpdate, ActionDelete)
	r.grant(RoleReception, ResourceAppointments, all, ActionRead, ActionCreate, ActionUpdate, ActionDelete)
	r.grant(RoleReception, ResourcePayments, all, ActionRead, ActionCreate, ActionUpdate)
	r.grant(RoleReception, ResourcePackages, all, ActionRead, ActionCreate, ActionUpdate, ActionDelete)
	r.grant(RoleReception, ResourceServices, all, ActionRead)
	r.grant(RoleReception, ResourceProducts, all, ActionRead)
	r.grant(RoleReception, ResourceDashboard, all, ActionRead)

	// client: self-service on own records only.
	r.grant(RoleClient, ResourceAppointments, ownClient, ActionRead, ActionCreate)
	r.grant(RoleClient, ResourcePayments, ownClient, ActionRead)
	r.grant(RoleClient, ResourceDocuments, ownClient, ActionRead)
	r.grant(RoleClient, ResourceClients, ownSelf, ActionRead)
	r.grant(RoleClient, ResourceServices, all, ActionRead)

	return r
}

func (r *Registry) grant(role Role, res Resource, g Grant, actions ...Action) {
	byRes, ok := r.grants[role]
	if !ok {
		byRes = make(map[Resource]map[Action]Grant)
		r.grants[role] = byRes
	}
	byAction, ok := byRes[res]
	if !ok {
		byAction = make(map[Action]Grant)
		byRes[res] = byAction
	}
	for _, a := range actions {
		byAction[a] = g
	}
}

// Allowed looks up the grant for (role, resource, action). A missing entry
// means deny; there is no default-allow path.
func (r *Registry) Allowed(role Role, res Resource, action Action) (Grant, bool) {
	g, ok := r.grants[role][res][action]
	return g, ok
}

// IsReadOnly reports whether the role is globally barred from mutating verbs.
func (r *Registry) IsReadOnly(role Role) bool {
	return r.readOnly[role]
}

// ActionForMethod maps an HTTP verb to its action class. Unknown verbs map
// to delete so they land on the most restrictive grants.
func ActionForMethod(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	}
	return ActionDelete
}

// MutatingMethod reports whether the verb mutates state.
func MutatingMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// Permission is one registry cell flattened for the /me/permissions endpoint
// and the client-side guard.
type Permission struct {
	Resource Resource `json:"resource"`
	Action   Action   `json:"action"`
	OwnOnly  bool     `json:"own_only"`
}

// Permissions flattens the role's grants into a stable-ordered list. The
// read-only override is already applied, so the client guard never has to
// reimplement it.
func (r *Registry) Permissions(role Role) []Permission {
	var out []Permission
	for res, byAction := range r.grants[role] {
		for action, g := range byAction {
			if r.readOnly[role] && action != ActionRead {
				continue
			}
			out = append(out, Permission{
				Resource: res,
				Action:   action,
				OwnOnly:  g.Scope == ScopeOwn,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// NavItem is a navigation affordance derived from the registry for the
// client-side guard. Advisory only; the middleware chain stays authoritative.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var navLabels = map[Resource]string{
	ResourceDashboard:    "Dashboard",
	ResourceClients:      "Clients",
	ResourceAppointments: "Appointments",
	ResourcePayments:     "Payments",
	ResourceServices:     "Services",
	ResourceProducts:     "Products",
	ResourcePackages:     "Packages",
	ResourceDocuments:    "Documents",
	ResourceAudit:        "Audit Trail",
}

var navOrder = []Resource{
	ResourceDashboard,
	ResourceAppointments,
	ResourceClients,
	ResourcePayments,
	ResourceServices,
	ResourceProducts,
	ResourcePackages,
	ResourceDocuments,
	ResourceAudit,
}

// Navigation returns the nav entries a role may see, in display order. Paths
// are generated from the role namespace and resource name so the client and
// server can never disagree on a prefix.
func (r *Registry) Navigation(role Role) []NavItem {
	var items []NavItem
	for _, res := range navOrder {
		if _, ok := r.grants[role][res][ActionRead]; !ok {
			continue
		}
		items = append(items, NavItem{
			Label: navLabels[res],
			Path:  role.Namespace() + "/" + string(res),
		})
	}
	return items
}
