package authz

// ScopeFilter is the row-level predicate handed to the persistence layer for
// own-records grants. The zero value means unrestricted. Repositories are
// responsible for applying it to every query they issue; the middleware does
// not re-verify after the fact.
type ScopeFilter struct {
	Column      string
	PrincipalID int64
}

// Restricted reports whether the filter narrows results.
func (f ScopeFilter) Restricted() bool {
	return f.Column != ""
}

// Matches reports whether an owner id satisfies the filter. Used by
// in-memory repositories and service-level checks on single-row reads.
func (f ScopeFilter) Matches(ownerID int64) bool {
	if !f.Restricted() {
		return true
	}
	return ownerID == f.PrincipalID
}

func scopeFor(g Grant, principalID int64) ScopeFilter {
	if g.Scope != ScopeOwn {
		return ScopeFilter{}
	}
	return ScopeFilter{Column: g.OwnColumn, PrincipalID: principalID}
}
