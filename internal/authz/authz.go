// Package authz implements the two-stage row-level security model:
// a scoping policy that narrows collection queries to what a caller may
// see, and a per-object authorization policy that gates individual
// actions. Scoping decides visibility; authorization decides mutability.
package authz

import (
	"gorm.io/gorm"
)

// Caller is the authenticated identity a request acts as. A zero Caller
// is unauthenticated.
type Caller struct {
	ID            uint
	Username      string
	IsAdmin       bool
	Groups        []string
	Authenticated bool
}

// managerGroup members get global read-only visibility.
const managerGroup = "Manager"

// InGroup reports whether the caller belongs to the named group.
func (c Caller) InGroup(name string) bool {
	for _, g := range c.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// IsManager reports whether the caller belongs to the Manager group.
func (c Caller) IsManager() bool {
	return c.InGroup(managerGroup)
}

// HasGlobalView reports whether the caller sees all records regardless
// of ownership. Admins and Managers both qualify.
func (c Caller) HasGlobalView() bool {
	return c.Authenticated && (c.IsAdmin || c.IsManager())
}

// ScopeOwned returns a GORM scope restricting a collection to what the
// caller may see:
//   - unauthenticated callers see nothing (authentication is enforced
//     upstream, this is defense in depth)
//   - admins and Manager members see everything
//   - everyone else sees only rows where ownerColumn matches their ID
func ScopeOwned(caller Caller, ownerColumn string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !caller.Authenticated {
			return db.Where("1 = 0")
		}
		if caller.HasGlobalView() {
			return db
		}
		return db.Where(ownerColumn+" = ?", caller.ID)
	}
}

// Action is an intended operation on a single record.
type Action int

const (
	ActionRead Action = iota
	ActionWrite
	ActionDelete
)

// Decide returns whether the caller may perform action on a record it
// does (or does not) own. Evaluated after scoping; first match wins:
//  1. unauthenticated: deny
//  2. Manager: read only, regardless of ownership
//  3. admin: everything
//  4. owner: read and write, never delete (audit policy)
//  5. otherwise: deny
func Decide(caller Caller, isOwner bool, action Action) bool {
	if !caller.Authenticated {
		return false
	}
	if caller.IsManager() {
		return action == ActionRead
	}
	if caller.IsAdmin {
		return true
	}
	if isOwner {
		return action != ActionDelete
	}
	return false
}
