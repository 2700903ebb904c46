package demoauth

// Package demoauth provides the offline fallback identity catalog used when
// the backend is unreachable during login. Demo identities are fabricated
// locally and bounded by the session store's freshness window.

import (
	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
)

type entry struct {
	password string
	identity domainauth.Identity
}

// Catalog implements ports.DemoCatalog with a fixed credential table.
type Catalog struct {
	entries map[string]entry
}

// NewCatalog returns the standard demo catalog: one administrator and one
// developer, matching the seeded accounts of the dev identity service.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: map[string]entry{
			"admin@example.com": {
				password: "admin123",
				identity: domainauth.Identity{
					ID:           1,
					FirstName:    "Admin",
					LastName:     "User",
					Email:        "admin@example.com",
					Role:         domainauth.RoleAdmin,
					Position:     "System Administrator",
					DepartmentID: 1,
					IsActive:     true,
				},
			},
			"user@example.com": {
				password: "user123",
				identity: domainauth.Identity{
					ID:           6,
					FirstName:    "Test",
					LastName:     "User",
					Email:        "user@example.com",
					Role:         domainauth.RoleDeveloper,
					Position:     "Developer",
					DepartmentID: 2,
					IsActive:     true,
				},
			},
		},
	}
}

// Match returns the demo identity for a known credential pair.
func (c *Catalog) Match(email, password string) (domainauth.Identity, bool) {
	e, ok := c.entries[email]
	if !ok || e.password != password {
		return domainauth.Identity{}, false
	}
	return e.identity, true
}
