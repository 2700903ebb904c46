package auth

import "time"

// Session is the server-side record behind a session cookie. The controller
// never sees this type; it belongs to the identity backend and its stores.
type Session struct {
	ID           string    `json:"id"`
	UserID       int       `json:"userId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Position     string    `json:"position,omitempty"`
	DepartmentID int       `json:"departmentId,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`

	// Remembered marks sessions created with "remember me"; their expiry
	// slides forward on each verification.
	Remembered bool `json:"remembered"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Identity projects the session onto the identity shape served by the
// verification endpoint.
func (s Session) Identity() Identity {
	return Identity{
		ID:           s.UserID,
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		Email:        s.Email,
		Role:         s.Role,
		Position:     s.Position,
		DepartmentID: s.DepartmentID,
		IsActive:     true,
	}
}
