package identserver

import (
	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/domain/model"
)

// DevUsers returns the development seed accounts. Passwords are fixed and
// must never reach a production database.
func DevUsers() []*model.CreateUserRequest {
	return []*model.CreateUserRequest{
		{
			FirstName: "Ada",
			LastName:  "Admin",
			Email:     "admin@example.com",
			Password:  "admin123",
			Role:      domainauth.RoleAdmin,
			Position:  "Head of Engineering",
		},
		{
			FirstName: "Dana",
			LastName:  "Petrov",
			Email:     "user@example.com",
			Password:  "user123",
			Role:      domainauth.RoleDeveloper,
			Position:  "Software Engineer",
		},
	}
}
