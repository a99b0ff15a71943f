package constants

// Application roles carried in the JWT "role" claim.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	// RoleAny accepts any authenticated user regardless of role.
	RoleAny = "any"
)
