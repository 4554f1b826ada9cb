package token

// Role is an authorization tag carried in the token's authorities claim
type Role string

const (
	RoleUser  Role = "user"  // Can record purchases and payments
	RoleAdmin Role = "admin" // Can manage products, users and the invitation code
)

// Known reports whether r belongs to the closed set of roles the client gates on.
func (r Role) Known() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
