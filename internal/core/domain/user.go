package domain

// Role names as issued by the backend.
const (
	RoleClient       = "CLIENT"
	RoleServiceAchat = "SERVICE_ACHAT"
	RoleAdmin        = "ADMIN"
)

// User is the client-visible projection of an authenticated account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// HasRole reports whether the user carries the given role. A nil user has no role.
func (u *User) HasRole(role string) bool {
	return u != nil && u.Role == role
}

// IsZero reports whether u identifies nobody.
func (u *User) IsZero() bool {
	return u == nil || (u.ID == 0 && u.Username == "")
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleServiceAchat, RoleAdmin:
		return true
	}
	return false
}

// UserAccount is a row of the admin user list.
type UserAccount struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// NewUserAccount is the payload an administrator submits to create staff accounts.
type NewUserAccount struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ICE      string `json:"ice,omitempty"`
	Role     string `json:"role"`
}

// Registration is the self-service signup payload for pharmacies (CLIENT role).
type Registration struct {
	ICENumber string `json:"iceNumber"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}
