package models

// Role represents operator roles in the system
type Role string

const (
	RoleDispatcher Role = "dispatcher"
	RoleViewer     Role = "viewer"
)

const (
	ActionStartSimulation = "start_simulation"
	ActionResetSimulation = "reset_simulation"
	ActionViewSimulation  = "view_simulation"
)

// User is a configured operator account.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	IsActive     bool   `json:"is_active"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleDispatcher, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a role may perform an action
func (r Role) HasPermission(action string) bool {
	switch r {
	case RoleDispatcher:
		return true
	case RoleViewer:
		return action == ActionViewSimulation
	default:
		return false
	}
}
