package session

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// Identity is the logged-in principal, persisted as a single slot across
// process restarts.
type Identity struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    Role   `json:"role,omitempty"`
	GymName string `json:"gym_name,omitempty"`
	GymID   string `json:"gym_id,omitempty"`
}
