package domain

// Role represents an account role
type Role string

const (
	RoleNone     Role = ""
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a role value. The empty string unsets the role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleNone, RoleClient, RoleProvider, RoleAdmin:
		return r, nil
	}
	return "", ErrInvalidRole
}

// ProviderFields are the self-managed profile fields of a provider record
type ProviderFields struct {
	Name         string `json:"name"`
	Service      string `json:"service"`
	Contact      string `json:"contact"`
	Location     string `json:"location"`
	Experience   string `json:"experience"`
	Availability string `json:"availability"`
	Rate         string `json:"rate"`
}

// ProviderStats holds moderation counters
type ProviderStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}
