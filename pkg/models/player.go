package models

import "time"

// Permission bits carried in the JWT permissions claim
const (
	PermMapRead int64 = 1 << iota
	PermMapEdit
)

// Player represents an authenticated map client
type Player struct {
	// From JWT claims
	ID          string `json:"id"`          // Converted from int64 user_id
	Username    string `json:"username"`    // JWT claim
	Email       string `json:"email"`       // JWT claim
	UserType    string `json:"user_type"`   // JWT claim (deprecated, use permissions)
	Permissions int64  `json:"permissions"` // JWT claim: bitwise permission flags
	Activated   int64  `json:"activated"`   // JWT claim: activation timestamp or ban status
	AuthMethod  string `json:"auth_method"` // JWT claim: "password" or "oauth"

	// Connection state
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// IsActive checks if the player account is activated and not banned
func (p *Player) IsActive() bool {
	// activated > 0 means activated
	// activated == 0 means not activated
	// activated == -1 means banned
	return p.Activated > 0
}

// IsBanned checks if the player is banned
func (p *Player) IsBanned() bool {
	return p.Activated == -1
}

// CanReadMap reports whether the player may query cells
func (p *Player) CanReadMap() bool {
	return p.Permissions&PermMapRead != 0
}

// CanEditMap reports whether the player may set or remove cells
func (p *Player) CanEditMap() bool {
	return p.Permissions&PermMapEdit != 0
}
