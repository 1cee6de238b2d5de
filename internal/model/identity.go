package model

// Identity is the profile and bearer token returned by a successful login.
type Identity struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Admin     bool   `json:"admin"`
}

const TokenTypeBearer = "Bearer"
