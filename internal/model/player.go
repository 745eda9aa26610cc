package model

// PlayerToken is the server-issued token that lets a session resume its identity
type PlayerToken string

// AccessToken is a credential for an already authenticated user account
type AccessToken string

// PlayerInfo is the identity the server acknowledged for this session
type PlayerInfo struct {
	DisplayName string
	Rating      int
	Token       PlayerToken
}

// AuthenticatedUser is the record supplied by the auth store for a logged-in account
type AuthenticatedUser struct {
	DisplayName string
	Rating      int
}
