package dto

// UserProfileResponse is the normalized identity exposed to the client.
type UserProfileResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// AuthSessionResponse reports whether the request carries a live session.
type AuthSessionResponse struct {
	IsAuthenticated bool                 `json:"isAuthenticated"`
	User            *UserProfileResponse `json:"user"`
}
