package dto

type GoogleAuthRequest struct {
	AccessToken string `json:"access_token"`
}

type UserOut struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AuthResponse struct {
	AccessToken string  `json:"access_token"`
	User        UserOut `json:"user"`
}
