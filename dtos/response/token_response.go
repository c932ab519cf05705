package response

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthenticatedUser is the identity handoff after a successful
// authentication ceremony.
type AuthenticatedUser struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	KeyID       uint   `json:"key_id"`
	KeyName     string `json:"key_name"`
	RedirectURL string `json:"redirect_url"`
	Tokens      Tokens `json:"tokens"`
}
