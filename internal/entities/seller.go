package entities

// Seller holds the OAuth credential of a connected marketplace seller.
// ExpiresAt == 0 means the token does not expire (or cannot be refreshed).
type Seller struct {
	ID           string `db:"id"`
	AccessToken  string `db:"access_token"`
	RefreshToken string `db:"refresh_token"`
	TokenType    string `db:"token_type"`
	Scope        string `db:"scope"`
	ExpiresAt    int64  `db:"expires_at"`
	MPUserID     string `db:"mp_user_id"`
	Nickname     string `db:"nickname"`
	Email        string `db:"email"`
	UpdatedAt    int64  `db:"updated_at"`
}
