package models

// Identity is the verified caller identity the auth middleware extracts on
// every request. Services receive it as-is and never re-verify credentials.
type Identity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}
