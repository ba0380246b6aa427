package domain

// User represents a registered user profile in the users collection
type User struct {
	ID       string `json:"id"`
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL"`
}
