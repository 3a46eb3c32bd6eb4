package model

// Session is the client's belief about who is logged in.
// A nil *Session means anonymous. Sessions are replaced, never edited.
type Session struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup is the signup request body.
type Signup struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
