package entity

// Session is the identity resolved from a request credential.
type Session struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ProfileID string `json:"profile_id"`
}

// SessionRecord is what a session store keeps per session id.
type SessionRecord struct {
	UserID    string
	ProfileID string
}
