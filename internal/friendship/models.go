package friendship

import "time"

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// Friendship is one directional edge. An accepted friendship is two rows,
// one per direction; a pending request is a single row owned by the requester.
type Friendship struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	FriendID  int64     `json:"friend_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Friend is a list item decorated with directory-resolved profile fields.
type Friend struct {
	FriendID  int64     `json:"friend_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Login     string    `json:"login"`
	CreatedAt time.Time `json:"created_at"`
}
