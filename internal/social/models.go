package social

import (
	"time"

	"backend-socialbox/internal/scoring"
)

type Friend struct {
	ID       string          `json:"-"`
	Username string          `json:"username"`
	Since    time.Time       `json:"since"`
	Scores   scoring.Summary `json:"scores"`
}

type AddFriendRequest struct {
	FriendUsername string `json:"friend_username" form:"friend_username"`
}
