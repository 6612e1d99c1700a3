// Package social keeps each user's friend list. Friendships are one-way:
// adding a friend does not add you to their list.
package social

import (
	"context"
	"errors"

	"backend-socialbox/internal/db"
	"backend-socialbox/internal/scoring"

	"github.com/jackc/pgx/v5"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfFriend   = errors.New("cannot add yourself as a friend")
)

// ScoreLookup returns the mean scores of a user.
type ScoreLookup interface {
	UserScores(ctx context.Context, userID string) (scoring.Summary, error)
}

type Service struct {
	db     db.Querier
	scores ScoreLookup
}

func NewService(db db.Querier, scores ScoreLookup) *Service {
	return &Service{db: db, scores: scores}
}

// AddFriend adds friendUsername to the friends of userID. Adding the same
// friend twice is a no-op.
func (s *Service) AddFriend(ctx context.Context, userID, friendUsername string) (Friend, error) {
	var friend Friend
	err := s.db.QueryRow(ctx, `SELECT id, username FROM users WHERE username=$1`, friendUsername).
		Scan(&friend.ID, &friend.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return Friend{}, ErrUserNotFound
	}
	if err != nil {
		return Friend{}, err
	}
	if friend.ID == userID {
		return Friend{}, ErrSelfFriend
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO friendships (user_id, friend_id)
		VALUES ($1,$2)
		ON CONFLICT (user_id, friend_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING created_at
	`, userID, friend.ID)
	if err := row.Scan(&friend.Since); err != nil {
		return Friend{}, err
	}
	return s.withScores(ctx, friend)
}

// RemoveFriend drops friendUsername from the friends of userID.
func (s *Service) RemoveFriend(ctx context.Context, userID, friendUsername string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM friendships f
		USING users u
		WHERE f.user_id=$1 AND f.friend_id=u.id AND u.username=$2
	`, userID, friendUsername)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Friends lists the friends of userID with their mean scores, by username.
func (s *Service) Friends(ctx context.Context, userID string) ([]Friend, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, f.created_at
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id=$1
		ORDER BY u.username
	`, userID)
	if err != nil {
		return nil, err
	}
	var friends []Friend
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.ID, &f.Username, &f.Since); err != nil {
			rows.Close()
			return nil, err
		}
		friends = append(friends, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Friend, 0, len(friends))
	for _, f := range friends {
		f, err := s.withScores(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *Service) withScores(ctx context.Context, f Friend) (Friend, error) {
	if s.scores == nil {
		f.Scores = scoring.Average(nil)
		return f, nil
	}
	scores, err := s.scores.UserScores(ctx, f.ID)
	if err != nil {
		return Friend{}, err
	}
	f.Scores = scores
	return f, nil
}
