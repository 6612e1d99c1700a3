package trip

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-socialbox/internal/db"
	"backend-socialbox/internal/scoring"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound  = errors.New("trip not found")
	ErrForbidden = errors.New("trip does not belong to user")
)

type Service struct {
	db        db.Querier
	now       func() time.Time
	onDeleted func(userID string)
}

func NewService(db db.Querier) *Service {
	return &Service{db: db, now: time.Now}
}

// Begin creates an empty trip owned by userID.
func (s *Service) Begin(ctx context.Context, userID string) (Trip, error) {
	trip := Trip{
		ID:         uuid.NewString(),
		UserID:     userID,
		Lat:        []string{},
		Long:       []string{},
		Timestamps: []string{},
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, user_id)
		VALUES ($1,$2)
		RETURNING start_time
	`, trip.ID, trip.UserID)
	if err := row.Scan(&trip.StartTime); err != nil {
		return Trip{}, err
	}
	trip.SlangTime = s.slang(trip.StartTime)
	return trip, nil
}

func (s *Service) Get(ctx context.Context, id string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, start_time, lat, long, timestamps, scores, scored_at
		FROM trips WHERE id=$1
	`, id)
	trip, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, ErrNotFound
	}
	if err != nil {
		return Trip{}, err
	}
	trip.SlangTime = s.slang(trip.StartTime)
	return trip, nil
}

// GetOwned loads a trip and checks that userID owns it.
func (s *Service) GetOwned(ctx context.Context, id, userID string) (Trip, error) {
	trip, err := s.Get(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if trip.UserID != userID {
		return Trip{}, ErrForbidden
	}
	return trip, nil
}

// List returns every trip of userID, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, start_time, lat, long, timestamps, scores, scored_at
		FROM trips WHERE user_id=$1
		ORDER BY start_time DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []Trip{}
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trip.SlangTime = s.slang(trip.StartTime)
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// Scores returns the stored scores of every scored trip of userID.
func (s *Service) Scores(ctx context.Context, userID string) ([]scoring.ScoreMap, error) {
	rows, err := s.db.Query(ctx, `
		SELECT scores FROM trips
		WHERE user_id=$1 AND scores IS NOT NULL
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []scoring.ScoreMap
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		scores, err := decodeScores(raw)
		if err != nil {
			return nil, err
		}
		all = append(all, scores)
	}
	return all, rows.Err()
}

// OnDeleted registers fn to run after a trip of userID is deleted.
func (s *Service) OnDeleted(fn func(userID string)) {
	s.onDeleted = fn
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if s.onDeleted != nil {
		s.onDeleted(userID)
	}
	return nil
}

// ScoreFunc computes the scores of a trip holding every stored sample.
type ScoreFunc func(Trip) (scoring.ScoreMap, error)

// AppendAndScore appends batch to the trip owned by userID, scores the full
// sample set with score and stores the result. The trip row stays locked
// from the ownership check until commit, so concurrent uploads to one trip
// are scored one after the other.
func (s *Service) AppendAndScore(ctx context.Context, id, userID string, batch Batch, score ScoreFunc) (_ Trip, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Trip{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	trip, err := scanTrip(tx.QueryRow(ctx, `
		SELECT id, user_id, start_time, lat, long, timestamps, scores, scored_at
		FROM trips WHERE id=$1
		FOR UPDATE
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, ErrNotFound
	}
	if err != nil {
		return Trip{}, err
	}
	if trip.UserID != userID {
		return Trip{}, ErrForbidden
	}

	err = tx.QueryRow(ctx, `
		UPDATE trips
		SET lat = lat || $2::text[],
		    long = long || $3::text[],
		    timestamps = timestamps || $4::text[]
		WHERE id=$1
		RETURNING lat, long, timestamps
	`, id, batch.Lat, batch.Long, batch.Timestamps).Scan(&trip.Lat, &trip.Long, &trip.Timestamps)
	if err != nil {
		return Trip{}, err
	}

	scores, err := score(trip)
	if err != nil {
		return Trip{}, err
	}
	payload, err := json.Marshal(scores)
	if err != nil {
		return Trip{}, err
	}
	scoredAt := s.now().UTC()
	if _, err = tx.Exec(ctx, `
		UPDATE trips SET scores=$2, scored_at=$3 WHERE id=$1
	`, id, payload, scoredAt); err != nil {
		return Trip{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return Trip{}, err
	}

	trip.Scores = scores
	trip.ScoredAt = &scoredAt
	trip.SlangTime = s.slang(trip.StartTime)
	return trip, nil
}

func (s *Service) slang(t time.Time) string {
	return humanize.RelTime(t, s.now(), "ago", "from now")
}

func scanTrip(row pgx.Row) (Trip, error) {
	var trip Trip
	var scores []byte
	if err := row.Scan(&trip.ID, &trip.UserID, &trip.StartTime, &trip.Lat, &trip.Long, &trip.Timestamps, &scores, &trip.ScoredAt); err != nil {
		return Trip{}, err
	}
	decoded, err := decodeScores(scores)
	if err != nil {
		return Trip{}, err
	}
	trip.Scores = decoded
	return trip, nil
}

// decodeScores turns a jsonb column into a ScoreMap. A NULL column means the
// trip was never scored and decodes to all zeros.
func decodeScores(raw []byte) (scoring.ScoreMap, error) {
	scores := scoring.EmptyScores()
	if len(raw) == 0 {
		return scores, nil
	}
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}
