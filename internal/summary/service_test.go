package summary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend-socialbox/internal/scoring"
	"backend-socialbox/internal/shared/session"

	"github.com/gofiber/fiber/v2"
)

type fakeSource struct {
	calls  int
	scores []scoring.ScoreMap
	err    error
	during func()
}

func (f *fakeSource) Scores(_ context.Context, _ string) ([]scoring.ScoreMap, error) {
	f.calls++
	if f.during != nil {
		f.during()
	}
	return f.scores, f.err
}

func TestUserScoresAveragesAndCaches(t *testing.T) {
	source := &fakeSource{scores: []scoring.ScoreMap{
		{scoring.TimeOfDay: 100, scoring.Acceleration: 80, scoring.Braking: 80, scoring.Speeding: 50},
		{scoring.TimeOfDay: 0, scoring.Acceleration: 60, scoring.Braking: 60, scoring.Speeding: 100},
		scoring.EmptyScores(),
	}}
	svc := NewService(source, time.Minute)

	got, err := svc.UserScores(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("user scores: %v", err)
	}
	if got[scoring.TimeOfDay] != 50 || got[scoring.Acceleration] != 70 || got[scoring.Speeding] != 75 {
		t.Fatalf("unexpected summary %v", got)
	}

	got[scoring.TimeOfDay] = 1
	again, err := svc.UserScores(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("user scores: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cached summary, source called %d times", source.calls)
	}
	if again[scoring.TimeOfDay] != 50 {
		t.Fatalf("cached summary was mutated by caller")
	}

	svc.Invalidate("user-1")
	if _, err := svc.UserScores(context.Background(), "user-1"); err != nil {
		t.Fatalf("user scores: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected reload after invalidate, source called %d times", source.calls)
	}
}

func TestUserScoresInvalidatedDuringReadIsNotCached(t *testing.T) {
	source := &fakeSource{scores: []scoring.ScoreMap{
		{scoring.TimeOfDay: 20, scoring.Acceleration: 20, scoring.Braking: 20, scoring.Speeding: 20},
	}}
	svc := NewService(source, time.Minute)
	source.during = func() {
		source.during = nil
		svc.Invalidate("user-1")
	}

	stale, err := svc.UserScores(context.Background(), "user-1")
	if err != nil || stale[scoring.Speeding] != 20 {
		t.Fatalf("user scores: %v %v", stale, err)
	}

	source.scores = []scoring.ScoreMap{
		{scoring.TimeOfDay: 80, scoring.Acceleration: 80, scoring.Braking: 80, scoring.Speeding: 80},
	}
	fresh, err := svc.UserScores(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("user scores: %v", err)
	}
	if source.calls != 2 || fresh[scoring.Speeding] != 80 {
		t.Fatalf("expected reload after concurrent invalidate, calls=%d summary=%v", source.calls, fresh)
	}

	if _, err := svc.UserScores(context.Background(), "user-1"); err != nil || source.calls != 2 {
		t.Fatalf("expected the fresh summary to be cached, calls=%d", source.calls)
	}
}

func TestUserScoresNoCache(t *testing.T) {
	source := &fakeSource{}
	svc := NewService(source, 0)

	for i := 0; i < 2; i++ {
		got, err := svc.UserScores(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("user scores: %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("expected all categories, got %v", got)
		}
	}
	svc.Invalidate("user-1")
	if source.calls != 2 {
		t.Fatalf("expected no caching, source called %d times", source.calls)
	}
}

func TestUserScoresError(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("db down")}, time.Minute)
	if _, err := svc.UserScores(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSummaryHandler(t *testing.T) {
	source := &fakeSource{scores: []scoring.ScoreMap{
		{scoring.TimeOfDay: 40, scoring.Acceleration: 40, scoring.Braking: 40, scoring.Speeding: 40},
	}}
	app := fiber.New()
	RegisterRoutes(app.Group("/users"), NewService(source, 0), func(c *fiber.Ctx) error {
		session.SetUserID(c, "user-1")
		return c.Next()
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/me/scores", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("scores status: %v", err)
	}
	var body struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Scores["braking"] != 40 {
		t.Fatalf("unexpected body %v", body.Scores)
	}
}

func TestSummaryHandlerError(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/users"), NewService(&fakeSource{err: errors.New("db down")}, 0), func(c *fiber.Ctx) error {
		session.SetUserID(c, "user-1")
		return c.Next()
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/users/me/scores", nil))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected server error, got %d", resp.StatusCode)
	}
}
