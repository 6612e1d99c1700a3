package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"backend-socialbox/internal/scoring"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
)

func postJSON(app *fiber.App, path string, body any) *http.Response {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	return resp
}

func TestAuthHandlersRegisterLoginVerify(t *testing.T) {
	mock := newMock(t)
	expectInsertUser(mock).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	expectRefreshInsert(mock, pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("INSERT", 1))

	scores := scoring.Summary{scoring.TimeOfDay: 100, scoring.Acceleration: 80, scoring.Braking: 80, scoring.Speeding: 95.5}
	svc := NewService("test-secret", mock, fakeScores{summary: scores})
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc)

	resp := postJSON(app, "/auth/register", ada)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	var registered struct {
		User map[string]any `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if _, leaked := registered.User["password_hash"]; leaked || registered.User["username"] != "ada" {
		t.Fatalf("unexpected user payload %v", registered.User)
	}

	expectUserRow(mock, "password123")
	expectRefreshInsert(mock, "user-1").WillReturnResult(pgxmock.NewResult("INSERT", 1))

	resp = postJSON(app, "/auth/login", LoginRequest{Username: "ada", Password: "password123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}
	var loggedIn struct {
		Tokens TokenResponse      `json:"tokens"`
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loggedIn); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if loggedIn.Scores["speeding"] != 95.5 || loggedIn.Tokens.AccessToken == "" {
		t.Fatalf("unexpected login payload %+v", loggedIn)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/jwt/verify", nil)
	req.Header.Set("Authorization", "Bearer "+loggedIn.Tokens.AccessToken)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status: %v", err)
	}
}

func TestAuthRegisterForm(t *testing.T) {
	mock := newMock(t)
	expectInsertUser(mock).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	expectRefreshInsert(mock, pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("INSERT", 1))

	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), NewService("test-secret", mock, nil))

	form := url.Values{}
	form.Set("username", "ada")
	form.Set("firstname", "Ada")
	form.Set("surname", "Lovelace")
	form.Set("email", "ada@example.com")
	form.Set("password", "password123")
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("register form status: %v %d", err, resp.StatusCode)
	}
}

func TestAuthRegisterConflict(t *testing.T) {
	mock := newMock(t)
	expectInsertUser(mock).WillReturnError(&pgconn.PgError{Code: "23505"})

	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), NewService("secret", mock, nil))

	if resp := postJSON(app, "/auth/register", ada); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict, got %d", resp.StatusCode)
	}
}

func TestAuthRegisterErrors(t *testing.T) {
	mock := newMock(t)
	expectInsertUser(mock).WillReturnError(pgErr)

	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), NewService("secret", mock, nil))

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{bad")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for payload")
	}

	if resp := postJSON(app, "/auth/register", RegisterRequest{Username: "ada"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for missing fields, got %d", resp.StatusCode)
	}

	if resp := postJSON(app, "/auth/register", ada); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected register error, got %d", resp.StatusCode)
	}
}

func TestAuthLoginErrors(t *testing.T) {
	mock := newMock(t)
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), NewService("secret", mock, fakeScores{err: pgErr}))

	if resp := postJSON(app, "/auth/login", map[string]string{"username": ""}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}

	expectUserRow(mock, "correct")
	if resp := postJSON(app, "/auth/login", LoginRequest{Username: "ada", Password: "wrong"}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
	}

	expectUserRow(mock, "correct")
	expectRefreshInsert(mock, "user-1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	if resp := postJSON(app, "/auth/login", LoginRequest{Username: "ada", Password: "correct"}); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected score lookup failure, got %d", resp.StatusCode)
	}
}

func TestAuthRefresh(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock, nil)

	expectRefreshInsert(mock, "user-1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	refresh, err := svc.GenerateTokens(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(refresh.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).AddRow("user-1", time.Now().Add(5*time.Minute)))
	expectRefreshInsert(mock, "user-1").WillReturnResult(pgxmock.NewResult("INSERT", 1))

	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc)

	if resp := postJSON(app, "/auth/refresh", RefreshRequest{RefreshToken: refresh.RefreshToken}); resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status: %d", resp.StatusCode)
	}
	if resp := postJSON(app, "/auth/refresh", map[string]string{}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
	if resp := postJSON(app, "/auth/refresh", RefreshRequest{RefreshToken: "bad"}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
	}
}

func TestAuthRefreshGenerateTokensError(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock, nil)
	refresh, err := svc.signToken("user-1", refreshTokenTTL)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(refresh).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).AddRow("user-1", time.Now().Add(time.Minute)))
	expectRefreshInsert(mock, "user-1").WillReturnError(pgErr)

	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc)

	if resp := postJSON(app, "/auth/refresh", RefreshRequest{RefreshToken: refresh}); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected refresh error, got %d", resp.StatusCode)
	}
}

func TestAuthLogout(t *testing.T) {
	mock := newMock(t)
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), NewService("secret", mock, nil))

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).
		WithArgs("tok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	if resp := postJSON(app, "/auth/logout", RefreshRequest{RefreshToken: "tok"}); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected no content, got %d", resp.StatusCode)
	}

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).
		WithArgs("tok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	if resp := postJSON(app, "/auth/logout", RefreshRequest{RefreshToken: "tok"}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
	}

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).
		WithArgs("tok").
		WillReturnError(pgErr)
	if resp := postJSON(app, "/auth/logout", RefreshRequest{RefreshToken: "tok"}); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	if resp := postJSON(app, "/auth/logout", map[string]string{}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestAuthVerifyRejects(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), NewService("secret", nil, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/jwt/verify", nil))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized without bearer")
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/jwt/verify", nil)
	req.Header.Set("Authorization", "Bearer bad")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for bad token")
	}
}
