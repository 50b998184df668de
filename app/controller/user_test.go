package controller_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-blog/app/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
)

func TestUserController_FindAll(t *testing.T) {
	env, cleanup := newEnv(t)
	defer cleanup()

	now := time.Now()
	env.mock.ExpectQuery(findAllQuery).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(uint64(1), "a@x.com", "a", "A", "", "hash", nil, now, now, nil, nil, nil).
			AddRow(uint64(2), "b@x.com", "b", "B", "bio", "hash", nil, now, now,
				uint64(5), "avatars/abc.png", "https://cdn.example.com/avatars/abc.png"))

	ctx, rec := newContext(httptest.NewRequest(http.MethodGet, "/users", nil))

	if err := env.users.FindAll(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `"username":"a"`) || !strings.Contains(body, `"username":"b"`) {
		t.Fatalf("expected both users in response, got %s", body)
	}
	if !strings.Contains(body, `"url":"https://cdn.example.com/avatars/abc.png"`) {
		t.Fatalf("expected avatar url in response, got %s", body)
	}
	if strings.Contains(body, "password") || strings.Contains(body, "hash") {
		t.Fatalf("response must not leak credentials: %s", body)
	}
}

func TestUserController_Create(t *testing.T) {
	env, cleanup := newEnv(t)
	defer cleanup()

	env.mock.ExpectExec(insertUserQuery).WillReturnResult(sqlmock.NewResult(3, 1))

	ctx, rec := newContext(jsonRequest(http.MethodPost, "/users",
		`{"user":{"email":"c@x.com","username":"c","password":"secret1"}}`))

	if err := env.users.Create(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, `"token":"`) {
		t.Fatalf("expected access token in response body, got %s", body)
	}
	if strings.Contains(body, "password") {
		t.Fatalf("response must not carry a password field: %s", body)
	}
}

func TestUserController_Current(t *testing.T) {
	env, cleanup := newEnv(t)
	defer cleanup()

	ctx, rec := authedContext(httptest.NewRequest(http.MethodGet, "/user", nil),
		&entity.User{ID: 1, Email: "a@x.com", Username: "a"})

	if err := env.users.Current(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"token":"`) {
		t.Fatalf("expected access token in response body, got %s", rec.Body.String())
	}
}

func TestUserController_Current_Unauthorized(t *testing.T) {
	env, cleanup := newEnv(t)
	defer cleanup()

	ctx, rec := newContext(httptest.NewRequest(http.MethodGet, "/user", nil))

	if err := env.users.Current(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestUserController_Update(t *testing.T) {
	env, cleanup := newEnv(t)
	defer cleanup()

	now := time.Now()
	env.mock.ExpectQuery(findByIDQuery).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(1), "a@x.com", "a", "A", "", "hash", nil, now, now, nil, nil, nil,
		))
	env.mock.ExpectExec(updateUserQuery).
		WithArgs("a@x.com", "a", "A", "new bio", sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx, rec := authedContext(jsonRequest(http.MethodPut, "/user",
		`{"user":{"bio":"new bio"}}`), &entity.User{ID: 1})

	if err := env.users.Update(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"bio":"new bio"`) {
		t.Fatalf("expected updated bio in response, got %s", rec.Body.String())
	}

	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func avatarRequest(t *testing.T, filename string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	if _, err := part.Write([]byte("image-bytes")); err != nil {
		t.Fatalf("failed to write multipart body: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/avatar", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestUserController_AddAvatar(t *testing.T) {
	env, cleanup := newEnv(t)
	defer cleanup()

	now := time.Now()
	env.mock.ExpectQuery(findByIDQuery).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(1), "a@x.com", "a", "A", "", "hash", nil, now, now, nil, nil, nil,
		))
	env.mock.ExpectExec(updateImageQuery).
		WithArgs(int64(8), sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx, rec := authedContext(avatarRequest(t, "profile.png"), &entity.User{ID: 1})

	if err := env.users.AddAvatar(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"url":"https://cdn.example.com/avatars/fixed-profile.png"`) {
		t.Fatalf("expected stored file url in response, got %s", rec.Body.String())
	}
	if env.files.uploaded == nil {
		t.Fatal("expected an upload to reach storage")
	}

	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserController_AddAvatar_MissingFile(t *testing.T) {
	env, cleanup := newEnv(t)
	defer cleanup()

	ctx, rec := authedContext(jsonRequest(http.MethodPost, "/avatar", `{}`), &entity.User{ID: 1})

	if err := env.users.AddAvatar(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestUserController_DeleteAvatar(t *testing.T) {
	env, cleanup := newEnv(t)
	defer cleanup()

	now := time.Now()
	env.mock.ExpectQuery(findByIDQuery).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(1), "a@x.com", "a", "A", "", "hash", nil, now, now,
			uint64(5), "avatars/abc.png", "https://cdn.example.com/avatars/abc.png",
		))
	env.mock.ExpectExec(updateImageQuery).
		WithArgs(nil, sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx, rec := authedContext(httptest.NewRequest(http.MethodDelete, "/avatar", nil), &entity.User{ID: 1})

	if err := env.users.DeleteAvatar(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(env.files.deleted) != 1 || env.files.deleted[0] != 5 {
		t.Fatalf("expected stored object 5 to be deleted, got %v", env.files.deleted)
	}

	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
