package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userprofile-api/internal/httputil"
	"userprofile-api/internal/user"
)

type fakeVerifier struct {
	user  *user.User
	token *AccessToken
	err   error
}

func (f *fakeVerifier) Verify(ctx context.Context, opaque string) (*user.User, *AccessToken, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.user, f.token, nil
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRequireAuthMissingHeader(t *testing.T) {
	mw := NewMiddleware(&fakeVerifier{err: ErrInvalidToken})
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeMissingAuth, decodeErrorResponse(t, rec).Code)
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	mw := NewMiddleware(&fakeVerifier{err: ErrInvalidToken})
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	for _, header := range []string{"Bearer", "Token abc", "Bearer a b"} {
		req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
		req.Header.Set("Authorization", header)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Equal(t, httputil.CodeInvalidAuthHeader, decodeErrorResponse(t, rec).Code, header)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	mw := NewMiddleware(&fakeVerifier{err: ErrInvalidToken})
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.Header.Set("Authorization", "Bearer bogus")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeInvalidToken, decodeErrorResponse(t, rec).Code)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	mw := NewMiddleware(&fakeVerifier{err: ErrExpiredToken})
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.Header.Set("Authorization", "Bearer expired")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeTokenExpired, decodeErrorResponse(t, rec).Code)
}

func TestRequireAuthPopulatesContext(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "a@x.com"}
	token := &AccessToken{ID: uuid.New(), UserID: u.ID, CreatedAt: time.Now()}
	mw := NewMiddleware(&fakeVerifier{user: u, token: token})

	called := false
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true

		userID, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, u.ID, userID)

		email, ok := GetUserEmailFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, u.Email, email)

		tokenID, ok := GetTokenIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, token.ID, tokenID)

		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
