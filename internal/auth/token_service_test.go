package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userprofile-api/internal/user"
)

func registerTestUser(t *testing.T, users *fakeUserRepo, email string) *user.User {
	t.Helper()
	u, err := users.Create(context.Background(), email, "hash")
	require.NoError(t, err)
	return u
}

func TestIssueStoresOnlyTheHash(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewTokenService(tokens, users, 0)
	u := registerTestUser(t, users, "a@x.com")

	opaque, err := svc.Issue(context.Background(), u)
	require.NoError(t, err)
	require.NotEmpty(t, opaque)

	require.Len(t, tokens.byHash, 1)
	for hash, stored := range tokens.byHash {
		assert.NotEqual(t, opaque, hash)
		assert.Equal(t, hashToken(opaque), hash)
		assert.Equal(t, u.ID, stored.UserID)
		assert.Equal(t, tokenType, stored.Type)
	}
}

func TestIssueWithoutDurationNeverExpires(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewTokenService(tokens, users, 0)
	u := registerTestUser(t, users, "a@x.com")

	opaque, err := svc.Issue(context.Background(), u)
	require.NoError(t, err)

	token, err := tokens.GetByHash(context.Background(), hashToken(opaque))
	require.NoError(t, err)
	assert.Nil(t, token.ExpiresAt)
	assert.False(t, token.IsExpired())
}

func TestIssueWithDurationSetsExpiry(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewTokenService(tokens, users, time.Hour)
	u := registerTestUser(t, users, "a@x.com")

	opaque, err := svc.Issue(context.Background(), u)
	require.NoError(t, err)

	token, err := tokens.GetByHash(context.Background(), hashToken(opaque))
	require.NoError(t, err)
	require.NotNil(t, token.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *token.ExpiresAt, time.Minute)
}

func TestIssuedValuesAreUnique(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewTokenService(tokens, users, 0)
	u := registerTestUser(t, users, "a@x.com")

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		opaque, err := svc.Issue(context.Background(), u)
		require.NoError(t, err)
		assert.False(t, seen[opaque])
		seen[opaque] = true
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	svc := NewTokenService(newFakeTokenRepo(), newFakeUserRepo(), 0)

	_, _, err := svc.Verify(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewTokenService(tokens, users, time.Hour)
	u := registerTestUser(t, users, "a@x.com")

	opaque, err := svc.Issue(context.Background(), u)
	require.NoError(t, err)

	// Force the stored expiry into the past
	past := time.Now().Add(-time.Minute)
	tokens.byHash[hashToken(opaque)].ExpiresAt = &past

	_, _, err = svc.Verify(context.Background(), opaque)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyBumpsLastUsed(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewTokenService(tokens, users, 0)
	u := registerTestUser(t, users, "a@x.com")

	opaque, err := svc.Issue(context.Background(), u)
	require.NoError(t, err)

	stored := tokens.byHash[hashToken(opaque)]
	require.Nil(t, stored.LastUsedAt)

	_, token, err := svc.Verify(context.Background(), opaque)
	require.NoError(t, err)
	require.NotNil(t, token.LastUsedAt)
	require.NotNil(t, stored.LastUsedAt)
	assert.WithinDuration(t, time.Now(), *stored.LastUsedAt, time.Minute)
}

func TestVerifyTokenWithoutOwner(t *testing.T) {
	tokens := newFakeTokenRepo()
	svc := NewTokenService(tokens, newFakeUserRepo(), 0)

	// Token row pointing at a user that no longer exists
	opaque, err := generateOpaqueToken()
	require.NoError(t, err)
	require.NoError(t, tokens.Store(context.Background(), &AccessToken{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Type:   tokenType,
		Hash:   hashToken(opaque),
	}))

	_, _, err = svc.Verify(context.Background(), opaque)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCleanupExpiredRemovesOnlyExpiredTokens(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewTokenService(tokens, users, time.Hour)
	u := registerTestUser(t, users, "a@x.com")

	expired, err := svc.Issue(context.Background(), u)
	require.NoError(t, err)
	live, err := svc.Issue(context.Background(), u)
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	tokens.byHash[hashToken(expired)].ExpiresAt = &past

	require.NoError(t, svc.CleanupExpired(context.Background()))

	_, _, err = svc.Verify(context.Background(), expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.Verify(context.Background(), live)
	assert.NoError(t, err)
}

func TestRevokeUnknownToken(t *testing.T) {
	svc := NewTokenService(newFakeTokenRepo(), newFakeUserRepo(), 0)

	err := svc.Revoke(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
