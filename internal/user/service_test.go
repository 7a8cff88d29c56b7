package user

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/db"
)

func newTestService(t *testing.T) (*Service, *Tokens, Repository) {
	t.Helper()
	g, err := db.Open(context.Background(), db.DriverSQLite, ":memory:", time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	require.NoError(t, g.Migrate(context.Background()))

	repo := NewRepo(g)
	tokens := NewTokens("test-secret", "tienda", 30*time.Minute)
	return NewService(repo, tokens, nil), tokens, repo
}

func TestRegister_StoresHashNotRawPassword(t *testing.T) {
	svc, _, repo := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "A@X.com", "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.True(t, u.IsActive)

	stored, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
	assert.True(t, CheckPassword(stored.PasswordHash, "pw123"))
	assert.False(t, stored.CreatedAt.IsZero())

	tok, err := svc.Authenticate(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)
}

func TestRegister_DuplicateEmailOrUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "alice", "pw123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@x.com", "alice2", "pw123")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	_, err = svc.Register(ctx, "other@x.com", "alice", "pw123")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestRegister_InvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct{ email, username, password string }{
		{"not-an-email", "alice", "pw123"},
		{"a@x.com", "al", "pw123"},
		{"a@x.com", "bad name", "pw123"},
		{"a@x.com", "alice", ""},
		{"a@x.com", "alice", string(make([]byte, 73))},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.email, tc.username, tc.password)
		assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err), "%+v", tc)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "alice", "pw123")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	_, err = svc.Authenticate(ctx, "nobody", "pw123")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	require.NoError(t, svc.SetActive(ctx, "alice", false))
	_, err = svc.Authenticate(ctx, "alice", "pw123")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestResolveSession(t *testing.T) {
	svc, tokens, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "alice", "pw123")
	require.NoError(t, err)

	tok, err := svc.Authenticate(ctx, "alice", "pw123")
	require.NoError(t, err)

	u, err := svc.ResolveSession(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.ResolveSession(ctx, tok.AccessToken+"x")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	_, err = svc.ResolveSession(ctx, "")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	// valid signature, unknown subject
	ghost, _, err := tokens.Issue("ghost")
	require.NoError(t, err)
	_, err = svc.ResolveSession(ctx, ghost)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	require.NoError(t, svc.SetActive(ctx, "alice", false))
	_, err = svc.ResolveSession(ctx, tok.AccessToken)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestResolveSession_ExpiredToken(t *testing.T) {
	svc, tokens, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "alice", "pw123")
	require.NoError(t, err)

	now := time.Now()
	tokens.now = func() time.Time { return now }
	tok, err := svc.Authenticate(ctx, "alice", "pw123")
	require.NoError(t, err)

	tokens.now = func() time.Time { return now.Add(29 * time.Minute) }
	_, err = svc.ResolveSession(ctx, tok.AccessToken)
	require.NoError(t, err)

	tokens.now = func() time.Time { return now.Add(31 * time.Minute) }
	_, err = svc.ResolveSession(ctx, tok.AccessToken)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestTokens_RejectsOtherSecretAndAlgorithm(t *testing.T) {
	tokens := NewTokens("secret-a", "tienda", time.Minute)
	other := NewTokens("secret-b", "tienda", time.Minute)

	raw, _, err := other.Issue("alice")
	require.NoError(t, err)
	_, err = tokens.Verify(raw)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "tienda",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.Error(t, err)
}
