package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("test-jwt-secret")
	refreshSecret = []byte("test-refresh-secret")
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.NewString()
	exp := time.Now().Add(AccessTTL).UTC()

	token, err := NewAccessToken(userID, "admin", exp, accessSecret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(token, accessSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, userID, claims.Subject)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessToken_Expired(t *testing.T) {
	t.Parallel()

	token, err := NewAccessToken(uuid.NewString(), "user", time.Now().Add(-time.Minute), accessSecret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, accessSecret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewAccessToken(uuid.NewString(), "user", time.Now().Add(time.Minute), accessSecret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, []byte("other"))
	require.Error(t, err)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.NewString()
	token, jti, err := NewRefreshToken(userID, time.Now().Add(RefreshTTL), refreshSecret)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := RefreshClaimsFromToken(token, refreshSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, jti, claims.ID)
}

func TestPairCookies(t *testing.T) {
	t.Parallel()

	p := &Pair{AccessToken: "a", RefreshToken: "r", AccessExp: time.Now(), RefreshExp: time.Now()}
	cookies := p.Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, AccessCookie, cookies[0].Name)
	assert.Equal(t, RefreshCookie, cookies[1].Name)
	assert.True(t, cookies[0].HttpOnly)

	del := DeleteCookie(AccessCookie, "/")
	assert.Equal(t, -1, del.MaxAge)
	assert.Len(t, Sha256Hex("x"), 64)
}

func TestNewOneTimeToken(t *testing.T) {
	t.Parallel()

	a, err := NewOneTimeToken()
	require.NoError(t, err)
	b, err := NewOneTimeToken()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
