package tokens

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/anonto42/yatube/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, id uint) *models.User {
	t.Helper()

	user := &models.User{ID: id, Username: "auth", Email: "auth@localhost.local"}
	require.NoError(t, user.SetPassword("first-password"))
	return user
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewPasswordResetTokens("secret", time.Hour)
	user := newUser(t, 7)

	token, err := tokens.Make(user)
	require.NoError(t, err)
	assert.True(t, tokens.Check(user, token))
}

func TestTokenRejected(t *testing.T) {
	tokens := NewPasswordResetTokens("secret", time.Hour)
	user := newUser(t, 7)
	token, err := tokens.Make(user)
	require.NoError(t, err)

	t.Run("other user", func(t *testing.T) {
		assert.False(t, tokens.Check(newUser(t, 8), token))
	})
	t.Run("other secret", func(t *testing.T) {
		assert.False(t, NewPasswordResetTokens("other", time.Hour).Check(user, token))
	})
	t.Run("garbage", func(t *testing.T) {
		assert.False(t, tokens.Check(user, "not-a-token"))
		assert.False(t, tokens.Check(user, ""))
		assert.False(t, tokens.Check(nil, token))
	})
	t.Run("password changed", func(t *testing.T) {
		changed := *user
		require.NoError(t, changed.SetPassword("second-password"))
		assert.False(t, tokens.Check(&changed, token))
	})
}

func TestTokenExpires(t *testing.T) {
	tokens := NewPasswordResetTokens("secret", -time.Minute)
	user := newUser(t, 7)

	token, err := tokens.Make(user)
	require.NoError(t, err)
	assert.False(t, tokens.Check(user, token))
}

func TestUIDEncoding(t *testing.T) {
	id, err := DecodeUID(EncodeUID(42))
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "!!", b64("abc"), b64("0")} {
		_, err := DecodeUID(bad)
		assert.ErrorIs(t, err, ErrInvalidUID, bad)
	}
}

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
