// Package tokens issues and checks one-shot password reset tokens.
//
// A token is an HS256 JWT naming the user and carrying a fingerprint of the
// user's current password hash. Changing the password changes the
// fingerprint, so a used link stops working.
package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/anonto42/yatube/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/mdobak/go-xerrors"
)

var ErrInvalidUID = xerrors.Message("invalid uid")

type resetClaims struct {
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

type PasswordResetTokens struct {
	secret []byte
	ttl    time.Duration
}

func NewPasswordResetTokens(secret string, ttl time.Duration) *PasswordResetTokens {
	return &PasswordResetTokens{secret: []byte(secret), ttl: ttl}
}

// Make returns a token valid for user until the timeout elapses or the
// password changes.
func (t *PasswordResetTokens) Make(user *models.User) (string, error) {
	now := time.Now()
	claims := &resetClaims{
		Fingerprint: t.fingerprint(user),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", xerrors.New(err)
	}
	return token, nil
}

// Check reports whether token was made for user and is still valid.
func (t *PasswordResetTokens) Check(user *models.User, token string) bool {
	if user == nil || token == "" {
		return false
	}

	claims := &resetClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return false
	}

	if claims.Subject != strconv.FormatUint(uint64(user.ID), 10) {
		return false
	}
	return hmac.Equal([]byte(claims.Fingerprint), []byte(t.fingerprint(user)))
}

func (t *PasswordResetTokens) fingerprint(user *models.User) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(user.Password))
	mac.Write([]byte(user.Email))
	return hex.EncodeToString(mac.Sum(nil))
}

// EncodeUID renders a user id for use in a URL path segment.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

func DecodeUID(uidb64 string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uidb64)
	if err != nil {
		return 0, xerrors.New(ErrInvalidUID)
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, xerrors.New(ErrInvalidUID)
	}
	return uint(id), nil
}
