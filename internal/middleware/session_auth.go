package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	// SessionName is the name of the session cookie.
	SessionName = "sessionid"
	// UserKey is the echo.Context key holding the logged in *models.User.
	UserKey = "user"

	sessionUserID   = "user_id"
	sessionAuthHash = "auth_hash"
	sessionsKey     = "sessions"
)

// sessionKeys is what Login and Logout need from the middleware.
type sessionKeys struct {
	store  sessions.Store
	secret []byte
}

// authHash fingerprints the password hash, so a password change ends every
// session opened with the old password.
func (k *sessionKeys) authHash(user *models.User) string {
	mac := hmac.New(sha256.New, k.secret)
	mac.Write([]byte("session-auth:"))
	mac.Write([]byte(user.Password))
	return hex.EncodeToString(mac.Sum(nil))
}

func keysFrom(c echo.Context) (*sessionKeys, error) {
	keys, ok := c.Get(sessionsKey).(*sessionKeys)
	if !ok {
		return nil, errors.New("session middleware is not installed")
	}
	return keys, nil
}

// NewSessionStore returns a cookie store signed with secret.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionAuth loads the user referenced by the session, if any, into the
// context under UserKey. A session pointing at a missing user, or opened
// before the user's password last changed, is ignored.
func SessionAuth(store sessions.Store, users repositories.UserRepository, secret string) echo.MiddlewareFunc {
	keys := &sessionKeys{store: store, secret: []byte(secret)}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(sessionsKey, keys)

			session, err := store.Get(c.Request(), SessionName)
			if err != nil {
				// Tampered or stale cookie, continue anonymously.
				slog.Debug("Discarding unreadable session", "err", err)
				return next(c)
			}

			id, ok := session.Values[sessionUserID].(uint)
			if !ok {
				return next(c)
			}
			user, err := users.GetUserByID(c.Request().Context(), id)
			if errors.Is(err, repositories.ErrNotFound) {
				return next(c)
			}
			if err != nil {
				return err
			}
			hash, _ := session.Values[sessionAuthHash].(string)
			if !hmac.Equal([]byte(hash), []byte(keys.authHash(user))) {
				return next(c)
			}
			c.Set(UserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the logged in user or nil for anonymous requests.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(UserKey).(*models.User)
	return user
}

// Login binds user to the session of the current request. Call it again
// after changing the password to keep the current session alive.
func Login(c echo.Context, user *models.User) error {
	keys, err := keysFrom(c)
	if err != nil {
		return err
	}
	session, _ := keys.store.Get(c.Request(), SessionName)
	session.Values[sessionUserID] = user.ID
	session.Values[sessionAuthHash] = keys.authHash(user)
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	c.Set(UserKey, user)
	return nil
}

// Logout expires the session cookie.
func Logout(c echo.Context) error {
	keys, err := keysFrom(c)
	if err != nil {
		return err
	}
	session, _ := keys.store.Get(c.Request(), SessionName)
	delete(session.Values, sessionUserID)
	delete(session.Values, sessionAuthHash)
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	c.Set(UserKey, nil)
	return nil
}

// LoginURL builds the login redirect carrying the current path as next.
func LoginURL(loginPath string, c echo.Context) string {
	return loginPath + "?" + url.Values{"next": {c.Request().URL.RequestURI()}}.Encode()
}

// LoginRequired redirects anonymous requests to loginPath.
func LoginRequired(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				return c.Redirect(http.StatusFound, LoginURL(loginPath, c))
			}
			return next(c)
		}
	}
}

// PermissionRequired redirects to loginPath unless the user holds codename.
func PermissionRequired(codename, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentUser(c).HasPerm(codename) {
				return c.Redirect(http.StatusFound, LoginURL(loginPath, c))
			}
			return next(c)
		}
	}
}
