package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/yatube/internal/mailer"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/monitoring"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/tokens"
	"github.com/anonto42/yatube/internal/views"
	"github.com/anonto42/yatube/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	invalidLogin       = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	duplicateUsername  = "A user with that username already exists."
	wrongOldPassword   = "Your old password was entered incorrectly. Please enter it again."
	passwordResetTitle = "Password reset on Yatube"
)

var usernameUnsafe = regexp.MustCompile(`[^\w.@+-]`)

// TokenVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	resetTokens    *tokens.PasswordResetTokens
	mailer         mailer.Mailer
	firebaseAuth   TokenVerifier
	siteURL        string
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, which
// disables Firebase login.
func NewAuthHandler(userRepo repositories.UserRepository, resetTokens *tokens.PasswordResetTokens, m mailer.Mailer, firebaseAuth TokenVerifier, siteURL string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		resetTokens:    resetTokens,
		mailer:         m,
		firebaseAuth:   firebaseAuth,
		siteURL:        siteURL,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, login echo.MiddlewareFunc) {
	g.Match(actionMethods, "/signup/", h.Signup)
	g.Match(actionMethods, "/login/", h.Login)
	g.Match(actionMethods, "/logout/", h.Logout)
	g.Match(actionMethods, "/password_change/", h.PasswordChange, login)
	g.GET("/password_change/done/", StaticPage("users/password_change_done.html"), login)
	g.Match(actionMethods, "/password_reset/", h.PasswordReset)
	g.GET("/password_reset/done/", StaticPage("users/password_reset_done.html"))
	g.Match(actionMethods, "/reset/:uidb64/:token/", h.PasswordResetConfirm)
	g.GET("/reset/done/", StaticPage("users/password_reset_complete.html"))
	if h.firebaseAuth != nil {
		g.POST("/firebase/", h.FirebaseLogin)
	}
}

// Signup creates an account and logs it in
func (h *AuthHandler) Signup(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return c.Render(http.StatusOK, "users/signup.html", echo.Map{"form": views.NewForm()})
	}

	var req models.SignupForm
	form, err := bindForm(c, &req, "first_name", "last_name", "username", "email")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if form.Errors["username"] == "" {
		exists, err := h.userRepository.UsernameExists(ctx, req.Username)
		if err != nil {
			return err
		}
		if exists {
			form.Errors.Add("username", duplicateUsername)
		}
	}
	if !form.Errors.Valid() {
		return c.Render(http.StatusOK, "users/signup.html", echo.Map{"form": form})
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := user.SetPassword(req.Password1); err != nil {
		return err
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			form.Errors.Add("username", duplicateUsername)
			return c.Render(http.StatusOK, "users/signup.html", echo.Map{"form": form})
		}
		return err
	}
	monitoring.SignupSuccess.Inc()

	if err := middleware.Login(c, user); err != nil {
		return err
	}
	return redirect(c, "/")
}

// Login checks the credentials and starts a session
func (h *AuthHandler) Login(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return h.renderLogin(c, views.NewForm(), c.QueryParam("next"))
	}

	var req models.LoginForm
	form, err := bindForm(c, &req, "username")
	if err != nil {
		return err
	}
	if !form.Errors.Valid() {
		monitoring.LoginFailure.WithLabelValues("invalid_form").Inc()
		return h.renderLogin(c, form, req.Next)
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if user == nil || !user.CheckPassword(req.Password) {
		monitoring.LoginFailure.WithLabelValues("invalid_credentials").Inc()
		form.Errors.Add(validators.NonFieldErrors, invalidLogin)
		return h.renderLogin(c, form, req.Next)
	}

	if err := middleware.Login(c, user); err != nil {
		return err
	}
	monitoring.LoginSuccess.Inc()
	return redirect(c, safeNext(req.Next))
}

func (h *AuthHandler) renderLogin(c echo.Context, form *views.Form, next string) error {
	return c.Render(http.StatusOK, "users/login.html", echo.Map{
		"form":             form,
		"next":             next,
		"firebase_enabled": h.firebaseAuth != nil,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := middleware.Logout(c); err != nil {
		return err
	}
	return c.Render(http.StatusOK, "users/logged_out.html", echo.Map{})
}

// PasswordChange replaces the password of the logged in user
func (h *AuthHandler) PasswordChange(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return c.Render(http.StatusOK, "users/password_change.html", echo.Map{"form": views.NewForm()})
	}

	var req models.PasswordChangeForm
	form, err := bindForm(c, &req)
	if err != nil {
		return err
	}
	user := currentUser(c)
	if form.Errors["old_password"] == "" && !user.CheckPassword(req.OldPassword) {
		form.Errors.Add("old_password", wrongOldPassword)
	}
	if !form.Errors.Valid() {
		return c.Render(http.StatusOK, "users/password_change.html", echo.Map{"form": form})
	}

	if err := user.SetPassword(req.NewPassword1); err != nil {
		return err
	}
	if err := h.userRepository.UpdateUser(c.Request().Context(), user); err != nil {
		return err
	}
	if err := middleware.Login(c, user); err != nil {
		return err
	}
	return redirect(c, "/auth/password_change/done/")
}

// PasswordReset mails a reset link to every account registered with the
// submitted address. The response does not reveal whether one exists.
func (h *AuthHandler) PasswordReset(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return c.Render(http.StatusOK, "users/password_reset.html", echo.Map{"form": views.NewForm()})
	}

	var req models.PasswordResetForm
	form, err := bindForm(c, &req, "email")
	if err != nil {
		return err
	}
	if !form.Errors.Valid() {
		return c.Render(http.StatusOK, "users/password_reset.html", echo.Map{"form": form})
	}

	ctx := c.Request().Context()
	users, err := h.userRepository.GetUsersByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	for i := range users {
		if err := h.sendResetLink(ctx, &users[i]); err != nil {
			return err
		}
	}
	return redirect(c, "/auth/password_reset/done/")
}

func (h *AuthHandler) sendResetLink(ctx context.Context, user *models.User) error {
	token, err := h.resetTokens.Make(user)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/auth/reset/%s/%s/", h.siteURL, tokens.EncodeUID(user.ID), token)
	body := fmt.Sprintf("You're receiving this email because you requested a password reset for your user account at Yatube.\n\n"+
		"Please go to the following page and choose a new password:\n\n%s\n\nYour username, in case you've forgotten: %s\n",
		link, user.Username)

	if err := h.mailer.Send(ctx, mailer.Message{To: user.Email, Subject: passwordResetTitle, Body: body}); err != nil {
		return err
	}
	monitoring.PasswordResetsSent.Inc()
	slog.InfoContext(ctx, "Password reset link sent", "user_id", user.ID)
	return nil
}

// PasswordResetConfirm sets a new password through a mailed link. A bad
// link renders the page with validlink set to false.
func (h *AuthHandler) PasswordResetConfirm(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := h.resetUser(ctx, c.Param("uidb64"), c.Param("token"))
	if !ok {
		return c.Render(http.StatusOK, "users/password_reset_confirm.html", echo.Map{"validlink": false})
	}

	if c.Request().Method != http.MethodPost {
		return c.Render(http.StatusOK, "users/password_reset_confirm.html", echo.Map{
			"validlink": true,
			"form":      views.NewForm(),
		})
	}

	var req models.SetPasswordForm
	form, err := bindForm(c, &req)
	if err != nil {
		return err
	}
	if !form.Errors.Valid() {
		return c.Render(http.StatusOK, "users/password_reset_confirm.html", echo.Map{
			"validlink": true,
			"form":      form,
		})
	}

	if err := user.SetPassword(req.NewPassword1); err != nil {
		return err
	}
	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return err
	}
	return redirect(c, "/auth/reset/done/")
}

func (h *AuthHandler) resetUser(ctx context.Context, uidb64, token string) (*models.User, bool) {
	id, err := tokens.DecodeUID(uidb64)
	if err != nil {
		return nil, false
	}
	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return nil, false
	}
	return user, h.resetTokens.Check(user, token)
}

// FirebaseLogin verifies a Firebase ID token and logs in the matching user,
// linking or creating the account on first use
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing Firebase ID token")
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		monitoring.LoginFailure.WithLabelValues("invalid_firebase_token").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	user, err := h.firebaseUser(ctx, token)
	if err != nil {
		return err
	}
	if err := middleware.Login(c, user); err != nil {
		return err
	}
	monitoring.LoginSuccess.Inc()
	return redirect(c, safeNext(req.Next))
}

// firebaseUser finds the account by Firebase UID, then links an unlinked
// account with the same verified email, and creates one otherwise.
func (h *AuthHandler) firebaseUser(ctx context.Context, token *auth.Token) (*models.User, error) {
	user, err := h.userRepository.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	email, _ := token.Claims["email"].(string)
	// Only an address Firebase has verified may claim an existing account.
	if verified, _ := token.Claims["email_verified"].(bool); email != "" && verified {
		users, err := h.userRepository.GetUsersByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		for i := range users {
			user := &users[i]
			if user.FirebaseUID != nil {
				continue
			}
			user.FirebaseUID = &token.UID
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return nil, err
			}
			return h.userRepository.GetUserByID(ctx, user.ID)
		}
	}

	username, err := h.freeUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	uid := token.UID
	user = &models.User{Username: username, Email: email, FirebaseUID: &uid}
	if name, ok := token.Claims["name"].(string); ok {
		user.FirstName = name
	}
	// Firebase accounts sign in without a local password.
	if err := user.SetPassword(uuid.NewString()); err != nil {
		return nil, err
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	monitoring.SignupSuccess.Inc()
	return user, nil
}

// freeUsername derives an unused username from the local part of email.
func (h *AuthHandler) freeUsername(ctx context.Context, email string) (string, error) {
	base, _, _ := strings.Cut(email, "@")
	base = usernameUnsafe.ReplaceAllString(base, "")
	if base == "" {
		base = "user"
	}
	if len(base) > 140 {
		base = base[:140]
	}

	candidate := base
	for i := 0; i < 5; i++ {
		exists, err := h.userRepository.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:8]
	}
	return "", errors.New("could not find a free username")
}
