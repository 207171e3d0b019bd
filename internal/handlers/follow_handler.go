package handlers

import (
	"errors"
	"log/slog"

	"github.com/anonto42/yatube/internal/monitoring"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes. Both actions answer
// GET as well as POST so they work as plain links.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, login echo.MiddlewareFunc) {
	g.Match(actionMethods, "/profile/:username/follow/", h.ProfileFollow, login)
	g.Match(actionMethods, "/profile/:username/unfollow/", h.ProfileUnfollow, login)
}

// ProfileFollow subscribes the current user to an author. Following
// yourself or following twice changes nothing.
func (h *FollowHandler) ProfileFollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFound(err)
	}

	created, err := h.followRepository.Follow(ctx, currentUser(c).ID, author.ID)
	if err != nil && !errors.Is(err, repositories.ErrSelfFollow) {
		return err
	}
	if created {
		monitoring.FollowsCreated.Inc()
		slog.DebugContext(ctx, "Follow created", "user_id", currentUser(c).ID, "author_id", author.ID)
	}
	return redirect(c, profileURL(author.Username))
}

// ProfileUnfollow removes the subscription if there is one
func (h *FollowHandler) ProfileUnfollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFound(err)
	}

	if _, err := h.followRepository.Unfollow(ctx, currentUser(c).ID, author.ID); err != nil {
		return err
	}
	return redirect(c, profileURL(author.Username))
}
