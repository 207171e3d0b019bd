package handlers

import (
	"net/http"

	"github.com/anonto42/yatube/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler serves author profiles
type UserHandler struct {
	userRepository   repositories.UserRepository
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
	perPage          int
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, followRepo repositories.FollowRepository, perPage int) *UserHandler {
	return &UserHandler{
		userRepository:   userRepo,
		postRepository:   postRepo,
		followRepository: followRepo,
		perPage:          perPage,
	}
}

// RegisterProfileRoutes registers profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile/:username/", h.Profile)
}

// Profile lists the posts of one author together with the follow counters
func (h *UserHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFound(err)
	}

	page, err := h.postRepository.GetPosts(ctx, repositories.PostFilter{AuthorID: author.ID}, c.QueryParam("page"), h.perPage)
	if err != nil {
		return err
	}

	following := false
	if viewer := currentUser(c); viewer != nil {
		following, err = h.followRepository.IsFollowing(ctx, viewer.ID, author.ID)
		if err != nil {
			return err
		}
	}
	followers, err := h.followRepository.GetFollowersCount(ctx, author.ID)
	if err != nil {
		return err
	}
	followingCount, err := h.followRepository.GetFollowingCount(ctx, author.ID)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "posts/profile.html", echo.Map{
		"author":          author,
		"page_obj":        page,
		"no_author":       true,
		"following":       following,
		"followers_count": followers,
		"following_count": followingCount,
	})
}
