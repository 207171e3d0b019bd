package handlers

import (
	"net/http"

	"github.com/anonto42/yatube/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the paginated post lists.
type FeedHandler struct {
	postRepository  repositories.PostRepository
	groupRepository repositories.GroupRepository
	perPage         int
}

func NewFeedHandler(postRepo repositories.PostRepository, groupRepo repositories.GroupRepository, perPage int) *FeedHandler {
	return &FeedHandler{
		postRepository:  postRepo,
		groupRepository: groupRepo,
		perPage:         perPage,
	}
}

// Index lists every post, newest first.
func (h *FeedHandler) Index(c echo.Context) error {
	page, err := h.postRepository.GetPosts(c.Request().Context(), repositories.PostFilter{}, c.QueryParam("page"), h.perPage)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/index.html", echo.Map{
		"page_obj": page,
	})
}

// GroupPosts lists the posts of one group.
func (h *FeedHandler) GroupPosts(c echo.Context) error {
	ctx := c.Request().Context()
	group, err := h.groupRepository.GetGroupBySlug(ctx, c.Param("slug"))
	if err != nil {
		return notFound(err)
	}

	page, err := h.postRepository.GetPosts(ctx, repositories.PostFilter{GroupID: group.ID}, c.QueryParam("page"), h.perPage)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/group_list.html", echo.Map{
		"group":         group,
		"page_obj":      page,
		"is_group_page": true,
	})
}

// FollowIndex lists the posts of the authors the current user follows.
func (h *FeedHandler) FollowIndex(c echo.Context) error {
	filter := repositories.PostFilter{FollowerID: currentUser(c).ID}
	page, err := h.postRepository.GetPosts(c.Request().Context(), filter, c.QueryParam("page"), h.perPage)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/follow.html", echo.Map{
		"page_obj": page,
	})
}

// RegisterFeedRoutes registers the post lists. The index page is wrapped in
// cache when one is given.
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, login, cache echo.MiddlewareFunc) {
	if cache != nil {
		g.GET("/", h.Index, cache)
	} else {
		g.GET("/", h.Index)
	}
	g.GET("/group/:slug/", h.GroupPosts)
	g.GET("/follow/", h.FollowIndex, login)
}
