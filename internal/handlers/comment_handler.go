package handlers

import (
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/monitoring"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, login echo.MiddlewareFunc) {
	g.Match(actionMethods, "/posts/:post_id/comment/", h.AddComment, login)
}

// AddComment stores a valid comment and always returns to the post.
// Invalid submissions are dropped silently.
func (h *CommentHandler) AddComment(c echo.Context) error {
	id, err := paramID(c, "post_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return notFound(err)
	}

	var req models.CommentForm
	form, err := bindForm(c, &req, "text")
	if err != nil {
		return err
	}
	if form.Errors.Valid() {
		comment := &models.Comment{
			PostID:   post.ID,
			AuthorID: currentUser(c).ID,
			Text:     req.Text,
		}
		if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
			return err
		}
		monitoring.CommentsCreated.Inc()
	}
	return redirect(c, postURL(post.ID))
}
