package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/monitoring"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/internal/views"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
)

var postFields = []string{"text", "group"}

// imageTypes are the upload formats accepted for post images.
var imageTypes = []string{"image/gif", "image/jpeg", "image/png", "image/webp"}

const invalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	groupRepository   repositories.GroupRepository
	commentRepository repositories.CommentRepository
	storage           storage.Storage
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, groupRepo repositories.GroupRepository, commentRepo repositories.CommentRepository, store storage.Storage) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		groupRepository:   groupRepo,
		commentRepository: commentRepo,
		storage:           store,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, login echo.MiddlewareFunc) {
	g.GET("/posts/:post_id/", h.PostDetail)
	g.Match(actionMethods, "/create/", h.PostCreate, login)
	g.Match(actionMethods, "/posts/:post_id/edit/", h.PostEdit, login)
	g.Match(actionMethods, "/posts/:post_id/delete/", h.PostDelete, login)
}

// PostDetail shows a post with its comments and the comment form
func (h *PostHandler) PostDetail(c echo.Context) error {
	post, err := h.getPost(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	numPosts, err := h.postRepository.CountPostsByAuthor(ctx, post.AuthorID)
	if err != nil {
		return err
	}
	comments, err := h.commentRepository.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "posts/post_detail.html", echo.Map{
		"post":      post,
		"num_posts": numPosts,
		"comments":  comments,
		"form":      views.NewForm(),
	})
}

// PostCreate shows the new post form and publishes it on submit
func (h *PostHandler) PostCreate(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return h.renderForm(c, views.NewForm(), "New post", "Add", "/create/")
	}

	author := currentUser(c)
	post := &models.Post{AuthorID: author.ID}
	form, ok, err := h.fillPost(c, post)
	if err != nil {
		return err
	}
	if !ok {
		return h.renderForm(c, form, "New post", "Add", "/create/")
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		h.dropImage(c.Request().Context(), post.Image)
		return err
	}
	monitoring.PostsCreated.Inc()
	return redirect(c, profileURL(author.Username))
}

// PostEdit lets the author change text, group and image of a post
func (h *PostHandler) PostEdit(c echo.Context) error {
	post, err := h.getPost(c)
	if err != nil {
		return err
	}
	if post.AuthorID != currentUser(c).ID {
		return redirect(c, postURL(post.ID))
	}

	action := postURL(post.ID) + "edit/"
	if c.Request().Method != http.MethodPost {
		form := views.NewForm()
		form.Values["text"] = post.Text
		if post.GroupID != nil {
			form.Values["group"] = strconv.FormatUint(uint64(*post.GroupID), 10)
		}
		return h.renderForm(c, form, "Edit post", "Save", action)
	}

	oldImage := post.Image
	form, ok, err := h.fillPost(c, post)
	if err != nil {
		return err
	}
	if !ok {
		return h.renderForm(c, form, "Edit post", "Save", action)
	}

	ctx := c.Request().Context()
	if err := h.postRepository.UpdatePost(ctx, post); err != nil {
		if post.Image != oldImage {
			h.dropImage(ctx, post.Image)
		}
		return notFound(err)
	}
	if post.Image != oldImage {
		h.dropImage(ctx, oldImage)
	}
	return redirect(c, postURL(post.ID))
}

// PostDelete removes a post, its comments and its image
func (h *PostHandler) PostDelete(c echo.Context) error {
	post, err := h.getPost(c)
	if err != nil {
		return err
	}
	if post.AuthorID != currentUser(c).ID {
		return redirect(c, postURL(post.ID))
	}

	ctx := c.Request().Context()
	if err := h.postRepository.DeletePost(ctx, post); err != nil {
		return notFound(err)
	}
	h.dropImage(ctx, post.Image)
	return redirect(c, profileURL(post.Author.Username))
}

func (h *PostHandler) getPost(c echo.Context) (*models.Post, error) {
	id, err := paramID(c, "post_id")
	if err != nil {
		return nil, err
	}
	post, err := h.postRepository.GetPostByID(c.Request().Context(), id)
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

// fillPost validates the submitted form and copies it into post. ok is
// false when the form has errors; post.Image is only replaced, and the
// upload only stored, when the whole form is valid.
func (h *PostHandler) fillPost(c echo.Context, post *models.Post) (*views.Form, bool, error) {
	var req models.PostForm
	form, err := bindForm(c, &req, postFields...)
	if err != nil {
		return nil, false, err
	}

	ctx := c.Request().Context()
	var groupID *uint
	if req.Group != "" && form.Errors["group"] == "" {
		id, _ := strconv.ParseUint(req.Group, 10, 64)
		group, err := h.groupRepository.GetGroupByID(ctx, uint(id))
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			form.Errors.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		case err != nil:
			return nil, false, err
		default:
			groupID = &group.ID
		}
	}

	file, err := c.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return nil, false, echo.NewHTTPError(http.StatusBadRequest, "malformed upload").SetInternal(err)
	}
	var ext string
	if file != nil {
		ext, err = sniffImage(file)
		if err != nil {
			return nil, false, err
		}
		if ext == "" {
			form.Errors.Add("image", invalidImage)
		}
	}

	if !form.Errors.Valid() {
		return form, false, nil
	}

	if file != nil {
		name, err := h.saveImage(ctx, file, ext)
		if err != nil {
			return nil, false, err
		}
		post.Image = name
	}
	post.Text = req.Text
	post.GroupID = groupID
	return form, true, nil
}

// sniffImage returns the file extension of an accepted image upload, or ""
// when the content is not one.
func sniffImage(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	if !mimetype.EqualsAny(mt.String(), imageTypes...) {
		return "", nil
	}
	return mt.Extension(), nil
}

func (h *PostHandler) saveImage(ctx context.Context, file *multipart.FileHeader, ext string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := storage.NewName("posts", ext)
	if err := h.storage.Save(ctx, name, src); err != nil {
		return "", err
	}
	return name, nil
}

// dropImage deletes a stored image and logs failures.
func (h *PostHandler) dropImage(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := h.storage.Delete(ctx, name); err != nil {
		slog.WarnContext(ctx, "Failed to delete image", "name", name, "err", err)
	}
}

func (h *PostHandler) renderForm(c echo.Context, form *views.Form, title, button, action string) error {
	groups, err := h.groupRepository.GetGroups(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/create_post.html", echo.Map{
		"form":        form,
		"title":       title,
		"button_name": button,
		"action":      action,
		"kind":        "post",
		"groups":      groups,
	})
}
