package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/views"
	"github.com/labstack/echo/v4"
)

var groupFields = []string{"title", "slug", "description"}

const duplicateSlug = "Group with this Slug already exists."

// GroupHandler manages groups. Every route requires the add_groups
// permission.
type GroupHandler struct {
	groupRepository repositories.GroupRepository
}

func NewGroupHandler(groupRepo repositories.GroupRepository) *GroupHandler {
	return &GroupHandler{groupRepository: groupRepo}
}

func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group, perm echo.MiddlewareFunc) {
	g.Match(actionMethods, "/create/group/", h.GroupCreate, perm)
	g.Match(actionMethods, "/group/:slug/edit/", h.GroupEdit, perm)
	g.Match(actionMethods, "/group/:slug/delete/", h.GroupDelete, perm)
}

func (h *GroupHandler) GroupCreate(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return renderGroupForm(c, views.NewForm(), "New group", "Add", "/create/group/")
	}

	group := &models.Group{}
	form, err := h.fillGroup(c, group)
	if err != nil {
		return err
	}
	if form.Errors.Valid() {
		err = h.groupRepository.CreateGroup(c.Request().Context(), group)
		if err == nil {
			return redirect(c, groupURL(group.Slug))
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return err
		}
		form.Errors.Add("slug", duplicateSlug)
	}
	return renderGroupForm(c, form, "New group", "Add", "/create/group/")
}

func (h *GroupHandler) GroupEdit(c echo.Context) error {
	group, err := h.groupRepository.GetGroupBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return notFound(err)
	}

	action := groupURL(group.Slug) + "edit/"
	if c.Request().Method != http.MethodPost {
		form := views.NewForm()
		form.Values["title"] = group.Title
		form.Values["slug"] = group.Slug
		form.Values["description"] = group.Description
		return renderGroupForm(c, form, "Edit group", "Save", action)
	}

	form, err := h.fillGroup(c, group)
	if err != nil {
		return err
	}
	if form.Errors.Valid() {
		err = h.groupRepository.UpdateGroup(c.Request().Context(), group)
		if err == nil {
			return redirect(c, groupURL(group.Slug))
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return err
		}
		form.Errors.Add("slug", duplicateSlug)
	}
	return renderGroupForm(c, form, "Edit group", "Save", action)
}

// GroupDelete removes a group. Its posts stay and lose their group.
func (h *GroupHandler) GroupDelete(c echo.Context) error {
	ctx := c.Request().Context()
	group, err := h.groupRepository.GetGroupBySlug(ctx, c.Param("slug"))
	if err != nil {
		return notFound(err)
	}
	if err := h.groupRepository.DeleteGroup(ctx, group); err != nil {
		return notFound(err)
	}
	return redirect(c, "/")
}

// fillGroup validates the form, checks the slug is free and copies the
// values into group when everything is valid.
func (h *GroupHandler) fillGroup(c echo.Context, group *models.Group) (*views.Form, error) {
	var req models.GroupForm
	form, err := bindForm(c, &req, groupFields...)
	if err != nil {
		return nil, err
	}

	if form.Errors["slug"] == "" {
		taken, err := h.groupRepository.SlugTaken(c.Request().Context(), req.Slug, group.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			form.Errors.Add("slug", duplicateSlug)
		}
	}
	if form.Errors.Valid() {
		group.Title = req.Title
		group.Slug = req.Slug
		group.Description = req.Description
	}
	return form, nil
}

func renderGroupForm(c echo.Context, form *views.Form, title, button, action string) error {
	return c.Render(http.StatusOK, "posts/create_post.html", echo.Map{
		"form":        form,
		"title":       title,
		"button_name": button,
		"action":      action,
		"kind":        "group",
	})
}
