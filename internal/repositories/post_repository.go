package repositories

import (
	"context"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/paginator"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postOrder puts the newest post first; id breaks ties between posts
// created within the same clock tick.
const postOrder = "pub_date DESC, id DESC"

// PostFilter narrows a feed. Zero fields are ignored.
type PostFilter struct {
	AuthorID   uint // posts written by this user
	GroupID    uint // posts in this group
	FollowerID uint // posts by authors this user follows
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPosts(ctx context.Context, filter PostFilter, page string, perPage int) (*paginator.Page[models.Post], error)
	CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, post *models.Post) error
}

type PostgresPostRepository struct {
	db *gorm.DB
}

func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

// GetPostByID retrieves a post with its author and group
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// GetPosts returns one page of the feed selected by filter, newest first
func (r *PostgresPostRepository) GetPosts(ctx context.Context, filter PostFilter, page string, perPage int) (*paginator.Page[models.Post], error) {
	query := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.GroupID != 0 {
		query = query.Where("group_id = ?", filter.GroupID)
	}
	if filter.FollowerID != 0 {
		query = query.Where("author_id IN (?)",
			r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", filter.FollowerID),
		)
	}
	return paginator.Paginate[models.Post](query, page, perPage, postOrder, "Author", "Group")
}

func (r *PostgresPostRepository) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, translate(err)
}

// UpdatePost saves text, group and image of an existing post
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// DeletePost deletes a post together with its comments
func (r *PostgresPostRepository) DeletePost(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Select("Comments").Delete(&models.Post{ID: post.ID})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}
