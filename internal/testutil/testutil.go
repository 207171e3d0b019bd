// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Password is the raw password of every user created by NewUser.
const Password = "P@ssw0rd1"

// NewDB opens a private in-memory SQLite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on")
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewUser creates a user whose password is Password.
func NewUser(t *testing.T, db *gorm.DB, username string, perms ...string) *models.User {
	t.Helper()

	user := &models.User{Username: username, Email: username + "@localhost.local"}
	require.NoError(t, user.SetPassword(Password))
	require.NoError(t, db.Create(user).Error)
	for _, codename := range perms {
		require.NoError(t, db.Create(&models.UserPermission{UserID: user.ID, Codename: codename}).Error)
	}
	return user
}

func NewGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()

	group := &models.Group{Title: "Test group " + slug, Slug: slug, Description: "Test description"}
	require.NoError(t, db.Create(group).Error)
	return group
}

func NewPost(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()

	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.Omit("Author", "Group").Create(post).Error)
	return post
}

// Count returns the number of rows of model.
func Count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.WithContext(context.Background()).Model(model).Count(&n).Error)
	return n
}
