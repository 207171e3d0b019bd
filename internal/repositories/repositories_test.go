package repositories_test

import (
	"context"
	"testing"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewPostgresFollowRepository(db)
	ctx := context.Background()
	reader := testutil.NewUser(t, db, "reader")
	author := testutil.NewUser(t, db, "author")

	created, err := repo.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Follow{}))

	following, err := repo.IsFollowing(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := repo.GetFollowersCount(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
}

func TestFollowRejectsSelf(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewPostgresFollowRepository(db)
	user := testutil.NewUser(t, db, "narcissus")

	created, err := repo.Follow(context.Background(), user.ID, user.ID)
	assert.ErrorIs(t, err, repositories.ErrSelfFollow)
	assert.False(t, created)
	assert.Zero(t, testutil.Count(t, db, &models.Follow{}))
}

func TestUnfollow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewPostgresFollowRepository(db)
	ctx := context.Background()
	reader := testutil.NewUser(t, db, "reader")
	author := testutil.NewUser(t, db, "author")

	removed, err := repo.Unfollow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	removed, err = repo.Unfollow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Zero(t, testutil.Count(t, db, &models.Follow{}))
}

func TestGetPostsFilters(t *testing.T) {
	db := testutil.NewDB(t)
	posts := repositories.NewPostgresPostRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	ctx := context.Background()

	author := testutil.NewUser(t, db, "author")
	other := testutil.NewUser(t, db, "other")
	reader := testutil.NewUser(t, db, "reader")
	group := testutil.NewGroup(t, db, "cats")
	testutil.NewPost(t, db, author, group, "in group")
	testutil.NewPost(t, db, author, nil, "no group")
	testutil.NewPost(t, db, other, nil, "by other")
	_, err := follows.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)

	all, err := posts.GetPosts(ctx, repositories.PostFilter{}, "", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Count)
	assert.Equal(t, "by other", all.Items[0].Text)
	assert.Equal(t, "other", all.Items[0].Author.Username)

	byGroup, err := posts.GetPosts(ctx, repositories.PostFilter{GroupID: group.ID}, "", 10)
	require.NoError(t, err)
	require.Equal(t, 1, byGroup.Len())
	require.NotNil(t, byGroup.Items[0].Group)
	assert.Equal(t, "cats", byGroup.Items[0].Group.Slug)

	byAuthor, err := posts.GetPosts(ctx, repositories.PostFilter{AuthorID: author.ID}, "", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byAuthor.Count)

	feed, err := posts.GetPosts(ctx, repositories.PostFilter{FollowerID: reader.ID}, "", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), feed.Count)
	for _, p := range feed.Items {
		assert.Equal(t, author.ID, p.AuthorID)
	}

	empty, err := posts.GetPosts(ctx, repositories.PostFilter{FollowerID: other.ID}, "", 10)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
}

func TestDeletePostRemovesComments(t *testing.T) {
	db := testutil.NewDB(t)
	posts := repositories.NewPostgresPostRepository(db)
	comments := repositories.NewPostgresCommentRepository(db)
	ctx := context.Background()
	author := testutil.NewUser(t, db, "author")
	post := testutil.NewPost(t, db, author, nil, "doomed")
	require.NoError(t, comments.CreateComment(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "first"}))

	require.NoError(t, posts.DeletePost(ctx, post))

	assert.Zero(t, testutil.Count(t, db, &models.Post{}))
	assert.Zero(t, testutil.Count(t, db, &models.Comment{}))
	_, err := posts.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDeleteGroupDetachesPosts(t *testing.T) {
	db := testutil.NewDB(t)
	groups := repositories.NewPostgresGroupRepository(db)
	posts := repositories.NewPostgresPostRepository(db)
	ctx := context.Background()
	author := testutil.NewUser(t, db, "author")
	group := testutil.NewGroup(t, db, "dogs")
	post := testutil.NewPost(t, db, author, group, "woof")

	require.NoError(t, groups.DeleteGroup(ctx, group))

	got, err := posts.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
	_, err = groups.GetGroupBySlug(ctx, "dogs")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDuplicateSlug(t *testing.T) {
	db := testutil.NewDB(t)
	groups := repositories.NewPostgresGroupRepository(db)
	ctx := context.Background()
	existing := testutil.NewGroup(t, db, "taken")

	err := groups.CreateGroup(ctx, &models.Group{Title: "Again", Slug: "taken", Description: "dup"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	taken, err := groups.SlugTaken(ctx, "taken", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = groups.SlugTaken(ctx, "taken", existing.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestGrantPermission(t *testing.T) {
	db := testutil.NewDB(t)
	users := repositories.NewPostgresUserRepository(db)
	ctx := context.Background()
	user := testutil.NewUser(t, db, "editor")

	require.NoError(t, users.GrantPermission(ctx, user.ID, models.PermAddGroups))
	require.NoError(t, users.GrantPermission(ctx, user.ID, models.PermAddGroups))

	got, err := users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPerm(models.PermAddGroups))
	assert.Len(t, got.Permissions, 1)
}
