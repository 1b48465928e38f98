package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picfeed/pkg/post"
	"picfeed/pkg/reaction"
)

func TestFilterStateExclusive(t *testing.T) {
	var s FilterState
	assert.Equal(t, All, s.Filter())

	s.ToggleBookmarks()
	assert.True(t, s.BookmarksOnly())
	assert.False(t, s.LikesOnly())
	assert.Equal(t, BookmarkedOnly, s.Filter())

	s.ToggleLikes()
	assert.True(t, s.LikesOnly())
	assert.False(t, s.BookmarksOnly())
	assert.Equal(t, LikedOnly, s.Filter())

	s.ToggleLikes()
	assert.Equal(t, All, s.Filter())

	s.Set(BookmarkedOnly)
	assert.Equal(t, BookmarkedOnly, s.Filter())
	s.Set(All)
	assert.False(t, s.BookmarksOnly() || s.LikesOnly())
}

func TestParseFilter(t *testing.T) {
	for _, f := range []Filter{All, BookmarkedOnly, LikedOnly} {
		got, err := ParseFilter(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, All, got)

	_, err = ParseFilter("popular")
	assert.True(t, IsValidation(err))
}

func TestEmptyHint(t *testing.T) {
	assert.Contains(t, All.EmptyHint(), "Create your first post")
	assert.Contains(t, BookmarkedOnly.EmptyHint(), "bookmarked")
	assert.Contains(t, LikedOnly.EmptyHint(), "liked")
}

func TestApply(t *testing.T) {
	p1 := &post.Post{Id: "p1", Likes: []*reaction.Reaction{{UserId: "u1"}}}
	p2 := &post.Post{Id: "p2", Bookmarks: []*reaction.Reaction{{UserId: "u1"}}}
	p3 := &post.Post{Id: "p3", Likes: []*reaction.Reaction{{UserId: "u2"}}}
	posts := []*post.Post{p1, p2, p3}

	assert.Equal(t, posts, Apply(posts, "u1", All))
	assert.Equal(t, []*post.Post{p1}, Apply(posts, "u1", LikedOnly))
	assert.Equal(t, []*post.Post{p2}, Apply(posts, "u1", BookmarkedOnly))
	assert.Equal(t, []*post.Post{p3}, Apply(posts, "u2", LikedOnly))
	assert.Empty(t, Apply(posts, "u3", BookmarkedOnly))
}
