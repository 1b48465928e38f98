package feed

import (
	"github.com/samber/lo"

	"picfeed/pkg/post"
	"picfeed/pkg/reaction"
)

type Filter int

const (
	All Filter = iota
	BookmarkedOnly
	LikedOnly
)

var filterNames = map[Filter]string{
	All:            "all",
	BookmarkedOnly: "bookmarked",
	LikedOnly:      "liked",
}

func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return "unknown"
}

func (f Filter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFilter accepts the names produced by Filter.String. Empty means All.
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return All, nil
	}
	for f, name := range filterNames {
		if name == s {
			return f, nil
		}
	}
	return All, &ValidationError{Field: "filter", Reason: "unknown filter " + s}
}

// EmptyHint is what a viewer sees when the filtered feed has no posts.
func (f Filter) EmptyHint() string {
	switch f {
	case BookmarkedOnly:
		return "No bookmarked posts yet. Bookmark some posts to see them here!"
	case LikedOnly:
		return "No liked posts yet. Like some posts to see them here!"
	}
	return "No posts yet. Create your first post!"
}

// FilterState is the viewer's filter toggles. At most one of the two is on;
// with neither on the viewer sees everything.
type FilterState struct {
	bookmarksOnly bool
	likesOnly     bool
}

func (s *FilterState) ToggleBookmarks() {
	s.bookmarksOnly = !s.bookmarksOnly
	if s.bookmarksOnly {
		s.likesOnly = false
	}
}

func (s *FilterState) ToggleLikes() {
	s.likesOnly = !s.likesOnly
	if s.likesOnly {
		s.bookmarksOnly = false
	}
}

func (s *FilterState) Set(f Filter) {
	s.bookmarksOnly = f == BookmarkedOnly
	s.likesOnly = f == LikedOnly
}

func (s FilterState) BookmarksOnly() bool { return s.bookmarksOnly }
func (s FilterState) LikesOnly() bool     { return s.likesOnly }

func (s FilterState) Filter() Filter {
	switch {
	case s.bookmarksOnly:
		return BookmarkedOnly
	case s.likesOnly:
		return LikedOnly
	}
	return All
}

// Apply keeps the posts the filter lets through for userId. It never
// reorders and never mutates posts.
func Apply(posts []*post.Post, userId string, f Filter) []*post.Post {
	var kind reaction.Kind
	switch f {
	case BookmarkedOnly:
		kind = reaction.Bookmark
	case LikedOnly:
		kind = reaction.Like
	default:
		return posts
	}
	return lo.Filter(posts, func(p *post.Post, _ int) bool {
		return reaction.ByUser(p.Reactions(kind), userId)
	})
}
