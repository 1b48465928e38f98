package post

import (
	"time"

	"picfeed/pkg/comment"
	"picfeed/pkg/reaction"
	"picfeed/pkg/user"
)

type PostId string

// Post is an image with an optional caption. Posts are immutable once created;
// Author, Likes, Bookmarks and Comments are joined in at read time.
type Post struct {
	Id       PostId    `json:"id"`
	UserId   string    `json:"userId"`
	Caption  string    `json:"caption"`
	ImageURL string    `json:"imageUrl"`
	Created  time.Time `json:"created"`

	Author    *user.Profile        `json:"author"`
	Likes     []*reaction.Reaction `json:"likes"`
	Bookmarks []*reaction.Reaction `json:"bookmarks"`
	Comments  []*comment.Comment   `json:"comments"`
}

// Reactions returns the like or bookmark set of the post.
func (p *Post) Reactions(kind reaction.Kind) []*reaction.Reaction {
	if kind == reaction.Bookmark {
		return p.Bookmarks
	}
	return p.Likes
}

func (p *Post) addReaction(r *reaction.Reaction) {
	if r.Kind == reaction.Bookmark {
		p.Bookmarks = append(p.Bookmarks, r)
		return
	}
	p.Likes = append(p.Likes, r)
}
