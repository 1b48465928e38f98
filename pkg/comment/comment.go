package comment

import (
	"time"

	"picfeed/pkg/user"
)

type CommentId string

// Comment is append-only: there is no edit or delete.
type Comment struct {
	Id      CommentId     `json:"id"`
	PostId  string        `json:"postId"`
	UserId  string        `json:"userId"`
	Author  *user.Profile `json:"author"`
	Created time.Time     `json:"created"`
	Content string        `json:"content"`
}
