// Package feed builds the per-viewer feed of posts and applies the viewer's
// likes, bookmarks, comments and new posts to it.
//
// The feed is never patched in place: every successful mutation is followed by
// a full re-read of the store, filtered in memory. That keeps the view trivially
// consistent with the store at the cost of reading every post on every
// refresh, which is the scalability ceiling of this package.
package feed

import (
	"context"
	"errors"
	"fmt"

	"picfeed/pkg/comment"
	"picfeed/pkg/post"
	"picfeed/pkg/reaction"
)

//go:generate mockgen -source=feed.go -destination=feed_mock.go -package=feed

// Store is the relational Data Access Layer the feed runs on.
//
// Implementations must keep at most one like and one bookmark per
// (post, user) pair; AddReaction on an existing pair is a no-op.
type Store interface {
	GetFeed(context.Context) ([]*post.Post, error)
	Add(context.Context, *post.Post) (post.PostId, error)

	FindReaction(ctx context.Context, kind reaction.Kind, postId post.PostId, userId string) (*reaction.Reaction, error)
	AddReaction(context.Context, *reaction.Reaction) error
	DeleteReaction(ctx context.Context, kind reaction.Kind, id reaction.ReactionId) error

	AddComment(context.Context, *comment.Comment) (comment.CommentId, error)
}

// Bucket is the object storage post images are uploaded to.
type Bucket interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
}

// Refresher re-reads the feed after a successful mutation.
type Refresher interface {
	Refresh(context.Context) (View, error)
}

// ValidationError is returned before any store or storage call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("feed: invalid %s: %s", e.Field, e.Reason)
}

// NetworkError wraps a failure of the store or the object storage.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("feed: %s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func networkErr(op string, err error) error {
	return &NetworkError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
