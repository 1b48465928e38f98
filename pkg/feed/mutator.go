package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"picfeed/pkg/comment"
	"picfeed/pkg/logger"
	"picfeed/pkg/post"
	"picfeed/pkg/reaction"
	"picfeed/pkg/storage"
)

// Image is a picture picked by the viewer for a new post.
type Image struct {
	Name string
	Data []byte
}

// Mutator applies one viewer's writes and asks the feed to re-read the store
// after each successful one.
type Mutator struct {
	store         Store
	bucket        Bucket
	feed          Refresher
	maxImageBytes int64
	now           func() time.Time
}

func NewMutator(store Store, bucket Bucket, feed Refresher, maxImageBytes int64) *Mutator {
	return &Mutator{
		store:         store,
		bucket:        bucket,
		feed:          feed,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
	}
}

// CreatePost uploads the image and then inserts the post row pointing at it.
// If the upload fails no row is written; if the insert fails the uploaded
// object is left behind.
func (m *Mutator) CreatePost(ctx context.Context, userId, caption string, img Image) (id post.PostId, err error) {
	defer func() { countMutation("create_post", err) }()

	if userId == "" {
		return "", &ValidationError{Field: "user", Reason: "not signed in"}
	}
	if len(img.Data) == 0 {
		return "", &ValidationError{Field: "image", Reason: "no image selected"}
	}
	if m.maxImageBytes > 0 && int64(len(img.Data)) > m.maxImageBytes {
		return "", &ValidationError{
			Field:  "image",
			Reason: fmt.Sprintf("image is larger than %d bytes", m.maxImageBytes),
		}
	}
	contentType, ext, err := storage.DetectImage(img.Data)
	if err != nil {
		return "", &ValidationError{Field: "image", Reason: err.Error()}
	}

	created := m.now()
	path := storage.ObjectPath(userId, created, storage.ImageExt(img.Name, ext))
	if err := m.bucket.Upload(ctx, path, img.Data, contentType); err != nil {
		logger.Log(ctx).Errorf("feed: image upload to %s failed: %v", path, err)
		return "", networkErr("upload image", err)
	}

	p := &post.Post{
		UserId:   userId,
		Caption:  caption,
		ImageURL: m.bucket.PublicURL(path),
		Created:  created,
	}
	id, err = m.store.Add(ctx, p)
	if err != nil {
		logger.Log(ctx).Errorf("feed: insert of post with image %s failed: %v", path, err)
		return "", networkErr("create post", err)
	}

	m.refresh(ctx)
	return id, nil
}

// ToggleLike likes the post for userId, or unlikes it when already liked.
// It returns the state the like ended up in.
func (m *Mutator) ToggleLike(ctx context.Context, postId post.PostId, userId string) (reaction.State, error) {
	return m.toggle(ctx, reaction.Like, postId, userId)
}

// ToggleBookmark works like ToggleLike for bookmarks.
func (m *Mutator) ToggleBookmark(ctx context.Context, postId post.PostId, userId string) (reaction.State, error) {
	return m.toggle(ctx, reaction.Bookmark, postId, userId)
}

func (m *Mutator) toggle(ctx context.Context, kind reaction.Kind, postId post.PostId, userId string) (state reaction.State, err error) {
	op := "toggle_" + string(kind)
	defer func() { countMutation(op, err) }()

	if postId == "" {
		return reaction.Absent, &ValidationError{Field: "post", Reason: "empty post id"}
	}
	if userId == "" {
		return reaction.Absent, &ValidationError{Field: "user", Reason: "not signed in"}
	}

	existing, err := m.store.FindReaction(ctx, kind, postId, userId)
	switch {
	case err == nil:
		if err := m.store.DeleteReaction(ctx, kind, existing.Id); err != nil {
			logger.Log(ctx).Errorf("feed: removing %s %s failed: %v", kind, existing.Id, err)
			return reaction.Present, networkErr("remove "+string(kind), err)
		}
		state = reaction.Absent
	case errors.Is(err, reaction.ErrNotFound):
		rc := &reaction.Reaction{Kind: kind, PostId: string(postId), UserId: userId}
		if err := m.store.AddReaction(ctx, rc); err != nil {
			logger.Log(ctx).Errorf("feed: adding %s on post %s failed: %v", kind, postId, err)
			return reaction.Absent, networkErr("add "+string(kind), err)
		}
		state = reaction.Present
	default:
		logger.Log(ctx).Errorf("feed: looking up %s on post %s failed: %v", kind, postId, err)
		return reaction.Absent, networkErr("find "+string(kind), err)
	}

	m.refresh(ctx)
	return state, nil
}

// AddComment appends a comment to the post. Content is trimmed; an empty
// comment is rejected without touching the store.
func (m *Mutator) AddComment(ctx context.Context, postId post.PostId, userId, content string) (id comment.CommentId, err error) {
	defer func() { countMutation("add_comment", err) }()

	content = strings.TrimSpace(content)
	if content == "" {
		return "", &ValidationError{Field: "comment", Reason: "comment is empty"}
	}
	if postId == "" {
		return "", &ValidationError{Field: "post", Reason: "empty post id"}
	}
	if userId == "" {
		return "", &ValidationError{Field: "user", Reason: "not signed in"}
	}

	c := &comment.Comment{
		PostId:  string(postId),
		UserId:  userId,
		Content: content,
		Created: m.now(),
	}
	id, err = m.store.AddComment(ctx, c)
	if err != nil {
		logger.Log(ctx).Errorf("feed: adding comment on post %s failed: %v", postId, err)
		return "", networkErr("add comment", err)
	}

	m.refresh(ctx)
	return id, nil
}

// The write already succeeded, so a failed refresh only leaves the view stale.
func (m *Mutator) refresh(ctx context.Context) {
	if m.feed == nil {
		return
	}
	if _, err := m.feed.Refresh(ctx); err != nil {
		logger.Log(ctx).Warnf("feed: refresh after write failed, view is stale: %v", err)
	}
}
