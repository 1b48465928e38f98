package feed

import (
	"context"
	"fmt"
	"sync"

	"picfeed/pkg/comment"
	"picfeed/pkg/post"
	"picfeed/pkg/reaction"
	"picfeed/pkg/user"
)

// memStore is an in-memory Store keeping the one-reaction-per-pair rule.
type memStore struct {
	mu        sync.Mutex
	seq       int
	posts     []*post.Post
	reactions []*reaction.Reaction
	comments  []*comment.Comment
	calls     int
}

func (s *memStore) nextId(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *memStore) GetFeed(context.Context) ([]*post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	res := make([]*post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		cp := *p
		cp.Author = &user.Profile{Id: p.UserId, Username: p.UserId}
		cp.Likes = []*reaction.Reaction{}
		cp.Bookmarks = []*reaction.Reaction{}
		cp.Comments = []*comment.Comment{}
		for _, rc := range s.reactions {
			if rc.PostId != string(p.Id) {
				continue
			}
			if rc.Kind == reaction.Like {
				cp.Likes = append(cp.Likes, rc)
			} else {
				cp.Bookmarks = append(cp.Bookmarks, rc)
			}
		}
		for _, c := range s.comments {
			if c.PostId == string(p.Id) {
				cp.Comments = append(cp.Comments, c)
			}
		}
		res = append(res, &cp)
	}
	return res, nil
}

func (s *memStore) Add(_ context.Context, p *post.Post) (post.PostId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if p.Id == "" {
		p.Id = post.PostId(s.nextId("p"))
	}
	cp := *p
	s.posts = append(s.posts, &cp)
	return p.Id, nil
}

func (s *memStore) FindReaction(_ context.Context, kind reaction.Kind, postId post.PostId, userId string) (*reaction.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for _, rc := range s.reactions {
		if rc.Kind == kind && rc.PostId == string(postId) && rc.UserId == userId {
			return rc, nil
		}
	}
	return nil, reaction.ErrNotFound
}

func (s *memStore) AddReaction(_ context.Context, rc *reaction.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for _, have := range s.reactions {
		if have.Kind == rc.Kind && have.PostId == rc.PostId && have.UserId == rc.UserId {
			return nil
		}
	}
	cp := *rc
	cp.Id = reaction.ReactionId(s.nextId("r"))
	s.reactions = append(s.reactions, &cp)
	return nil
}

func (s *memStore) DeleteReaction(_ context.Context, kind reaction.Kind, id reaction.ReactionId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for i, rc := range s.reactions {
		if rc.Kind == kind && rc.Id == id {
			s.reactions = append(s.reactions[:i], s.reactions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) AddComment(_ context.Context, c *comment.Comment) (comment.CommentId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	cp := *c
	cp.Id = comment.CommentId(s.nextId("c"))
	s.comments = append(s.comments, &cp)
	return cp.Id, nil
}

func (s *memStore) count(kind reaction.Kind, postId, userId string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rc := range s.reactions {
		if rc.Kind == kind && rc.PostId == postId && rc.UserId == userId {
			n++
		}
	}
	return n
}

// memBucket records uploads and can be told to fail.
type memBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (b *memBucket) Upload(_ context.Context, path string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	if b.objects == nil {
		b.objects = map[string][]byte{}
	}
	b.objects[path] = data
	return nil
}

func (b *memBucket) PublicURL(path string) string {
	return "https://cdn.test/" + path
}
