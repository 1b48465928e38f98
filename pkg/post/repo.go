package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"picfeed/pkg/comment"
	"picfeed/pkg/logger"
	"picfeed/pkg/reaction"
	"picfeed/pkg/user"
)

const (
	selectPosts = `SELECT p.id, p.user_id, p.caption, p.image_url, p.created_at, u.username, u.avatar_url
		FROM posts p JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id`

	selectComments = `SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, u.username, u.avatar_url
		FROM comments c JOIN users u ON u.id = c.user_id
		ORDER BY c.created_at, c.id`
)

// Repo is the relational Data Access Layer for posts and everything hanging
// off them: likes, bookmarks and comments.
type Repo struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostRepo(db *sql.DB) *Repo {
	return &Repo{
		db:  db,
		now: time.Now,
	}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// GetFeed returns every post joined with its author profile, likes,
// bookmarks and comments, newest first. There is no pagination bound: the
// whole table is read on every call.
//
// All reads run in one read-only transaction so a concurrent write can't
// produce a view where, say, a like points to a post that wasn't read.
func (r *Repo) GetFeed(ctx context.Context) ([]*Post, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("post/repo: failed starting feed snapshot: %w", err)
	}
	defer tx.Rollback()

	posts, byId, err := queryPosts(ctx, tx)
	if err != nil {
		return nil, err
	}

	for _, kind := range reaction.Kinds {
		reactions, err := queryReactions(ctx, tx, kind)
		if err != nil {
			return nil, err
		}
		for _, rc := range reactions {
			if p, ok := byId[PostId(rc.PostId)]; ok {
				p.addReaction(rc)
			}
		}
	}

	comments, err := queryComments(ctx, tx)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if p, ok := byId[PostId(c.PostId)]; ok {
			p.Comments = append(p.Comments, c)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("post/repo: failed closing feed snapshot: %w", err)
	}
	return posts, nil
}

func queryPosts(ctx context.Context, q querier) ([]*Post, map[PostId]*Post, error) {
	rows, err := q.QueryContext(ctx, selectPosts)
	if err != nil {
		return nil, nil, fmt.Errorf("post/repo: failed selecting posts: %w", err)
	}
	defer rows.Close()

	posts := []*Post{}
	byId := map[PostId]*Post{}
	for rows.Next() {
		p := &Post{
			Author:    new(user.Profile),
			Likes:     []*reaction.Reaction{},
			Bookmarks: []*reaction.Reaction{},
			Comments:  []*comment.Comment{},
		}
		err := rows.Scan(&p.Id, &p.UserId, &p.Caption, &p.ImageURL, &p.Created,
			&p.Author.Username, &p.Author.AvatarURL)
		if err != nil {
			return nil, nil, fmt.Errorf("post/repo: could not scan post row: %w", err)
		}
		p.Author.Id = p.UserId
		posts = append(posts, p)
		byId[p.Id] = p
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("post/repo: failed reading posts: %w", err)
	}
	return posts, byId, nil
}

func queryReactions(ctx context.Context, q querier, kind reaction.Kind) ([]*reaction.Reaction, error) {
	table, err := kind.Table()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, "SELECT id, post_id, user_id FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("post/repo: failed selecting %s: %w", table, err)
	}
	defer rows.Close()

	reactions := []*reaction.Reaction{}
	for rows.Next() {
		rc := &reaction.Reaction{Kind: kind}
		if err := rows.Scan(&rc.Id, &rc.PostId, &rc.UserId); err != nil {
			return nil, fmt.Errorf("post/repo: could not scan %s row: %w", table, err)
		}
		reactions = append(reactions, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("post/repo: failed reading %s: %w", table, err)
	}
	return reactions, nil
}

func queryComments(ctx context.Context, q querier) ([]*comment.Comment, error) {
	rows, err := q.QueryContext(ctx, selectComments)
	if err != nil {
		return nil, fmt.Errorf("post/repo: failed selecting comments: %w", err)
	}
	defer rows.Close()

	comments := []*comment.Comment{}
	for rows.Next() {
		c := &comment.Comment{Author: new(user.Profile)}
		err := rows.Scan(&c.Id, &c.PostId, &c.UserId, &c.Content, &c.Created,
			&c.Author.Username, &c.Author.AvatarURL)
		if err != nil {
			return nil, fmt.Errorf("post/repo: could not scan comment row: %w", err)
		}
		c.Author.Id = c.UserId
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("post/repo: failed reading comments: %w", err)
	}
	return comments, nil
}

// Add inserts a post row. Id and Created are filled in when empty.
func (r *Repo) Add(ctx context.Context, p *Post) (PostId, error) {
	if p.Id == "" {
		p.Id = PostId(uuid.NewString())
	}
	if p.Created.IsZero() {
		p.Created = r.now()
	}
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO posts(id, user_id, caption, image_url, created_at) VALUES($1, $2, $3, $4, $5)",
		p.Id, p.UserId, p.Caption, p.ImageURL, p.Created)
	if err != nil {
		return PostId(``), fmt.Errorf("post/repo: failed inserting a post: %w", err)
	}
	if err := expectAffected(result); err != nil {
		return PostId(``), fmt.Errorf("post/repo: post wasn't added: %w", err)
	}
	return p.Id, nil
}

// FindReaction returns the reaction of userId on postId or reaction.ErrNotFound.
func (r *Repo) FindReaction(ctx context.Context, kind reaction.Kind, postId PostId, userId string) (*reaction.Reaction, error) {
	table, err := kind.Table()
	if err != nil {
		return nil, err
	}
	rc := &reaction.Reaction{Kind: kind}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, post_id, user_id FROM "+table+" WHERE post_id=$1 AND user_id=$2", postId, userId)
	err = row.Scan(&rc.Id, &rc.PostId, &rc.UserId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reaction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("post/repo: failed finding %s: %w", kind, err)
	}
	return rc, nil
}

// AddReaction inserts a like or bookmark. A row for the same (post, user)
// pair is left as is, so racing toggles never produce duplicates.
func (r *Repo) AddReaction(ctx context.Context, rc *reaction.Reaction) error {
	table, err := rc.Kind.Table()
	if err != nil {
		return err
	}
	if rc.Id == "" {
		rc.Id = reaction.ReactionId(uuid.NewString())
	}
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO "+table+"(id, post_id, user_id) VALUES($1, $2, $3) ON CONFLICT (post_id, user_id) DO NOTHING",
		rc.Id, rc.PostId, rc.UserId)
	if err != nil {
		return fmt.Errorf("post/repo: failed inserting %s: %w", rc.Kind, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		logger.Log(ctx).Warnf("post/repo: %s of %s on %s already exists", rc.Kind, rc.UserId, rc.PostId)
	}
	return nil
}

func (r *Repo) DeleteReaction(ctx context.Context, kind reaction.Kind, id reaction.ReactionId) error {
	table, err := kind.Table()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id=$1", id); err != nil {
		return fmt.Errorf("post/repo: failed deleting %s: %w", kind, err)
	}
	return nil
}

func (r *Repo) AddComment(ctx context.Context, c *comment.Comment) (comment.CommentId, error) {
	if c.Id == "" {
		c.Id = comment.CommentId(uuid.NewString())
	}
	if c.Created.IsZero() {
		c.Created = r.now()
	}
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO comments(id, post_id, user_id, content, created_at) VALUES($1, $2, $3, $4, $5)",
		c.Id, c.PostId, c.UserId, c.Content, c.Created)
	if err != nil {
		return comment.CommentId(``), fmt.Errorf("post/repo: failed inserting comment: %w", err)
	}
	if err := expectAffected(result); err != nil {
		return comment.CommentId(``), fmt.Errorf("post/repo: comment wasn't added: %w", err)
	}
	return c.Id, nil
}

func expectAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("no rows affected")
	}
	return nil
}
