package post

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picfeed/pkg/comment"
	"picfeed/pkg/reaction"
	"picfeed/pkg/user"
)

var (
	postColumns     = []string{"id", "user_id", "caption", "image_url", "created_at", "username", "avatar_url"}
	reactionColumns = []string{"id", "post_id", "user_id"}
	commentColumns  = []string{"id", "post_id", "user_id", "content", "created_at", "username", "avatar_url"}

	t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("cant create mock: %s", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewPostRepo(db)
	repo.now = func() time.Time { return t0 }
	return repo, mock
}

func TestGetFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("joins posts with profiles, reactions and comments", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT p.id, p.user_id, p.caption").
			WillReturnRows(sqlmock.NewRows(postColumns).
				AddRow("p2", "u2", "second", "https://img/2.png", t0.Add(time.Hour), "rob", "").
				AddRow("p1", "u1", "first", "https://img/1.png", t0, "pike", "https://img/pike.png"))
		mock.ExpectQuery("SELECT id, post_id, user_id FROM likes").
			WillReturnRows(sqlmock.NewRows(reactionColumns).
				AddRow("l1", "p1", "u2").
				AddRow("l2", "p1", "u1").
				AddRow("l3", "gone", "u1"))
		mock.ExpectQuery("SELECT id, post_id, user_id FROM bookmarks").
			WillReturnRows(sqlmock.NewRows(reactionColumns).
				AddRow("b1", "p2", "u1"))
		mock.ExpectQuery("SELECT c.id, c.post_id").
			WillReturnRows(sqlmock.NewRows(commentColumns).
				AddRow("c1", "p1", "u2", "nice", t0.Add(time.Minute), "rob", ""))
		mock.ExpectCommit()

		posts, err := repo.GetFeed(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)

		assert.Equal(t, PostId("p2"), posts[0].Id)
		assert.Equal(t, &user.Profile{Id: "u2", Username: "rob"}, posts[0].Author)
		assert.Empty(t, posts[0].Likes)
		assert.Equal(t, []*reaction.Reaction{{Id: "b1", Kind: reaction.Bookmark, PostId: "p2", UserId: "u1"}}, posts[0].Bookmarks)
		assert.NotNil(t, posts[0].Comments)
		assert.Empty(t, posts[0].Comments)

		p1 := posts[1]
		assert.Equal(t, "first", p1.Caption)
		assert.Equal(t, t0, p1.Created)
		assert.Len(t, p1.Likes, 2)
		assert.Empty(t, p1.Bookmarks)
		assert.Equal(t, []*comment.Comment{{
			Id:      "c1",
			PostId:  "p1",
			UserId:  "u2",
			Author:  &user.Profile{Id: "u2", Username: "rob"},
			Created: t0.Add(time.Minute),
			Content: "nice",
		}}, p1.Comments)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty feed", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT p.id").WillReturnRows(sqlmock.NewRows(postColumns))
		mock.ExpectQuery("FROM likes").WillReturnRows(sqlmock.NewRows(reactionColumns))
		mock.ExpectQuery("FROM bookmarks").WillReturnRows(sqlmock.NewRows(reactionColumns))
		mock.ExpectQuery("SELECT c.id").WillReturnRows(sqlmock.NewRows(commentColumns))
		mock.ExpectCommit()

		posts, err := repo.GetFeed(ctx)
		assert.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		expectedErr := fmt.Errorf("conn refused")
		mock.ExpectBegin().WillReturnError(expectedErr)

		posts, err := repo.GetFeed(ctx)
		assert.Nil(t, posts)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reaction query error rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		expectedErr := fmt.Errorf("mock_db_error")

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT p.id").
			WillReturnRows(sqlmock.NewRows(postColumns).AddRow("p1", "u1", "", "https://img/1.png", t0, "pike", ""))
		mock.ExpectQuery("FROM likes").WillReturnError(expectedErr)
		mock.ExpectRollback()

		posts, err := repo.GetFeed(ctx)
		assert.Nil(t, posts)
		assert.ErrorIs(t, err, expectedErr)
		assert.ErrorContains(t, err, "likes")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scan error", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT p.id").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1"))
		mock.ExpectRollback()

		_, err := repo.GetFeed(ctx)
		assert.ErrorContains(t, err, "scan")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostAdd(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	t.Run("success", func(t *testing.T) {
		testPost := &Post{Id: PostId("1"), UserId: "u1", Caption: "hello", ImageURL: "https://img/1.png"}
		mock.ExpectExec("INSERT INTO posts").
			WithArgs("1", "u1", "hello", "https://img/1.png", t0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		insertedPostId, err := repo.Add(ctx, testPost)
		assert.Nil(t, err)
		assert.Equal(t, testPost.Id, insertedPostId)
		assert.Equal(t, t0, testPost.Created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("generates id", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO posts").
			WithArgs(sqlmock.AnyArg(), "u1", "", "https://img/2.png", t0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, err := repo.Add(ctx, &Post{UserId: "u1", ImageURL: "https://img/2.png"})
		assert.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error", func(t *testing.T) {
		expectedErr := fmt.Errorf("insert_failed")
		mock.ExpectExec("INSERT INTO posts").WillReturnError(expectedErr)

		insertedPostId, err := repo.Add(ctx, &Post{Id: "3"})
		assert.Equal(t, insertedPostId, PostId(``))
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing inserted", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO posts").WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.Add(ctx, &Post{Id: "4"})
		assert.ErrorContains(t, err, "post wasn't added")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFindReaction(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, post_id, user_id FROM bookmarks WHERE").
			WithArgs("p1", "u1").
			WillReturnRows(sqlmock.NewRows(reactionColumns).AddRow("b1", "p1", "u1"))

		rc, err := repo.FindReaction(ctx, reaction.Bookmark, "p1", "u1")
		assert.NoError(t, err)
		assert.Equal(t, &reaction.Reaction{Id: "b1", Kind: reaction.Bookmark, PostId: "p1", UserId: "u1"}, rc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, post_id, user_id FROM likes WHERE").
			WithArgs("p1", "u1").
			WillReturnError(sql.ErrNoRows)

		rc, err := repo.FindReaction(ctx, reaction.Like, "p1", "u1")
		assert.Nil(t, rc)
		assert.ErrorIs(t, err, reaction.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		expectedErr := fmt.Errorf("mock_db_error")
		mock.ExpectQuery("FROM likes WHERE").WillReturnError(expectedErr)

		_, err := repo.FindReaction(ctx, reaction.Like, "p1", "u1")
		assert.ErrorIs(t, err, expectedErr)
		assert.NotErrorIs(t, err, reaction.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown kind never reaches the db", func(t *testing.T) {
		_, err := repo.FindReaction(ctx, reaction.Kind("posts"), "p1", "u1")
		assert.ErrorContains(t, err, "unknown kind")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAddReaction(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	t.Run("insert", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO likes").
			WithArgs("l1", "p1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AddReaction(ctx, &reaction.Reaction{Id: "l1", Kind: reaction.Like, PostId: "p1", UserId: "u1"})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict is not an error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO bookmarks.*ON CONFLICT").
			WithArgs(sqlmock.AnyArg(), "p1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		rc := &reaction.Reaction{Kind: reaction.Bookmark, PostId: "p1", UserId: "u1"}
		assert.NoError(t, repo.AddReaction(ctx, rc))
		assert.NotEmpty(t, rc.Id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		expectedErr := fmt.Errorf("mock_db_error")
		mock.ExpectExec("INSERT INTO likes").WillReturnError(expectedErr)

		err := repo.AddReaction(ctx, &reaction.Reaction{Kind: reaction.Like, PostId: "p1", UserId: "u1"})
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteReaction(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM likes WHERE").
		WithArgs("l1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.DeleteReaction(ctx, reaction.Like, "l1"))

	expectedErr := fmt.Errorf("mock_db_error")
	mock.ExpectExec("DELETE FROM bookmarks WHERE").
		WithArgs("b1").
		WillReturnError(expectedErr)
	assert.ErrorIs(t, repo.DeleteReaction(ctx, reaction.Bookmark, "b1"), expectedErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO comments").
			WithArgs("c1", "p1", "u1", "nice shot", t0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, err := repo.AddComment(ctx, &comment.Comment{Id: "c1", PostId: "p1", UserId: "u1", Content: "nice shot"})
		assert.NoError(t, err)
		assert.Equal(t, comment.CommentId("c1"), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		expectedErr := fmt.Errorf("fk violation")
		mock.ExpectExec("INSERT INTO comments").WillReturnError(expectedErr)

		id, err := repo.AddComment(ctx, &comment.Comment{PostId: "missing", UserId: "u1", Content: "hi"})
		assert.Equal(t, comment.CommentId(``), id)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
