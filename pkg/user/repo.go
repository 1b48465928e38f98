package user

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"picfeed/pkg/common"
	"picfeed/pkg/logger"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

// Add inserts the user and returns its id. A missing id is generated.
func (r *UserRepo) Add(ctx context.Context, u *User) (string, error) {
	if u.Id == "" {
		u.Id = uuid.NewString()
	}
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO users(id, username, password, avatar_url) VALUES($1, $2, $3, $4)",
		u.Id, u.Username, u.Password, u.AvatarURL)
	if err != nil {
		return ``, fmt.Errorf("user/repo: failed inserting user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ``, fmt.Errorf("user/repo: user wasn't added: %w", err)
	}
	if affected == 0 {
		return ``, fmt.Errorf("user/repo: user wasn't added, no rows affected")
	}
	return u.Id, nil
}

func (r *UserRepo) GetByUsernameAndPass(ctx context.Context, uname string, pass string) (*User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, username, password, avatar_url FROM users where username=$1", uname)
	u := new(User)
	if err := row.Scan(&u.Id, &u.Username, &u.Password, &u.AvatarURL); err != nil {
		return nil, fmt.Errorf("user/repo: row scan failed: %w", err)
	}
	if len(u.Password) < common.SaltLen {
		return nil, errors.New("user/repo: stored password is malformed")
	}
	// User found by username, now check if passwords are the same
	salt := string(u.Password[0:common.SaltLen])
	if !bytes.Equal(common.HashPass(pass, salt), u.Password) {
		return nil, errors.New("user/repo: password is invalid")
	}
	return u, nil
}

func (r *UserRepo) UserExists(ctx context.Context, uname string) bool {
	row := r.db.QueryRowContext(ctx, "SELECT id FROM users where username=$1", uname)
	var id string
	if err := row.Scan(&id); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Log(ctx).Errorf("user/repo: could not scan row: %v", err)
		}
		return false
	}
	return true
}

func (r *UserRepo) GetById(ctx context.Context, uid string) (*User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, username, avatar_url FROM users where id=$1", uid)
	u := new(User)
	if err := row.Scan(&u.Id, &u.Username, &u.AvatarURL); err != nil {
		return u, fmt.Errorf("user/repo: could not scan row: %w", err)
	}
	return u, nil
}

// Returns all users. Used only for seeding the DB.
func (r *UserRepo) GetAll(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, username, password, avatar_url FROM users")
	if err != nil {
		return nil, fmt.Errorf("user/repo: failed executing query for getting all users: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u := new(User)
		err := rows.Scan(&u.Id, &u.Username, &u.Password, &u.AvatarURL)
		if err != nil {
			return nil, fmt.Errorf("user/repo: could not scan row: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
