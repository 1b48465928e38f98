package reaction

import (
	"errors"
	"fmt"
)

type (
	Kind       string
	State      int
	ReactionId string

	// Reaction is a like or a bookmark of one user on one post.
	// At most one of each kind exists per (post, user) pair.
	Reaction struct {
		Id     ReactionId `json:"id"`
		Kind   Kind       `json:"-"`
		PostId string     `json:"postId"`
		UserId string     `json:"userId"`
	}
)

const (
	Like     Kind = "like"
	Bookmark Kind = "bookmark"
)

const (
	Absent State = iota
	Present
)

var Kinds = []Kind{Like, Bookmark}

var ErrNotFound = errors.New("reaction: not found")

// Table returns the table holding reactions of this kind.
func (k Kind) Table() (string, error) {
	switch k {
	case Like:
		return "likes", nil
	case Bookmark:
		return "bookmarks", nil
	}
	return "", fmt.Errorf("reaction: unknown kind %q", string(k))
}

func (s State) String() string {
	if s == Present {
		return "present"
	}
	return "absent"
}

// Next is the state a toggle moves to.
func (s State) Next() State {
	if s == Present {
		return Absent
	}
	return Present
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ByUser reports whether any reaction in rs belongs to userId.
func ByUser(rs []*Reaction, userId string) bool {
	for _, r := range rs {
		if r.UserId == userId {
			return true
		}
	}
	return false
}
