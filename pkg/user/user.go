package user

type User struct {
	Username  string `json:"username"`
	Password  []byte `json:"-"`
	Id        string `json:"id"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Profile is the public, read-only part of a user joined into feed rows.
type Profile struct {
	Id        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		Id:        u.Id,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}
