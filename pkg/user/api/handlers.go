package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"picfeed/pkg/common"
	"picfeed/pkg/logger"
	"picfeed/pkg/user"
)

//go:generate mockgen -source=handlers.go -destination=handlers_mock.go -package=api

type (
	UserRepo interface {
		UserExists(context.Context, string) bool
		GetByUsernameAndPass(context.Context, string, string) (*user.User, error)
		Add(context.Context, *user.User) (string, error)
	}

	SessionManager interface {
		CreateToken(*user.User) (string, error)
		CleanupUserSessions(userId string) error
		Revoke(authHeader string) (string, int, error)
	}

	UserHandler struct {
		Repo           UserRepo
		SessionManager SessionManager
		// OnSignOut, when set, is called with the id of a user whose last
		// session was just revoked.
		OnSignOut func(userId string)
	}

	HttpUser struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
)

func NewUserHandler(r UserRepo, sm SessionManager) *UserHandler {
	return &UserHandler{
		Repo:           r,
		SessionManager: sm,
	}
}

func (uh UserHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	httpUser := new(HttpUser)
	err := common.ParseReqBody(r.Body, httpUser)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't parse request body as user: %v", err)
		common.WriteMsg(w, "bad request format", http.StatusBadRequest)
		return
	}

	u, err := uh.Repo.GetByUsernameAndPass(r.Context(), httpUser.Username, httpUser.Password)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't get the user by username `%s` and password: %v",
			httpUser.Username, err)
		common.WriteMsg(w, "user not found", http.StatusNotFound)
		return
	}

	// Remove expired user sessions if there are any
	if err := uh.SessionManager.CleanupUserSessions(u.Id); err != nil {
		logger.Log(r.Context()).Errorf("user/handlers: can't cleanup sessions for user `%s`, %v", httpUser.Username, err)
		common.WriteMsg(w, "failed managing user sessions", http.StatusInternalServerError)
		return
	}

	uh.sendToken(w, r, u, http.StatusOK)
}

func (uh UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	httpUser := new(HttpUser)
	err := common.ParseReqBody(r.Body, httpUser)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't parse request body as user: %v", err)
		common.WriteMsg(w, "bad request format", http.StatusBadRequest)
		return
	}

	httpUser.Username = strings.TrimSpace(httpUser.Username)
	if httpUser.Username == "" || httpUser.Password == "" {
		common.WriteMsg(w, "username and password are required", http.StatusBadRequest)
		return
	}

	if uh.Repo.UserExists(r.Context(), httpUser.Username) {
		msg := fmt.Sprintf(`user "%s" already exists`, httpUser.Username)
		logger.Log(r.Context()).Info(msg)
		common.WriteMsg(w, msg, http.StatusConflict)
		return
	}

	salt := common.RandStringRunes(common.SaltLen)
	u := &user.User{
		Username: httpUser.Username,
		Password: common.HashPass(httpUser.Password, salt),
	}
	id, err := uh.Repo.Add(r.Context(), u)
	if err != nil {
		logger.Log(r.Context()).Errorf("user/handlers: can't add user `%s`: %v", u.Username, err)
		common.WriteMsg(w, "can't add user", http.StatusInternalServerError)
		return
	}
	u.Id = id

	uh.sendToken(w, r, u, http.StatusCreated)
}

// LogOut ends the session of the presented token. Nothing else about the user
// is touched.
func (uh UserHandler) LogOut(w http.ResponseWriter, r *http.Request) {
	userId, left, err := uh.SessionManager.Revoke(r.Header.Get("Authorization"))
	if err != nil {
		logger.Log(r.Context()).Errorf("user/handlers: can't revoke session: %v", err)
		common.WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}
	if uh.OnSignOut != nil && left == 0 {
		uh.OnSignOut(userId)
	}
	common.WriteMsg(w, "signed out", http.StatusOK)
}

func (uh *UserHandler) sendToken(w http.ResponseWriter, r *http.Request, u *user.User, code int) {
	token, err := uh.SessionManager.CreateToken(u)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't create JWT token from user: %v", err)
		common.WriteMsg(w, "user authentication failed", http.StatusInternalServerError)
		return
	}

	tk := struct {
		Token string `json:"token"`
	}{token}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	common.WriteRespJSON(w, tk)
}
