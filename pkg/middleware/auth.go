package middleware

import (
	"context"
	"net/http"
	"time"

	. "picfeed/pkg/common"
	"picfeed/pkg/logger"
	"picfeed/pkg/sessions"
	"picfeed/pkg/user"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=middleware

type (
	IUserRepo interface {
		GetById(context.Context, string) (*user.User, error)
	}
	ISessionManager interface {
		UserFromToken(string) (*user.User, error)
	}
	Auth struct {
		UserRepo       IUserRepo
		SessionManager ISessionManager
	}
)

func NewAuthMiddleware(sm ISessionManager, ur IUserRepo) *Auth {
	return &Auth{
		UserRepo:       ur,
		SessionManager: sm,
	}
}

// Middleware puts the signed in user into the request context. Requests
// without a valid token pass through anonymously; handlers that need a user
// answer 401 themselves.
func (auth Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		userFromToken, err := auth.SessionManager.UserFromToken(authHeader)
		if err != nil {
			logger.Log(r.Context()).Infof("auth: can't get user from token: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		repoCtx, repoCtxCancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer repoCtxCancel()
		u, err := auth.UserRepo.GetById(repoCtx, userFromToken.Id)
		if err != nil {
			logger.Log(r.Context()).Errorf("auth: can't get the user from repo: %v", err)
			WriteMsg(w, "user not found", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(sessions.WithAuthUser(r.Context(), u)))
	})
}
