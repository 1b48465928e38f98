package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"picfeed/pkg/common"
	"picfeed/pkg/user"
)

var (
	userId         = "1"
	username       = "pike"
	salt           = "12345678"
	password       = "sdfsdfsdf"
	hashedPassword = common.HashPass("sdfsdfsdf", salt)
	jwtToken       = "header.payload.signature"
)

func userReq(un, pw string) *http.Request {
	body := strings.NewReader(`{"username": "` + un + `", "password": "` + pw + `"}`)
	return httptest.NewRequest(http.MethodPost, "/api/login", body)
}

func TestLogIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existingUser := user.User{Id: userId, Username: username, Password: hashedPassword}
	mockRepo := NewMockUserRepo(ctrl)
	mockSm := NewMockSessionManager(ctrl)
	handler := NewUserHandler(mockRepo, mockSm)

	t.Run("login is OK", func(t *testing.T) {
		mockRepo.EXPECT().GetByUsernameAndPass(gomock.Any(), username, password).Return(&existingUser, nil)
		mockSm.EXPECT().CleanupUserSessions(userId).Return(nil)
		mockSm.EXPECT().CreateToken(&existingUser).Return(jwtToken, nil)

		w := httptest.NewRecorder()
		handler.LogIn(w, userReq(username, password))
		resp := w.Result()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Errorf("error reading login response body")
			return
		}
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), jwtToken)
	})

	t.Run("user not found", func(t *testing.T) {
		badUsername, badPassword := "notexists", "nevermind"
		mockRepo.EXPECT().GetByUsernameAndPass(gomock.Any(), badUsername, badPassword).
			Return(nil, fmt.Errorf("user not found"))

		w := httptest.NewRecorder()
		handler.LogIn(w, userReq(badUsername, badPassword))
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("session cleanup fails", func(t *testing.T) {
		mockRepo.EXPECT().GetByUsernameAndPass(gomock.Any(), username, password).Return(&existingUser, nil)
		mockSm.EXPECT().CleanupUserSessions(userId).Return(errors.New("redis down"))

		w := httptest.NewRecorder()
		handler.LogIn(w, userReq(username, password))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.LogIn(w, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegister(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := NewMockUserRepo(ctrl)
	mockSm := NewMockSessionManager(ctrl)
	handler := NewUserHandler(mockRepo, mockSm)

	t.Run("created", func(t *testing.T) {
		mockRepo.EXPECT().UserExists(gomock.Any(), username).Return(false)
		mockRepo.EXPECT().Add(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ interface{}, u *user.User) (string, error) {
				assert.Equal(t, username, u.Username)
				assert.Len(t, u.Password, common.SaltLen+32)
				return userId, nil
			})
		mockSm.EXPECT().CreateToken(gomock.Any()).
			DoAndReturn(func(u *user.User) (string, error) {
				assert.Equal(t, userId, u.Id)
				return jwtToken, nil
			})

		w := httptest.NewRecorder()
		handler.Register(w, userReq(username, password))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), jwtToken)
	})

	t.Run("already exists", func(t *testing.T) {
		mockRepo.EXPECT().UserExists(gomock.Any(), username).Return(true)

		w := httptest.NewRecorder()
		handler.Register(w, userReq(username, password))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("empty credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Register(w, userReq("  ", password))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("repo fails", func(t *testing.T) {
		mockRepo.EXPECT().UserExists(gomock.Any(), username).Return(false)
		mockRepo.EXPECT().Add(gomock.Any(), gomock.Any()).Return("", errors.New("db down"))

		w := httptest.NewRecorder()
		handler.Register(w, userReq(username, password))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestLogOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSm := NewMockSessionManager(ctrl)
	handler := NewUserHandler(NewMockUserRepo(ctrl), mockSm)

	var signedOut string
	handler.OnSignOut = func(id string) { signedOut = id }

	request := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
		r.Header.Set("Authorization", "Bearer "+jwtToken)
		return r
	}

	t.Run("other devices still signed in", func(t *testing.T) {
		signedOut = ""
		mockSm.EXPECT().Revoke("Bearer "+jwtToken).Return(userId, 1, nil)

		w := httptest.NewRecorder()
		handler.LogOut(w, request())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, signedOut)
	})

	t.Run("last session", func(t *testing.T) {
		mockSm.EXPECT().Revoke("Bearer "+jwtToken).Return(userId, 0, nil)

		w := httptest.NewRecorder()
		handler.LogOut(w, request())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userId, signedOut)
	})

	t.Run("invalid token", func(t *testing.T) {
		signedOut = ""
		mockSm.EXPECT().Revoke("Bearer "+jwtToken).Return("", 0, errors.New("bad token"))

		w := httptest.NewRecorder()
		handler.LogOut(w, request())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, signedOut)
	})
}
