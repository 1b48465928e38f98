package common

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"

	"golang.org/x/crypto/argon2"

	"picfeed/pkg/logger"
)

// SaltLen is the length of the salt stored in front of every password hash.
const SaltLen = 8

type Msg struct {
	Message string `json:"message"`
}

func WriteMsg(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	WriteRespJSON(w, Msg{msg})
}

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func RandStringRunes(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rand.Intn(len(letterRunes))]
	}
	return string(b)
}

// HashPass returns salt+argon2id(plainPassword). The salt must be SaltLen long.
func HashPass(plainPassword, salt string) []byte {
	hashedPass := argon2.IDKey([]byte(plainPassword), []byte(salt), 1, 64*1024, 4, 32)
	res := []byte(salt)
	return append(res, hashedPass...)
}

func ParseReqBody(body io.Reader, ptr interface{}) error {
	return json.NewDecoder(body).Decode(ptr)
}

func WriteRespJSON(w http.ResponseWriter, data interface{}) {
	resp, err := json.Marshal(data)
	if err != nil {
		logger.Log(context.Background()).Errorf("common: JSON marshaling failed: %v", err)
		http.Error(w, `{"message":"response failed"}`, http.StatusInternalServerError)
		return
	}

	if _, err = w.Write(resp); err != nil {
		logger.Log(context.Background()).Errorf("common: failed writing response: %v", err)
	}
}
