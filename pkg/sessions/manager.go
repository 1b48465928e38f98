package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gomodule/redigo/redis"

	. "picfeed/pkg/common"
	"picfeed/pkg/logger"
	"picfeed/pkg/user"
)

const (
	redisNS = "picfeedSessions:"

	sessionTTL = 90 * 24 * time.Hour
	// Sessions expiring sooner than this are prolonged on use.
	prolongBelow = 24 * time.Hour
)

type (
	sessionKey string

	// Pool hands out Redis connections; *redis.Pool satisfies it.
	Pool interface {
		Get() redis.Conn
	}

	SessionManager struct {
		secret []byte
		pool   Pool
		now    func() time.Time
	}

	jwtClaims struct {
		User user.User `json:"user"`
		jwt.StandardClaims
	}
)

const SessionKey sessionKey = "authenticatedUser"

var (
	ErrNoAuth  = errors.New("sessions: no session found")
	ErrExpired = errors.New("sessions: session has expired")
)

func NewSessionManager(secret string, pool Pool) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		pool:   pool,
		now:    time.Now,
	}
}

func key(userId string) string {
	return redisNS + userId
}

func (sm *SessionManager) parse(authHeader string) (*jwtClaims, error) {
	if authHeader == "" {
		return nil, errors.New("sessions: auth header not found")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sessions: unexpected signing method %v", token.Header["alg"])
			}
			return sm.secret, nil
		})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok {
		return nil, errors.New("sessions: can't cast token to claim")
	}
	if !token.Valid {
		return nil, errors.New("sessions: token is not valid")
	}
	return claims, nil
}

// UserFromToken returns the signed in user if the JWT is valid and its
// session is still alive in Redis.
func (sm *SessionManager) UserFromToken(authHeader string) (*user.User, error) {
	claims, err := sm.parse(authHeader)
	if err != nil {
		return nil, err
	}
	if _, err := sm.CheckRedis(claims.User.Id, claims.Id); err != nil {
		return nil, fmt.Errorf("sessions: Redis session is not valid: %w", err)
	}
	return &claims.User, nil
}

// Revoke ends the session the token belongs to. It returns the user id and
// how many sessions the user still has on other devices.
func (sm *SessionManager) Revoke(authHeader string) (string, int, error) {
	claims, err := sm.parse(authHeader)
	if err != nil {
		return "", 0, err
	}

	conn := sm.pool.Get()
	defer conn.Close()
	if _, err := conn.Do("HDEL", key(claims.User.Id), claims.Id); err != nil {
		return "", 0, fmt.Errorf("sessions: failed HDEL from Redis: %w", err)
	}
	left, err := redis.Int(conn.Do("HLEN", key(claims.User.Id)))
	if err != nil {
		return claims.User.Id, 0, fmt.Errorf("sessions: failed HLEN from Redis: %w", err)
	}
	return claims.User.Id, left, nil
}

// CleanupUserSessions goes through all user sessions and removes expired ones.
func (sm *SessionManager) CleanupUserSessions(userId string) error {
	conn := sm.pool.Get()
	defer conn.Close()

	sessions, err := redis.StringMap(conn.Do("HGETALL", key(userId)))
	if err != nil {
		return fmt.Errorf("sessions: can't HGETALL user sessions from Redis: %w", err)
	}

	nowTs := sm.now().Unix()
	for sessId, exp := range sessions {
		expTs, _ := strconv.ParseInt(exp, 10, 64)
		if nowTs > expTs {
			if _, err := conn.Do("HDEL", key(userId), sessId); err != nil {
				return fmt.Errorf("sessions: failed HDEL from Redis: %w", err)
			}
			logger.Log(context.Background()).Infof("sessions: session %s removed (expired at %s)", sessId, exp)
		}
	}
	return nil
}

func (sm *SessionManager) CheckRedis(userId, sessionId string) (bool, error) {
	conn := sm.pool.Get()
	defer conn.Close()

	expirationData, err := redis.Bytes(conn.Do("HGET", key(userId), sessionId))
	if err != nil {
		return false, fmt.Errorf("sessions: can't HGET from Redis: %w", err)
	}

	expiredTs, _ := strconv.ParseInt(string(expirationData), 10, 64)
	nowTs := sm.now().Unix()
	if nowTs > expiredTs {
		return false, ErrExpired
	}

	// Don't kick off an active user.
	if expiredTs-nowTs < int64(prolongBelow.Seconds()) {
		if err := sm.AddToRedis(userId, sessionId, sm.now().Add(sessionTTL).Unix()); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (sm *SessionManager) AddToRedis(userId, sessionId string, exp int64) error {
	conn := sm.pool.Get()
	defer conn.Close()

	if _, err := conn.Do("HSET", key(userId), sessionId, exp); err != nil {
		return fmt.Errorf("sessions: failed HSET to Redis: %w", err)
	}
	return nil
}

func (sm *SessionManager) CreateToken(u *user.User) (string, error) {
	sessionID := RandStringRunes(10)
	now := sm.now()
	data := jwtClaims{
		User: user.User{Id: u.Id, Username: u.Username, AvatarURL: u.AvatarURL},
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(sessionTTL).Unix(),
			IssuedAt:  now.Unix(),
			Id:        sessionID,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, data).SignedString(sm.secret)
	if err != nil {
		return "", err
	}

	if err := sm.AddToRedis(u.Id, sessionID, data.ExpiresAt); err != nil {
		return "", err
	}
	return token, nil
}

func GetAuthUser(ctx context.Context) (*user.User, error) {
	u, ok := ctx.Value(SessionKey).(*user.User)
	if !ok || u == nil {
		return nil, ErrNoAuth
	}
	return u, nil
}

// WithAuthUser stores the signed in user in ctx.
func WithAuthUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, SessionKey, u)
}
