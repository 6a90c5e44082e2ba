package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/store"
	"github.com/Vivek145899/GymBuddy/internal/users"
	"github.com/Vivek145899/GymBuddy/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "gymbuddy-session||"
	tokensSetKey     = "gymbuddy-sessions"

	passwordMinLen = 6
	passwordMaxLen = 100
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no active session")
	ErrValidation         = errors.New("invalid registration")

	emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

type usersRepo interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	Add(ctx context.Context, user users.User, now time.Time) (*users.User, error)
}

type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Weight   float64 `json:"weight"`
}

func (r RegisterRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(r.Password) < passwordMinLen || len(r.Password) > passwordMaxLen {
		return fmt.Errorf("%w: password must be between %d and %d characters",
			ErrValidation, passwordMinLen, passwordMaxLen)
	}
	return nil
}

// Service issues and verifies session tokens. Tokens live in redis,
// while the current identity snapshot sits under the session key of
// the document store so the rest of the backend can read who is
// signed in without touching redis.
type Service struct {
	users       usersRepo
	store       store.Store
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewService(
	ttl time.Duration,
	usersRepo usersRepo,
	s store.Store,
	redisClient *redis.Client,
) *Service {
	return &Service{
		users:          usersRepo,
		store:          s,
		redisClient:    redisClient,
		ttl:            ttl,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Register creates the user and signs them straight in.
func (as *Service) Register(ctx context.Context, req RegisterRequest, now time.Time) (*users.Session, string, error) {
	if err := req.validate(); err != nil {
		return nil, "", err
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	added, err := as.users.Add(ctx, users.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
		Weight:       req.Weight,
	}, now)
	if err != nil {
		return nil, "", err
	}

	token, err := as.startSession(ctx, *added, now)
	if err != nil {
		return nil, "", err
	}

	session := added.Session()
	log.Debugf("new user registered: [%s] %s", added.ID, added.Email)
	return &session, token, nil
}

// Login verifies the credentials and starts a session. Wrong email
// and wrong password are indistinguishable to the caller.
func (as *Service) Login(ctx context.Context, email, password string, now time.Time) (*users.Session, string, error) {
	user, err := as.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !pkg.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := as.startSession(ctx, *user, now)
	if err != nil {
		return nil, "", err
	}

	session := user.Session()
	return &session, token, nil
}

func (as *Service) startSession(ctx context.Context, user users.User, now time.Time) (string, error) {
	token, err := as.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	sessionKey := sessionKeyPrefix + token
	if err := as.redisClient.Set(ctx, sessionKey, now.Unix(), 0).Err(); err != nil {
		return "", err
	}

	// add token to list of sessions
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", err
	}

	as.store.Set(ctx, store.KeySession, user.Session())

	return token, nil
}

func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := as.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		return false, err
	}

	createdAtUnix, err := strconv.ParseInt(cmd.Val(), 10, 64)
	if err != nil {
		return false, err
	}

	if err := as.redisClient.Set(ctx, sessionKey, 0, 0).Err(); err != nil {
		return false, err
	}

	// remove token from the list of sessions
	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}

	as.store.Remove(ctx, store.KeySession)

	return createdAtUnix > 0, nil
}

// CurrentSession reads the signed in identity snapshot. ErrNoSession
// when nobody is signed in or the snapshot is unreadable.
func (as *Service) CurrentSession(ctx context.Context) (*users.Session, error) {
	var session users.Session
	if !as.store.Get(ctx, store.KeySession, &session) {
		return nil, ErrNoSession
	}
	if session.ID == "" {
		return nil, ErrNoSession
	}
	return &session, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	cmd := as.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Warnln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Warnf("=> auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		sessionKey := sessionKeyPrefix + token
		cmd := as.redisClient.Get(ctx, sessionKey)
		if err := cmd.Err(); err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(cmd.Val(), 10, 64)
		if err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		createdAt := time.Unix(createdAtUnix, 0)
		if time.Since(createdAt) > as.ttl {
			log.Warnf("=>\twill clean the session with token: %s", token)
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		sessionKey := sessionKeyPrefix + token
		if err := as.redisClient.Del(ctx, sessionKey).Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
			continue
		}

		// remove token from the list of sessions
		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
			continue
		}
	}
}
