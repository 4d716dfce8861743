package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/Skotchmaster/coffee_shop/internal/events"
	"github.com/Skotchmaster/coffee_shop/internal/models"
	"github.com/Skotchmaster/coffee_shop/internal/repo"
	"github.com/Skotchmaster/coffee_shop/pkg/db"
	pkg_hash "github.com/Skotchmaster/coffee_shop/pkg/hash"
	"github.com/Skotchmaster/coffee_shop/pkg/logging"
	"github.com/Skotchmaster/coffee_shop/pkg/tokens"
)

type AuthService struct {
	Repo      *repo.GormRepo
	Secret    []byte
	TTL       time.Duration
	Events    events.Publisher
	Validator *validator.Validate
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

func (s *AuthService) validate() *validator.Validate {
	if s.Validator == nil {
		s.Validator = validator.New()
	}
	return s.Validator
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", ErrValidation)
	}
	if err := s.validate().Var(email, "email"); err != nil {
		return nil, fmt.Errorf("invalid email address: %w", ErrValidation)
	}

	taken, err := s.Repo.UserTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("username already exists: %w", ErrConflict)
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := models.User{Username: username, Email: email, PasswordHash: pwHash}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if db.IsDuplicate(err) {
			return nil, fmt.Errorf("username already exists: %w", ErrConflict)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUser, key(user.ID), events.New(events.UserRegistered, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	}))
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", ErrValidation)
	}

	user, err := s.Repo.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if pkg_hash.NeedsRehash(user.PasswordHash) {
		if h, err := pkg_hash.HashPassword(password); err == nil {
			if err := s.Repo.SetPasswordHash(ctx, user.ID, h); err != nil {
				logging.FromContext(ctx).Warn("password_rehash_failed", "user_id", user.ID, "error", err)
			}
		}
	}

	exp := time.Now().Add(s.TTL)
	token, err := tokens.NewSessionToken(user.ID, user.Username, user.IsAdmin, exp, s.Secret)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUser, key(user.ID), events.New(events.UserLoggedIn, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	}))
	return &Session{Token: token, ExpiresAt: exp, User: *user}, nil
}

// EnsureAdmin seeds the configured administrator account at startup.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.ensure_admin")

	if username == "" {
		return nil
	}
	if password == "" {
		return fmt.Errorf("admin password is required: %w", ErrValidation)
	}
	if email == "" {
		email = username + "@localhost"
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		return err
	}
	u := models.User{Username: username, Email: email, PasswordHash: pwHash}
	created, err := s.Repo.EnsureAdmin(ctx, &u)
	if err != nil {
		return err
	}
	l.Info("admin_ready", "username", username, "created", created)
	return nil
}

func key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
