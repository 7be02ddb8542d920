// Package auth handles password hashing and JWT session tokens for the API.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"financeia/internal/core"
	"financeia/internal/store"
)

// Service authenticates users against the user store and issues signed
// bearer tokens.
type Service struct {
	users  store.UserStore
	secret []byte
	ttl    time.Duration
}

func NewService(users store.UserStore, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), ttl: ttl}
}

// Register creates a user with a bcrypt-hashed password and logs them in.
func (s *Service) Register(ctx context.Context, name, email, password string) (core.User, string, error) {
	if len(password) < 8 {
		return core.User{}, "", core.Validationf("password too short: want at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u := core.User{Name: name, Email: email, PasswordHash: string(hash)}
	id, err := s.users.InsertUser(ctx, u)
	if err != nil {
		return core.User{}, "", err
	}
	u.ID = id

	token, err := s.issueToken(id)
	if err != nil {
		return core.User{}, "", err
	}
	return u, token, nil
}

// Login verifies credentials and returns a fresh token. Unknown emails and
// wrong passwords produce the same error so the API leaks nothing.
func (s *Service) Login(ctx context.Context, email, password string) (core.User, string, error) {
	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, "", core.Validationf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return core.User{}, "", core.Validationf("invalid credentials")
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return core.User{}, "", err
	}
	return u, token, nil
}

func (s *Service) issueToken(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses a bearer token and returns the user ID it carries.
func (s *Service) VerifyToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject %q", claims.Subject)
	}
	return userID, nil
}
