package auth

import (
	"context"
	"testing"
	"time"

	"financeia/internal/core"
	"financeia/internal/store"
)

func newTestService() *Service {
	return NewService(store.NewMemoryStore(), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	u, token, err := s.Register(ctx, "Maria", "maria@example.com", "segredo123")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if u.ID == 0 || token == "" {
		t.Fatalf("Register() = %+v, token %q", u, token)
	}
	if u.PasswordHash == "segredo123" {
		t.Fatal("password stored in plain text")
	}

	u2, token2, err := s.Login(ctx, "maria@example.com", "segredo123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if u2.ID != u.ID || token2 == "" {
		t.Errorf("Login() = %+v", u2)
	}

	userID, err := s.VerifyToken(token2)
	if err != nil {
		t.Fatalf("VerifyToken() error: %v", err)
	}
	if userID != u.ID {
		t.Errorf("VerifyToken() = %d, want %d", userID, u.ID)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	s := newTestService()
	if _, _, err := s.Register(context.Background(), "Maria", "maria@example.com", "curta"); !core.IsValidation(err) {
		t.Errorf("Register(short password) error = %v, want ValidationError", err)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	if _, _, err := s.Register(ctx, "Maria", "maria@example.com", "segredo123"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "maria@example.com", "errada123"},
		{"unknown email", "joao@example.com", "segredo123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.Login(ctx, tt.email, tt.password)
			if !core.IsValidation(err) {
				t.Errorf("Login() error = %v, want ValidationError", err)
			}
			if err != nil && err.Error() != "invalid credentials" {
				t.Errorf("Login() error message = %q, leaks detail", err.Error())
			}
		})
	}
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	_, token, err := s.Register(ctx, "Maria", "maria@example.com", "segredo123")
	if err != nil {
		t.Fatal(err)
	}

	other := NewService(store.NewMemoryStore(), "other-secret", time.Hour)
	if _, err := other.VerifyToken(token); err == nil {
		t.Error("token signed with different secret accepted")
	}

	if _, err := s.VerifyToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	ctx := context.Background()
	s := NewService(store.NewMemoryStore(), "test-secret", -time.Minute)
	_, token, err := s.Register(ctx, "Maria", "maria@example.com", "segredo123")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.VerifyToken(token); err == nil {
		t.Error("expired token accepted")
	}
}
