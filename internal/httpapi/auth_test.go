package httpapi

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"kasszapont/backend/internal/domain"
)

type userLookupStub struct {
	users map[string]domain.UserAccount
}

func (s *userLookupStub) Authenticate(_ context.Context, username string) (*domain.UserAccount, error) {
	u, ok := s.users[username]
	if !ok || !u.Active {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, username)
	}
	return &u, nil
}

func stubWithUser(t *testing.T, username, password, role, tenantID string) *userLookupStub {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &userLookupStub{users: map[string]domain.UserAccount{
		username: {Username: username, Password: string(hash), Role: role, TenantID: tenantID, Active: true},
	}}
}

func TestLoginAndParseTokenRoundTrip(t *testing.T) {
	users := stubWithUser(t, "cashier", "secret123", "cashier", "tenant-demo")
	auth := NewAuthManager("unit-test-secret-0123456789abcdef", time.Hour, users)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "Cashier", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != "cashier" || resp.TenantID != "tenant-demo" {
		t.Fatalf("login response = %+v", resp)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "cashier" || actor.Role != "cashier" || actor.TenantID != "tenant-demo" {
		t.Fatalf("actor = %+v", actor)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := stubWithUser(t, "cashier", "secret123", "cashier", "tenant-demo")
	auth := NewAuthManager("unit-test-secret-0123456789abcdef", time.Hour, users)

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "cashier", Password: "wrong"}); err == nil {
		t.Fatal("wrong password accepted")
	}
	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "ghost", Password: "secret123"}); err == nil {
		t.Fatal("unknown user accepted")
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	users := stubWithUser(t, "cashier", "secret123", "cashier", "tenant-demo")
	issuer := NewAuthManager("unit-test-secret-0123456789abcdef", time.Hour, users)
	verifier := NewAuthManager("a-completely-different-secret-value", time.Hour, users)

	resp, err := issuer.Login(context.Background(), domain.LoginRequest{Username: "cashier", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := verifier.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
	if _, err := issuer.ParseToken("not-a-token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	users := stubWithUser(t, "cashier", "secret123", "cashier", "tenant-demo")
	auth := NewAuthManager("unit-test-secret-0123456789abcdef", time.Nanosecond, users)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "cashier", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := auth.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("expired token accepted")
	}
}
