package application

import (
	"errors"
	"strings"
	"testing"
)

var testArgon2Params = Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

func TestCreateAndVerifyToken(t *testing.T) {
	t.Parallel()

	hash, err := CreateTokenHash("s3cret-token", testArgon2Params)
	if err != nil {
		t.Fatalf("CreateTokenHash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	if err := VerifyToken(hash, "s3cret-token"); err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}
	if err := VerifyToken(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := VerifyToken("$bcrypt$nope", "s3cret-token"); !errors.Is(err, ErrInvalidTokenHash) {
		t.Fatalf("expected ErrInvalidTokenHash, got %v", err)
	}
	if _, err := CreateTokenHash("  ", testArgon2Params); err == nil {
		t.Fatalf("expected blank token to be rejected")
	}
}

func TestAdminAuthenticator(t *testing.T) {
	t.Parallel()

	open, err := NewAdminAuthenticator("")
	if err != nil {
		t.Fatalf("NewAdminAuthenticator failed: %v", err)
	}
	if !open.Open() {
		t.Fatalf("expected authenticator without hash to be open")
	}
	if p, err := open.Authenticate(""); err != nil || !p.IsAdmin {
		t.Fatalf("expected open authenticator to admit anyone, got %+v, %v", p, err)
	}

	hash, err := CreateTokenHash("admin-token", testArgon2Params)
	if err != nil {
		t.Fatalf("CreateTokenHash failed: %v", err)
	}
	auth, err := NewAdminAuthenticator(hash)
	if err != nil {
		t.Fatalf("NewAdminAuthenticator failed: %v", err)
	}
	if auth.Open() {
		t.Fatalf("expected configured authenticator to be closed")
	}

	for i := 0; i < 2; i++ {
		p, err := auth.Authenticate("admin-token")
		if err != nil || !p.IsAdmin {
			t.Fatalf("expected admin principal, got %+v, %v", p, err)
		}
	}
	if _, err := auth.Authenticate("guess"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := auth.Authenticate(""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for missing token, got %v", err)
	}

	if _, err := NewAdminAuthenticator("plaintext"); !errors.Is(err, ErrInvalidTokenHash) {
		t.Fatalf("expected ErrInvalidTokenHash, got %v", err)
	}
}
