package application

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidTokenHash         = errors.New("invalid admin token hash format")
	ErrIncompatibleTokenVersion = errors.New("incompatible admin token hash version")
)

type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// CreateTokenHash derives an encoded argon2id hash for an admin token.
func CreateTokenHash(token string, params Argon2idParams) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("admin token must not be empty")
	}

	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(token), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// $argon2id$v=19$m=...,t=...,p=...$salt$hash
	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	return fmt.Sprintf(format, argon2.Version, params.Memory, params.Iterations, params.Parallelism, b64Salt, b64Hash), nil
}

// VerifyToken checks token against an encoded hash produced by CreateTokenHash.
func VerifyToken(encodedHash, token string) error {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ErrInvalidTokenHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return ErrInvalidTokenHash
	}
	if version != argon2.Version {
		return ErrIncompatibleTokenVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return ErrInvalidTokenHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ErrInvalidTokenHash
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ErrInvalidTokenHash
	}

	comparisonHash := argon2.IDKey([]byte(token), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(decodedHash)))
	if subtle.ConstantTimeCompare(decodedHash, comparisonHash) == 1 {
		return nil
	}
	return ErrInvalidCredentials
}

// AdminAuthenticator turns bearer tokens into principals.
//
// With no hash configured every caller is treated as an administrator. Tokens
// that verified once are remembered by digest so that argon2 runs once per
// distinct token rather than once per request.
type AdminAuthenticator struct {
	hash     string
	mu       sync.RWMutex
	verified map[[sha256.Size]byte]struct{}
}

// NewAdminAuthenticator validates the encoded hash up front.
func NewAdminAuthenticator(encodedHash string) (*AdminAuthenticator, error) {
	encodedHash = strings.TrimSpace(encodedHash)
	if encodedHash != "" && !strings.HasPrefix(encodedHash, "$argon2id$") {
		return nil, ErrInvalidTokenHash
	}
	return &AdminAuthenticator{
		hash:     encodedHash,
		verified: make(map[[sha256.Size]byte]struct{}),
	}, nil
}

// Open reports whether administrative operations are unrestricted.
func (a *AdminAuthenticator) Open() bool {
	return a == nil || a.hash == ""
}

// Authenticate returns an administrator principal for a valid token.
func (a *AdminAuthenticator) Authenticate(token string) (Principal, error) {
	if a.Open() {
		return Principal{Subject: "anonymous", IsAdmin: true}, nil
	}
	if token == "" {
		return Principal{}, ErrInvalidCredentials
	}

	digest := sha256.Sum256([]byte(token))
	a.mu.RLock()
	_, ok := a.verified[digest]
	a.mu.RUnlock()
	if !ok {
		if err := VerifyToken(a.hash, token); err != nil {
			return Principal{}, err
		}
		a.mu.Lock()
		a.verified[digest] = struct{}{}
		a.mu.Unlock()
	}
	return Principal{Subject: "admin", IsAdmin: true}, nil
}
