// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var errMalformedHash = errors.New("malformed password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

// passwordParams are applied to every new hash. Stored hashes made with
// other parameters are upgraded on the next successful login.
var passwordParams = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const saltLength = 16

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// passwordHash is the PHC-style string stored in users.password_hash:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type passwordHash struct {
	params argonParams
	salt   []byte
	key    []byte
}

func (h passwordHash) String() string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.memory,
		h.params.time,
		h.params.threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func (h passwordHash) matches(password string) bool {
	return subtle.ConstantTimeCompare(h.key, h.params.derive(password, h.salt)) == 1
}

func (h passwordHash) outdated() bool {
	return h.params != passwordParams
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return passwordHash{}, errMalformedHash
	}
	if parts[1] != "argon2id" {
		return passwordHash{}, fmt.Errorf("%w: algorithm %q", errMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return passwordHash{}, fmt.Errorf("%w: version %q", errMalformedHash, parts[2])
	}

	var h passwordHash
	if _, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&h.params.memory,
		&h.params.time,
		&h.params.threads,
	); err != nil {
		return passwordHash{}, fmt.Errorf("%w: params: %w", errMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return passwordHash{}, fmt.Errorf("%w: salt: %w", errMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return passwordHash{}, fmt.Errorf("%w: key: %w", errMalformedHash, err)
	}

	//nolint:gosec // G115: argon2id keys are 32 bytes
	h.params.keyLen = uint32(len(h.key))

	return h, nil
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return passwordHash{
		params: passwordParams,
		salt:   salt,
		key:    passwordParams.derive(password, salt),
	}.String(), nil
}

// VerifyPassword reports whether password matches encoded. When it matches
// and encoded was produced with outdated parameters, upgraded holds a fresh
// hash the caller should store.
func VerifyPassword(password, encoded string) (ok bool, upgraded string, err error) {
	h, err := parsePasswordHash(encoded)
	if err != nil {
		return false, "", err
	}

	if !h.matches(password) {
		return false, "", nil
	}

	if h.outdated() {
		//nolint:errcheck // upgrade is best effort; the login still succeeds
		upgraded, _ = HashPassword(password)
	}

	return true, upgraded, nil
}

var decoyHash = mustHash("portal-login-decoy")

func mustHash(password string) string {
	h, err := HashPassword(password)
	if err != nil {
		panic(fmt.Sprintf("security: hash decoy password: %v", err))
	}
	return h
}

// VerifyStoredPassword always pays for one argon2 derivation, so callers
// can use it for unknown usernames (encoded == "") without revealing that
// the account does not exist.
func VerifyStoredPassword(password, encoded string) (bool, string, error) {
	if encoded == "" {
		//nolint:errcheck // result discarded; only the work matters
		_, _, _ = VerifyPassword(password, decoyHash)
		return false, "", nil
	}
	return VerifyPassword(password, encoded)
}

func GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HashToken is how refresh tokens are stored; the raw value is never persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
