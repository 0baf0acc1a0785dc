package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id implements Hash using Argon2id. Hashes are stored in the
// standard $argon2id$... encoded form, so the parameters travel with the
// hash and can change without invalidating existing credentials.
type Argon2id struct {
	params     argon2Params
	saltLength uint32
	keyLength  uint32
	pepper     string
}

// argon2Params are the cost settings embedded in every encoded hash.
type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// NewArgon2id returns an Argon2id hasher with moderate defaults
// (32 MiB memory, 3 iterations, 2 lanes).
func NewArgon2id(pepper string) *Argon2id {
	return &Argon2id{
		params:     argon2Params{memory: 32 * 1024, iterations: 3, parallelism: 2},
		saltLength: 16,
		keyLength:  32,
		pepper:     pepper,
	}
}

// Hash hashes the plaintext with a fresh random salt.
func (a *Argon2id) Hash(str string) ([]byte, error) {
	salt := make([]byte, a.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	p := a.params
	key := argon2.IDKey([]byte(str+a.pepper), salt, p.iterations, p.memory, p.parallelism, a.keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.iterations, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))

	return []byte(encoded), nil
}

// Verify reports whether str matches the encoded hash. The parameters
// embedded in the hash take precedence over the hasher's own settings.
func (a *Argon2id) Verify(hashed, str string) bool {
	if str == "" {
		return false
	}

	p, salt, want, ok := decodeArgon2id(hashed)
	if !ok {
		return false
	}

	got := argon2.IDKey([]byte(str+a.pepper), salt, p.iterations, p.memory, p.parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1
}

// decodeArgon2id splits the $argon2id$v=..$m=..,t=..,p=..$salt$key form
// into its cost parameters, salt and derived key.
func decodeArgon2id(encoded string) (argon2Params, []byte, []byte, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return argon2Params{}, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return argon2Params{}, nil, nil, false
	}

	var p argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return argon2Params{}, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return argon2Params{}, nil, nil, false
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return argon2Params{}, nil, nil, false
	}

	return p, salt, key, true
}
