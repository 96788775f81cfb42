package hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidHash = errors.New("invalid stored hash format")

// Alphabet for generated passwords. Visually ambiguous characters
// (I, l, O, 0, 1) are excluded.
const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789!@#$%"

const (
	PasswordLength = 12
	saltBytes      = 16
)

// PasswordHash is the parsed form of a stored participant hash. Kind makes
// the legacy-to-salted migration explicit instead of re-splitting strings at
// every call site.
type PasswordHash struct {
	Kind HashKind
	Salt string
	Hash string
}

type HashKind int

const (
	// KindLegacy is the original unsalted form: hex(sha256(password)).
	KindLegacy HashKind = iota
	// KindSalted is the current form, stored as "salt:hex(sha256(salt+password))".
	KindSalted
)

// ParsePasswordHash dispatches on the stored string's shape. Anything with a
// separator is treated as salted; everything else as legacy.
func ParsePasswordHash(stored string) (PasswordHash, error) {
	if stored == "" {
		return PasswordHash{}, ErrInvalidHash
	}
	if i := strings.IndexByte(stored, ':'); i >= 0 {
		salt, hash := stored[:i], stored[i+1:]
		if salt == "" || hash == "" {
			return PasswordHash{}, ErrInvalidHash
		}
		return PasswordHash{Kind: KindSalted, Salt: salt, Hash: hash}, nil
	}
	return PasswordHash{Kind: KindLegacy, Hash: stored}, nil
}

// Verify reports whether password matches this hash.
func (ph PasswordHash) Verify(password string) bool {
	var computed string
	switch ph.Kind {
	case KindSalted:
		computed = sha256Hex(ph.Salt + password)
	default:
		computed = sha256Hex(password)
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(ph.Hash)) == 1
}

// String re-encodes the hash in its stored form.
func (ph PasswordHash) String() string {
	if ph.Kind == KindSalted {
		return ph.Salt + ":" + ph.Hash
	}
	return ph.Hash
}

// HashPassword produces the salted stored form. All new writes go through
// here; the legacy form exists only for verification of old rows.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	return saltHex + ":" + sha256Hex(saltHex+password), nil
}

// GeneratePassword draws PasswordLength characters uniformly from the
// ambiguity-free alphabet.
func GeneratePassword() (string, error) {
	out := make([]byte, PasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}

// GenerateOTPCode returns a 6-digit code uniform in [100000, 999999].
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// HashOTPCode hashes the code together with the server secret so the ledger
// is not replayable if read.
func HashOTPCode(code, secret string) string {
	return sha256Hex(code + secret)
}

// VerifyOTPCode compares the hash of (code + secret) against the stored hash.
func VerifyOTPCode(code, secret, storedHash string) bool {
	computed := HashOTPCode(code, secret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// HashAdminPassword hashes an admin account password with bcrypt. Admin
// credentials are not bound to the participant hash formats.
func HashAdminPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash admin password: %w", err)
	}
	return string(hash), nil
}

// VerifyAdminPassword checks a bcrypt admin hash.
func VerifyAdminPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
