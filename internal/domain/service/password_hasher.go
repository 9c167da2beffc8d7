// Package service declares the ports for stateless domain capabilities that
// infrastructure provides: password digests and identity tokens.
package service

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes
// of its UTF-8 encoding rather than in characters.
const MaxPasswordBytes = 72

// PasswordHasher turns passwords into salted, slow digests and verifies them.
type PasswordHasher interface {
	// Hash returns a new digest on every call; two digests of the same
	// password differ because each carries its own salt.
	Hash(password string) (string, error)

	// Check reports whether password produced digest. A malformed digest
	// never matches.
	Check(password, digest string) bool
}
